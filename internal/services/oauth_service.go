package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atlas-travel/atlas-auth/internal/models"
)

// GoogleProfile is the subset of the Google userinfo response we use
type GoogleProfile struct {
	Email string
	Name  string
	Sub   string
}

// OAuthService links Google identities to local accounts
type OAuthService struct {
	repo   UserRepository
	logger *slog.Logger
}

// NewOAuthService creates a new OAuthService
func NewOAuthService(repo UserRepository, logger *slog.Logger) *OAuthService {
	return &OAuthService{
		repo:   repo,
		logger: logger,
	}
}

// FindOrCreate resolves a Google profile to a local account. An existing
// account with the same email is returned unchanged, so Google sign-in
// attaches to it without overwriting local fields. Otherwise a new
// password-less user is created with a username derived from the email
// local-part, suffixed with a counter until unique.
func (s *OAuthService) FindOrCreate(ctx context.Context, profile GoogleProfile) (*models.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" || profile.Sub == "" {
		return nil, models.ErrBadRequest
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("google sign-in matched existing account",
			slog.String("user_id", existing.ID.Hex()))
		return existing.Identity(), nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up user for google sign-in", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Retry a few times: concurrent sign-ins can race the username probe
	for attempt := 0; attempt < 3; attempt++ {
		username, err := s.deriveUsername(ctx, email)
		if err != nil {
			return nil, err
		}

		user := &models.User{
			Username: username,
			Email:    email,
			Name:     strings.TrimSpace(profile.Name),
			GoogleID: profile.Sub,
		}

		created, err := s.repo.Create(ctx, user)
		if err != nil {
			// Another callback for the same email can race this create
			if errors.Is(err, models.ErrDuplicateEmail) {
				if existing, lookupErr := s.repo.GetByEmail(ctx, email); lookupErr == nil {
					return existing.Identity(), nil
				}
			}
			if errors.Is(err, models.ErrDuplicateUsername) {
				continue
			}
			s.logger.Error("failed to create google user", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}

		s.logger.Info("google user created",
			slog.String("user_id", created.ID.Hex()),
			slog.String("username", created.Username))
		return created.Identity(), nil
	}

	s.logger.Error("failed to create google user: username contention")
	return nil, models.ErrInternalServer
}

// deriveUsername builds a unique username from the email local-part,
// appending an incrementing counter while the candidate is taken.
func (s *OAuthService) deriveUsername(ctx context.Context, email string) (string, error) {
	base := strings.SplitN(email, "@", 2)[0]
	if base == "" {
		base = "user"
	}

	candidate := base
	for counter := 1; ; counter++ {
		_, err := s.repo.GetByUsername(ctx, candidate)
		if errors.Is(err, models.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			s.logger.Error("failed to check username availability", slog.Any("error", err))
			return "", models.ErrInternalServer
		}
		candidate = fmt.Sprintf("%s%d", base, counter)
	}
}
