package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/atlas-travel/atlas-auth/internal/models"
	pkgauth "github.com/atlas-travel/atlas-auth/pkg/auth"
	"github.com/atlas-travel/atlas-auth/pkg/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines the persistence operations the auth services need
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmailOrUsername(ctx context.Context, identifier string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error
	ResetPasswordByToken(ctx context.Context, token, passwordHash string) (*models.User, error)
}

// CredentialService handles password sign-in and registration
type CredentialService struct {
	repo   UserRepository
	logger *slog.Logger
}

// NewCredentialService creates a new CredentialService
func NewCredentialService(repo UserRepository, logger *slog.Logger) *CredentialService {
	return &CredentialService{
		repo:   repo,
		logger: logger,
	}
}

// Verify checks a username-or-email plus password pair. Every failure path
// returns ErrUnauthorized so callers can't distinguish unknown accounts
// from wrong passwords.
func (s *CredentialService) Verify(ctx context.Context, identifier, password string) (*models.Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, models.ErrUnauthorized
	}

	user, err := s.repo.GetByEmailOrUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to look up user for login", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Accounts created via Google sign-in have no password to compare
	if !user.HasPassword() {
		s.logger.Info("login failed: account has no password", slog.String("user_id", user.ID.Hex()))
		return nil, models.ErrUnauthorized
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		return nil, models.ErrUnauthorized
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID.Hex()))
	return user.Identity(), nil
}

// NewUser carries a registration request into the service
type NewUser struct {
	Username string
	Email    string
	Name     string
	Password string
}

// FieldError reports a validation or uniqueness failure tied to one field.
// It wraps ErrBadRequest or ErrConflict so handlers can pick a status code
// with errors.Is.
type FieldError struct {
	Field   string
	Message string
	kind    error
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return e.kind
}

func NewFieldInvalid(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message, kind: models.ErrBadRequest}
}

func NewFieldConflict(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message, kind: models.ErrConflict}
}

// Register creates a new password-backed account. Uniqueness violations
// come back as *FieldError naming the colliding field.
func (s *CredentialService) Register(ctx context.Context, req NewUser) (*models.Identity, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	// Friendly pre-checks; the unique indexes still decide under races
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, NewFieldConflict("username", models.MsgUsernameTaken)
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check username availability", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, NewFieldConflict("email", models.MsgEmailTaken)
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email availability", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		// A concurrent registration can win between the pre-check and insert
		switch {
		case errors.Is(err, models.ErrDuplicateUsername):
			return nil, NewFieldConflict("username", models.MsgUsernameTaken)
		case errors.Is(err, models.ErrDuplicateEmail):
			return nil, NewFieldConflict("email", models.MsgEmailTaken)
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", created.ID.Hex()))
	return created.Identity(), nil
}

func validateRegistration(req NewUser) error {
	if req.Username == "" || req.Email == "" || req.Name == "" || req.Password == "" {
		return NewFieldInvalid("", models.MsgRegistrationMissingFields)
	}
	if !validation.IsValidUsername(req.Username) {
		return NewFieldInvalid("username", models.MsgUsernameMinLength)
	}
	if !validation.IsValidEmail(req.Email) {
		return NewFieldInvalid("email", models.MsgEmailInvalidFormat)
	}
	if !validation.IsValidPassword(req.Password) {
		return NewFieldInvalid("password", models.MsgPasswordMinLength)
	}
	return nil
}
