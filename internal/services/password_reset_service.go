package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/atlas-travel/atlas-auth/internal/models"
	pkgauth "github.com/atlas-travel/atlas-auth/pkg/auth"
	"github.com/atlas-travel/atlas-auth/pkg/logger"
	"github.com/atlas-travel/atlas-auth/pkg/validation"
)

// resetTokenTTL is how long a reset link stays redeemable.
const resetTokenTTL = time.Hour

// PasswordResetService handles the forgot-password and reset flows
type PasswordResetService struct {
	repo   UserRepository
	email  EmailService
	logger *slog.Logger
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(repo UserRepository, email EmailService, logger *slog.Logger) *PasswordResetService {
	return &PasswordResetService{
		repo:   repo,
		email:  email,
		logger: logger,
	}
}

// Initiate starts a reset for the given email. Unknown addresses succeed
// silently so the endpoint never discloses whether an account exists.
// Google-only accounts are the one deliberate exception: they get an
// explicit pointer to Google sign-in instead of a dead-end email.
func (s *PasswordResetService) Initiate(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validation.IsValidEmail(email) {
		return NewFieldInvalid("email", models.MsgEmailInvalidFormat)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				slog.String("email", logger.SanitizedEmail(email)))
			return nil
		}
		s.logger.Error("failed to look up user for password reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !user.HasPassword() {
		s.logger.Info("password reset requested for oauth-only account",
			slog.String("user_id", user.ID.Hex()))
		return models.ErrNoPassword
	}

	token, err := pkgauth.GenerateSecureToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		s.logger.Error("failed to store reset token",
			slog.String("user_id", user.ID.Hex()),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.email.SendPasswordResetEmail(ctx, user.Email, token, expires); err != nil {
		s.logger.Error("failed to send reset email",
			slog.String("user_id", user.ID.Hex()),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset email sent", slog.String("user_id", user.ID.Hex()))
	return nil
}

// Reset redeems a token and sets the new password. The repository consumes
// the token atomically, so a second redemption of the same token fails.
func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return NewFieldInvalid("", models.MsgResetPasswordFieldsMissing)
	}
	if !validation.IsValidPassword(newPassword) {
		return NewFieldInvalid("password", models.MsgPasswordMinLength)
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	user, err := s.repo.ResetPasswordByToken(ctx, token, hash)
	if err != nil {
		if errors.Is(err, models.ErrInvalidResetToken) {
			s.logger.Info("password reset failed: invalid or expired token")
			return models.ErrInvalidResetToken
		}
		s.logger.Error("failed to reset password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset completed", slog.String("user_id", user.ID.Hex()))
	return nil
}
