package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/atlas-travel/atlas-auth/internal/auth"
	"github.com/atlas-travel/atlas-auth/internal/authmode"
	"github.com/atlas-travel/atlas-auth/internal/models"
	"github.com/atlas-travel/atlas-auth/internal/services"
	pkghttp "github.com/atlas-travel/atlas-auth/pkg/http"
)

// CredentialServiceInterface defines the interface for sign-in and registration
type CredentialServiceInterface interface {
	Verify(ctx context.Context, identifier, password string) (*models.Identity, error)
	Register(ctx context.Context, req services.NewUser) (*models.Identity, error)
}

// PasswordResetServiceInterface defines the interface for the reset flows
type PasswordResetServiceInterface interface {
	Initiate(ctx context.Context, email string) error
	Reset(ctx context.Context, token, newPassword string) error
}

// UserFetcher loads the stored user backing a session
type UserFetcher interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	credentials CredentialServiceInterface
	resets      PasswordResetServiceInterface
	users       UserFetcher
	tm          *auth.TokenManager
	cookieCfg   auth.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(credentials CredentialServiceInterface, resets PasswordResetServiceInterface, users UserFetcher, tm *auth.TokenManager, cookieCfg auth.CookieConfig) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		resets:      resets,
		users:       users,
		tm:          tm,
		cookieCfg:   cookieCfg,
	}
}

// Request DTOs

// LoginRequest carries either a username or an email plus the password
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email_basic"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// ForgotPasswordRequest represents the request body for initiating a reset
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email_basic"`
}

// ResetPasswordRequest represents the request body for redeeming a reset
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// Response DTOs

// MessageResponse is a success body with an optional user payload
type MessageResponse struct {
	Message string           `json:"message"`
	User    *models.Identity `json:"user,omitempty"`
}

// SessionResponse is the body for session reads
type SessionResponse struct {
	User *models.Identity `json:"user"`
}

// Login handles credential sign-in and issues the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		pkghttp.WriteBadRequest(w, models.MsgUsernameOrEmailRequired)
		return
	}
	if req.Password == "" {
		pkghttp.WriteBadRequest(w, models.MsgPasswordRequired)
		return
	}

	identity, err := h.credentials.Verify(r.Context(), identifier, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			// One generic message for unknown account, wrong password,
			// and password-less accounts alike
			pkghttp.WriteUnauthorized(w, models.MsgLoginInvalidCredentials)
			return
		}
		pkghttp.WriteInternalError(w, models.MsgInternalError)
		return
	}

	token, err := h.tm.GenerateSessionToken(identity.ID, identity.Username, identity.Email)
	if err != nil {
		pkghttp.WriteInternalError(w, models.MsgInternalError)
		return
	}
	auth.SetSessionCookie(w, token, int(h.tm.SessionExpiry().Seconds()), h.cookieCfg)

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: models.MsgLoginSuccess,
		User:    identity,
	})
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	identity, err := h.credentials.Register(r.Context(), services.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, MessageResponse{
		Message: models.MsgRegistrationSuccess,
		User:    identity,
	})
}

// ForgotPassword initiates a password reset. The success body is the same
// whether or not the account exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.resets.Initiate(r.Context(), req.Email); err != nil {
		if errors.Is(err, models.ErrNoPassword) {
			pkghttp.WriteBadRequest(w, models.MsgForgotPasswordNoPassword)
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: models.MsgForgotPasswordSuccess})
}

// ResetPassword redeems a reset token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Token == "" || req.Password == "" {
		pkghttp.WriteBadRequest(w, models.MsgResetPasswordFieldsMissing)
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.resets.Reset(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, models.ErrInvalidResetToken) {
			pkghttp.WriteBadRequest(w, models.MsgResetPasswordInvalidToken)
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: models.MsgResetPasswordSuccess})
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookieCfg)
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the signed-in user, re-read from storage so renames and
// deletions take effect on the next read rather than at token expiry.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			auth.ClearSessionCookie(w, h.cookieCfg)
			pkghttp.WriteUnauthorized(w, "invalid or expired session")
			return
		}
		pkghttp.WriteInternalError(w, models.MsgInternalError)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SessionResponse{User: user.Identity()})
}

// Mode resolves the auth form for a raw query string, exposing the state
// machine to clients that manage the URL themselves.
func (h *AuthHandler) Mode(w http.ResponseWriter, r *http.Request) {
	res := authmode.Resolve(r.URL.Query())

	pkghttp.WriteJSON(w, http.StatusOK, ModeResponse{
		Mode:         string(res.Mode),
		Query:        res.Query.Encode(),
		Rewrite:      res.Rewrite,
		Notification: res.Notification,
	})
}

// ModeResponse is the wire form of a mode resolution
type ModeResponse struct {
	Mode         string                 `json:"mode"`
	Query        string                 `json:"query"`
	Rewrite      bool                   `json:"rewrite"`
	Notification *authmode.Notification `json:"notification,omitempty"`
}

// writeServiceError maps service-level failures onto the wire contract
func writeServiceError(w http.ResponseWriter, err error) {
	var fieldErr *services.FieldError
	if errors.As(err, &fieldErr) {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteFieldConflict(w, fieldErr.Message, fieldErr.Field)
			return
		}
		pkghttp.WriteBadRequest(w, fieldErr.Message)
		return
	}
	pkghttp.WriteInternalError(w, models.MsgInternalError)
}
