package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atlas-travel/atlas-auth/internal/auth"
	"github.com/atlas-travel/atlas-auth/internal/models"
	"github.com/atlas-travel/atlas-auth/internal/services"
	pkghttp "github.com/atlas-travel/atlas-auth/pkg/http"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext adds session claims to the request context, as the
// session middleware would after validating the cookie
func WithSessionContext(req *http.Request, userID, username, email string) *http.Request {
	claims := &models.SessionClaims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
		},
	}
	ctx := context.WithValue(req.Context(), auth.SessionContextKey, claims)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error message mismatch")
}

// sessionCookie returns the session cookie set on the recorder, or nil
func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

// newTestTokenManager builds a token manager with a throwaway secret
func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-at-least-32-characters!!", 7*24*time.Hour)
}

func testCookieConfig() auth.CookieConfig {
	return auth.CookieConfig{SameSite: "lax"}
}

// MockCredentialService implements CredentialServiceInterface for testing
type MockCredentialService struct {
	VerifyFunc   func(ctx context.Context, identifier, password string) (*models.Identity, error)
	RegisterFunc func(ctx context.Context, req services.NewUser) (*models.Identity, error)
}

func (m *MockCredentialService) Verify(ctx context.Context, identifier, password string) (*models.Identity, error) {
	if m.VerifyFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.VerifyFunc(ctx, identifier, password)
}

func (m *MockCredentialService) Register(ctx context.Context, req services.NewUser) (*models.Identity, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.RegisterFunc(ctx, req)
}

// MockPasswordResetService implements PasswordResetServiceInterface for testing
type MockPasswordResetService struct {
	InitiateFunc func(ctx context.Context, email string) error
	ResetFunc    func(ctx context.Context, token, newPassword string) error
}

func (m *MockPasswordResetService) Initiate(ctx context.Context, email string) error {
	if m.InitiateFunc == nil {
		return nil
	}
	return m.InitiateFunc(ctx, email)
}

func (m *MockPasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	if m.ResetFunc == nil {
		return models.ErrInvalidResetToken
	}
	return m.ResetFunc(ctx, token, newPassword)
}

// MockUserFetcher implements UserFetcher for testing
type MockUserFetcher struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.User, error)
}

func (m *MockUserFetcher) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetByIDFunc(ctx, id)
}

// MockOAuthService implements OAuthServiceInterface for testing
type MockOAuthService struct {
	FindOrCreateFunc func(ctx context.Context, profile services.GoogleProfile) (*models.Identity, error)
}

func (m *MockOAuthService) FindOrCreate(ctx context.Context, profile services.GoogleProfile) (*models.Identity, error) {
	if m.FindOrCreateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.FindOrCreateFunc(ctx, profile)
}

// MockOAuthStateStore implements OAuthStateStore for testing
type MockOAuthStateStore struct {
	SaveFunc    func(ctx context.Context, state string, expiresAt time.Time) error
	ConsumeFunc func(ctx context.Context, state string) error
}

func (m *MockOAuthStateStore) Save(ctx context.Context, state string, expiresAt time.Time) error {
	if m.SaveFunc == nil {
		return nil
	}
	return m.SaveFunc(ctx, state, expiresAt)
}

func (m *MockOAuthStateStore) Consume(ctx context.Context, state string) error {
	if m.ConsumeFunc == nil {
		return models.ErrUnauthorized
	}
	return m.ConsumeFunc(ctx, state)
}
