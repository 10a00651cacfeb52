package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atlas-travel/atlas-auth/internal/authmode"
	"github.com/atlas-travel/atlas-auth/internal/models"
	"github.com/atlas-travel/atlas-auth/internal/services"
	pkghttp "github.com/atlas-travel/atlas-auth/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthHandler(creds CredentialServiceInterface, resets PasswordResetServiceInterface, users UserFetcher) *AuthHandler {
	if creds == nil {
		creds = &MockCredentialService{}
	}
	if resets == nil {
		resets = &MockPasswordResetService{}
	}
	if users == nil {
		users = &MockUserFetcher{}
	}
	return NewAuthHandler(creds, resets, users, newTestTokenManager(), testCookieConfig())
}

func testIdentity() *models.Identity {
	return &models.Identity{
		ID:       primitive.NewObjectID().Hex(),
		Username: "traveler",
		Email:    "traveler@example.com",
		Name:     "Test Traveler",
	}
}

func TestLogin(t *testing.T) {
	t.Run("signs in with email", func(t *testing.T) {
		identity := testIdentity()
		var gotIdentifier string
		creds := &MockCredentialService{
			VerifyFunc: func(ctx context.Context, identifier, password string) (*models.Identity, error) {
				gotIdentifier = identifier
				return identity, nil
			},
		}
		handler := newAuthHandler(creds, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/login", map[string]string{
			"email":    "traveler@example.com",
			"password": "password123",
		})
		w := httptest.NewRecorder()
		handler.Login(w, req)

		var resp MessageResponse
		AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, models.MsgLoginSuccess, resp.Message)
		require.NotNil(t, resp.User)
		assert.Equal(t, identity.Username, resp.User.Username)
		assert.Equal(t, "traveler@example.com", gotIdentifier)
	})

	t.Run("signs in with username", func(t *testing.T) {
		var gotIdentifier string
		creds := &MockCredentialService{
			VerifyFunc: func(ctx context.Context, identifier, password string) (*models.Identity, error) {
				gotIdentifier = identifier
				return testIdentity(), nil
			},
		}
		handler := newAuthHandler(creds, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/login", map[string]string{
			"username": "traveler",
			"password": "password123",
		})
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "traveler", gotIdentifier)
	})

	t.Run("sets session cookie on success", func(t *testing.T) {
		creds := &MockCredentialService{
			VerifyFunc: func(ctx context.Context, identifier, password string) (*models.Identity, error) {
				return testIdentity(), nil
			},
		}
		handler := newAuthHandler(creds, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/login", map[string]string{
			"username": "traveler",
			"password": "password123",
		})
		w := httptest.NewRecorder()
		handler.Login(w, req)

		cookie := sessionCookie(w)
		require.NotNil(t, cookie, "expected a session cookie")
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Positive(t, cookie.MaxAge)
	})

	t.Run("returns generic message for bad credentials", func(t *testing.T) {
		creds := &MockCredentialService{
			VerifyFunc: func(ctx context.Context, identifier, password string) (*models.Identity, error) {
				return nil, models.ErrUnauthorized
			},
		}
		handler := newAuthHandler(creds, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/login", map[string]string{
			"username": "traveler",
			"password": "wrong",
		})
		w := httptest.NewRecorder()
		handler.Login(w, req)

		AssertErrorResponse(t, w, http.StatusUnauthorized, models.MsgLoginInvalidCredentials)
		assert.Nil(t, sessionCookie(w), "no cookie on failed login")
	})

	t.Run("requires an identifier", func(t *testing.T) {
		handler := newAuthHandler(nil, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/login", map[string]string{
			"password": "password123",
		})
		w := httptest.NewRecorder()
		handler.Login(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgUsernameOrEmailRequired)
	})

	t.Run("requires a password", func(t *testing.T) {
		handler := newAuthHandler(nil, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/login", map[string]string{
			"username": "traveler",
		})
		w := httptest.NewRecorder()
		handler.Login(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgPasswordRequired)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		handler := newAuthHandler(nil, nil, nil)

		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegister(t *testing.T) {
	validBody := func() map[string]string {
		return map[string]string{
			"username": "traveler",
			"email":    "traveler@example.com",
			"name":     "Test Traveler",
			"password": "password123",
		}
	}

	t.Run("creates account and returns 201", func(t *testing.T) {
		identity := testIdentity()
		var gotReq services.NewUser
		creds := &MockCredentialService{
			RegisterFunc: func(ctx context.Context, req services.NewUser) (*models.Identity, error) {
				gotReq = req
				return identity, nil
			},
		}
		handler := newAuthHandler(creds, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/register", validBody())
		w := httptest.NewRecorder()
		handler.Register(w, req)

		var resp MessageResponse
		AssertJSONResponse(t, w, http.StatusCreated, &resp)
		assert.Equal(t, models.MsgRegistrationSuccess, resp.Message)
		require.NotNil(t, resp.User)
		assert.Equal(t, identity.Email, resp.User.Email)
		assert.Equal(t, "traveler", gotReq.Username)
		assert.Equal(t, "password123", gotReq.Password)
	})

	t.Run("returns 409 with field for taken username", func(t *testing.T) {
		creds := &MockCredentialService{
			RegisterFunc: func(ctx context.Context, req services.NewUser) (*models.Identity, error) {
				return nil, services.NewFieldConflict("username", models.MsgUsernameTaken)
			},
		}
		handler := newAuthHandler(creds, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/register", validBody())
		w := httptest.NewRecorder()
		handler.Register(w, req)

		var resp pkghttp.ErrorResponse
		AssertJSONResponse(t, w, http.StatusConflict, &resp)
		assert.Equal(t, models.MsgUsernameTaken, resp.Error)
		assert.Equal(t, "username", resp.Field)
	})

	t.Run("returns 409 with field for taken email", func(t *testing.T) {
		creds := &MockCredentialService{
			RegisterFunc: func(ctx context.Context, req services.NewUser) (*models.Identity, error) {
				return nil, services.NewFieldConflict("email", models.MsgEmailTaken)
			},
		}
		handler := newAuthHandler(creds, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/register", validBody())
		w := httptest.NewRecorder()
		handler.Register(w, req)

		var resp pkghttp.ErrorResponse
		AssertJSONResponse(t, w, http.StatusConflict, &resp)
		assert.Equal(t, models.MsgEmailTaken, resp.Error)
		assert.Equal(t, "email", resp.Field)
	})

	t.Run("returns 400 for service validation failure", func(t *testing.T) {
		creds := &MockCredentialService{
			RegisterFunc: func(ctx context.Context, req services.NewUser) (*models.Identity, error) {
				return nil, services.NewFieldInvalid("email", models.MsgEmailInvalidFormat)
			},
		}
		handler := newAuthHandler(creds, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/register", validBody())
		w := httptest.NewRecorder()
		handler.Register(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgEmailInvalidFormat)
	})

	t.Run("rejects missing fields before reaching the service", func(t *testing.T) {
		called := false
		creds := &MockCredentialService{
			RegisterFunc: func(ctx context.Context, req services.NewUser) (*models.Identity, error) {
				called = true
				return testIdentity(), nil
			},
		}
		handler := newAuthHandler(creds, nil, nil)

		body := validBody()
		delete(body, "email")
		req := NewTestRequest(t, "POST", "/api/auth/register", body)
		w := httptest.NewRecorder()
		handler.Register(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgEmailRequired)
		assert.False(t, called)
	})

	t.Run("rejects short password", func(t *testing.T) {
		handler := newAuthHandler(nil, nil, nil)

		body := validBody()
		body["password"] = "short"
		req := NewTestRequest(t, "POST", "/api/auth/register", body)
		w := httptest.NewRecorder()
		handler.Register(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgPasswordMinLength)
	})

	t.Run("rejects short username", func(t *testing.T) {
		handler := newAuthHandler(nil, nil, nil)

		body := validBody()
		body["username"] = "ab"
		req := NewTestRequest(t, "POST", "/api/auth/register", body)
		w := httptest.NewRecorder()
		handler.Register(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgUsernameMinLength)
	})

	t.Run("rejects invalid email format", func(t *testing.T) {
		handler := newAuthHandler(nil, nil, nil)

		body := validBody()
		body["email"] = "not-an-email"
		req := NewTestRequest(t, "POST", "/api/auth/register", body)
		w := httptest.NewRecorder()
		handler.Register(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgEmailInvalidFormat)
	})
}

func TestForgotPassword(t *testing.T) {
	t.Run("returns the same body whether or not the account exists", func(t *testing.T) {
		for name, initiate := range map[string]func(ctx context.Context, email string) error{
			"existing account": func(ctx context.Context, email string) error { return nil },
			"unknown account":  func(ctx context.Context, email string) error { return nil },
		} {
			t.Run(name, func(t *testing.T) {
				resets := &MockPasswordResetService{InitiateFunc: initiate}
				handler := newAuthHandler(nil, resets, nil)

				req := NewTestRequest(t, "POST", "/api/auth/forgot_password", map[string]string{
					"email": "traveler@example.com",
				})
				w := httptest.NewRecorder()
				handler.ForgotPassword(w, req)

				var resp MessageResponse
				AssertJSONResponse(t, w, http.StatusOK, &resp)
				assert.Equal(t, models.MsgForgotPasswordSuccess, resp.Message)
			})
		}
	})

	t.Run("rejects accounts without a password", func(t *testing.T) {
		resets := &MockPasswordResetService{
			InitiateFunc: func(ctx context.Context, email string) error {
				return models.ErrNoPassword
			},
		}
		handler := newAuthHandler(nil, resets, nil)

		req := NewTestRequest(t, "POST", "/api/auth/forgot_password", map[string]string{
			"email": "google-only@example.com",
		})
		w := httptest.NewRecorder()
		handler.ForgotPassword(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgForgotPasswordNoPassword)
	})

	t.Run("requires an email", func(t *testing.T) {
		handler := newAuthHandler(nil, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/forgot_password", map[string]string{})
		w := httptest.NewRecorder()
		handler.ForgotPassword(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgEmailRequired)
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("resets with a valid token", func(t *testing.T) {
		var gotToken, gotPassword string
		resets := &MockPasswordResetService{
			ResetFunc: func(ctx context.Context, token, newPassword string) error {
				gotToken = token
				gotPassword = newPassword
				return nil
			},
		}
		handler := newAuthHandler(nil, resets, nil)

		req := NewTestRequest(t, "POST", "/api/auth/reset_password", map[string]string{
			"token":    "sometoken",
			"password": "newpassword123",
		})
		w := httptest.NewRecorder()
		handler.ResetPassword(w, req)

		var resp MessageResponse
		AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, models.MsgResetPasswordSuccess, resp.Message)
		assert.Equal(t, "sometoken", gotToken)
		assert.Equal(t, "newpassword123", gotPassword)
	})

	t.Run("returns 400 for invalid or expired token", func(t *testing.T) {
		resets := &MockPasswordResetService{
			ResetFunc: func(ctx context.Context, token, newPassword string) error {
				return models.ErrInvalidResetToken
			},
		}
		handler := newAuthHandler(nil, resets, nil)

		req := NewTestRequest(t, "POST", "/api/auth/reset_password", map[string]string{
			"token":    "expired",
			"password": "newpassword123",
		})
		w := httptest.NewRecorder()
		handler.ResetPassword(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgResetPasswordInvalidToken)
	})

	t.Run("requires token and password", func(t *testing.T) {
		handler := newAuthHandler(nil, nil, nil)

		req := NewTestRequest(t, "POST", "/api/auth/reset_password", map[string]string{
			"token": "sometoken",
		})
		w := httptest.NewRecorder()
		handler.ResetPassword(w, req)

		AssertErrorResponse(t, w, http.StatusBadRequest, models.MsgResetPasswordFieldsMissing)
	})
}

func TestLogout(t *testing.T) {
	handler := newAuthHandler(nil, nil, nil)

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	cookie := sessionCookie(w)
	assert.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge, "cookie should be expired")
}

func TestSession(t *testing.T) {
	t.Run("returns the stored user", func(t *testing.T) {
		userID := primitive.NewObjectID()
		users := &MockUserFetcher{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				assert.Equal(t, userID.Hex(), id)
				return &models.User{
					ID:       userID,
					Username: "traveler",
					Email:    "traveler@example.com",
					Name:     "Renamed Traveler",
				}, nil
			},
		}
		handler := newAuthHandler(nil, nil, users)

		req := httptest.NewRequest("GET", "/api/auth/session", nil)
		req = WithSessionContext(req, userID.Hex(), "traveler", "traveler@example.com")
		w := httptest.NewRecorder()
		handler.Session(w, req)

		var resp SessionResponse
		AssertJSONResponse(t, w, http.StatusOK, &resp)
		require.NotNil(t, resp.User)
		assert.Equal(t, "Renamed Traveler", resp.User.Name, "session read reflects the stored document")
	})

	t.Run("clears cookie when the account is gone", func(t *testing.T) {
		users := &MockUserFetcher{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				return nil, models.ErrNotFound
			},
		}
		handler := newAuthHandler(nil, nil, users)

		req := httptest.NewRequest("GET", "/api/auth/session", nil)
		req = WithSessionContext(req, primitive.NewObjectID().Hex(), "traveler", "traveler@example.com")
		w := httptest.NewRecorder()
		handler.Session(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		cookie := sessionCookie(w)
		require.NotNil(t, cookie)
		assert.Equal(t, -1, cookie.MaxAge)
	})

	t.Run("rejects a request with no claims", func(t *testing.T) {
		handler := newAuthHandler(nil, nil, nil)

		req := httptest.NewRequest("GET", "/api/auth/session", nil)
		w := httptest.NewRecorder()
		handler.Session(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMode(t *testing.T) {
	handler := newAuthHandler(nil, nil, nil)

	t.Run("resolves a clean query", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/mode?mode=register", nil)
		w := httptest.NewRecorder()
		handler.Mode(w, req)

		var resp ModeResponse
		AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, "register", resp.Mode)
		assert.Equal(t, "mode=register", resp.Query)
		assert.False(t, resp.Rewrite)
		assert.Nil(t, resp.Notification)
	})

	t.Run("defaults to login and flags the rewrite", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/mode?mode=bogus", nil)
		w := httptest.NewRecorder()
		handler.Mode(w, req)

		var resp ModeResponse
		AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, "login", resp.Mode)
		assert.True(t, resp.Rewrite)
	})

	t.Run("surfaces a google error as a notification", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/mode?mode=login&error=AccessDenied", nil)
		w := httptest.NewRecorder()
		handler.Mode(w, req)

		var resp ModeResponse
		AssertJSONResponse(t, w, http.StatusOK, &resp)
		require.NotNil(t, resp.Notification)
		assert.Equal(t, authmode.SeverityError, resp.Notification.Severity)
		assert.True(t, resp.Rewrite, "error param must be stripped from the URL")
	})
}
