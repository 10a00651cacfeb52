package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/atlas-travel/atlas-auth/internal/authmode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogleHandler(service OAuthServiceInterface, states OAuthStateStore) *GoogleHandler {
	if service == nil {
		service = &MockOAuthService{}
	}
	if states == nil {
		states = &MockOAuthStateStore{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGoogleHandler(service, states, newTestTokenManager(), testCookieConfig(),
		"client-id", "client-secret", "https://app.example.com", logger)
}

// redirectErrorCode extracts the error param from the auth-page redirect
func redirectErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	loc := w.Header().Get("Location")
	require.NotEmpty(t, loc, "expected a redirect")
	u, err := url.Parse(loc)
	require.NoError(t, err)
	assert.Equal(t, "/auth", u.Path)
	return u.Query().Get("error")
}

func TestGoogleBegin(t *testing.T) {
	t.Run("saves a state and redirects to google", func(t *testing.T) {
		var savedState string
		var savedExpiry time.Time
		states := &MockOAuthStateStore{
			SaveFunc: func(ctx context.Context, state string, expiresAt time.Time) error {
				savedState = state
				savedExpiry = expiresAt
				return nil
			},
		}
		handler := newGoogleHandler(nil, states)

		req := httptest.NewRequest("GET", "/auth/google", nil)
		w := httptest.NewRecorder()
		handler.Begin(w, req)

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		require.NotEmpty(t, savedState)
		assert.WithinDuration(t, time.Now().UTC().Add(oauthStateTTL), savedExpiry, 5*time.Second)

		loc, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "accounts.google.com", loc.Host)
		assert.Equal(t, savedState, loc.Query().Get("state"))
		assert.Equal(t, "client-id", loc.Query().Get("client_id"))
		assert.Equal(t, "https://app.example.com/auth/google/callback", loc.Query().Get("redirect_uri"))
	})

	t.Run("redirects to the auth page when the state cannot be saved", func(t *testing.T) {
		states := &MockOAuthStateStore{
			SaveFunc: func(ctx context.Context, state string, expiresAt time.Time) error {
				return assert.AnError
			},
		}
		handler := newGoogleHandler(nil, states)

		req := httptest.NewRequest("GET", "/auth/google", nil)
		w := httptest.NewRecorder()
		handler.Begin(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "Default", redirectErrorCode(t, w))
	})
}

func TestGoogleCallback(t *testing.T) {
	t.Run("maps a declined consent to AccessDenied", func(t *testing.T) {
		handler := newGoogleHandler(nil, nil)

		req := httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil)
		w := httptest.NewRecorder()
		handler.Callback(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, authmode.GoogleErrAccessDenied, redirectErrorCode(t, w))
	})

	t.Run("maps other provider errors to OAuthCallback", func(t *testing.T) {
		handler := newGoogleHandler(nil, nil)

		req := httptest.NewRequest("GET", "/auth/google/callback?error=server_error", nil)
		w := httptest.NewRecorder()
		handler.Callback(w, req)

		assert.Equal(t, authmode.GoogleErrOAuthCallback, redirectErrorCode(t, w))
	})

	t.Run("rejects a callback with no state", func(t *testing.T) {
		handler := newGoogleHandler(nil, nil)

		req := httptest.NewRequest("GET", "/auth/google/callback?code=abc", nil)
		w := httptest.NewRecorder()
		handler.Callback(w, req)

		assert.Equal(t, authmode.GoogleErrVerification, redirectErrorCode(t, w))
	})

	t.Run("rejects an unknown or replayed state", func(t *testing.T) {
		consumed := ""
		states := &MockOAuthStateStore{
			ConsumeFunc: func(ctx context.Context, state string) error {
				consumed = state
				return assert.AnError
			},
		}
		handler := newGoogleHandler(nil, states)

		req := httptest.NewRequest("GET", "/auth/google/callback?state=stale&code=abc", nil)
		w := httptest.NewRecorder()
		handler.Callback(w, req)

		assert.Equal(t, "stale", consumed)
		assert.Equal(t, authmode.GoogleErrVerification, redirectErrorCode(t, w))
	})

	t.Run("rejects a callback with no code", func(t *testing.T) {
		states := &MockOAuthStateStore{
			ConsumeFunc: func(ctx context.Context, state string) error { return nil },
		}
		handler := newGoogleHandler(nil, states)

		req := httptest.NewRequest("GET", "/auth/google/callback?state=good", nil)
		w := httptest.NewRecorder()
		handler.Callback(w, req)

		assert.Equal(t, authmode.GoogleErrOAuthCallback, redirectErrorCode(t, w))
	})
}
