package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/atlas-travel/atlas-auth/internal/auth"
	"github.com/atlas-travel/atlas-auth/internal/authmode"
	"github.com/atlas-travel/atlas-auth/internal/models"
	"github.com/atlas-travel/atlas-auth/internal/services"
	pkgauth "github.com/atlas-travel/atlas-auth/pkg/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// oauthStateTTL bounds how long a consent round trip may take.
const oauthStateTTL = 10 * time.Minute

// OAuthServiceInterface resolves a Google profile to a local account
type OAuthServiceInterface interface {
	FindOrCreate(ctx context.Context, profile services.GoogleProfile) (*models.Identity, error)
}

// OAuthStateStore persists one-time CSRF states for the OAuth round trip
type OAuthStateStore interface {
	Save(ctx context.Context, state string, expiresAt time.Time) error
	Consume(ctx context.Context, state string) error
}

// GoogleHandler drives the Google sign-in flow
type GoogleHandler struct {
	service   OAuthServiceInterface
	states    OAuthStateStore
	tm        *auth.TokenManager
	cookieCfg auth.CookieConfig
	logger    *slog.Logger

	clientID     string
	clientSecret string
	redirectURL  string
}

// NewGoogleHandler creates a new GoogleHandler. baseURL is the public
// origin the callback is registered under.
func NewGoogleHandler(service OAuthServiceInterface, states OAuthStateStore, tm *auth.TokenManager, cookieCfg auth.CookieConfig, clientID, clientSecret, baseURL string, logger *slog.Logger) *GoogleHandler {
	return &GoogleHandler{
		service:      service,
		states:       states,
		tm:           tm,
		cookieCfg:    cookieCfg,
		logger:       logger,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  baseURL + "/auth/google/callback",
	}
}

func (h *GoogleHandler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.clientID,
		ClientSecret: h.clientSecret,
		RedirectURL:  h.redirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// Begin redirects the browser to Google's consent screen
func (h *GoogleHandler) Begin(w http.ResponseWriter, r *http.Request) {
	state, err := pkgauth.GenerateSecureToken()
	if err != nil {
		h.logger.Error("failed to generate oauth state", slog.Any("error", err))
		h.redirectWithError(w, r, "Default")
		return
	}

	expiresAt := time.Now().UTC().Add(oauthStateTTL)
	if err := h.states.Save(r.Context(), state, expiresAt); err != nil {
		h.logger.Error("failed to save oauth state", slog.Any("error", err))
		h.redirectWithError(w, r, "Default")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback handles the redirect back from Google: it validates the state,
// exchanges the code, fetches the profile, and signs the user in.
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Info("google sign-in declined",
			slog.String("error", errParam),
			slog.String("description", query.Get("error_description")))
		code := authmode.GoogleErrOAuthCallback
		if errParam == "access_denied" {
			code = authmode.GoogleErrAccessDenied
		}
		h.redirectWithError(w, r, code)
		return
	}

	state := query.Get("state")
	if state == "" {
		h.logger.Warn("oauth callback missing state")
		h.redirectWithError(w, r, authmode.GoogleErrVerification)
		return
	}
	if err := h.states.Consume(ctx, state); err != nil {
		h.logger.Warn("oauth state invalid or expired", slog.Any("error", err))
		h.redirectWithError(w, r, authmode.GoogleErrVerification)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.logger.Warn("oauth callback missing code")
		h.redirectWithError(w, r, authmode.GoogleErrOAuthCallback)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.logger.Error("failed to exchange oauth code", slog.Any("error", err))
		h.redirectWithError(w, r, authmode.GoogleErrOAuthCallback)
		return
	}

	profile, err := fetchGoogleProfile(ctx, token)
	if err != nil {
		h.logger.Error("failed to fetch google profile", slog.Any("error", err))
		h.redirectWithError(w, r, authmode.GoogleErrVerification)
		return
	}

	identity, err := h.service.FindOrCreate(ctx, *profile)
	if err != nil {
		h.logger.Error("failed to resolve google account", slog.Any("error", err))
		h.redirectWithError(w, r, "Default")
		return
	}

	sessionToken, err := h.tm.GenerateSessionToken(identity.ID, identity.Username, identity.Email)
	if err != nil {
		h.logger.Error("failed to issue session", slog.Any("error", err))
		h.redirectWithError(w, r, "Default")
		return
	}
	auth.SetSessionCookie(w, sessionToken, int(h.tm.SessionExpiry().Seconds()), h.cookieCfg)

	h.logger.Info("user signed in via google", slog.String("user_id", identity.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// redirectWithError sends the browser back to the auth page with an error
// code the mode resolver maps to a notification.
func (h *GoogleHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	dest := "/auth?mode=login&error=" + url.QueryEscape(code)
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// fetchGoogleProfile retrieves the signed-in user from Google's userinfo
// endpoint.
func fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (*services.GoogleProfile, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &services.GoogleProfile{
		Email: info.Email,
		Name:  info.Name,
		Sub:   info.ID,
	}, nil
}
