package routes

import (
	"github.com/atlas-travel/atlas-auth/internal/auth"
	"github.com/atlas-travel/atlas-auth/internal/handlers"
	"github.com/atlas-travel/atlas-auth/internal/web"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	googleHandler *handlers.GoogleHandler,
	pageHandler *web.PageHandler,
	tokenManager *auth.TokenManager,
) {
	// JSON API
	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/forgot_password", authHandler.ForgotPassword)
		r.Post("/reset_password", authHandler.ResetPassword)
		r.Post("/logout", authHandler.Logout)
		r.Get("/mode", authHandler.Mode)

		r.With(auth.RequireSession(tokenManager)).Get("/session", authHandler.Session)
	})

	// Auth page and its assets. The page always answers 200; URL cleanup
	// happens client side.
	router.Get("/auth", pageHandler.AuthPage)
	router.Handle("/static/*", web.StaticHandler())

	// Google sign-in round trip
	if googleHandler != nil {
		router.Get("/auth/google", googleHandler.Begin)
		router.Get("/auth/google/callback", googleHandler.Callback)
	}
}
