// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/feedback-links/auth"
	"github.com/danielhkuo/feedback-links/cache"
	"github.com/danielhkuo/feedback-links/cliparse"
	"github.com/danielhkuo/feedback-links/handlers"
	"github.com/danielhkuo/feedback-links/middleware"
	"github.com/danielhkuo/feedback-links/store"
	"github.com/danielhkuo/feedback-links/web"
)

// Banner is served at GET / when no static bundle is configured
const Banner = "feedback-links API v1"

func NewRouter(s *store.Store, c cache.Cache, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	admin := middleware.RequireAdmin(issuer)
	logged := middleware.WithLogging

	// Initialize handlers
	linkHandler := handlers.NewLinkHandler(s, c, cfg)
	feedbackHandler := handlers.NewFeedbackHandler(s, c, cfg)
	settingsHandler := handlers.NewSettingsHandler(s, c, cfg)
	adminHandler := handlers.NewAdminHandler(s, issuer, cfg)

	// Health checks
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /api/health", handlers.Health)

	// Feedback links (lookup is public for the customer page)
	mux.HandleFunc("POST /api/feedback-links", logged(admin(linkHandler.CreateLink)))
	mux.HandleFunc("GET /api/feedback-links", logged(admin(linkHandler.ListLinks)))
	mux.HandleFunc("GET /api/feedback-links/{id}", logged(linkHandler.GetLink))
	mux.HandleFunc("DELETE /api/feedback-links/{id}", logged(admin(linkHandler.DeleteLink)))

	// Feedback (submission is public)
	mux.HandleFunc("POST /api/feedback", logged(feedbackHandler.SubmitFeedback))
	mux.HandleFunc("GET /api/feedback", logged(admin(feedbackHandler.ListFeedback)))
	mux.HandleFunc("GET /api/feedback/stats", logged(admin(feedbackHandler.GetStats)))
	mux.HandleFunc("GET /api/feedback/export", logged(admin(feedbackHandler.ExportFeedback)))

	// Settings (read is public for concern prompts)
	mux.HandleFunc("GET /api/settings", logged(settingsHandler.GetSettings))
	mux.HandleFunc("POST /api/settings", logged(admin(settingsHandler.SaveSettings)))
	mux.HandleFunc("GET /api/settings/history", logged(admin(settingsHandler.GetHistory)))

	// Admin accounts
	mux.HandleFunc("POST /api/admin/login", logged(adminHandler.Login))
	mux.HandleFunc("POST /api/admin-credentials", logged(adminHandler.UpdateCredentials))

	// Unknown API paths never fall through to the app bundle
	mux.HandleFunc("GET /api/", logged(func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
	}))

	// Root endpoint
	if cfg.StaticDir != "" {
		mux.Handle("GET /", web.NewSPA(cfg.StaticDir))
	} else {
		mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(Banner))
		})
	}

	return mux
}

// NewHandler wraps the router with the server-wide middleware
func NewHandler(s *store.Store, c cache.Cache, cfg cliparse.Config) http.Handler {
	return middleware.CORS(cfg.CORSOrigin)(middleware.LimitBody(NewRouter(s, c, cfg)))
}
