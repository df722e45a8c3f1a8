// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/feedback-links/auth"
	"github.com/danielhkuo/feedback-links/cliparse"
	"github.com/danielhkuo/feedback-links/middleware"
	"github.com/danielhkuo/feedback-links/models"
	"github.com/danielhkuo/feedback-links/store"
)

const minPasswordLength = 8

type AdminHandler struct {
	store  *store.Store
	issuer *auth.TokenIssuer
	cfg    cliparse.Config
}

func NewAdminHandler(s *store.Store, issuer *auth.TokenIssuer, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{store: s, issuer: issuer, cfg: cfg}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	creds, err := h.store.GetCredentials(r.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn().Str("username", username).Msg("login for unknown admin")
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to query credentials")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	if err := auth.CheckPassword(creds.PasswordHash, req.Password); err != nil {
		log.Warn().Str("username", username).Msg("login with wrong password")
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, expiresAt, err := h.issuer.Issue(username)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue admin token")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	log.Info().Str("username", username).Msg("admin logged in")

	middleware.Success(w, http.StatusOK, models.LoginResponse{Token: token, ExpiresAt: expiresAt})
}

// UpdateCredentials handles POST /api/admin-credentials.
// Without any stored credentials the call is open so a fresh install can
// be set up; afterwards it needs an admin token.
func (h *AdminHandler) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountCredentials(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to count credentials")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}
	_, authErr := middleware.Authenticate(r, h.issuer)
	authenticated := authErr == nil
	if count > 0 && !authenticated {
		unauthorized(w)
		return
	}

	var req models.CredentialsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to update credentials")
		return
	}

	if authenticated {
		err = h.store.UpsertCredentials(r.Context(), username, hash)
	} else {
		err = h.store.CreateFirstCredentials(r.Context(), username, hash)
	}
	if errors.Is(err, store.ErrCredentialsExist) {
		log.Warn().Str("username", username).Msg("first-run setup lost to an existing account")
		unauthorized(w)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("failed to update credentials")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	log.Info().Str("username", username).Bool("first_run", !authenticated).Msg("credentials updated")

	middleware.Success(w, http.StatusOK, nil)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	middleware.ErrorResponse(w, http.StatusUnauthorized, "admin authentication required")
}

// SeedAdmin stores the configured bootstrap admin when no credentials exist yet
func (h *AdminHandler) SeedAdmin(ctx context.Context) error {
	if h.cfg.AdminPassword == "" {
		return nil
	}

	count, err := h.store.CountCredentials(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(h.cfg.AdminPassword)
	if err != nil {
		return err
	}
	err = h.store.CreateFirstCredentials(ctx, h.cfg.AdminUsername, hash)
	if errors.Is(err, store.ErrCredentialsExist) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().Str("username", h.cfg.AdminUsername).Msg("seeded admin credentials")
	return nil
}
