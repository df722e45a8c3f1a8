// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/feedback-links/auth"
	"github.com/danielhkuo/feedback-links/cache"
	"github.com/danielhkuo/feedback-links/cliparse"
	"github.com/danielhkuo/feedback-links/middleware"
	"github.com/danielhkuo/feedback-links/models"
	"github.com/danielhkuo/feedback-links/store"
)

type LinkHandler struct {
	store *store.Store
	cache cache.Cache
	cfg   cliparse.Config
}

func NewLinkHandler(s *store.Store, c cache.Cache, cfg cliparse.Config) *LinkHandler {
	return &LinkHandler{store: s, cache: c, cfg: cfg}
}

// CreateLink handles POST /api/feedback-links
func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLinkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.CustomerNumber = strings.TrimSpace(req.CustomerNumber)
	req.Concern = strings.TrimSpace(req.Concern)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	// Validate input
	for _, field := range []struct{ name, value string }{
		{"customerNumber", req.CustomerNumber},
		{"concern", req.Concern},
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
	} {
		if field.value == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, field.name+" is required")
			return
		}
	}

	settings, err := loadSettings(r.Context(), h.store, h.cache)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}
	if !settings.HasConcern(req.Concern) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "concern must be one of the configured concern types")
		return
	}

	id := auth.GenerateID()
	feedbackURL := h.feedbackURL(settings, id)
	link := models.FeedbackLink{
		ID:             id,
		CustomerNumber: req.CustomerNumber,
		Concern:        req.Concern,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		FeedbackURL:    feedbackURL,
		QRCodeURL:      h.qrCodeURL(feedbackURL),
	}

	if err := h.store.CreateLink(r.Context(), &link); err != nil {
		log.Error().Err(err).Str("link_id", id).Msg("failed to insert feedback link")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}
	link.ConcernText = settings.ConcernText(link.Concern)

	log.Info().Str("link_id", id).Str("customer", link.CustomerNumber).Str("concern", link.Concern).Msg("link created")

	middleware.Success(w, http.StatusCreated, link)
}

// GetLink handles GET /api/feedback-links/{id}
func (h *LinkHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	link, err := h.store.GetLink(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "feedback link not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("link_id", id).Msg("failed to query feedback link")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	settings, err := loadSettings(r.Context(), h.store, h.cache)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}
	link.ConcernText = settings.ConcernText(link.Concern)

	middleware.Success(w, http.StatusOK, link)
}

// ListLinks handles GET /api/feedback-links
func (h *LinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.store.ListLinks(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list feedback links")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	middleware.Success(w, http.StatusOK, links)
}

// DeleteLink handles DELETE /api/feedback-links/{id}
func (h *LinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	err := h.store.DeleteLink(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "feedback link not found")
		return
	case errors.Is(err, store.ErrFeedbackExists):
		middleware.ErrorResponse(w, http.StatusBadRequest, store.ErrFeedbackExists.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("link_id", id).Msg("failed to delete feedback link")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	log.Info().Str("link_id", id).Msg("link deleted")

	middleware.Success(w, http.StatusOK, nil)
}

// feedbackURL is "<first configured domain>/?ref=<id>"
func (h *LinkHandler) feedbackURL(settings models.Settings, id string) string {
	base := h.cfg.BaseURL
	if len(settings.Domains) > 0 && strings.TrimSpace(settings.Domains[0]) != "" {
		base = settings.Domains[0]
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return base + "/?ref=" + url.QueryEscape(id)
}

// qrCodeURL points the external QR image service at feedbackURL
func (h *LinkHandler) qrCodeURL(feedbackURL string) string {
	sep := "?"
	if strings.Contains(h.cfg.QRServiceURL, "?") {
		sep = "&"
	}
	return h.cfg.QRServiceURL + sep + "size=" + url.QueryEscape(h.cfg.QRSize) + "&data=" + url.QueryEscape(feedbackURL)
}
