// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/feedback-links/cache"
	"github.com/danielhkuo/feedback-links/cliparse"
	"github.com/danielhkuo/feedback-links/middleware"
	"github.com/danielhkuo/feedback-links/models"
	"github.com/danielhkuo/feedback-links/store"
)

const (
	settingsCacheKey = "settings:current"
	settingsCacheTTL = 5 * time.Minute

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// loadSettings returns the current settings, the defaults when none were
// saved. The cache is consulted first; cache failures fall through to the store.
func loadSettings(ctx context.Context, s *store.Store, c cache.Cache) (models.Settings, error) {
	if data, err := c.Get(ctx, settingsCacheKey); err == nil {
		var settings models.Settings
		if err := json.Unmarshal(data, &settings); err == nil {
			return settings, nil
		}
		log.Warn().Msg("discarding undecodable cached settings")
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Msg("settings cache read failed")
	}

	settings, found, err := s.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if !found {
		settings = models.DefaultSettings()
	}

	if data, err := json.Marshal(settings); err == nil {
		if err := c.Set(ctx, settingsCacheKey, data, settingsCacheTTL); err != nil {
			log.Warn().Err(err).Msg("settings cache write failed")
		}
	}

	return settings, nil
}

type SettingsHandler struct {
	store *store.Store
	cache cache.Cache
	cfg   cliparse.Config
}

func NewSettingsHandler(s *store.Store, c cache.Cache, cfg cliparse.Config) *SettingsHandler {
	return &SettingsHandler{store: s, cache: c, cfg: cfg}
}

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := loadSettings(r.Context(), h.store, h.cache)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	middleware.Success(w, http.StatusOK, settings)
}

// SaveSettings handles POST /api/settings
func (h *SettingsHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req models.SaveSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	settings, err := validateSettings(req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.store.SaveSettings(r.Context(), settings)
	if err != nil {
		log.Error().Err(err).Msg("failed to save settings")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	if err := h.cache.Delete(r.Context(), settingsCacheKey); err != nil {
		log.Warn().Err(err).Msg("settings cache invalidation failed")
	}

	admin, _ := middleware.AdminFromContext(r.Context())
	log.Info().
		Str("admin", admin).
		Int("domains", len(saved.Domains)).
		Int("concern_types", len(saved.ConcernTypes)).
		Msg("settings saved")

	middleware.Success(w, http.StatusOK, saved)
}

// GetHistory handles GET /api/settings/history
func (h *SettingsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := uint(defaultHistoryLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = uint(min(n, maxHistoryLimit))
	}

	revisions, err := h.store.ListSettingsHistory(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings history")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	middleware.Success(w, http.StatusOK, revisions)
}

func validateSettings(req models.SaveSettingsRequest) (models.Settings, error) {
	switch {
	case req.Domains == nil:
		return models.Settings{}, errors.New("domains is required")
	case req.ConcernTexts == nil:
		return models.Settings{}, errors.New("concern_texts is required")
	case req.ConcernTypes == nil:
		return models.Settings{}, errors.New("concern_types is required")
	}

	domains := make([]string, 0, len(*req.Domains))
	for _, d := range *req.Domains {
		d = strings.TrimSpace(d)
		u, err := url.Parse(d)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return models.Settings{}, fmt.Errorf("invalid domain: %q", d)
		}
		domains = append(domains, d)
	}
	if len(domains) == 0 {
		return models.Settings{}, errors.New("domains must not be empty")
	}

	types := make([]string, 0, len(*req.ConcernTypes))
	seen := make(map[string]bool, len(*req.ConcernTypes))
	for _, ct := range *req.ConcernTypes {
		ct = strings.TrimSpace(ct)
		if ct == "" {
			return models.Settings{}, errors.New("concern types must not be blank")
		}
		if seen[ct] {
			return models.Settings{}, fmt.Errorf("duplicate concern type: %q", ct)
		}
		seen[ct] = true
		types = append(types, ct)
	}
	if len(types) == 0 {
		return models.Settings{}, errors.New("concern_types must not be empty")
	}

	texts := make(map[string]string, len(*req.ConcernTexts))
	for k, v := range *req.ConcernTexts {
		texts[strings.TrimSpace(k)] = v
	}

	return models.Settings{
		Domains:      domains,
		ConcernTexts: texts,
		ConcernTypes: types,
	}, nil
}
