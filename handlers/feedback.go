// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/feedback-links/auth"
	"github.com/danielhkuo/feedback-links/cache"
	"github.com/danielhkuo/feedback-links/cliparse"
	"github.com/danielhkuo/feedback-links/export"
	"github.com/danielhkuo/feedback-links/middleware"
	"github.com/danielhkuo/feedback-links/models"
	"github.com/danielhkuo/feedback-links/store"
)

const (
	feedbackRateWindow = time.Hour
	maxCommentLength   = 2000
	statsTimelineDays  = 7
)

type FeedbackHandler struct {
	store *store.Store
	cache cache.Cache
	cfg   cliparse.Config
	now   func() time.Time
	loc   *time.Location
}

func NewFeedbackHandler(s *store.Store, c cache.Cache, cfg cliparse.Config) *FeedbackHandler {
	return &FeedbackHandler{store: s, cache: c, cfg: cfg, now: time.Now, loc: time.Local}
}

// SubmitFeedback handles POST /api/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitFeedbackRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Validate input
	req.RefID = strings.TrimSpace(req.RefID)
	if req.Rating == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rating is required")
		return
	}
	if *req.Rating < models.MinRating || *req.Rating > models.MaxRating {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	if req.RefID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "refId is required")
		return
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if len([]rune(req.Comment)) > maxCommentLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "comment is too long")
		return
	}

	ip := middleware.GetClientIP(r, h.cfg.TrustedProxies)
	if allowed, retryAfter := h.allowRequest(r, ip); !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	fb := models.Feedback{
		ID:           auth.GenerateID(),
		Rating:       *req.Rating,
		Comment:      req.Comment,
		Customer:     strings.TrimSpace(req.Customer),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Concern:      strings.TrimSpace(req.Concern),
		RefID:        req.RefID,
	}

	err := h.store.SubmitFeedback(r.Context(), &fb)
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "feedback link not found")
		return
	case errors.Is(err, store.ErrLinkUsed):
		middleware.ErrorResponse(w, http.StatusConflict, store.ErrLinkUsed.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("link_id", fb.RefID).Msg("failed to submit feedback")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	log.Info().Str("feedback_id", fb.ID).Str("link_id", fb.RefID).Int("rating", fb.Rating).Msg("feedback submitted")

	middleware.Success(w, http.StatusCreated, nil)
}

// allowRequest counts submissions per client IP in a fixed window.
// Cache failures let the request through.
func (h *FeedbackHandler) allowRequest(r *http.Request, ip string) (bool, time.Duration) {
	if h.cfg.FeedbackRateLimit <= 0 {
		return true, 0
	}

	count, ttl, err := h.cache.Incr(r.Context(), "feedback:rate:"+ip, feedbackRateWindow)
	if err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("rate limit check failed")
		return true, 0
	}
	if count > int64(h.cfg.FeedbackRateLimit) {
		if ttl <= 0 {
			ttl = feedbackRateWindow
		}
		return false, ttl
	}
	return true, 0
}

// ListFeedback handles GET /api/feedback
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.store.ListFeedback(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list feedback")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	middleware.Success(w, http.StatusOK, items)
}

// GetStats handles GET /api/feedback/stats
func (h *FeedbackHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.store.FeedbackStats(r.Context(), filter, statsTimelineDays, h.loc)
	if err != nil {
		log.Error().Err(err).Msg("failed to aggregate feedback")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	middleware.Success(w, http.StatusOK, stats)
}

// ExportFeedback handles GET /api/feedback/export
func (h *FeedbackHandler) ExportFeedback(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = models.FormatCSV
	}
	contentType, err := export.ContentType(format)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}

	filter, err := h.parseFilter(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.store.ListFeedback(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list feedback")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "database error", err)
		return
	}

	// Render fully before writing headers so failures still get a JSON error
	var buf bytes.Buffer
	if err := export.Write(&buf, format, items, h.loc); err != nil {
		log.Error().Err(err).Str("format", format).Msg("failed to render export")
		middleware.ErrorWithDetails(w, http.StatusInternalServerError, "export failed", err)
		return
	}

	filename := export.Filename(format, h.now().In(h.loc))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn().Err(err).Msg("failed to write export")
	}
}

// parseFilter reads rating, q, and period query parameters.
// today starts at local midnight; week and month are rolling 7 and 30 days.
func (h *FeedbackHandler) parseFilter(r *http.Request) (store.FeedbackFilter, error) {
	query := r.URL.Query()
	filter := store.FeedbackFilter{
		Rating: strings.TrimSpace(query.Get("rating")),
		Query:  query.Get("q"),
	}
	if filter.Rating == "all" {
		filter.Rating = ""
	}
	if !store.ValidRatingFilter(filter.Rating) {
		return store.FeedbackFilter{}, errors.New("rating must be low, medium, high, or 1-5")
	}

	now := h.now().In(h.loc)
	var since time.Time
	switch query.Get("period") {
	case "", models.PeriodAll:
		return filter, nil
	case models.PeriodToday:
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	case models.PeriodWeek:
		since = now.AddDate(0, 0, -7)
	case models.PeriodMonth:
		since = now.AddDate(0, 0, -30)
	default:
		return store.FeedbackFilter{}, errors.New("period must be today, week, month, or all")
	}
	filter.Since = &since

	return filter, nil
}
