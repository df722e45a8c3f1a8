// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/feedback-links/models"
	"github.com/danielhkuo/feedback-links/testutil"
)

// TestFullFeedbackWorkflow tests the complete end-to-end workflow:
// 1. Admin configures settings
// 2. Admin creates a link
// 3. Customer opens the link
// 4. Customer submits feedback
// 5. Link is marked used and cannot be reused or deleted
// 6. Feedback shows up in the dashboard list and stats
func TestFullFeedbackWorkflow(t *testing.T) {
	env := newTestEnv(t)

	// Step 1: Configure settings
	settingsBody := map[string]interface{}{
		"domains":       []string{"https://feedback.example.com"},
		"concern_texts": map[string]string{"Rechnung": "Wie zufrieden sind Sie mit der Rechnung?"},
		"concern_types": []string{"Rechnung", "Sonstiges"},
	}
	w := serve(env.settings.SaveSettings, "POST", "/api/settings", settingsBody, nil)
	require.Equal(t, http.StatusOK, w.Code, "Step 1 - save settings: %s", w.Body.String())

	// Step 2: Create a link
	w = serve(env.links.CreateLink, "POST", "/api/feedback-links", validLinkRequest(), nil)
	require.Equal(t, http.StatusCreated, w.Code, "Step 2 - create link: %s", w.Body.String())

	var created models.FeedbackLink
	testutil.DecodeData(t, w, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "https://feedback.example.com/?ref="+created.ID, created.FeedbackURL)
	assert.Equal(t, "Wie zufrieden sind Sie mit der Rechnung?", created.ConcernText)
	t.Logf("Step 2 - Created link: %s", created.ID)

	// Step 3: Customer resolves the link
	path := map[string]string{"id": created.ID}
	w = serve(env.links.GetLink, "GET", "/api/feedback-links/"+created.ID, nil, path)
	require.Equal(t, http.StatusOK, w.Code, "Step 3 - get link: %s", w.Body.String())

	var opened models.FeedbackLink
	testutil.DecodeData(t, w, &opened)
	assert.False(t, opened.Used)
	assert.Equal(t, created.ConcernText, opened.ConcernText)

	// Step 4: Submit feedback
	w = serve(env.feedback.SubmitFeedback, "POST", "/api/feedback",
		models.SubmitFeedbackRequest{Rating: rating(5), RefID: created.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code, "Step 4 - submit: %s", w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	// Step 5: Link is used
	w = serve(env.links.GetLink, "GET", "/api/feedback-links/"+created.ID, nil, path)
	testutil.DecodeData(t, w, &opened)
	assert.True(t, opened.Used)

	w = serve(env.feedback.SubmitFeedback, "POST", "/api/feedback",
		models.SubmitFeedbackRequest{Rating: rating(1), RefID: created.ID}, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "Step 5 - resubmission must be refused")

	w = serve(env.links.DeleteLink, "DELETE", "/api/feedback-links/"+created.ID, nil, path)
	assert.Equal(t, http.StatusBadRequest, w.Code, "Step 5 - delete must be refused")

	// Step 6: Dashboard
	w = serve(env.feedback.ListFeedback, "GET", "/api/feedback", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items []models.Feedback
	testutil.DecodeData(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].RefID)
	assert.Equal(t, "K-1", items[0].Customer)
	assert.Equal(t, "Max Mustermann", items[0].CustomerName)
	assert.Equal(t, "Rechnung", items[0].Concern)

	w = serve(env.feedback.GetStats, "GET", "/api/feedback/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.FeedbackStats
	testutil.DecodeData(t, w, &stats)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, 5.0, stats.AverageRating)
}
