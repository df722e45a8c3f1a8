// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/feedback-links/cache"
	"github.com/danielhkuo/feedback-links/cliparse"
	"github.com/danielhkuo/feedback-links/models"
	"github.com/danielhkuo/feedback-links/testutil"
)

func newTestHandler(t *testing.T, cfg cliparse.Config) http.Handler {
	t.Helper()
	s, _ := testutil.NewTestStore(testutil.SetupTestDB(t))
	return NewHandler(s, cache.NewMemory(), cfg)
}

func do(h http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
	return w
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestHandler(t, testutil.GetTestConfig())

	w := do(h, "GET", "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = do(h, "GET", "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRootEndpoint(t *testing.T) {
	h := newTestHandler(t, testutil.GetTestConfig())

	w := do(h, "GET", "/", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Banner, w.Body.String())
}

func TestAdminRoutesRequireToken(t *testing.T) {
	cfg := testutil.GetTestConfig()
	h := newTestHandler(t, cfg)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/api/feedback-links"},
		{"GET", "/api/feedback-links"},
		{"DELETE", "/api/feedback-links/some-id"},
		{"GET", "/api/feedback"},
		{"GET", "/api/feedback/stats"},
		{"GET", "/api/feedback/export"},
		{"POST", "/api/settings"},
		{"GET", "/api/settings/history"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := do(h, tc.method, tc.path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = do(h, tc.method, tc.path, nil, map[string]string{"Authorization": "Bearer forged"})
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = do(h, tc.method, tc.path, nil, testutil.AdminHeaders(t, cfg))
			assert.NotEqual(t, http.StatusUnauthorized, w.Code)
			assert.NotEqual(t, http.StatusMethodNotAllowed, w.Code)
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	h := newTestHandler(t, testutil.GetTestConfig())

	testCases := []struct {
		method string
		path   string
		body   interface{}
		status int
	}{
		{"GET", "/api/settings", nil, http.StatusOK},
		{"GET", "/api/feedback-links/missing", nil, http.StatusNotFound},
		{"POST", "/api/feedback", models.SubmitFeedbackRequest{}, http.StatusBadRequest},
		{"POST", "/api/admin/login", models.CredentialsRequest{Username: "a", Password: "b"}, http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := do(h, tc.method, tc.path, tc.body, nil)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, testutil.GetTestConfig())

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"PUT", "/api/settings"},
		{"DELETE", "/api/feedback"},
		{"PATCH", "/api/feedback-links/some-id"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := do(h, tc.method, tc.path, nil, nil)
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		})
	}
}

func TestUnknownAPIPath(t *testing.T) {
	h := newTestHandler(t, testutil.GetTestConfig())

	w := do(h, "GET", "/api/nothing-here", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", testutil.DecodeData(t, w, nil).Error)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, testutil.GetTestConfig())

	w := do(h, "OPTIONS", "/api/feedback", nil, map[string]string{"Origin": "https://feedback.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://feedback.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit(t *testing.T) {
	h := newTestHandler(t, testutil.GetTestConfig())

	body := `{"rating":5,"refId":"x","comment":"` + strings.Repeat("a", 2<<20) + `"}`
	w := do(h, "POST", "/api/feedback", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid JSON body", testutil.DecodeData(t, w, nil).Error)
}

func TestStaticBundle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))

	cfg := testutil.GetTestConfig()
	cfg.StaticDir = dir
	h := newTestHandler(t, cfg)

	w := do(h, "GET", "/?ref=abc", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>app</html>", w.Body.String())

	w = do(h, "GET", "/admin", nil, nil)
	assert.Equal(t, "<html>app</html>", w.Body.String())

	w = do(h, "GET", "/api/nothing-here", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(h, "GET", "/api/health", nil, nil)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// TestEndToEnd runs the documented customer flow through the full stack:
// admin setup, login, link creation, submission, and lookup.
func TestEndToEnd(t *testing.T) {
	h := newTestHandler(t, testutil.GetTestConfig())

	creds := models.CredentialsRequest{Username: "admin", Password: "first-run-pass"}
	w := do(h, "POST", "/api/admin-credentials", creds, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(h, "POST", "/api/admin/login", creds, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login models.LoginResponse
	testutil.DecodeData(t, w, &login)
	admin := map[string]string{"Authorization": "Bearer " + login.Token}

	w = do(h, "POST", "/api/feedback-links", models.CreateLinkRequest{
		CustomerNumber: "K-1",
		Concern:        "Rechnung",
		FirstName:      "Max",
		LastName:       "Mustermann",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var link models.FeedbackLink
	testutil.DecodeData(t, w, &link)
	require.NotEmpty(t, link.ID)
	assert.Equal(t, "https://feedback.home-ki.eu/?ref="+link.ID, link.FeedbackURL)

	five := 5
	w = do(h, "POST", "/api/feedback", models.SubmitFeedbackRequest{Rating: &five, RefID: link.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = do(h, "GET", "/api/feedback-links/"+link.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.FeedbackLink
	testutil.DecodeData(t, w, &got)
	assert.True(t, got.Used)

	w = do(h, "GET", "/api/feedback/export?format=csv", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 2, "header plus one row")

	// Once credentials exist, changing them needs the token
	w = do(h, "POST", "/api/admin-credentials", models.CredentialsRequest{Username: "admin", Password: "hijacked-pass"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
