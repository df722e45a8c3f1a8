// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/feedback-links/auth"
	"github.com/danielhkuo/feedback-links/cache"
	"github.com/danielhkuo/feedback-links/cliparse"
	"github.com/danielhkuo/feedback-links/store"
	"github.com/danielhkuo/feedback-links/testutil"
)

// testEnv wires every handler over one in-memory database
type testEnv struct {
	store    *store.Store
	clock    *testutil.Clock
	cache    *cache.Memory
	cfg      cliparse.Config
	links    *LinkHandler
	feedback *FeedbackHandler
	settings *SettingsHandler
	admin    *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, testutil.GetTestConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg cliparse.Config) *testEnv {
	t.Helper()

	s, clock := testutil.NewTestStore(testutil.SetupTestDB(t))
	c := cache.NewMemory()
	t.Cleanup(func() { c.Close() })

	env := &testEnv{
		store:    s,
		clock:    clock,
		cache:    c,
		cfg:      cfg,
		links:    NewLinkHandler(s, c, cfg),
		feedback: NewFeedbackHandler(s, c, cfg),
		settings: NewSettingsHandler(s, c, cfg),
		admin:    NewAdminHandler(s, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), cfg),
	}
	env.feedback.loc = time.UTC
	return env
}

// serve runs handler on a request built by testutil.MakeRequest
func serve(handler http.HandlerFunc, method, path string, body interface{}, pathValues map[string]string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest(method, path, body, nil)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}
