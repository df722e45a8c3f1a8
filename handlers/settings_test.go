// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/feedback-links/cache"
	"github.com/danielhkuo/feedback-links/models"
	"github.com/danielhkuo/feedback-links/testutil"
)

func TestGetSettings_Defaults(t *testing.T) {
	env := newTestEnv(t)

	w := serve(env.settings.GetSettings, "GET", "/api/settings", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var settings models.Settings
	assert.True(t, testutil.DecodeData(t, w, &settings).Success)

	defaults := models.DefaultSettings()
	assert.Equal(t, defaults.Domains, settings.Domains)
	assert.Equal(t, defaults.ConcernTypes, settings.ConcernTypes)
	assert.Equal(t, defaults.ConcernTexts, settings.ConcernTexts)
	assert.Nil(t, settings.UpdatedAt)
}

func TestSaveSettings_ThenRead(t *testing.T) {
	env := newTestEnv(t)

	// Prime the cache with the defaults so the write has to invalidate it
	serve(env.settings.GetSettings, "GET", "/api/settings", nil, nil)

	body := map[string]interface{}{
		"domains":       []string{"https://survey.example.com"},
		"concern_texts": map[string]string{"Glasfaser": "Wie lief der Glasfaser-Anschluss?"},
		"concern_types": []string{"Glasfaser", "Sonstiges"},
	}
	w := serve(env.settings.SaveSettings, "POST", "/api/settings", body, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var saved models.Settings
	testutil.DecodeData(t, w, &saved)
	assert.Equal(t, []string{"Glasfaser", "Sonstiges"}, saved.ConcernTypes)
	require.NotNil(t, saved.UpdatedAt)

	w = serve(env.settings.GetSettings, "GET", "/api/settings", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var got models.Settings
	testutil.DecodeData(t, w, &got)
	assert.Equal(t, []string{"https://survey.example.com"}, got.Domains)
	assert.Equal(t, map[string]string{"Glasfaser": "Wie lief der Glasfaser-Anschluss?"}, got.ConcernTexts)
	assert.Equal(t, []string{"Glasfaser", "Sonstiges"}, got.ConcernTypes)
}

func TestSaveSettings_Validation(t *testing.T) {
	valid := func() map[string]interface{} {
		return map[string]interface{}{
			"domains":       []string{"https://a.example.com"},
			"concern_texts": map[string]string{},
			"concern_types": []string{"Rechnung"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(map[string]interface{})
		message string
	}{
		{"missing domains", func(b map[string]interface{}) { delete(b, "domains") }, "domains is required"},
		{"null concern texts", func(b map[string]interface{}) { b["concern_texts"] = nil }, "concern_texts is required"},
		{"missing concern types", func(b map[string]interface{}) { delete(b, "concern_types") }, "concern_types is required"},
		{"empty domains", func(b map[string]interface{}) { b["domains"] = []string{} }, "domains must not be empty"},
		{"relative domain", func(b map[string]interface{}) { b["domains"] = []string{"feedback.example.com"} }, `invalid domain: "feedback.example.com"`},
		{"ftp domain", func(b map[string]interface{}) { b["domains"] = []string{"ftp://a.example.com"} }, `invalid domain: "ftp://a.example.com"`},
		{"empty concern types", func(b map[string]interface{}) { b["concern_types"] = []string{} }, "concern_types must not be empty"},
		{"blank concern type", func(b map[string]interface{}) { b["concern_types"] = []string{"Rechnung", " "} }, "concern types must not be blank"},
		{"duplicate concern type", func(b map[string]interface{}) { b["concern_types"] = []string{"Rechnung", "Rechnung"} }, `duplicate concern type: "Rechnung"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			body := valid()
			tt.mutate(body)

			w := serve(env.settings.SaveSettings, "POST", "/api/settings", body, nil)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
			assert.Equal(t, tt.message, testutil.DecodeData(t, w, nil).Error)

			_, found, err := env.store.GetSettings(context.Background())
			require.NoError(t, err)
			assert.False(t, found, "nothing may be persisted")
		})
	}
}

func TestSettingsHistory(t *testing.T) {
	env := newTestEnv(t)

	for _, domain := range []string{"https://1.example.com", "https://2.example.com", "https://3.example.com"} {
		body := map[string]interface{}{
			"domains":       []string{domain},
			"concern_texts": map[string]string{},
			"concern_types": []string{"Sonstiges"},
		}
		testutil.AssertStatus(t, serve(env.settings.SaveSettings, "POST", "/api/settings", body, nil), http.StatusOK)
	}

	t.Run("default limit", func(t *testing.T) {
		w := serve(env.settings.GetHistory, "GET", "/api/settings/history", nil, nil)
		testutil.AssertStatus(t, w, http.StatusOK)

		var revisions []models.SettingsRevision
		testutil.DecodeData(t, w, &revisions)
		require.Len(t, revisions, 3)
		assert.Equal(t, []string{"https://3.example.com"}, revisions[0].Settings.Domains)
		assert.Equal(t, []string{"https://1.example.com"}, revisions[2].Settings.Domains)
	})

	t.Run("explicit limit", func(t *testing.T) {
		w := serve(env.settings.GetHistory, "GET", "/api/settings/history?limit=1", nil, nil)
		testutil.AssertStatus(t, w, http.StatusOK)

		var revisions []models.SettingsRevision
		testutil.DecodeData(t, w, &revisions)
		assert.Len(t, revisions, 1)
	})

	t.Run("invalid limit", func(t *testing.T) {
		for _, q := range []string{"0", "-1", "ten"} {
			w := serve(env.settings.GetHistory, "GET", "/api/settings/history?limit="+q, nil, nil)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		}
	})

	current, found, err := env.store.GetSettings(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"https://3.example.com"}, current.Domains, "current row holds the latest save")
}

// failingCache returns errors for every operation
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}
func (failingCache) Delete(context.Context, string) error { return errors.New("down") }
func (failingCache) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("down")
}
func (failingCache) Close() error { return nil }

var _ cache.Cache = failingCache{}

func TestCacheFailuresDoNotFailRequests(t *testing.T) {
	cfg := testutil.GetTestConfig()
	cfg.FeedbackRateLimit = 1
	s, _ := testutil.NewTestStore(testutil.SetupTestDB(t))

	settings := NewSettingsHandler(s, failingCache{}, cfg)
	w := serve(settings.GetSettings, "GET", "/api/settings", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	feedback := NewFeedbackHandler(s, failingCache{}, cfg)
	for i := 0; i < 3; i++ {
		link := testutil.CreateTestLink(t, s, "K", "Rechnung")
		w := serve(feedback.SubmitFeedback, "POST", "/api/feedback",
			models.SubmitFeedbackRequest{Rating: rating(3), RefID: link.ID}, nil)
		testutil.AssertStatus(t, w, http.StatusCreated)
	}
}
