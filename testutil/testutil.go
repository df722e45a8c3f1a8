// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/feedback-links/auth"
	"github.com/danielhkuo/feedback-links/cliparse"
	"github.com/danielhkuo/feedback-links/db"
	"github.com/danielhkuo/feedback-links/models"
	"github.com/danielhkuo/feedback-links/store"
)

// TestJWTSecret signs admin tokens in tests
const TestJWTSecret = "test-jwt-secret"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), cliparse.DatabaseSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// NewTestStore returns a store over conn whose clock advances one second per read,
// so rows written in sequence have strictly increasing timestamps
func NewTestStore(conn *sql.DB) (*store.Store, *Clock) {
	clock := NewClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	return store.New(conn, db.Dialect(cliparse.DatabaseSQLite)).WithClock(clock.Now), clock
}

// Clock is a deterministic time source
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start, step: time.Second}
}

// Now returns the current time and advances the clock by one step
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Set moves the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              4000,
		DatabaseURL:       ":memory:",
		DatabaseType:      cliparse.DatabaseSQLite,
		Env:               "development",
		LogLevel:          "error",
		JWTSecret:         TestJWTSecret,
		TokenTTL:          time.Hour,
		AdminUsername:     "admin",
		BaseURL:           "https://feedback.example.com",
		QRServiceURL:      "https://api.qrserver.com/v1/create-qr-code/",
		QRSize:            "200x200",
		FeedbackRateLimit: 0,
	}
}

// CreateTestLink inserts a link directly and returns it
func CreateTestLink(t *testing.T, s *store.Store, customerNumber, concern string) models.FeedbackLink {
	t.Helper()

	id := auth.GenerateID()
	link := models.FeedbackLink{
		ID:             id,
		CustomerNumber: customerNumber,
		Concern:        concern,
		FirstName:      "Max",
		LastName:       "Mustermann",
		FeedbackURL:    "https://feedback.example.com/?ref=" + id,
		QRCodeURL:      "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=x",
	}
	if err := s.CreateLink(context.Background(), &link); err != nil {
		t.Fatalf("Failed to create test link: %v", err)
	}

	return link
}

// SubmitTestFeedback stores feedback for a link and returns it
func SubmitTestFeedback(t *testing.T, s *store.Store, linkID string, rating int, comment string) models.Feedback {
	t.Helper()

	fb := models.Feedback{
		ID:      auth.GenerateID(),
		Rating:  rating,
		Comment: comment,
		RefID:   linkID,
	}
	if err := s.SubmitFeedback(context.Background(), &fb); err != nil {
		t.Fatalf("Failed to submit test feedback: %v", err)
	}

	return fb
}

// AdminToken issues a bearer token accepted by admin routes
func AdminToken(t *testing.T, cfg cliparse.Config) string {
	t.Helper()

	token, _, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL).Issue(cfg.AdminUsername)
	if err != nil {
		t.Fatalf("Failed to issue admin token: %v", err)
	}
	return token
}

// AdminHeaders returns an Authorization header map for MakeRequest
func AdminHeaders(t *testing.T, cfg cliparse.Config) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + AdminToken(t, cfg)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		var jsonBody []byte
		if raw, ok := body.(string); ok {
			jsonBody = []byte(raw)
		} else {
			jsonBody, _ = json.Marshal(body)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// DecodeData decodes an envelope and unmarshals its data field into v
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) models.Envelope {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Details string          `json:"details"`
	}
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
	if v != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, v); err != nil {
			t.Fatalf("Failed to decode data field: %v", err)
		}
	}

	return models.Envelope{Success: raw.Success, Error: raw.Error, Details: raw.Details}
}
