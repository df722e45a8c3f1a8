// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// Rating filter buckets
const (
	RatingLow    = "low"
	RatingMedium = "medium"
	RatingHigh   = "high"
)

// Filter periods
const (
	PeriodAll   = "all"
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// AnonymousCustomer is stored when neither the request nor the link names a customer
const AnonymousCustomer = "Anonymous"

// DefaultConcernText is shown when a concern has no configured prompt
const DefaultConcernText = "Wie war Ihre Erfahrung mit unserem Service?"

// Request types

type CreateLinkRequest struct {
	CustomerNumber string `json:"customerNumber"`
	Concern        string `json:"concern"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
}

// Rating is a pointer so a missing rating can be told apart from zero
type SubmitFeedbackRequest struct {
	Rating       *int   `json:"rating"`
	Comment      string `json:"comment"`
	Customer     string `json:"customer"`
	CustomerName string `json:"customerName"`
	Concern      string `json:"concern"`
	RefID        string `json:"refId"`
}

// Fields are pointers so an absent field is rejected rather than zeroed
type SaveSettingsRequest struct {
	Domains      *[]string          `json:"domains"`
	ConcernTexts *map[string]string `json:"concern_texts"`
	ConcernTypes *[]string          `json:"concern_types"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response types

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Domain types

type FeedbackLink struct {
	ID             string    `json:"id" db:"id"`
	CustomerNumber string    `json:"customerNumber" db:"customer_number"`
	Concern        string    `json:"concern" db:"concern"`
	FirstName      string    `json:"firstName" db:"first_name"`
	LastName       string    `json:"lastName" db:"last_name"`
	FeedbackURL    string    `json:"feedbackUrl" db:"feedback_url"`
	QRCodeURL      string    `json:"qrCodeUrl" db:"qr_code_url"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	Used           bool      `json:"used" db:"used"`
	ConcernText    string    `json:"concernText,omitempty" db:"-"`
}

// FullName joins first and last name the way customer names are stored on feedback
func (l FeedbackLink) FullName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

type Feedback struct {
	ID           string    `json:"id" db:"id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	Customer     string    `json:"customer" db:"customer"`
	CustomerName string    `json:"customerName" db:"customer_name"`
	Concern      string    `json:"concern" db:"concern"`
	RefID        string    `json:"refId" db:"ref_id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}

type Settings struct {
	Domains      []string          `json:"domains"`
	ConcernTexts map[string]string `json:"concern_texts"`
	ConcernTypes []string          `json:"concern_types"`
	UpdatedAt    *time.Time        `json:"updated_at,omitempty"`
}

// HasConcern reports whether concern is one of the configured concern types
func (s Settings) HasConcern(concern string) bool {
	for _, c := range s.ConcernTypes {
		if c == concern {
			return true
		}
	}
	return false
}

// ConcernText resolves the customer-facing prompt for a concern
func (s Settings) ConcernText(concern string) string {
	if text := s.ConcernTexts[concern]; text != "" {
		return text
	}
	return DefaultConcernText
}

type SettingsRevision struct {
	ID        string    `json:"id"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"created_at"`
}

type Credentials struct {
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose in JSON
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Aggregates

type RatingCount struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

type DayStats struct {
	Date          string  `json:"date"`
	Count         int64   `json:"count"`
	AverageRating float64 `json:"averageRating"`
}

type FeedbackStats struct {
	Total         int64         `json:"total"`
	AverageRating float64       `json:"averageRating"`
	Distribution  []RatingCount `json:"distribution"`
	Timeline      []DayStats    `json:"timeline"`
}

// DefaultSettings returns the configuration used before any settings are saved
func DefaultSettings() Settings {
	return Settings{
		Domains: []string{"https://feedback.home-ki.eu"},
		ConcernTexts: map[string]string{
			"Internet-Freischaltung": "Kürzlich wurde Ihr Internet freigeschaltet. Wie war Ihre Erfahrung mit unserem Service?",
			"Störung":                "Wir haben Ihre gemeldete Störung bearbeitet. Wie zufrieden sind Sie mit der Lösung?",
			"Servicebesuch":          "Unser Techniker war bei Ihnen vor Ort. Wie bewerten Sie den Servicebesuch?",
			"Beratung":               "Sie haben eine Beratung bei uns erhalten. Wie hilfreich war unser Beratungsgespräch?",
			"Rechnung":               "Bezüglich Ihrer Rechnungsanfrage: Wie zufrieden sind Sie mit der Bearbeitung?",
			"Kündigung":              "Ihre Kündigung wurde bearbeitet. Wie bewerten Sie unseren Kündigungsprozess?",
			"Sonstiges":              "Wie war Ihre Erfahrung mit unserem Service?",
		},
		ConcernTypes: []string{
			"Internet-Freischaltung",
			"Störung",
			"Servicebesuch",
			"Beratung",
			"Rechnung",
			"Kündigung",
			"Sonstiges",
		},
	}
}

// Envelope is the response body of every JSON endpoint
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}
