// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are portable between PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// One statement per entry; SQLite drivers only run the first statement of a batch.
var schema = []string{
	// Feedback links
	`CREATE TABLE IF NOT EXISTS feedback_links (
    id TEXT PRIMARY KEY,
    customer_number TEXT NOT NULL,
    concern TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    feedback_url TEXT NOT NULL,
    qr_code_url TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    used BOOLEAN NOT NULL DEFAULT FALSE
)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_links_created_at ON feedback_links(created_at)`,

	// Feedback
	`CREATE TABLE IF NOT EXISTS feedback (
    id TEXT PRIMARY KEY,
    rating INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
    comment TEXT NOT NULL DEFAULT '',
    customer TEXT NOT NULL DEFAULT '',
    customer_name TEXT NOT NULL DEFAULT '',
    concern TEXT NOT NULL DEFAULT '',
    ref_id TEXT NOT NULL REFERENCES feedback_links(id),
    timestamp TIMESTAMP NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_feedback_ref_id ON feedback(ref_id)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_timestamp ON feedback(timestamp)`,

	// Current settings, a single row updated in place
	`CREATE TABLE IF NOT EXISTS admin_settings (
    id TEXT PRIMARY KEY,
    domains TEXT NOT NULL,
    concern_texts TEXT NOT NULL,
    concern_types TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`,

	// Settings audit log, append only
	`CREATE TABLE IF NOT EXISTS admin_settings_history (
    id TEXT PRIMARY KEY,
    domains TEXT NOT NULL,
    concern_texts TEXT NOT NULL,
    concern_types TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_admin_settings_history_created_at ON admin_settings_history(created_at)`,

	// Admin credentials
	`CREATE TABLE IF NOT EXISTS admin_credentials (
    username TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`,
}
