// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	tableLinks           = "feedback_links"
	tableFeedback        = "feedback"
	tableSettings        = "admin_settings"
	tableSettingsHistory = "admin_settings_history"
	tableCredentials     = "admin_credentials"

	currentSettingsID = "current"
)

var (
	// ErrNotFound is returned when a link or account does not exist
	ErrNotFound = errors.New("not found")
	// ErrLinkUsed is returned when feedback was already submitted for a link
	ErrLinkUsed = errors.New("feedback already submitted for this link")
	// ErrFeedbackExists is returned when deleting a link that has feedback
	ErrFeedbackExists = errors.New("feedback already exists for this link")
	// ErrCredentialsExist is returned by first-run setup once an account exists
	ErrCredentialsExist = errors.New("admin credentials already exist")
)

// Store persists links, feedback, settings, and admin credentials.
// All methods are safe for concurrent use.
type Store struct {
	db  *goqu.Database
	now func() time.Time
}

// New wraps conn with the goqu dialect ("postgres" or "sqlite3").
func New(conn *sql.DB, dialect string) *Store {
	return &Store{
		db:  goqu.New(dialect, conn),
		now: time.Now,
	}
}

// WithClock replaces the time source used for created_at and timestamp columns.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// timestamp is stored in UTC with microsecond precision so that both
// PostgreSQL and the SQLite text encoding sort it chronologically.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Store) from(table string) *goqu.SelectDataset {
	return s.db.From(table).Prepared(true)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// rollback is deferred after BeginTx; it is a no-op once the tx committed.
func rollback(tx *goqu.TxDatabase) {
	_ = tx.Rollback()
}
