// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/danielhkuo/feedback-links/models"
)

// UpsertCredentials creates or replaces the password hash for username.
func (s *Store) UpsertCredentials(ctx context.Context, username, passwordHash string) error {
	now := s.timestamp()

	_, err := s.db.Insert(tableCredentials).Prepared(true).
		Rows(goqu.Record{
			"username":      username,
			"password_hash": passwordHash,
			"updated_at":    now,
		}).
		OnConflict(goqu.DoUpdate("username", goqu.Record{
			"password_hash": passwordHash,
			"updated_at":    now,
		})).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert credentials: %w", err)
	}

	return nil
}

// CreateFirstCredentials stores the first admin account. It returns
// ErrCredentialsExist once any account exists, so of two racing
// first-run requests only one succeeds.
func (s *Store) CreateFirstCredentials(ctx context.Context, username, passwordHash string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	// SQLite serializes transactions on its single connection; PostgreSQL
	// needs the table lock so the count below cannot go stale.
	if tx.Dialect() == "postgres" {
		if _, err := tx.ExecContext(ctx, "LOCK TABLE "+tableCredentials+" IN SHARE ROW EXCLUSIVE MODE"); err != nil {
			return fmt.Errorf("failed to lock credentials: %w", err)
		}
	}

	count, err := tx.From(tableCredentials).Prepared(true).CountContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to count credentials: %w", err)
	}
	if count > 0 {
		return ErrCredentialsExist
	}

	_, err = tx.Insert(tableCredentials).Prepared(true).Rows(goqu.Record{
		"username":      username,
		"password_hash": passwordHash,
		"updated_at":    s.timestamp(),
	}).Executor().ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCredentialsExist
		}
		return fmt.Errorf("failed to insert credentials: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCredentials returns the stored credentials or ErrNotFound.
func (s *Store) GetCredentials(ctx context.Context, username string) (models.Credentials, error) {
	var creds models.Credentials
	found, err := s.from(tableCredentials).
		Where(goqu.C("username").Eq(username)).
		ScanStructContext(ctx, &creds)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("failed to query credentials: %w", err)
	}
	if !found {
		return models.Credentials{}, ErrNotFound
	}

	return creds, nil
}

// CountCredentials returns the number of admin accounts.
func (s *Store) CountCredentials(ctx context.Context) (int64, error) {
	count, err := s.from(tableCredentials).CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	return count, nil
}
