// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/danielhkuo/feedback-links/auth"
	"github.com/danielhkuo/feedback-links/models"
)

// Settings columns hold JSON text so the schema stays portable
type settingsRow struct {
	ID           string    `db:"id"`
	Domains      string    `db:"domains"`
	ConcernTexts string    `db:"concern_texts"`
	ConcernTypes string    `db:"concern_types"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type settingsHistoryRow struct {
	ID           string    `db:"id"`
	Domains      string    `db:"domains"`
	ConcernTexts string    `db:"concern_texts"`
	ConcernTypes string    `db:"concern_types"`
	CreatedAt    time.Time `db:"created_at"`
}

func encodeSettings(settings models.Settings) (domains, texts, types string, err error) {
	d, err := json.Marshal(settings.Domains)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode domains: %w", err)
	}
	tx, err := json.Marshal(settings.ConcernTexts)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode concern texts: %w", err)
	}
	ty, err := json.Marshal(settings.ConcernTypes)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode concern types: %w", err)
	}
	return string(d), string(tx), string(ty), nil
}

func decodeSettings(domains, texts, types string) (models.Settings, error) {
	var settings models.Settings
	if err := json.Unmarshal([]byte(domains), &settings.Domains); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode domains: %w", err)
	}
	if err := json.Unmarshal([]byte(texts), &settings.ConcernTexts); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode concern texts: %w", err)
	}
	if err := json.Unmarshal([]byte(types), &settings.ConcernTypes); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode concern types: %w", err)
	}
	if settings.Domains == nil {
		settings.Domains = []string{}
	}
	if settings.ConcernTexts == nil {
		settings.ConcernTexts = map[string]string{}
	}
	if settings.ConcernTypes == nil {
		settings.ConcernTypes = []string{}
	}
	return settings, nil
}

// GetSettings returns the current settings. The bool is false when
// settings were never saved.
func (s *Store) GetSettings(ctx context.Context) (models.Settings, bool, error) {
	var row settingsRow
	found, err := s.from(tableSettings).
		Where(goqu.C("id").Eq(currentSettingsID)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return models.Settings{}, false, fmt.Errorf("failed to query settings: %w", err)
	}
	if !found {
		return models.Settings{}, false, nil
	}

	settings, err := decodeSettings(row.Domains, row.ConcernTexts, row.ConcernTypes)
	if err != nil {
		return models.Settings{}, false, err
	}
	updatedAt := row.UpdatedAt
	settings.UpdatedAt = &updatedAt

	return settings, true, nil
}

// SaveSettings replaces the current settings in place and appends the
// saved values to the settings history, in one transaction.
func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) (models.Settings, error) {
	domains, texts, types, err := encodeSettings(settings)
	if err != nil {
		return models.Settings{}, err
	}
	now := s.timestamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	record := goqu.Record{
		"domains":       domains,
		"concern_texts": texts,
		"concern_types": types,
		"updated_at":    now,
	}

	_, err = tx.Insert(tableSettings).Prepared(true).
		Rows(goqu.Record{
			"id":            currentSettingsID,
			"domains":       domains,
			"concern_texts": texts,
			"concern_types": types,
			"updated_at":    now,
		}).
		OnConflict(goqu.DoUpdate("id", record)).
		Executor().ExecContext(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to upsert settings: %w", err)
	}

	_, err = tx.Insert(tableSettingsHistory).Prepared(true).Rows(goqu.Record{
		"id":            auth.GenerateID(),
		"domains":       domains,
		"concern_texts": texts,
		"concern_types": types,
		"created_at":    now,
	}).Executor().ExecContext(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to record settings history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Settings{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	saved := settings
	saved.UpdatedAt = &now
	return saved, nil
}

// ListSettingsHistory returns up to limit saved revisions, most recent first.
func (s *Store) ListSettingsHistory(ctx context.Context, limit uint) ([]models.SettingsRevision, error) {
	var rows []settingsHistoryRow
	err := s.from(tableSettingsHistory).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		Limit(limit).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings history: %w", err)
	}

	revisions := make([]models.SettingsRevision, 0, len(rows))
	for _, row := range rows {
		settings, err := decodeSettings(row.Domains, row.ConcernTexts, row.ConcernTypes)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, models.SettingsRevision{
			ID:        row.ID,
			Settings:  settings,
			CreatedAt: row.CreatedAt,
		})
	}

	return revisions, nil
}
