// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/danielhkuo/feedback-links/models"
)

// CreateLink inserts a new unused link. CreatedAt and Used are set here.
func (s *Store) CreateLink(ctx context.Context, link *models.FeedbackLink) error {
	link.CreatedAt = s.timestamp()
	link.Used = false

	_, err := s.db.Insert(tableLinks).Prepared(true).Rows(goqu.Record{
		"id":              link.ID,
		"customer_number": link.CustomerNumber,
		"concern":         link.Concern,
		"first_name":      link.FirstName,
		"last_name":       link.LastName,
		"feedback_url":    link.FeedbackURL,
		"qr_code_url":     link.QRCodeURL,
		"created_at":      link.CreatedAt,
		"used":            false,
	}).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert feedback link: %w", err)
	}

	return nil
}

// GetLink returns the stored link or ErrNotFound.
func (s *Store) GetLink(ctx context.Context, id string) (models.FeedbackLink, error) {
	var link models.FeedbackLink
	found, err := s.from(tableLinks).
		Where(goqu.C("id").Eq(id)).
		ScanStructContext(ctx, &link)
	if err != nil {
		return models.FeedbackLink{}, fmt.Errorf("failed to query feedback link: %w", err)
	}
	if !found {
		return models.FeedbackLink{}, ErrNotFound
	}

	return link, nil
}

// ListLinks returns every link, most recent first.
func (s *Store) ListLinks(ctx context.Context) ([]models.FeedbackLink, error) {
	links := []models.FeedbackLink{}
	err := s.from(tableLinks).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		ScanStructsContext(ctx, &links)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback links: %w", err)
	}
	if links == nil {
		links = []models.FeedbackLink{}
	}

	return links, nil
}

// DeleteLink removes a link that has no feedback. Links with feedback, or
// links already marked used, are refused with ErrFeedbackExists.
func (s *Store) DeleteLink(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	var used bool
	found, err := tx.From(tableLinks).Prepared(true).
		Select("used").
		Where(goqu.C("id").Eq(id)).
		ScanValContext(ctx, &used)
	if err != nil {
		return fmt.Errorf("failed to query feedback link: %w", err)
	}
	if !found {
		return ErrNotFound
	}

	count, err := tx.From(tableFeedback).Prepared(true).
		Where(goqu.C("ref_id").Eq(id)).
		CountContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to count feedback: %w", err)
	}
	if count > 0 || used {
		return ErrFeedbackExists
	}

	_, err = tx.Delete(tableLinks).Prepared(true).
		Where(goqu.C("id").Eq(id)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete feedback link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
