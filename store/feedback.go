// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/danielhkuo/feedback-links/models"
)

// FeedbackFilter narrows feedback queries. The zero value matches everything.
type FeedbackFilter struct {
	// Rating is "low" (1-2), "medium" (3), "high" (4-5), or an exact "1".."5"
	Rating string
	// Query is matched case-insensitively against comment, customer, and customer name
	Query string
	// Since excludes feedback submitted before it
	Since *time.Time
}

// ValidRatingFilter reports whether value is an accepted FeedbackFilter.Rating
func ValidRatingFilter(value string) bool {
	switch value {
	case "", models.RatingLow, models.RatingMedium, models.RatingHigh,
		"1", "2", "3", "4", "5":
		return true
	}
	return false
}

func (f FeedbackFilter) expressions() []exp.Expression {
	var exprs []exp.Expression

	switch f.Rating {
	case models.RatingLow:
		exprs = append(exprs, goqu.C("rating").Lte(2))
	case models.RatingMedium:
		exprs = append(exprs, goqu.C("rating").Eq(3))
	case models.RatingHigh:
		exprs = append(exprs, goqu.C("rating").Gte(4))
	case "1", "2", "3", "4", "5":
		exprs = append(exprs, goqu.C("rating").Eq(int(f.Rating[0]-'0')))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		exprs = append(exprs, goqu.Or(
			goqu.L(`LOWER("comment") LIKE ? ESCAPE '\'`, pattern),
			goqu.L(`LOWER("customer") LIKE ? ESCAPE '\'`, pattern),
			goqu.L(`LOWER("customer_name") LIKE ? ESCAPE '\'`, pattern),
		))
	}

	if f.Since != nil {
		exprs = append(exprs, goqu.C("timestamp").Gte(f.Since.UTC()))
	}

	return exprs
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SubmitFeedback stores feedback for the link fb.RefID and marks the link
// used, in one transaction. Empty customer fields are copied from the link.
// Returns ErrNotFound for an unknown link and ErrLinkUsed when the link
// already has feedback.
func (s *Store) SubmitFeedback(ctx context.Context, fb *models.Feedback) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	// Only an unused link can be consumed; concurrent submissions race on this row.
	result, err := tx.Update(tableLinks).Prepared(true).
		Set(goqu.Record{"used": true}).
		Where(
			goqu.C("id").Eq(fb.RefID),
			goqu.C("used").Eq(goqu.L("FALSE")),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark link used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark link used: %w", err)
	}

	var link models.FeedbackLink
	found, err := tx.From(tableLinks).Prepared(true).
		Where(goqu.C("id").Eq(fb.RefID)).
		ScanStructContext(ctx, &link)
	if err != nil {
		return fmt.Errorf("failed to query feedback link: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	if affected == 0 {
		return ErrLinkUsed
	}

	if fb.Customer == "" {
		fb.Customer = link.CustomerNumber
	}
	if fb.Customer == "" {
		fb.Customer = models.AnonymousCustomer
	}
	if fb.CustomerName == "" {
		fb.CustomerName = link.FullName()
	}
	if fb.Concern == "" {
		fb.Concern = link.Concern
	}
	fb.Timestamp = s.timestamp()

	_, err = tx.Insert(tableFeedback).Prepared(true).Rows(goqu.Record{
		"id":            fb.ID,
		"rating":        fb.Rating,
		"comment":       fb.Comment,
		"customer":      fb.Customer,
		"customer_name": fb.CustomerName,
		"concern":       fb.Concern,
		"ref_id":        fb.RefID,
		"timestamp":     fb.Timestamp,
	}).Executor().ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrLinkUsed
		}
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListFeedback returns matching feedback, most recent first.
func (s *Store) ListFeedback(ctx context.Context, filter FeedbackFilter) ([]models.Feedback, error) {
	items := []models.Feedback{}
	err := s.from(tableFeedback).
		Where(filter.expressions()...).
		Order(goqu.C("timestamp").Desc(), goqu.C("id").Desc()).
		ScanStructsContext(ctx, &items)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	if items == nil {
		items = []models.Feedback{}
	}

	return items, nil
}

// CountFeedbackForLink returns how many feedback rows reference a link.
func (s *Store) CountFeedbackForLink(ctx context.Context, linkID string) (int64, error) {
	count, err := s.from(tableFeedback).
		Where(goqu.C("ref_id").Eq(linkID)).
		CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

type ratingCountRow struct {
	Rating int   `db:"rating"`
	Count  int64 `db:"count"`
}

// FeedbackStats aggregates matching feedback: total, average, the 1-5
// distribution, and a per-day timeline for the days ending at now.
func (s *Store) FeedbackStats(ctx context.Context, filter FeedbackFilter, days int, loc *time.Location) (models.FeedbackStats, error) {
	var rows []ratingCountRow
	err := s.from(tableFeedback).
		Select(goqu.C("rating"), goqu.COUNT(goqu.Star()).As("count")).
		Where(filter.expressions()...).
		GroupBy(goqu.C("rating")).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return models.FeedbackStats{}, fmt.Errorf("failed to aggregate feedback: %w", err)
	}

	stats := models.FeedbackStats{
		Distribution: make([]models.RatingCount, 0, models.MaxRating),
		Timeline:     []models.DayStats{},
	}
	counts := make(map[int]int64, len(rows))
	var sum int64
	for _, row := range rows {
		counts[row.Rating] = row.Count
		stats.Total += row.Count
		sum += int64(row.Rating) * row.Count
	}
	for r := models.MinRating; r <= models.MaxRating; r++ {
		stats.Distribution = append(stats.Distribution, models.RatingCount{Rating: r, Count: counts[r]})
	}
	if stats.Total > 0 {
		stats.AverageRating = float64(sum) / float64(stats.Total)
	}

	if days <= 0 {
		return stats, nil
	}

	now := s.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start := today.AddDate(0, 0, -(days - 1))

	windowed := filter
	if windowed.Since == nil || windowed.Since.Before(start) {
		windowed.Since = &start
	}
	recent, err := s.ListFeedback(ctx, windowed)
	if err != nil {
		return models.FeedbackStats{}, err
	}

	type bucket struct {
		count int64
		sum   int64
	}
	buckets := make(map[string]*bucket, days)
	for _, fb := range recent {
		key := fb.Timestamp.In(loc).Format(time.DateOnly)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		b.sum += int64(fb.Rating)
	}

	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		entry := models.DayStats{Date: day}
		if b := buckets[day]; b != nil {
			entry.Count = b.count
			entry.AverageRating = float64(b.sum) / float64(b.count)
		}
		stats.Timeline = append(stats.Timeline, entry)
	}

	return stats, nil
}
