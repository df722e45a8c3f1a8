// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package export renders feedback as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/feedback-links/models"
)

// SheetName is the worksheet holding exported rows in XLSX files
const SheetName = "Feedback"

// DateLayout formats the Datum column
const DateLayout = "02.01.2006"

// Header is the first row of every export
var Header = []string{"Datum", "Kunde", "Bewertung", "Kommentar", "Anliegen"}

// ContentType returns the MIME type for a supported format
func ContentType(format string) (string, error) {
	switch format {
	case models.FormatCSV:
		return "text/csv; charset=utf-8", nil
	case models.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	}
	return "", fmt.Errorf("unsupported export format %q", format)
}

// Filename names the download for an export created at now
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("feedback-export-%s.%s", now.Format(time.DateOnly), format)
}

// Write renders items in the given format
func Write(w io.Writer, format string, items []models.Feedback, loc *time.Location) error {
	switch format {
	case models.FormatCSV:
		return WriteCSV(w, items, loc)
	case models.FormatXLSX:
		return WriteXLSX(w, items, loc)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func row(fb models.Feedback, loc *time.Location) []string {
	return []string{
		fb.Timestamp.In(loc).Format(DateLayout),
		fb.Customer,
		strconv.Itoa(fb.Rating),
		fb.Comment,
		fb.Concern,
	}
}

// WriteCSV writes a header row and one row per feedback item
func WriteCSV(w io.Writer, items []models.Feedback, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, fb := range items {
		if err := cw.Write(row(fb, loc)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same rows as WriteCSV into a single worksheet.
// Ratings are stored as numbers so spreadsheets can aggregate them.
func WriteXLSX(w io.Writer, items []models.Feedback, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write xlsx header: %w", err)
	}

	for i, fb := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(fb, loc)
		record := []interface{}{values[0], values[1], fb.Rating, values[3], values[4]}
		if err := f.SetSheetRow(SheetName, cell, &record); err != nil {
			return fmt.Errorf("failed to write xlsx row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
