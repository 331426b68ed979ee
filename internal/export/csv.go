// Package export renders attendance records in interchange formats.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/satriadp/hadirku/internal/store"
)

// csvHeader is the column layout consumed by downstream spreadsheets.
// Changing it breaks existing imports.
var csvHeader = []string{"ID", "Name", "ExternalRef", "Timestamp"}

// WriteCSV writes attendance records as CSV, newest first, with a header row.
// Timestamps are formatted with second resolution.
func WriteCSV(w io.Writer, records []store.AttendanceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.EventID, 10),
			r.DisplayName,
			r.ExternalRef,
			r.Timestamp.Format(time.DateTime),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ExportCSV reads all attendance records from the store and writes them as CSV.
func ExportCSV(ctx context.Context, events store.EventReader, w io.Writer) error {
	records, err := events.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("load attendance records: %w", err)
	}
	return WriteCSV(w, records)
}
