package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CSVExporter writes run records as CSV, one row per run. Decisions are
// not included.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes records to w.
func (e *CSVExporter) Export(ctx context.Context, records []RunRecord, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader()); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(csvRow(&records[i])); err != nil {
			return fmt.Errorf("failed to write run %s: %w", records[i].ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvHeader() []string {
	return []string{
		"id", "started_at", "finished_at", "duration_ms", "dry_run", "status", "error",
		"recent_folders", "recent_gb", "historical_folders", "historical_gb",
		"files_removed", "folders_removed", "failures",
	}
}

func csvRow(r *RunRecord) []string {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
	formatGB := func(gb float64) string {
		return strconv.FormatFloat(gb, 'f', -1, 64)
	}

	return []string{
		r.ID,
		formatTime(r.StartedAt),
		formatTime(r.FinishedAt),
		strconv.FormatInt(r.Duration().Milliseconds(), 10),
		strconv.FormatBool(r.DryRun),
		r.Status,
		r.Error,
		strconv.Itoa(r.RecentFolders),
		formatGB(r.RecentGB),
		strconv.Itoa(r.HistoricalFolders),
		formatGB(r.HistoricalGB),
		strconv.Itoa(r.FilesRemoved),
		strconv.Itoa(r.FoldersRemoved),
		strconv.Itoa(r.Failures),
	}
}
