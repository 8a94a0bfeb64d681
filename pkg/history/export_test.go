package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"
)

func TestCSVExporter(t *testing.T) {
	start := time.Date(2025, 1, 5, 3, 0, 0, 0, time.UTC)
	records := []RunRecord{
		{
			ID:                "run-1",
			StartedAt:         start,
			FinishedAt:        start.Add(1500 * time.Millisecond),
			Status:            StatusCompleted,
			RecentFolders:     2,
			RecentGB:          1.5,
			HistoricalFolders: 10,
			HistoricalGB:      250.25,
			FilesRemoved:      7,
			FoldersRemoved:    1,
		},
		{
			ID:     "run-2",
			DryRun: true,
			Status: StatusFailed,
			Error:  "archive root missing, check \"root\"",
		},
	}

	tests := []struct {
		name   string
		header bool
		rows   int
	}{
		{"with header", true, 3},
		{"without header", false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewCSVExporter(tt.header).Export(context.Background(), records, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			rows, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("output is not valid CSV: %v", err)
			}
			if len(rows) != tt.rows {
				t.Fatalf("rows = %d, want %d", len(rows), tt.rows)
			}

			first := rows[0]
			if tt.header {
				if first[0] != "id" {
					t.Errorf("header[0] = %q, want id", first[0])
				}
				first = rows[1]
			}
			want := []string{"run-1", "2025-01-05T03:00:00Z", "2025-01-05T03:00:01Z", "1500", "false", "completed", "",
				"2", "1.5", "10", "250.25", "7", "1", "0"}
			for i := range want {
				if first[i] != want[i] {
					t.Errorf("column %d = %q, want %q", i, first[i], want[i])
				}
			}

			last := rows[len(rows)-1]
			if last[2] != "" || last[6] != records[1].Error {
				t.Errorf("unexpected row for failed run: %v", last)
			}
		})
	}
}

func TestCSVExporterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewCSVExporter(true).Export(ctx, []RunRecord{{ID: "a"}}, &bytes.Buffer{})
	if err == nil {
		t.Error("expected error for canceled context")
	}
}
