package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"camkeep-hq/camkeep/pkg/archive"
	"camkeep-hq/camkeep/pkg/history"
	"camkeep-hq/camkeep/pkg/retention"
	"camkeep-hq/camkeep/pkg/sizecache"

	"github.com/dustin/go-humanize"
)

// FormatGB renders a size in GB with binary units, e.g. "1.5 GiB".
func FormatGB(gb float64) string {
	if gb <= 0 || math.IsNaN(gb) {
		return "0 B"
	}
	return humanize.IBytes(uint64(math.Round(gb * sizecache.BytesPerGB)))
}

// SummaryReport renders a run summary. Decisions are listed when Verbose is
// set.
type SummaryReport struct {
	Summary *retention.Summary
	Verbose bool
}

// MarshalJSON emits the summary itself.
func (r SummaryReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Summary)
}

// WriteText implements TextWriter.
func (r SummaryReport) WriteText(w io.Writer) error {
	s := r.Summary
	mode := "live"
	if s.DryRun {
		mode = "dry run (nothing deleted)"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\t%s\n", s.RunID, mode)
	fmt.Fprintf(tw, "Recent:\t%d folders\t%s\n", s.Recent.Folders, FormatGB(s.Recent.SizeGB))
	fmt.Fprintf(tw, "Historical:\t%d folders\t%s\n", s.Historical.Folders, FormatGB(s.Historical.SizeGB))
	fmt.Fprintf(tw, "Evicted:\t%d folders\t%s\n", s.Evicted.Folders, FormatGB(s.Evicted.SizeGB))
	fmt.Fprintf(tw, "Removed:\t%d files\t%d folders\n", s.FilesRemoved, s.FoldersRemoved)
	if s.Failures > 0 {
		fmt.Fprintf(tw, "Failures:\t%d\t\n", s.Failures)
	}
	if len(s.SweptTombstones) > 0 {
		fmt.Fprintf(tw, "Swept:\t%d interrupted removals\t\n", len(s.SweptTombstones))
	}
	fmt.Fprintf(tw, "Free space:\t%s expected\t%s buffer\n", FormatGB(s.ExpectedFreeGB), FormatGB(s.FreeSpaceBufferGB))
	fmt.Fprintf(tw, "Duration:\t%s\t\n", s.Duration().Round(time.Millisecond))
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.BelowBuffer() {
		fmt.Fprintln(w, "⚠ expected free space is below the configured buffer")
	}

	if r.Verbose && len(s.Decisions) > 0 {
		fmt.Fprintln(w, "\nDecisions:")
		for _, d := range s.Decisions {
			fmt.Fprintf(w, "  %s %-6s %-18s %s\n", decisionMark(d.OK, d.Failed), d.Kind, d.Reason, d.Path)
		}
	}
	return nil
}

func decisionMark(ok, failed bool) string {
	switch {
	case ok:
		return "✓"
	case failed:
		return "✗"
	default:
		return "-"
	}
}

// ScanReport renders the folders of an archive with the tier a run would put
// them in.
type ScanReport struct {
	Summary    *retention.Summary `json:"summary"`
	Unanalyzed []string           `json:"unanalyzed,omitempty"`

	// Analysis counts the video files of each folder by detection state,
	// keyed by folder path.
	Analysis map[string]AnalysisCount `json:"analysis,omitempty"`
}

// AnalysisCount is the number of analyzed and pending video files of a
// folder.
type AnalysisCount struct {
	Analyzed int `json:"analyzed"`
	Pending  int `json:"pending"`
}

// CountAnalysis groups analyzed and pending video files by folder.
func CountAnalysis(analyzed, pending []string) map[string]AnalysisCount {
	counts := make(map[string]AnalysisCount)
	for folder, names := range archive.GroupByFolder(analyzed) {
		c := counts[folder]
		c.Analyzed = len(names)
		counts[folder] = c
	}
	for folder, names := range archive.GroupByFolder(pending) {
		c := counts[folder]
		c.Pending = len(names)
		counts[folder] = c
	}
	return counts
}

// WriteText implements TextWriter.
func (r ScanReport) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIER\tSIZE\tANALYZED\tPENDING\tPATH")
	for _, f := range r.Summary.Folders {
		c := r.Analysis[f.Path]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", f.Date, f.Tier, FormatGB(f.SizeGB), c.Analyzed, c.Pending, f.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d files would be removed, %d folders would be evicted\n",
		r.Summary.FilesRemoved, r.Summary.FoldersRemoved)
	if len(r.Unanalyzed) > 0 {
		fmt.Fprintf(w, "%d files are pending analysis\n", len(r.Unanalyzed))
	}
	return nil
}

// HistoryReport renders recorded runs, newest first.
type HistoryReport struct {
	Runs []history.RunRecord
}

// MarshalJSON emits the runs as a JSON array.
func (r HistoryReport) MarshalJSON() ([]byte, error) {
	if r.Runs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Runs)
}

// WriteText implements TextWriter.
func (r HistoryReport) WriteText(w io.Writer) error {
	if len(r.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tMODE\tFILES\tFOLDERS\tFAILURES\tKEPT\tID")
	for _, run := range r.Runs {
		mode := retention.Mode(run.DryRun)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			humanize.Time(run.StartedAt),
			run.Status,
			mode,
			run.FilesRemoved,
			run.FoldersRemoved,
			run.Failures,
			FormatGB(run.RecentGB+run.HistoricalGB),
			run.ID,
		)
	}
	return tw.Flush()
}

// WriteCSV implements CSVWriter.
func (r HistoryReport) WriteCSV(w io.Writer) error {
	return history.NewCSVExporter(true).Export(context.Background(), r.Runs, w)
}
