package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pfrederiksen/odpc-checker/internal/checker"
	"github.com/pfrederiksen/odpc-checker/internal/logger"
	"github.com/pfrederiksen/odpc-checker/internal/matcher"
	"github.com/pfrederiksen/odpc-checker/internal/registry"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// CheckOutput is the summary of one check run
type CheckOutput struct {
	CheckedAt         time.Time          `json:"checked_at"`
	CasePolicy        matcher.CasePolicy `json:"case_policy"`
	RegisterURL       string             `json:"register_url"`
	RegisterFetchedAt time.Time          `json:"register_fetched_at"`
	Files             []*FileResult      `json:"files"`
}

// FileResult summarizes the check of one input file
type FileResult struct {
	Input          string          `json:"input"`
	Output         string          `json:"output"`
	RunID          string          `json:"run_id"`
	Rows           int             `json:"rows"`
	Matched        int             `json:"matched"`
	Unmatched      int             `json:"unmatched"`
	DuplicateNames int             `json:"duplicate_register_names,omitempty"`
	Result         *matcher.Result `json:"result"`
}

func newFileResult(input, output string, report *checker.Report) *FileResult {
	return &FileResult{
		Input:          input,
		Output:         output,
		RunID:          report.RunID,
		Rows:           len(report.Result.Rows),
		Matched:        report.Result.MatchedCount,
		Unmatched:      report.Result.UnmatchedCount(),
		DuplicateNames: report.Result.DuplicateNames,
		Result:         report.Result,
	}
}

// WriteCheckOutput writes the check summary in the specified format
func WriteCheckOutput(w io.Writer, out *CheckOutput, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, out)
	case FormatText:
		return writeCheckText(w, out, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeCheckText(w io.Writer, out *CheckOutput, verbose bool) error {
	for _, f := range out.Files {
		fmt.Fprintf(w, "%s: %d providers, %d matched, %d not found\n", f.Input, f.Rows, f.Matched, f.Unmatched)
		if f.DuplicateNames > 0 {
			fmt.Fprintf(w, "  Note: %d register entries share a name with an earlier entry; the first was used\n", f.DuplicateNames)
		}
		if verbose {
			fmt.Fprintf(w, "  Run ID: %s\n", f.RunID)
			if err := writeResultRows(w, f.Result); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "  Results written to %s\n", f.Output)
	}

	if verbose && !out.RegisterFetchedAt.IsZero() {
		fmt.Fprintf(w, "\nRegister: %s (fetched %s)\n", out.RegisterURL, out.RegisterFetchedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "\nNames are compared exactly, ignoring case (%s).\n", out.CasePolicy)
	return nil
}

func writeResultRows(w io.Writer, result *matcher.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  \t%s\n", joinTab(result.Columns))
	for _, row := range result.Rows {
		mark := "-"
		if row.Matched {
			mark = "✓"
		}
		values := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			values[i] = row.Values[col]
		}
		fmt.Fprintf(tw, "  %s\t%s\n", mark, joinTab(values))
	}
	return tw.Flush()
}

// WriteRegister prints a fetched register
func WriteRegister(w io.Writer, ds *registry.Dataset, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, ds)
	case FormatText:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, joinTab(ds.Table.Headers))
		for _, record := range ds.Table.Records()[1:] {
			fmt.Fprintln(tw, joinTab(record))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nTotal: %d entries\n", ds.Table.Len())
		if verbose {
			fmt.Fprintf(w, "Source: %s (fetched %s)\n", ds.SourceURL, ds.FetchedAt.Format(time.RFC3339))
			if ds.Skipped > 0 {
				fmt.Fprintf(w, "Skipped %d malformed rows\n", ds.Skipped)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteMetrics prints the run's counters and timings
func WriteMetrics(w io.Writer, snap logger.Snapshot) {
	names := snap.Names()
	if len(names) == 0 {
		return
	}
	fmt.Fprintln(w, "\nMetrics:")
	for _, name := range names {
		if v, ok := snap.Counters[name]; ok {
			fmt.Fprintf(w, "  %s: %d\n", name, v)
		}
		if t, ok := snap.Timings[name]; ok {
			fmt.Fprintf(w, "  %s: %d calls, avg %s, max %s\n", name, t.Count, t.Average, t.Max)
		}
	}
}

func joinTab(values []string) string {
	return strings.Join(values, "\t")
}
