package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/odpc-checker/internal/apperr"
	"github.com/pfrederiksen/odpc-checker/internal/checker"
	"github.com/pfrederiksen/odpc-checker/internal/dataset"
	"github.com/pfrederiksen/odpc-checker/internal/logger"
	"github.com/pfrederiksen/odpc-checker/internal/matcher"
	"github.com/spf13/cobra"
)

// DefaultOutputFile is where results go when --output is not given
const DefaultOutputFile = "odpc_provider_results.xlsx"

type checkOptions struct {
	casePolicy string
	output     string
	sheet      string
	format     string
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Match provider spreadsheets against the register",
		Long: `Reads each FILE (.xlsx or .csv) which must contain a "Provider Name"
column, matches every provider against the ODPC register and writes the
results to --output. The register is fetched once per run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.casePolicy, "case", "", "Change provider names to lowercase or uppercase before matching (default lowercase)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", DefaultOutputFile, "Output file (.xlsx or .csv)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read from .xlsx inputs (default first sheet)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Summary format: text or json")

	return cmd
}

// runCheck is the main command logic
func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions, inputs []string) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	policy, err := casePolicy(cmd, opts.casePolicy, root.cfg)
	if err != nil {
		return err
	}

	if _, err := dataset.DetectFormat(opts.output); err != nil {
		return fmt.Errorf("--output: %w", err)
	}
	outputs, err := outputPaths(opts.output, inputs)
	if err != nil {
		return err
	}

	src, err := root.source()
	if err != nil {
		return err
	}
	svc := checker.New(src, logger.Default())

	result := &CheckOutput{
		CheckedAt:   time.Now().UTC(),
		CasePolicy:  policy,
		RegisterURL: root.cfg.URL,
		Files:       make([]*FileResult, 0, len(inputs)),
	}

	for i, input := range inputs {
		user, err := dataset.ReadFile(input, opts.sheet)
		if err != nil {
			return apperr.Input(input, err)
		}

		report, err := svc.Check(cmd.Context(), user, matcher.Options{CasePolicy: policy})
		if err != nil {
			return fmt.Errorf("checking %s: %w", input, err)
		}

		out := outputs[i]
		if err := dataset.WriteFile(out, report.Result.Table()); err != nil {
			return fmt.Errorf("writing results to %s: %w", out, err)
		}

		result.RegisterFetchedAt = report.RegisterAt
		result.Files = append(result.Files, newFileResult(input, out, report))
	}

	if err := WriteCheckOutput(cmd.OutOrStdout(), result, format, root.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if root.verbose && format == FormatText {
		WriteMetrics(cmd.OutOrStdout(), logger.GetMetricsSnapshot())
	}

	return nil
}

// outputPaths returns one result path per input. A single input writes to
// output itself; with several inputs each name gets the input's base name as
// a suffix, plus a counter when two inputs share a base name. A result path
// that would overwrite one of the inputs is an error.
func outputPaths(output string, inputs []string) ([]string, error) {
	taken := make(map[string]string, len(inputs))
	for _, input := range inputs {
		taken[pathKey(input)] = input
	}

	ext := filepath.Ext(output)
	stem := strings.TrimSuffix(output, ext)
	used := make(map[string]bool, len(inputs))
	paths := make([]string, len(inputs))

	for i, input := range inputs {
		candidate := output
		if len(inputs) > 1 {
			base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			candidate = stem + "_" + base + ext
			for n := 2; used[pathKey(candidate)]; n++ {
				candidate = fmt.Sprintf("%s_%s_%d%s", stem, base, n, ext)
			}
		}

		key := pathKey(candidate)
		if in, ok := taken[key]; ok {
			return nil, fmt.Errorf("output %s would overwrite input %s", candidate, in)
		}
		used[key] = true
		paths[i] = candidate
	}
	return paths, nil
}

func pathKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
