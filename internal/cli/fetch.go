package cli

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/odpc-checker/internal/dataset"
	"github.com/spf13/cobra"
)

type fetchOptions struct {
	output string
	format string
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the register and print or export it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Export the register to a file (.xlsx or .csv) instead of printing it")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")

	return cmd
}

func runFetch(cmd *cobra.Command, root *rootOptions, opts *fetchOptions) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	src, err := root.source()
	if err != nil {
		return err
	}

	ds, err := src.Fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching register: %w", err)
	}

	if opts.output != "" {
		if err := dataset.WriteFile(opts.output, ds.Table); err != nil {
			return fmt.Errorf("exporting register: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d register rows to %s\n", ds.Table.Len(), opts.output)
		return nil
	}

	return WriteRegister(cmd.OutOrStdout(), ds, format, root.verbose)
}
