package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pfrederiksen/odpc-checker/internal/apperr"
	"github.com/pfrederiksen/odpc-checker/internal/config"
	"github.com/pfrederiksen/odpc-checker/internal/logger"
	"github.com/pfrederiksen/odpc-checker/internal/matcher"
	"github.com/pfrederiksen/odpc-checker/internal/registry"
	"github.com/pfrederiksen/odpc-checker/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitNetwork     = 3
	ExitDataShape   = 4
	ExitSchema      = 5
	ExitEmptyResult = 6
	ExitInput       = 7
)

// rootOptions holds the flags shared by every subcommand
type rootOptions struct {
	url      string
	timeout  time.Duration
	cacheDir string
	cacheTTL time.Duration
	logLevel string
	refresh  bool
	verbose  bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "odpc-checker",
		Short: "Check provider names against the ODPC register of data handlers",
		Long: `A CLI tool to check whether providers are registered with Kenya's
Office of the Data Protection Commissioner (ODPC).

It scrapes the public register of data controllers and processors, matches
the "Provider Name" column of your spreadsheet against it (exact match after
trimming and case folding), and writes the merged result as a spreadsheet.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.loadConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.url, "url", "", "Register page URL (default "+registry.RegisteredHandlersURL+")")
	flags.DurationVar(&opts.timeout, "timeout", 0, "HTTP request timeout (default 10s)")
	flags.StringVar(&opts.cacheDir, "cache-dir", "", "Directory for the register snapshot shared between runs (disabled when empty)")
	flags.DurationVar(&opts.cacheTTL, "cache-ttl", 0, "How long a fetched register is reused (default 1h)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (default warn)")
	flags.BoolVar(&opts.refresh, "refresh", false, "Ignore any saved register snapshot and fetch again")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output")

	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newFetchCmd(opts))

	return cmd
}

// loadConfig layers flags over the environment and installs the logger
func (o *rootOptions) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = o.url
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = o.cacheDir
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL = o.cacheTTL
	}
	if flags.Changed("log-level") {
		if cfg.LogLevel, err = logger.ParseLevel(o.logLevel); err != nil {
			return err
		}
	} else if o.verbose && cfg.LogLevel != logger.LevelDebug {
		cfg.LogLevel = logger.LevelInfo
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.SetDefault(logger.New(cfg.LogLevel, cmd.ErrOrStderr()))
	o.cfg = cfg
	return nil
}

// source builds the register source: a Fetcher behind the one-entry cache,
// backed by an on-disk snapshot when a cache directory is configured.
func (o *rootOptions) source() (registry.Source, error) {
	cfg := o.cfg
	fetcher := registry.NewFetcher(
		registry.WithURL(cfg.URL),
		registry.WithTimeout(cfg.Timeout),
		registry.WithUserAgent(cfg.UserAgent),
	)

	var store registry.SnapshotStore
	if cfg.CacheDir != "" {
		s, err := storage.New(cfg.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		if o.refresh {
			if err := s.Clear(); err != nil {
				return nil, err
			}
		}
		store = s
	}

	return registry.NewCachedSource(fetcher, registry.NewCache(cfg.CacheTTL), store), nil
}

// casePolicy resolves the --case flag against the configured default
func casePolicy(cmd *cobra.Command, flagValue string, cfg *config.Config) (matcher.CasePolicy, error) {
	if !cmd.Flags().Changed("case") {
		return cfg.CasePolicy, nil
	}
	return matcher.ParseCasePolicy(flagValue)
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch apperr.KindOf(err) {
	case apperr.KindNetwork:
		return ExitNetwork
	case apperr.KindDataShape:
		return ExitDataShape
	case apperr.KindSchema:
		return ExitSchema
	case apperr.KindEmptyResult:
		return ExitEmptyResult
	case apperr.KindInput:
		return ExitInput
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitCode(err))
	}
}
