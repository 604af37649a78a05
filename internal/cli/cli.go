package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/devconf-schedule/internal/config"
	"github.com/pfrederiksen/devconf-schedule/internal/logger"
	"github.com/pfrederiksen/devconf-schedule/internal/scraper"
	"github.com/pfrederiksen/devconf-schedule/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagOutDir   string
	flagEvents   []string
	flagArchive  bool
	flagFormat   string
	flagRender   bool
	flagTimeout  time.Duration
	flagSummary  string
	flagSort     string
	flagLogLevel string
	flagVerbose  bool
)

// newFetcher builds the fetcher for a run; tests replace it.
var newFetcher = func(cfg *config.Config, render bool) Fetcher {
	opts := []scraper.Option{scraper.WithBaseURL(cfg.BaseURL)}
	if render {
		opts = append(opts, scraper.WithRenderer(&scraper.ChromeRenderer{WaitSelector: "div.agenda"}))
	}
	return scraper.New(opts...)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devconf-schedule",
		Short: "Build pentabarf schedules for DevConf locations",
		Long: `A CLI tool that scrapes DevConf agenda pages, matches them with the
conference's Sessionize data and writes one schedule per location
as pentabarf XML, xCal XML, iCalendar or JSON.`,
		RunE:          runBuild,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Define flags
	cmd.Flags().StringVar(&flagConfig, "config", "devconf.yaml", "Path to the YAML configuration")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "schedules", "Directory schedules are written to")
	cmd.Flags().StringSliceVar(&flagEvents, "event", nil, "Only build these locations (short names, repeatable)")
	cmd.Flags().BoolVar(&flagArchive, "archive", false, "Fetch Wayback Machine snapshots from each event's day")
	cmd.Flags().StringVar(&flagFormat, "format", storage.FormatPentabarf, "Output formats: comma-separated list of pentabarf, xcal, ics, json, or 'all'")
	cmd.Flags().BoolVar(&flagRender, "render", false, "Render agenda pages in headless Chromium")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "Time limit for the whole run")
	cmd.Flags().StringVar(&flagSummary, "summary", "text", "Summary format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "config", "Summary order: config, name, day or sessions")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging and include metrics in the summary")

	return cmd
}

// runBuild is the main command logic
func runBuild(cmd *cobra.Command, args []string) error {
	// Validate flags before touching the network
	summary := OutputFormat(strings.ToLower(flagSummary))
	if summary != FormatText && summary != FormatJSON {
		return fmt.Errorf("invalid summary format: %s (must be 'text' or 'json')", flagSummary)
	}
	formats, err := ParseFormats(flagFormat)
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(flagSort)
	if err != nil {
		return err
	}

	level := logger.LevelDebug
	if !flagVerbose || cmd.Flags().Changed("log-level") {
		if level, err = logger.ParseLevel(flagLogLevel); err != nil {
			return err
		}
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	logger.DefaultMetrics().Reset()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("archive") {
		cfg.UseArchive = flagArchive
	}
	if cmd.Flags().Changed("render") {
		cfg.Render = flagRender
	}

	events, err := cfg.Select(flagEvents)
	if err != nil {
		return err
	}

	store, err := storage.New(flagOutDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	logger.Info("Starting build", logger.Fields{
		"config":  flagConfig,
		"out_dir": store.Dir(),
		"events":  len(events),
		"formats": strings.Join(formats, ","),
		"archive": cfg.UseArchive,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, flagTimeout)
	defer cancel()

	builder := &Builder{
		Config:  cfg,
		Fetcher: newFetcher(cfg, cfg.Render),
		Storage: store,
		Formats: formats,
		Archive: cfg.UseArchive,
	}
	result := builder.Run(ctx, events)

	sortLocations(result.Locations, order)
	if flagVerbose {
		snapshot := logger.GetMetricsSnapshot()
		result.Metrics = &snapshot
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, summary, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d locations failed", result.Failed, len(result.Locations))
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	os.Exit(run(NewRootCmd(), os.Stderr))
}

func run(cmd *cobra.Command, stderr io.Writer) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
