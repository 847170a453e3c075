package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/harrison/seeker/internal/config"
	"github.com/harrison/seeker/internal/history"
	"github.com/harrison/seeker/internal/logger"
	"github.com/harrison/seeker/internal/models"
	"github.com/harrison/seeker/internal/search"
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <root>",
		Short: "Search a directory tree in parallel",
		Long: `Search a directory tree with a pool of parallel workers.

Without content flags, search runs in locate mode and reports every file
whose name matches the glob pattern. With --keyword or --terms it switches
to content mode: name-matched files are scanned line by line, and a file
matches when a single line satisfies the content strategy. When both are
given, --terms wins.

Matching paths print to stdout and land in a rotating results log, which
is itself excluded from matching. Unreadable entries are counted and
skipped, never fatal; only a missing root aborts the run. Interrupting a
run (Ctrl-C) stops it gracefully and keeps the partial results.

Configuration is loaded from $SEEKER_HOME/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  # Locate files by name
  seeker search /var/data --pattern '*.config'

  # Only files modified within the last 6 months
  seeker search /var/data --pattern '*.log' --months 6

  # Content search for a single keyword
  seeker search /var/data --keyword ERROR

  # Require half of the terms on a single line
  seeker search /var/data --terms foo,bar,baz --fraction 0.5

  # Other options
  seeker search --workers 8 /var/data          # Wider worker pool
  seeker search --rearm /var/data              # Idle workers re-check the queue
  seeker search --no-progress /var/data        # Silence the progress line
  seeker search --results-log out/hits.log /var/data
  seeker search --config custom.yaml /var/data # Use custom config file`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	// Add flags
	cmd.Flags().StringP("pattern", "p", "", "File-name glob pattern (default \"*\")")
	cmd.Flags().IntP("months", "m", 0, "Only match files modified within the last N months (0 = no cutoff)")
	cmd.Flags().StringP("keyword", "k", "", "Keyword the file content must contain")
	cmd.Flags().StringP("terms", "t", "", "Comma-separated terms for content search")
	cmd.Flags().Float64P("fraction", "f", 0, "Fraction of terms one line must carry (clamped to 0.1-1.0)")
	cmd.Flags().IntP("workers", "w", 0, "Worker pool size (0 = use config)")
	cmd.Flags().Bool("no-progress", false, "Disable the periodic progress line")
	cmd.Flags().Bool("rearm", false, "Idle workers re-check the queue instead of exiting")
	cmd.Flags().String("results-log", "", "Path of the results log file")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")

	return cmd
}

// runSearch implements the search command logic
func runSearch(cmd *cobra.Command, args []string) error {
	root := args[0]
	output := cmd.OutOrStdout()

	// Load configuration from file
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Get flag values
	patternFlag, _ := cmd.Flags().GetString("pattern")
	monthsFlag, _ := cmd.Flags().GetInt("months")
	keyword, _ := cmd.Flags().GetString("keyword")
	termsFlag, _ := cmd.Flags().GetString("terms")
	fractionFlag, _ := cmd.Flags().GetFloat64("fraction")
	workersFlag, _ := cmd.Flags().GetInt("workers")
	noProgressFlag, _ := cmd.Flags().GetBool("no-progress")
	rearmFlag, _ := cmd.Flags().GetBool("rearm")
	resultsLogFlag, _ := cmd.Flags().GetString("results-log")
	noHistoryFlag, _ := cmd.Flags().GetBool("no-history")
	verbose, quiet, err := verbosityFlags(cmd)
	if err != nil {
		return err
	}

	// Build flag pointers for merge (only values the user set)
	var workersPtr *int
	if cmd.Flags().Changed("workers") {
		workersPtr = &workersFlag
	}

	var patternPtr *string
	if cmd.Flags().Changed("pattern") {
		patternPtr = &patternFlag
	}

	var monthsPtr *int
	if cmd.Flags().Changed("months") {
		monthsPtr = &monthsFlag
	}

	var fractionPtr *float64
	if cmd.Flags().Changed("fraction") {
		fractionPtr = &fractionFlag
	}

	var progressPtr *bool
	if cmd.Flags().Changed("no-progress") {
		progress := !noProgressFlag
		progressPtr = &progress
	}

	var rearmPtr *bool
	if cmd.Flags().Changed("rearm") {
		rearmPtr = &rearmFlag
	}

	var resultsLogPtr *string
	if cmd.Flags().Changed("results-log") {
		resultsLogPtr = &resultsLogFlag
	}

	var historyPtr *bool
	if cmd.Flags().Changed("no-history") {
		keepHistory := !noHistoryFlag
		historyPtr = &keepHistory
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(workersPtr, patternPtr, monthsPtr, fractionPtr, progressPtr, rearmPtr, resultsLogPtr, historyPtr)
	cfg.Normalize()

	// Reject malformed globs up front; a bad pattern would otherwise match
	// nothing, silently.
	if _, err := filepath.Match(cfg.Pattern, "probe"); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", cfg.Pattern, err)
	}

	// Determine log level: verbosity flags override config
	logLevel := cfg.LogLevel
	if verbose {
		logLevel = "debug"
	}
	if quiet {
		logLevel = "error"
	}

	consoleLog := logger.NewConsoleLogger(output, logLevel)
	consoleLog.LogDebug(fmt.Sprintf("Config: %s", configPath))

	var terms []string
	if termsFlag != "" {
		terms = strings.Split(termsFlag, ",")
	}

	// Set up signal handling: the first interrupt cancels the run, workers
	// drain their open directories, and partial results survive.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			consoleLog.LogWarn("Interrupt received, finishing open directories...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Open the results writer before the run starts so the log already
	// exists on disk while workers traverse. A writer failure degrades the
	// run to console-only output instead of aborting it.
	results, err := logger.NewResultsWriter(cfg.Results.File, cfg.Results.MaxSizeMB, cfg.Results.MaxBackups, cfg.Results.MaxAgeDays)
	if err != nil {
		consoleLog.LogWarn(fmt.Sprintf("Results log disabled: %v", err))
		results = nil
	} else {
		defer results.Close()
	}

	opts := search.Options{
		Pattern:      cfg.Pattern,
		Months:       cfg.Months,
		Keyword:      keyword,
		Terms:        terms,
		Fraction:     cfg.Fraction,
		Workers:      cfg.Workers,
		RearmIdle:    cfg.RearmIdle,
		ResultsLog:   filepath.Base(cfg.Results.File),
		InitialDelay: cfg.InitialDelay,
		Interval:     cfg.Interval,
		Logger:       consoleLog,
	}
	if cfg.Progress && !quiet {
		opts.OnSnapshot = consoleLog.LogProgress
	}
	opts = opts.Normalize()

	session := search.NewSession(opts)
	consoleLog.LogSearchStart(root, opts.Mode(), opts.Workers)

	result, err := session.Run(ctx, root)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	consoleLog.LogSearchComplete(root, result.Elapsed)

	for _, record := range result.Records {
		fmt.Fprintln(output, record.String())
	}

	if results != nil {
		if err := writeResultsLog(results, cfg.Pattern, result); err != nil {
			consoleLog.LogWarn(fmt.Sprintf("Results log write failed: %v", err))
		}
	}

	if cfg.History {
		recordHistory(consoleLog, cfg, result, keyword, terms)
	}

	consoleLog.LogSummary(*result)

	return nil
}

// loadConfig resolves the settings file (explicit --config flag or the
// default under the seeker home) and loads it. A missing default file is
// fine; an unreadable or malformed one is not.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		var err error
		configPath, err = config.ConfigPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	return cfg, configPath, nil
}

// verbosityFlags reads --verbose and --quiet, rejecting the combination.
func verbosityFlags(cmd *cobra.Command) (verbose, quiet bool, err error) {
	verbose, _ = cmd.Flags().GetBool("verbose")
	quiet, _ = cmd.Flags().GetBool("quiet")
	if verbose && quiet {
		return false, false, fmt.Errorf("cannot use both --verbose and --quiet")
	}
	return verbose, quiet, nil
}

// writeResultsLog streams one finished run into the results log: header,
// every match, then the summary block.
func writeResultsLog(w *logger.ResultsWriter, pattern string, result *models.RunResult) error {
	if err := w.WriteHeader(result.RunID, result.Root, result.Mode, pattern); err != nil {
		return err
	}
	for _, record := range result.Records {
		if err := w.WriteMatch(record); err != nil {
			return err
		}
	}
	return w.WriteSummary(*result)
}

// recordHistory appends the finished run to the history database. History
// is best-effort: every failure here is a warning, never a search failure.
func recordHistory(log *logger.ConsoleLogger, cfg *config.Config, result *models.RunResult, keyword string, terms []string) {
	dbPath, err := config.HistoryDBPath()
	if err != nil {
		log.LogWarn(fmt.Sprintf("History disabled: %v", err))
		return
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("History disabled: %v", err))
		return
	}
	defer store.Close()

	record := &models.RunRecord{
		ID:          result.RunID,
		Root:        result.Root,
		Mode:        result.Mode,
		Pattern:     cfg.Pattern,
		Keyword:     keyword,
		Terms:       strings.Join(terms, ","),
		Fraction:    cfg.Fraction,
		Months:      cfg.Months,
		Workers:     cfg.Workers,
		StartedAt:   result.StartedAt,
		Duration:    result.Elapsed,
		Directories: result.Directories,
		Matches:     int64(len(result.Records)),
		Canceled:    result.Canceled,
	}

	// The run context may already be canceled on an interrupted run; the
	// record is written regardless.
	if err := store.RecordRun(context.Background(), record); err != nil {
		log.LogWarn(fmt.Sprintf("History write failed: %v", err))
	}
}
