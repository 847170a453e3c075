package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harrison/seeker/internal/config"
	"github.com/harrison/seeker/internal/history"
	"github.com/harrison/seeker/internal/models"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'seeker history' parent command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Run history commands",
		Long: `Commands for viewing and managing recorded search runs.

Every completed search is appended to a local database under the seeker
home directory. These commands list past runs, aggregate them, and clear
the record.`,
	}

	// Add subcommands
	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryStatsCommand())
	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

// resolveHistoryDB returns the database path, honoring the test override.
func resolveHistoryDB(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return config.HistoryDBPath()
}

// newHistoryListCommand creates the 'seeker history list' command
func newHistoryListCommand() *cobra.Command {
	var limit int
	var dbPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent search runs",
		Long: `Display the most recent search runs, newest first, including:
  - Root, mode, and criteria
  - Match and directory counts
  - Duration and cancellation status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, limit, dbPath)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of runs to show")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (for testing)")

	return cmd
}

// runHistoryList executes the list command
func runHistoryList(cmd *cobra.Command, limit int, dbPathOverride string) error {
	output := cmd.OutOrStdout()

	dbPath, err := resolveHistoryDB(dbPathOverride)
	if err != nil {
		return fmt.Errorf("resolve history database path: %w", err)
	}

	// Check if database exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No run history found.\n")
		fmt.Fprintf(output, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(output, "No run history found.\n")
		return nil
	}

	printRunList(output, runs)

	return nil
}

// printRunList formats and prints recent runs, newest first
func printRunList(w io.Writer, runs []*models.RunRecord) {
	// Colors
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "\n=== Run History ===\n\n")
	fmt.Fprintf(w, "Showing %d run(s)\n\n", len(runs))

	for i, run := range runs {
		cyan.Fprintf(w, "%s  %s\n", formatTimestamp(run.StartedAt), run.Root)
		fmt.Fprintf(w, "  Mode: %s ", run.Mode)
		gray.Fprintf(w, "(%s ago)\n", formatAge(time.Since(run.StartedAt)))
		fmt.Fprintf(w, "  Criteria: %s\n", describeCriteria(run))
		fmt.Fprintf(w, "  Matches: ")
		green.Fprintf(w, "%s", humanize.Comma(run.Matches))
		fmt.Fprintf(w, " across %s directories\n", humanize.Comma(run.Directories))
		fmt.Fprintf(w, "  Duration: %s", run.Duration.Round(time.Millisecond))
		if run.Canceled {
			fmt.Fprintf(w, " ")
			yellow.Fprintf(w, "(canceled, partial)")
		}
		fmt.Fprintln(w)

		// Separator between runs
		if i < len(runs)-1 {
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w)
}

// describeCriteria renders a run's search criteria on one line
func describeCriteria(run *models.RunRecord) string {
	parts := []string{fmt.Sprintf("pattern %q", run.Pattern)}
	if run.Months > 0 {
		parts = append(parts, fmt.Sprintf("modified within %d month(s)", run.Months))
	}
	if run.Terms != "" {
		parts = append(parts, fmt.Sprintf("terms [%s] fraction %.2f", run.Terms, run.Fraction))
	} else if run.Keyword != "" {
		parts = append(parts, fmt.Sprintf("keyword %q", run.Keyword))
	}
	parts = append(parts, fmt.Sprintf("%d worker(s)", run.Workers))
	return strings.Join(parts, ", ")
}

// newHistoryStatsCommand creates the 'seeker history stats' command
func newHistoryStatsCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate run statistics",
		Long: `Display aggregate statistics over every recorded run including:
  - Total runs and matches
  - Directories visited
  - Canceled run count
  - Average run duration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryStats(cmd, dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (for testing)")

	return cmd
}

// runHistoryStats executes the stats command
func runHistoryStats(cmd *cobra.Command, dbPathOverride string) error {
	output := cmd.OutOrStdout()

	dbPath, err := resolveHistoryDB(dbPathOverride)
	if err != nil {
		return fmt.Errorf("resolve history database path: %w", err)
	}

	// Check if database exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No run history found.\n")
		fmt.Fprintf(output, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get statistics: %w", err)
	}

	if stats.Runs == 0 {
		fmt.Fprintf(output, "No run history found.\n")
		return nil
	}

	printHistoryStats(output, stats)

	return nil
}

// printHistoryStats formats and prints the aggregates
func printHistoryStats(w io.Writer, stats *history.Stats) {
	// Colors
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "\n=== Run Statistics ===\n\n")

	fmt.Fprintf(w, "  Total runs: %s\n", humanize.Comma(stats.Runs))
	fmt.Fprintf(w, "  Total matches: ")
	green.Fprintf(w, "%s\n", humanize.Comma(stats.Matches))
	fmt.Fprintf(w, "  Directories visited: %s\n", humanize.Comma(stats.Directories))
	fmt.Fprintf(w, "  Canceled runs: ")
	if stats.Canceled > 0 {
		red.Fprintf(w, "%s\n", humanize.Comma(stats.Canceled))
	} else {
		fmt.Fprintf(w, "0\n")
	}
	fmt.Fprintf(w, "  Average duration: %s\n", stats.AverageTime.Round(time.Millisecond))
	fmt.Fprintf(w, "  Last run: %s ", formatTimestamp(stats.LastRun))
	gray.Fprintf(w, "(%s ago)\n", formatAge(time.Since(stats.LastRun)))

	fmt.Fprintln(w)
}

// newHistoryClearCommand creates the 'seeker history clear' command
func newHistoryClearCommand() *cobra.Command {
	var force bool
	var dbPath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear run history",
		Long: `Delete every recorded run from the history database.

Examples:
  # Clear all history (requires confirmation)
  seeker history clear

  # Clear without prompting
  seeker history clear --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, force, dbPath)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (for testing)")

	return cmd
}

// runHistoryClear executes the clear command
func runHistoryClear(cmd *cobra.Command, force bool, dbPathOverride string) error {
	output := cmd.OutOrStdout()

	dbPath, err := resolveHistoryDB(dbPathOverride)
	if err != nil {
		return fmt.Errorf("resolve history database path: %w", err)
	}

	if !force {
		fmt.Fprintf(output, "WARNING: This will delete ALL recorded runs.\n")
		if !confirmAction(output) {
			fmt.Fprintf(output, "Operation cancelled.\n")
			return nil
		}
	}

	// Check if database exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No history database found at: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	deletedCount, err := store.Clear(context.Background())
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}

	recordText := "record"
	if deletedCount != 1 {
		recordText = "records"
	}
	fmt.Fprintf(output, "Deleted %d %s.\n", deletedCount, recordText)

	return nil
}

// confirmAction prompts the user for confirmation on stdin
func confirmAction(output io.Writer) bool {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Fprintf(output, "Continue? [y/N]: ")

	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatAge formats how long ago something happened in coarse units
func formatAge(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}
