package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/harrison/seeker/internal/config"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the 'seeker config' parent command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Settings commands",
		Long: `Commands for inspecting and initializing seeker's settings file.

Settings live in $SEEKER_HOME/config.yaml (default ~/.seeker/config.yaml)
and every value can be overridden per run with CLI flags.`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigInitCommand creates the 'seeker config init' command
func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings file",
		Long: `Write a settings file populated with the compiled-in defaults.

The file is written atomically; an existing file is only replaced when
--force is given.

Examples:
  # Create ~/.seeker/config.yaml with defaults
  seeker config init

  # Overwrite an existing settings file
  seeker config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")

	return cmd
}

// runConfigInit executes the init command
func runConfigInit(cmd *cobra.Command, force bool) error {
	output := cmd.OutOrStdout()

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		var err error
		configPath, err = config.ConfigPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("settings file already exists at %s (use --force to overwrite)", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	fmt.Fprintf(output, "Wrote default settings to %s\n", configPath)

	return nil
}

// newConfigShowCommand creates the 'seeker config show' command
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Long: `Display the settings a search would run with: the settings file
merged over the compiled-in defaults, after clamping.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}

	return cmd
}

// runConfigShow executes the show command
func runConfigShow(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()

	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Normalize()

	source := configPath
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		source = fmt.Sprintf("%s (not found, showing defaults)", configPath)
	}

	printSettings(output, cfg, source)

	return nil
}

// printSettings formats and prints the effective settings
func printSettings(w io.Writer, cfg *config.Config, source string) {
	cyan := color.New(color.FgCyan, color.Bold)

	cyan.Fprintf(w, "\n=== Seeker Settings ===\n\n")
	fmt.Fprintf(w, "Settings file: %s\n\n", source)

	fmt.Fprintf(w, "  Workers: %d\n", cfg.Workers)
	fmt.Fprintf(w, "  Pattern: %s\n", cfg.Pattern)
	fmt.Fprintf(w, "  Months: %d\n", cfg.Months)
	fmt.Fprintf(w, "  Fraction: %.2f\n", cfg.Fraction)
	fmt.Fprintf(w, "  Log level: %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "  Progress: %t (initial delay %s, interval %s)\n", cfg.Progress, cfg.InitialDelay, cfg.Interval)
	fmt.Fprintf(w, "  Re-arm idle workers: %t\n", cfg.RearmIdle)
	fmt.Fprintf(w, "  History: %t\n", cfg.History)
	fmt.Fprintf(w, "  Results log: %s (rotate at %d MB, keep %d backups, %d day retention)\n",
		cfg.Results.File, cfg.Results.MaxSizeMB, cfg.Results.MaxBackups, cfg.Results.MaxAgeDays)

	fmt.Fprintln(w)
}
