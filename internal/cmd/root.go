package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for seeker
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seeker",
		Short: "Parallel bulk filesystem search",
		Long: `Seeker walks a directory tree with a pool of parallel workers and
reports files whose names match a glob pattern or whose contents
match the requested keywords.

Matches print to the console and land in a rotating results log, and
each run is recorded in a local history database for later inspection.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: $SEEKER_HOME/config.yaml)")
	cmd.PersistentFlags().Bool("verbose", false, "Show debug output")
	cmd.PersistentFlags().Bool("quiet", false, "Only show errors")

	// Add subcommands
	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}
