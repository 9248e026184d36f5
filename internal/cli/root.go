// Package cli implements the Cobra command hierarchy for the smarttree CLI,
// grounded on the teacher's internal/cli/root.go: cross-cutting logging
// setup in PersistentPreRunE, Execute() returning a process exit code, and
// help printed when no subcommand is given.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/smarttree/smarttree/internal/config"
	"github.com/smarttree/smarttree/internal/smlog"
)

var rootCmd = &cobra.Command{
	Use:   "smarttree",
	Short: "Intelligent directory analysis for AI tool use.",
	Long: `smarttree scans a directory, scores what's interesting in it, and renders
the result through one of several compact encoder formats — either as a
one-shot CLI scan or as a JSON-RPC Tool Server an AI agent can drive over
stdio.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		level := smlog.ResolveLevel(verbose, quiet)
		format := smlog.ResolveFormat()
		smlog.Setup(level, format)
		slog.Debug("logging initialized", "level", level, "format", format)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "only log errors")
	rootCmd.PersistentFlags().String("allow", "", "colon-separated allow-list roots, in addition to SMART_TREE_ALLOW")
}

// Execute runs the root command and returns a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		return 1
	}
	return 0
}

// allowRootsFlag splits the --allow flag into a slice, mirroring
// SMART_TREE_ALLOW's colon-separated format (spec §6.4) for CLI
// consistency.
func allowRootsFlag(cmd *cobra.Command) []string {
	raw, _ := cmd.Flags().GetString("allow")
	if raw == "" {
		return nil
	}
	var roots []string
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == ':' {
			roots = append(roots, raw[start:i])
			start = i + 1
		}
	}
	roots = append(roots, raw[start:])
	return roots
}

// resolveConfig loads smarttree's layered configuration for the current
// working directory (spec's ambient config stack), used by both
// subcommands so neither has to duplicate the resolution call.
func resolveConfig() (*config.Config, error) {
	return config.Resolve(config.Options{})
}
