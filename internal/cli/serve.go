package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smarttree/smarttree/internal/toolserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON-RPC Tool Server on stdio.",
	Long: `serve starts the Tool Server (spec §4.9, §6.1): it reads JSON-RPC requests
on stdin and writes responses on stdout until the connection closes or the
process receives a termination signal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return fmt.Errorf("resolving config: %w", err)
		}

		roots := allowRootsFlag(cmd)
		roots = append(roots, cfg.AllowRoots...)
		if len(roots) == 0 {
			if cwd, err := os.Getwd(); err == nil {
				roots = []string{cwd}
			}
		}

		stateRoot, _ := cmd.Flags().GetString("state-dir")
		if stateRoot == "" {
			stateRoot = defaultStateDir()
		}

		server := toolserver.New(roots, stateRoot)
		return server.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("state-dir", "", "directory holding Signature Store state (default: <cwd>/.smart-tree/state)")
	rootCmd.AddCommand(serveCmd)
}

// defaultStateDir mirrors the teacher's fallback-to-cwd style for unset
// directory flags; the Signature Store itself namespaces per scan root
// underneath it (internal/signature.StateDir).
func defaultStateDir() string {
	if cwd, err := os.Getwd(); err == nil {
		return cwd + "/.smart-tree/state"
	}
	return ".smart-tree/state"
}
