package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/encoder"
	"github.com/smarttree/smarttree/internal/filter"
	"github.com/smarttree/smarttree/internal/ignore"
	"github.com/smarttree/smarttree/internal/pathgate"
	"github.com/smarttree/smarttree/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory once and print the result in the chosen format.",
	Long: `scan runs a single Scanner -> Filters -> Encoder pass and writes the result
to stdout, without starting the Tool Server. Useful for smoke-testing an
encoder format, or for shell pipelines that don't need JSON-RPC.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("format", "", "encoder format (default: config's default_format, or hextree)")
	scanCmd.Flags().Int("max-depth", 0, "maximum traversal depth (0 = 100)")
	scanCmd.Flags().Bool("show-hidden", false, "include dotfiles")
	scanCmd.Flags().Bool("show-ignored", false, "surface ignored entries as single collapsed nodes")
	scanCmd.Flags().String("find", "", "regex applied to each entry's path")
	scanCmd.Flags().String("ext", "", "keep only this extension")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := absPath(root)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig()
	if err != nil {
		return fmt.Errorf("resolving config: %w", err)
	}

	allowed := allowRootsFlag(cmd)
	allowed = append(allowed, cfg.AllowRoots...)
	if len(allowed) == 0 {
		allowed = []string{absRoot}
	}
	gate := pathgate.New(allowed...)
	if err := gate.Check(absRoot); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.DefaultFormat
	}
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	if maxDepth == 0 {
		maxDepth = 100
	}
	showHidden, _ := cmd.Flags().GetBool("show-hidden")
	showIgnored, _ := cmd.Flags().GetBool("show-ignored")
	findPattern, _ := cmd.Flags().GetString("find")
	ext, _ := cmd.Flags().GetString("ext")

	scanCfg := scanner.Config{
		Root:              absRoot,
		MaxDepth:          maxDepth,
		RespectGitignore:  true,
		ShowHidden:        showHidden,
		ShowIgnored:       showIgnored,
		UseDefaultIgnores: true,
		Ignorer:           ignore.NewDefaultIgnoreMatcher(),
		FindPattern:       findPattern,
		FileTypeFilter:    ext,
		SymlinkAllowList:  gate.Allow,
	}

	result, err := scanner.Walk(cmd.Context(), scanCfg)
	if err != nil {
		return err
	}
	nodes, stats := result.Nodes, result.Stats

	preds, err := filter.Compile(scanCfg)
	if err != nil {
		return err
	}
	if preds.Active() {
		nodes, stats = filter.Apply(nodes, preds)
	}

	reg := encoder.NewRegistry()
	enc, err := reg.Get(format)
	if err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "unknown format %q", format)
	}

	return enc.Emit(os.Stdout, nodes, stats, absRoot)
}

func absPath(path string) (string, error) {
	abs, err := os.Getwd()
	if path == "." || path == "" {
		return abs, err
	}
	if path[0] == '/' {
		return path, nil
	}
	return abs + "/" + path, err
}
