package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mend/internal/gitrepo"
	"mend/internal/logging"
	"mend/internal/source"
)

var (
	locateKind     string
	locateClass    string
	locateStrategy string
	locateAnchor   string
	locateLine     int
)

var locateCmd = &cobra.Command{
	Use:   "locate <file> [name]",
	Short: "Find an element or insertion point in a source file",
	Long: `Locate a named function or class in a file, or resolve an insertion
point for new code.

Examples:
  mend locate src/orders.py add_order
  mend locate src/orders.py add_order --class OrderBook
  mend locate src/orders.py --strategy end_of_class --class OrderBook
  mend locate src/orders.py --strategy after_method --anchor add_order --class OrderBook`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runLocate,
}

func init() {
	locateCmd.Flags().StringVar(&locateKind, "kind", "function", "Element kind: function or class")
	locateCmd.Flags().StringVar(&locateClass, "class", "", "Restrict the search to methods of this class")
	locateCmd.Flags().StringVar(&locateStrategy, "strategy", "", "Insertion strategy: after_method, before_method, end_of_class, beginning_of_class, line_number")
	locateCmd.Flags().StringVar(&locateAnchor, "anchor", "", "Anchor method for after_method/before_method")
	locateCmd.Flags().IntVar(&locateLine, "line", 0, "Line for the line_number strategy")
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	log := newLogger(cfg)
	ctx := context.Background()

	idx := mustIndexFile(ctx, args[0], log)

	if locateStrategy != "" {
		strategy := source.InsertionStrategy{Type: locateStrategy, Anchor: locateAnchor, Line: locateLine}
		line, ok := idx.FindInsertionPoint(strategy, locateClass)
		if !ok {
			fail("Error: cannot resolve insertion strategy %q in %s", locateStrategy, args[0])
		}
		printJSON(map[string]interface{}{"file": args[0], "insertAt": line})
		return
	}

	if len(args) < 2 {
		fail("Error: a name or --strategy is required")
	}
	kind := source.KindFunction
	if locateKind == "class" {
		kind = source.KindClass
	}
	el, ok := idx.FindElement(args[1], kind, locateClass)
	if !ok {
		fail("Error: %s %q not found in %s", locateKind, args[1], args[0])
	}
	printJSON(map[string]interface{}{
		"file":      args[0],
		"name":      el.Name,
		"kind":      el.Kind,
		"startLine": el.StartLine,
		"endLine":   el.EndLine,
		"parent":    el.Parent,
	})
}

// mustIndexFile reads a working-tree file and builds its element index.
func mustIndexFile(ctx context.Context, path string, log *logging.Logger) *source.Index {
	adapter := gitrepo.NewAdapter(repoFlag, log)
	text, err := adapter.FileAtRevision(ctx, path, "")
	if err != nil {
		fail("Error reading %s: %v", path, err)
	}

	parser := source.NewParser()
	elements, err := parser.Parse(ctx, source.NewFile(path, text))
	if err != nil {
		fail("Error parsing %s: %v", path, err)
	}
	return source.NewIndex(elements)
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail("Error encoding output: %v", err)
	}
	fmt.Println(string(out))
}
