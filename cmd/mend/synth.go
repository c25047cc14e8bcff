package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mend/internal/gitrepo"
	"mend/internal/intent"
	"mend/internal/source"
	"mend/internal/synth"
)

var synthJSON bool

var synthCmd = &cobra.Command{
	Use:   "synth <intent.json>",
	Short: "Synthesize a unified-diff patch from a fix intent",
	Long: `Read a fix intent (JSON) and emit a unified diff implementing it.
Pass "-" to read the intent from stdin.

The intent names a target file plus one of three fix types: add_method
(with an insertion strategy), replace_method (with a target method), or
modify_lines (with an explicit line range).

Example:
  mend synth fix-intent.json
  cat fix-intent.json | mend synth -`,
	Args: cobra.ExactArgs(1),
	Run:  runSynth,
}

func init() {
	synthCmd.Flags().BoolVar(&synthJSON, "json", false, "Emit the full patch record as JSON instead of the raw diff")
	rootCmd.AddCommand(synthCmd)
}

func runSynth(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	log := newLogger(cfg)
	ctx := context.Background()

	data, err := readArg(args[0])
	if err != nil {
		fail("Error reading intent: %v", err)
	}
	fi, err := intent.Parse(data)
	if err != nil {
		fail("Error: %v", err)
	}

	adapter := gitrepo.NewAdapter(repoFlag, log)
	text, err := adapter.FileAtRevision(ctx, fi.TargetFile, "")
	if err != nil {
		fail("Error reading %s: %v", fi.TargetFile, err)
	}
	f := source.NewFile(fi.TargetFile, text)

	if err := fi.Validate(len(f.Lines)); err != nil {
		fail("Error: %v", err)
	}

	elements, err := source.NewParser().Parse(ctx, f)
	if err != nil {
		fail("Error parsing %s: %v", fi.TargetFile, err)
	}

	engine := synth.NewEngine(cfg.Synthesis, log)
	patch, err := engine.Synthesize(ctx, f, source.NewIndex(elements), fi)
	if err != nil {
		fail("Error: %v", err)
	}

	if synthJSON {
		printJSON(patch)
		return
	}
	fmt.Print(patch.Diff)
}

// readArg reads a file argument, with "-" meaning stdin.
func readArg(arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(arg)
}
