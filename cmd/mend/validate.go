package main

import (
	"context"

	"github.com/spf13/cobra"

	"mend/internal/gitrepo"
	"mend/internal/patchval"
)

var validateNoDryRun bool

var validateCmd = &cobra.Command{
	Use:   "validate <patch.diff>",
	Short: "Check whether a diff applies to the working tree",
	Long: `Parse a unified diff, compare every hunk against current file content,
and run a dry-run apply check. Mismatched hunks get a suggested relocation
when a close match exists within the search window. Pass "-" to read the
diff from stdin.

The result is a JSON record: overall validity, per-hunk analysis, and the
dry-run diagnostic verbatim.

Example:
  mend synth fix-intent.json | mend validate -`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateNoDryRun, "no-dry-run", false, "Skip the git apply check; validity follows the heuristics")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	log := newLogger(cfg)
	ctx := context.Background()

	data, err := readArg(args[0])
	if err != nil {
		fail("Error reading diff: %v", err)
	}

	adapter := gitrepo.NewAdapter(repoFlag, log)
	var checker patchval.ApplyChecker
	if !validateNoDryRun {
		checker = adapter
	}

	validator := patchval.NewValidator(cfg.Validation, adapter, checker, log)
	result := validator.Validate(ctx, string(data))
	printJSON(result)
}
