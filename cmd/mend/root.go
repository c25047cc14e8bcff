package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mend/internal/config"
	"mend/internal/logging"
	"mend/internal/version"
)

var (
	repoFlag      string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "mend",
	Short: "mend - patch synthesis and validation for automated bug fixing",
	Long: `mend is the code-side core of an automated bug-fixing pipeline: it indexes
source files into queryable elements, retrieves ranked context for a bug
report, turns externally generated fix intents into unified-diff patches,
and validates arbitrary diffs against the working tree with fuzzy
relocation suggestions for stale hunks.`,
	Version: version.Info(),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print full version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}

func init() {
	rootCmd.SetVersionTemplate("mend version {{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", ".", "Repository root")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: human, json")
}

// loadConfig reads .mend/config.json under the --repo root and applies the
// logging flag overrides.
func loadConfig() *config.Config {
	cfg, err := config.Load(repoFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if logFormatFlag != "" {
		cfg.Logging.Format = logFormatFlag
	}
	return cfg
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.Level(cfg.Logging.Level),
	})
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
