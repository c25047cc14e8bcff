package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mend/internal/config"
	"mend/internal/gitrepo"
	"mend/internal/logging"
	"mend/internal/retrieval"
	"mend/internal/source"
	"mend/internal/storage"
)

var (
	ctxBugID   string
	ctxTitle   string
	ctxBody    string
	ctxCommit  string
	ctxFiles   []string
	ctxFormat  string
	ctxNoCache bool
)

// cacheSuffix names the purpose of retrieval entries in the keyed cache.
const cacheSuffix = "context"

// contextRequiredKeys is the miss check for cached retrieval contexts.
var contextRequiredKeys = []string{"classes", "functions", "snippets"}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Retrieve ranked code context for a bug report",
	Long: `Build the retrieval context for a bug: structural graph of the changed
files, relevance-ranked snippets, method signatures, and commit history.

Results are cached in .mend/mend.db keyed by the repository state; any
tracked change invalidates the key.

Example:
  mend context --bug-id BUG-42 --title "add_order drops orders" \
    --commit 1f3a9c2 --file src/orders.py --file src/audit.py`,
	Run: runContext,
}

func init() {
	contextCmd.Flags().StringVar(&ctxBugID, "bug-id", "", "Bug identifier")
	contextCmd.Flags().StringVar(&ctxTitle, "title", "", "Bug title")
	contextCmd.Flags().StringVar(&ctxBody, "body", "", "Bug description")
	contextCmd.Flags().StringVar(&ctxCommit, "commit", "", "The bug's own commit, excluded from history")
	contextCmd.Flags().StringArrayVar(&ctxFiles, "file", nil, "Changed file (repeatable)")
	contextCmd.Flags().StringVar(&ctxFormat, "format", "text", "Output format: text or json")
	contextCmd.Flags().BoolVar(&ctxNoCache, "no-cache", false, "Bypass the context cache")
	contextCmd.MarkFlagRequired("title")
	contextCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	log := newLogger(cfg)
	ctx := context.Background()

	bug := &retrieval.BugReport{
		ID:           ctxBugID,
		Title:        ctxTitle,
		Body:         ctxBody,
		Commit:       ctxCommit,
		ChangedFiles: ctxFiles,
	}

	adapter := gitrepo.NewAdapter(repoFlag, log)

	if rc, ok := cachedContext(ctx, cfg, adapter, bug, log); ok {
		emitContext(rc)
		return
	}

	engine := retrieval.NewEngine(adapter, source.NewParser(), adapter, cfg.Retrieval, log)
	rc, err := engine.Build(ctx, bug)
	if err != nil {
		fail("Error building context: %v", err)
	}

	storeContext(ctx, cfg, adapter, bug, rc, log)
	emitContext(rc)
}

func emitContext(rc *retrieval.Context) {
	if ctxFormat == "json" {
		printJSON(rc)
		return
	}
	fmt.Println(retrieval.Format(rc))
}

// cachedContext looks the bug's context up in the persisted cache. Cache
// trouble is never fatal: it logs and reports a miss.
func cachedContext(ctx context.Context, cfg *config.Config, adapter *gitrepo.Adapter, bug *retrieval.BugReport, log *logging.Logger) (*retrieval.Context, bool) {
	if ctxNoCache || !cfg.Cache.Enabled {
		return nil, false
	}

	state, err := adapter.State(ctx)
	if err != nil {
		log.Warn("cache disabled: cannot compute repo state", logging.Fields{"error": err.Error()})
		return nil, false
	}

	db, err := storage.Open(repoFlag, log)
	if err != nil {
		log.Warn("cache disabled", logging.Fields{"error": err.Error()})
		return nil, false
	}
	defer db.Close()

	cache, err := storage.NewCache(db, cfg.Cache.TtlSeconds, log)
	if err != nil {
		log.Warn("cache disabled", logging.Fields{"error": err.Error()})
		return nil, false
	}

	value, hit, err := cache.Get(repoFlag, state.StateID, cacheSuffix+":"+bug.ID, contextRequiredKeys)
	if err != nil || !hit {
		if err != nil {
			log.Warn("cache read failed", logging.Fields{"error": err.Error()})
		}
		return nil, false
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	rc := retrieval.NewContext(bug.ID)
	if err := json.Unmarshal(raw, rc); err != nil {
		log.Warn("discarding undecodable cache entry", logging.Fields{"error": err.Error()})
		return nil, false
	}
	log.Debug("context served from cache", logging.Fields{"bug": bug.ID, "state": state.StateID})
	return rc, true
}

func storeContext(ctx context.Context, cfg *config.Config, adapter *gitrepo.Adapter, bug *retrieval.BugReport, rc *retrieval.Context, log *logging.Logger) {
	if ctxNoCache || !cfg.Cache.Enabled {
		return
	}
	state, err := adapter.State(ctx)
	if err != nil {
		return
	}
	db, err := storage.Open(repoFlag, log)
	if err != nil {
		return
	}
	defer db.Close()

	cache, err := storage.NewCache(db, cfg.Cache.TtlSeconds, log)
	if err != nil {
		return
	}
	if err := cache.Put(repoFlag, state.StateID, cacheSuffix+":"+bug.ID, rc); err != nil {
		log.Warn("cache write failed", logging.Fields{"error": err.Error()})
	}
}
