package retrieval

import (
	"context"
	"sort"
	"strings"

	"mend/internal/config"
	"mend/internal/gitrepo"
	"mend/internal/logging"
)

// History is the slice of git the historical analyzer needs.
type History interface {
	FileHistory(ctx context.Context, path string, limit int) ([]gitrepo.Commit, error)
	RecentCommits(ctx context.Context, limit int) ([]gitrepo.Commit, error)
}

// historian collects per-file history and keyword-related commits.
type historian struct {
	git History
	cfg config.RetrievalConfig
	log *logging.Logger
}

// recentChanges collects the most recent commits touching each of the first
// (up to) MaxHistoryFiles changed files, excluding the bug's own commit.
// A file whose history cannot be read is logged and skipped.
func (h *historian) recentChanges(ctx context.Context, bug *BugReport) []FileCommits {
	files := bug.ChangedFiles
	if len(files) > h.cfg.MaxHistoryFiles {
		files = files[:h.cfg.MaxHistoryFiles]
	}

	var out []FileCommits
	for _, file := range files {
		// Ask for one extra so excluding the bug's commit still fills the quota.
		commits, err := h.git.FileHistory(ctx, file, h.cfg.CommitsPerFile+1)
		if err != nil {
			h.log.Warn("skipping file history", logging.Fields{"file": file, "error": err.Error()})
			continue
		}
		kept := make([]gitrepo.Commit, 0, h.cfg.CommitsPerFile)
		for _, c := range commits {
			if c.Hash == bug.Commit {
				continue
			}
			kept = append(kept, c)
			if len(kept) == h.cfg.CommitsPerFile {
				break
			}
		}
		if len(kept) > 0 {
			out = append(out, FileCommits{File: file, Commits: kept})
		}
	}
	return out
}

// relatedCommits scores the most recent CommitScanDepth repository commits
// by bug-title keyword hits and keeps the top RelatedCommits with a
// positive score. Ties keep recency order.
func (h *historian) relatedCommits(ctx context.Context, bug *BugReport) []RelatedCommit {
	keywords := titleKeywords(bug.Title)
	if len(keywords) == 0 {
		return nil
	}

	commits, err := h.git.RecentCommits(ctx, h.cfg.CommitScanDepth)
	if err != nil {
		h.log.Warn("skipping related commits", logging.Fields{"error": err.Error()})
		return nil
	}

	var scored []RelatedCommit
	for _, c := range commits {
		if c.Hash == bug.Commit {
			continue
		}
		message := strings.ToLower(c.Message)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(message, kw) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, RelatedCommit{Commit: c, Score: score})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	if len(scored) > h.cfg.RelatedCommits {
		scored = scored[:h.cfg.RelatedCommits]
	}
	return scored
}

// titleKeywords extracts lowercase words longer than 3 characters from the
// bug title, stop-words removed, first-seen order preserved.
func titleKeywords(title string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range tokenize(title) {
		if len(t) > 3 && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
