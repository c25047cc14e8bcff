package retrieval

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"mend/internal/config"
	"mend/internal/gitrepo"
	"mend/internal/logging"
)

type fakeGit struct {
	fileCommits map[string][]gitrepo.Commit
	recent      []gitrepo.Commit
	err         error
}

func (g *fakeGit) FileHistory(_ context.Context, path string, limit int) ([]gitrepo.Commit, error) {
	if g.err != nil {
		return nil, g.err
	}
	commits := g.fileCommits[path]
	if limit > 0 && len(commits) > limit {
		commits = commits[:limit]
	}
	return commits, nil
}

func (g *fakeGit) RecentCommits(_ context.Context, limit int) ([]gitrepo.Commit, error) {
	if g.err != nil {
		return nil, g.err
	}
	commits := g.recent
	if limit > 0 && len(commits) > limit {
		commits = commits[:limit]
	}
	return commits, nil
}

func commit(hash, message string) gitrepo.Commit {
	return gitrepo.Commit{Hash: hash, Author: "dev", Timestamp: "2026-01-01T00:00:00Z", Message: message}
}

func testHistorian(git History) *historian {
	return &historian{git: git, cfg: config.DefaultConfig().Retrieval, log: logging.Nop()}
}

func TestRecentChangesExcludesBugCommit(t *testing.T) {
	commits := make([]gitrepo.Commit, 0, 7)
	commits = append(commits, commit("bugsha", "the bug introducing commit"))
	for i := 0; i < 6; i++ {
		commits = append(commits, commit(fmt.Sprintf("sha%d", i), fmt.Sprintf("change %d", i)))
	}
	git := &fakeGit{fileCommits: map[string][]gitrepo.Commit{"a.py": commits}}

	bug := &BugReport{ID: "BUG-1", Commit: "bugsha", ChangedFiles: []string{"a.py"}}
	changes := testHistorian(git).recentChanges(context.Background(), bug)

	if len(changes) != 1 {
		t.Fatalf("got %d files, want 1", len(changes))
	}
	got := changes[0].Commits
	if len(got) != 5 {
		t.Fatalf("got %d commits, want 5", len(got))
	}
	for _, c := range got {
		if c.Hash == "bugsha" {
			t.Error("bug's own commit included in history")
		}
	}
}

func TestRecentChangesCapsFiles(t *testing.T) {
	git := &fakeGit{fileCommits: map[string][]gitrepo.Commit{
		"a.py": {commit("a1", "m")},
		"b.py": {commit("b1", "m")},
		"c.py": {commit("c1", "m")},
		"d.py": {commit("d1", "m")},
	}}
	bug := &BugReport{ChangedFiles: []string{"a.py", "b.py", "c.py", "d.py"}}

	changes := testHistorian(git).recentChanges(context.Background(), bug)
	if len(changes) != 3 {
		t.Errorf("got %d files, want 3 (MaxHistoryFiles)", len(changes))
	}
}

func TestRecentChangesSkipsFailingFile(t *testing.T) {
	git := &fakeGit{err: fmt.Errorf("not a git repository")}
	bug := &BugReport{ChangedFiles: []string{"a.py"}}
	if changes := testHistorian(git).recentChanges(context.Background(), bug); len(changes) != 0 {
		t.Errorf("got %v, want none", changes)
	}
}

func TestRelatedCommitsScoring(t *testing.T) {
	git := &fakeGit{recent: []gitrepo.Commit{
		commit("s1", "refactor dashboard layout"),
		commit("s2", "fix timeout handling in connection pool"),
		commit("s3", "fix connection retry"),
		commit("bugsha", "connection timeout everywhere"),
		commit("s4", "bump dependencies"),
	}}
	bug := &BugReport{Title: "Connection timeout under load", Commit: "bugsha"}

	related := testHistorian(git).relatedCommits(context.Background(), bug)

	if len(related) != 2 {
		t.Fatalf("got %d related commits, want 2: %+v", len(related), related)
	}
	if related[0].Commit.Hash != "s2" || related[0].Score != 2 {
		t.Errorf("top commit = %s score %d, want s2 score 2", related[0].Commit.Hash, related[0].Score)
	}
	if related[1].Commit.Hash != "s3" || related[1].Score != 1 {
		t.Errorf("second = %s score %d, want s3 score 1", related[1].Commit.Hash, related[1].Score)
	}
}

func TestRelatedCommitsEmptyTitle(t *testing.T) {
	git := &fakeGit{recent: []gitrepo.Commit{commit("s1", "anything")}}
	bug := &BugReport{Title: "fix it"}
	if related := testHistorian(git).relatedCommits(context.Background(), bug); related != nil {
		t.Errorf("got %v for title with no usable keywords", related)
	}
}

func TestTitleKeywords(t *testing.T) {
	got := titleKeywords("Crash when the Index is out of range in index lookup")
	want := []string{"crash", "index", "range", "lookup"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("titleKeywords = %v, want %v", got, want)
	}
}
