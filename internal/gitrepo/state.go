package gitrepo

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"
)

// emptyHash is sha256 of the empty string, what a clean diff hashes to.
const emptyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// State fingerprints the repository at one moment: HEAD plus hashes of the
// staged diff, working-tree diff, and untracked file list. StateID keys the
// context cache; any tracked change produces a different ID.
type State struct {
	StateID             string `json:"stateId"`
	HeadCommit          string `json:"headCommit"`
	StagedDiffHash      string `json:"stagedDiffHash"`
	WorkingTreeDiffHash string `json:"workingTreeDiffHash"`
	UntrackedListHash   string `json:"untrackedListHash"`
	Dirty               bool   `json:"dirty"`
	ComputedAt          string `json:"computedAt"`
}

// State computes the current repository state.
func (a *Adapter) State(ctx context.Context) (*State, error) {
	head, err := a.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}

	staged, err := a.run(ctx, "diff", "--cached")
	if err != nil {
		return nil, err
	}
	working, err := a.run(ctx, "diff", "HEAD")
	if err != nil {
		return nil, err
	}
	untracked, err := a.run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}

	s := &State{
		HeadCommit:          head,
		StagedDiffHash:      hashString(staged),
		WorkingTreeDiffHash: hashString(working),
		UntrackedListHash:   hashString(untracked),
		ComputedAt:          time.Now().UTC().Format(time.RFC3339),
	}
	s.Dirty = s.StagedDiffHash != emptyHash ||
		s.WorkingTreeDiffHash != emptyHash ||
		s.UntrackedListHash != emptyHash
	s.StateID = hashString(head + s.StagedDiffHash + s.WorkingTreeDiffHash + s.UntrackedListHash)
	return s, nil
}

func hashString(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))
}
