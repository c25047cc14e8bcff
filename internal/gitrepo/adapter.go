// Package gitrepo shells out to git for file content, history, repository
// state, and dry-run apply checks. It is the only component that touches
// process I/O.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mend/internal/errors"
	"mend/internal/logging"
)

// DefaultCommandTimeout bounds every git invocation.
const DefaultCommandTimeout = 5000 * time.Millisecond

// Commit is one git log entry, message truncated to its first line.
type Commit struct {
	Hash      string `json:"hash"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// ShortHash returns the abbreviated commit hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) > 8 {
		return c.Hash[:8]
	}
	return c.Hash
}

// Adapter runs git commands rooted at one repository.
type Adapter struct {
	repoRoot string
	timeout  time.Duration
	log      *logging.Logger
}

// NewAdapter wires an adapter for repoRoot. It does not verify the
// repository; callers that need that check use IsAvailable.
func NewAdapter(repoRoot string, log *logging.Logger) *Adapter {
	if log == nil {
		log = logging.Nop()
	}
	return &Adapter{repoRoot: repoRoot, timeout: DefaultCommandTimeout, log: log}
}

// RepoRoot returns the repository root the adapter operates on.
func (a *Adapter) RepoRoot() string {
	return a.repoRoot
}

// IsAvailable reports whether repoRoot is inside a git work tree.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	out, err := a.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// run executes one git command and returns trimmed stdout.
func (a *Adapter) run(ctx context.Context, args ...string) (string, error) {
	return a.runInput(ctx, "", args...)
}

func (a *Adapter) runInput(ctx context.Context, stdin string, args ...string) (string, error) {
	out, err := a.runRaw(ctx, stdin, args...)
	return strings.TrimSpace(out), err
}

// runRaw executes git without trimming stdout; file content reads need the
// output byte-exact.
func (a *Adapter) runRaw(ctx context.Context, stdin string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = a.repoRoot
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	a.log.Debug("running git", logging.Fields{"args": args})

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.New(errors.InternalError, "git command timed out", err).
				WithDetail("args", args)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", errors.New(errors.InternalError, "git command failed", err).
				WithDetail("args", args).
				WithDetail("stderr", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", errors.New(errors.InternalError, "failed to execute git", err)
	}
	return string(out), nil
}

func (a *Adapter) runLines(ctx context.Context, args ...string) ([]string, error) {
	out, err := a.run(ctx, args...)
	if err != nil || out == "" {
		return nil, err
	}
	lines := strings.Split(out, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result, nil
}

// FileAtRevision reads a file's content at the given revision, or from the
// working tree when revision is empty. Missing paths map to FILE_NOT_FOUND.
func (a *Adapter) FileAtRevision(ctx context.Context, path, revision string) (string, error) {
	if revision == "" {
		data, err := os.ReadFile(filepath.Join(a.repoRoot, path))
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.Newf(errors.FileNotFound, "no such file: %s", path)
			}
			return "", errors.New(errors.InternalError, "failed to read file", err).
				WithDetail("path", path)
		}
		return string(data), nil
	}

	out, err := a.runRaw(ctx, "", "show", revision+":"+path)
	if err != nil {
		// git show exits non-zero for both missing paths and bad revisions.
		return "", errors.Newf(errors.FileNotFound, "no such file: %s at %s", path, revision)
	}
	return out, nil
}

// FileLines reads a working-tree file as lines. This is the content
// provider contract patch validation checks hunks against.
func (a *Adapter) FileLines(ctx context.Context, path string) ([]string, error) {
	text, err := a.FileAtRevision(ctx, path, "")
	if err != nil {
		return nil, err
	}
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" && strings.HasSuffix(text, "\n") {
		lines = lines[:n-1]
	}
	return lines, nil
}

// FileHistory returns up to limit commits touching path, most recent first,
// following renames.
func (a *Adapter) FileHistory(ctx context.Context, path string, limit int) ([]Commit, error) {
	args := []string{"log", "--format=%H|%an|%aI|%s", "--follow"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	args = append(args, "--", path)

	lines, err := a.runLines(ctx, args...)
	if err != nil {
		return nil, err
	}
	return a.parseCommits(lines), nil
}

// RecentCommits returns the limit most recent commits on HEAD.
func (a *Adapter) RecentCommits(ctx context.Context, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = 10
	}
	lines, err := a.runLines(ctx, "log", "--format=%H|%an|%aI|%s", fmt.Sprintf("-n%d", limit))
	if err != nil {
		return nil, err
	}
	return a.parseCommits(lines), nil
}

func (a *Adapter) parseCommits(lines []string) []Commit {
	commits := make([]Commit, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			a.log.Warn("skipping malformed git log line", logging.Fields{"line": line})
			continue
		}
		commits = append(commits, Commit{
			Hash:      parts[0],
			Author:    parts[1],
			Timestamp: parts[2],
			Message:   parts[3],
		})
	}
	return commits
}

// Check runs `git apply --check` against the working tree. A diff that
// would not apply is not an error: the verdict and git's diagnostic come
// back for the validator to record verbatim.
func (a *Adapter) Check(ctx context.Context, diffText string) (bool, string, error) {
	_, err := a.runInput(ctx, diffText, "apply", "--check", "--verbose", "-")
	if err == nil {
		return true, "", nil
	}

	var merr *errors.Error
	if errors.AsError(err, &merr) {
		if stderr, ok := merr.Details["stderr"].(string); ok {
			return false, stderr, nil
		}
	}
	return false, "", err
}
