// Package git fetches commit history and staged changes via the git CLI.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/commitcritic/critic/internal/types"
)

// Record and field separators for the log pretty format. Control
// characters cannot appear in commit metadata, so parsing stays simple.
const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

// Git runs the local git binary.
type Git struct {
	gitPath string
}

// NewGit creates a Git instance, verifying the binary is available.
func NewGit(ctx context.Context) (*Git, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, gitPath, "version")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git command failed: %w", err)
	}
	return &Git{gitPath: gitPath}, nil
}

// run executes git in repoPath and returns stdout. Stderr from a failed
// command becomes the error message.
func (g *Git) run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	full := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, g.gitPath, full...)
	out, err := cmd.Output()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return nil, fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
	}
	if err != nil {
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// RepoRoot resolves the top-level directory of the repository containing
// path.
func (g *Git) RepoRoot(ctx context.Context, path string) (string, error) {
	out, err := g.run(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RecentCommits returns up to n commits, most recent first, with the
// files each commit touched.
func (g *Git) RecentCommits(ctx context.Context, repoPath string, n int) ([]*types.Commit, error) {
	if n <= 0 {
		return nil, &types.ValidationError{Field: "count", Reason: fmt.Sprintf("must be positive (got %d)", n)}
	}

	format := recordSep + strings.Join([]string{"%H", "%an", "%ae", "%ct", "%s"}, fieldSep)
	out, err := g.run(ctx, repoPath,
		"log",
		"--no-merges",
		"--name-only",
		"-n", strconv.Itoa(n),
		"--pretty=format:"+format,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}

	return parseLog(string(out))
}

// parseLog splits the record-separated log output into commits.
func parseLog(out string) ([]*types.Commit, error) {
	var commits []*types.Commit
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		lines := strings.SplitN(record, "\n", 2)
		fields := strings.Split(lines[0], fieldSep)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed log record: %q", lines[0])
		}

		epoch, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse commit time %q: %w", fields[3], err)
		}

		commit := &types.Commit{
			Hash:      fields[0],
			Author:    fields[1],
			Email:     fields[2],
			Timestamp: time.Unix(epoch, 0).UTC(),
			Message:   strings.TrimSpace(fields[4]),
		}
		if len(lines) == 2 {
			for _, path := range strings.Split(lines[1], "\n") {
				if path = strings.TrimSpace(path); path != "" {
					commit.ChangedPaths = append(commit.ChangedPaths, path)
				}
			}
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// StagedDiff returns the staged changes, with per-file and line counts.
func (g *Git) StagedDiff(ctx context.Context, repoPath string) (*types.Diff, error) {
	nameOut, err := g.run(ctx, repoPath, "diff", "--staged", "--name-only")
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}

	diff := &types.Diff{}
	for _, f := range strings.Split(strings.TrimSpace(string(nameOut)), "\n") {
		if f != "" {
			diff.Files = append(diff.Files, f)
		}
	}
	if len(diff.Files) == 0 {
		return diff, nil
	}

	textOut, err := g.run(ctx, repoPath, "diff", "--staged")
	if err != nil {
		return nil, fmt.Errorf("failed to read staged diff: %w", err)
	}
	diff.Text = string(textOut)

	for _, line := range strings.Split(diff.Text, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			diff.Additions++
		case strings.HasPrefix(line, "-"):
			diff.Deletions++
		}
	}
	return diff, nil
}

// Clone makes a shallow clone of url into dir, deep enough to analyze
// recent history.
func (g *Git) Clone(ctx context.Context, url, dir string, depth int) error {
	if depth <= 0 {
		depth = 200
	}
	cmd := exec.CommandContext(ctx, g.gitPath, "clone", "--depth", strconv.Itoa(depth), "--no-single-branch", url, dir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to clone %s: %s", url, strings.TrimSpace(string(out)))
	}
	return nil
}

// IsRemote reports whether the identity looks like a clonable URL rather
// than a local path.
func IsRemote(identity string) bool {
	return strings.HasPrefix(identity, "http://") ||
		strings.HasPrefix(identity, "https://") ||
		strings.HasPrefix(identity, "git@") ||
		strings.HasPrefix(identity, "ssh://")
}
