// pattern: Imperative Shell

package catalog

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// gitFunc runs a git command in dir and returns its stdout. Injected so
// tests can feed canned porcelain output without a real repository.
type gitFunc func(dir string, args ...string) ([]byte, error)

func runGit(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

// Scanner discovers git repositories in configured scan paths.
type Scanner struct {
	git gitFunc
}

// NewScanner creates a scanner that shells out to git for worktree listings.
func NewScanner() *Scanner {
	return &Scanner{git: runGit}
}

// ScanAll walks each scan path one level deep and returns every git
// repository found, with its additional worktrees. Results are sorted by
// root path so repeated scans of an unchanged tree compare equal.
func (s *Scanner) ScanAll(paths []string) []Repo {
	var repos []Repo
	seen := make(map[string]bool)

	for _, scanPath := range paths {
		entries, err := os.ReadDir(scanPath)
		if err != nil {
			continue // Skip inaccessible directories
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			root := filepath.Join(scanPath, entry.Name())

			// Resolve symlinks to get canonical path
			resolved, err := filepath.EvalSymlinks(root)
			if err != nil {
				resolved = root
			}
			if seen[resolved] {
				continue
			}
			seen[resolved] = true

			if !isGitRepo(resolved) {
				continue
			}

			repo := Repo{
				ID:   repoID(resolved),
				Name: entry.Name(),
				Root: resolved,
			}
			repo.Worktrees = s.listWorktrees(repo)
			repos = append(repos, repo)
		}
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].Root < repos[j].Root })
	return repos
}

// isGitRepo checks for a .git entry at the root. A file (not a directory)
// is fine: linked worktrees keep a .git pointer file.
func isGitRepo(root string) bool {
	_, err := os.Stat(filepath.Join(root, ".git"))
	return err == nil
}

// repoID derives a stable identifier from the canonical root path.
func repoID(root string) string {
	sum := sha1.Sum([]byte(root))
	return "r-" + hex.EncodeToString(sum[:6])
}

// listWorktrees runs `git worktree list --porcelain` for a repo.
// Returns nil if git fails or no additional worktrees exist.
func (s *Scanner) listWorktrees(repo Repo) []Worktree {
	output, err := s.git(repo.Root, "worktree", "list", "--porcelain")
	if err != nil {
		return nil
	}
	return parseWorktreeList(repo, string(output))
}

// parseWorktreeList parses the porcelain output of `git worktree list`.
// Format:
//
//	worktree /path/to/worktree
//	HEAD abc123
//	branch refs/heads/branch-name
//	<blank line>
//
// The first entry is the main worktree; we skip it and return only
// additional worktrees. Worktree ids are keyed on the branch (falling back
// to the directory name) so a worktree that moves on disk keeps its id and
// panes anchored to it re-associate instead of orphaning.
func parseWorktreeList(repo Repo, output string) []Worktree {
	var worktrees []Worktree
	var current *Worktree

	flush := func(first bool) {
		if current == nil || first {
			current = nil
			return
		}
		key := current.Branch
		if key == "" {
			key = current.Name
		}
		current.ID = repo.ID + ":" + key
		current.RepoID = repo.ID
		worktrees = append(worktrees, *current)
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	isFirst := true
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "worktree "):
			if current != nil {
				flush(isFirst)
				isFirst = false
			}
			path := strings.TrimPrefix(line, "worktree ")
			current = &Worktree{
				Path: path,
				Name: filepath.Base(path),
			}
		case strings.HasPrefix(line, "branch ") && current != nil:
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "" && current != nil:
			flush(isFirst)
			isFirst = false
		}
	}

	// Handle last entry if no trailing newline
	if current != nil {
		flush(isFirst)
	}

	return worktrees
}
