// pattern: Functional Core

// Package catalog tracks the repositories and git worktrees that panes are
// anchored to. The scanner discovers them on disk; the watcher reports
// topology changes (a worktree disappearing or moving) to the store.
package catalog

// Repo is a git repository known to the workspace.
type Repo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Root      string     `json:"root"`
	Worktrees []Worktree `json:"worktrees,omitempty"`
}

// Worktree is a git worktree belonging to a repo.
type Worktree struct {
	ID     string `json:"id"`
	RepoID string `json:"repoId"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Branch string `json:"branch"`
}

// FindWorktree returns the worktree with the given id across all repos.
func FindWorktree(repos []Repo, worktreeID string) (Worktree, bool) {
	for _, r := range repos {
		for _, wt := range r.Worktrees {
			if wt.ID == worktreeID {
				return wt, true
			}
		}
	}
	return Worktree{}, false
}
