package tui

import (
	"testing"

	"deskmux/internal/catalog"
)

func testRepos() []catalog.Repo {
	return []catalog.Repo{
		{
			ID:   "r-aaa",
			Name: "deskmux",
			Root: "/src/deskmux",
			Worktrees: []catalog.Worktree{
				{ID: "r-aaa:feature/web", RepoID: "r-aaa", Name: "feature-web", Path: "/src/deskmux-web", Branch: "feature/web"},
				{ID: "r-aaa:fix/undo", RepoID: "r-aaa", Name: "fix-undo", Path: "/src/deskmux-undo", Branch: "fix/undo"},
			},
		},
		{ID: "r-bbb", Name: "empty", Root: "/src/empty"},
	}
}

func TestToSidebarItems_Flattens(t *testing.T) {
	items := toSidebarItems(testRepos())

	// 2 repo headers + 2 worktrees
	if len(items) != 4 {
		t.Fatalf("len(items) = %d, want 4", len(items))
	}

	first, ok := items[0].(sidebarItem)
	if !ok || first.Worktree != nil {
		t.Fatalf("items[0] should be a repo header, got %+v", items[0])
	}
	if first.Title() != "deskmux" {
		t.Errorf("items[0].Title() = %q, want deskmux", first.Title())
	}

	wt, ok := items[1].(sidebarItem)
	if !ok || wt.Worktree == nil {
		t.Fatalf("items[1] should be a worktree row, got %+v", items[1])
	}
	if wt.Title() != "feature-web" {
		t.Errorf("items[1].Title() = %q, want feature-web", wt.Title())
	}
	if wt.Description() != "feature/web" {
		t.Errorf("items[1].Description() = %q, want feature/web", wt.Description())
	}

	last, ok := items[3].(sidebarItem)
	if !ok || last.Worktree != nil {
		t.Fatalf("items[3] should be a repo header, got %+v", items[3])
	}
	if last.Description() != "/src/empty" {
		t.Errorf("items[3].Description() = %q, want /src/empty", last.Description())
	}
}

func TestToSidebarItems_Empty(t *testing.T) {
	if items := toSidebarItems(nil); len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}

func TestSidebarItem_FilterValue(t *testing.T) {
	repos := testRepos()
	items := toSidebarItems(repos)

	if fv := items[0].FilterValue(); fv != "deskmux" {
		t.Errorf("repo FilterValue = %q, want deskmux", fv)
	}
	if fv := items[2].FilterValue(); fv != "fix-undo" {
		t.Errorf("worktree FilterValue = %q, want fix-undo", fv)
	}
}
