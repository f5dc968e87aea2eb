package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"deskmux/internal/layout"
	"deskmux/internal/logging"
	"deskmux/internal/workspace"
)

func testLogger(t *testing.T) *logging.ScopedLogger {
	t.Helper()
	lm := logging.NewTestLogManager(256)
	t.Cleanup(func() { _ = lm.Close() })
	return lm.For("persist")
}

func testLogManager(t *testing.T) *logging.TestLogManager {
	t.Helper()
	lm := logging.NewTestLogManager(256)
	t.Cleanup(func() { _ = lm.Close() })
	return lm
}

// sampleState builds a two-tab workspace with a drawer, a second
// arrangement, and a minimized pane.
func sampleState() *workspace.State {
	st := workspace.NewState("work")
	st.Panes["pa"] = &workspace.Pane{
		ID: "pa",
		Content: workspace.Content{
			Kind:     workspace.ContentTerminal,
			Terminal: &workspace.TerminalContent{Command: "htop", Env: map[string]string{"FOO": "1"}},
		},
		Title:     "monitor",
		Residency: workspace.Residency{State: workspace.ResidencyActive},
		Drawer: &workspace.Drawer{
			PaneIDs:          []string{"pd"},
			Root:             layout.NewLeaf("pd"),
			ActivePaneID:     "pd",
			MinimizedPaneIDs: map[string]bool{"pd": true},
			IsExpanded:       true,
		},
	}
	st.Panes["pb"] = &workspace.Pane{
		ID:        "pb",
		Content:   workspace.Content{Kind: workspace.ContentBrowser, Browser: &workspace.BrowserContent{URL: "http://localhost:3000"}},
		Residency: workspace.Residency{State: workspace.ResidencyActive},
	}
	st.Panes["pd"] = &workspace.Pane{
		ID:        "pd",
		Content:   workspace.Content{Kind: workspace.ContentTerminal, Terminal: &workspace.TerminalContent{}},
		ParentID:  "pa",
		Residency: workspace.Residency{State: workspace.ResidencyActive},
	}

	split := &layout.Split{
		ID:        "s1",
		Direction: layout.Vertical,
		Ratio:     0.3,
		Left:      layout.NewLeaf("pa"),
		Right:     layout.NewLeaf("pb"),
	}
	st.Tabs = []*workspace.Tab{{
		ID:   "t1",
		Name: "main",
		Arrangements: []*workspace.Arrangement{
			{ID: "a1", Name: "main", IsDefault: true, Root: split},
			{ID: "a2", Name: "solo", Root: layout.NewLeaf("pa")},
		},
		ActiveArrangementID: "a2",
		ActivePaneID:        "pa",
		MinimizedPaneIDs:    map[string]bool{"pb": true},
	}}
	st.ActiveTabID = "t1"
	return st
}

func TestRoundTrip(t *testing.T) {
	before := sampleState()

	data, err := Marshal(before)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	after, warnings, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if after.ID != before.ID || after.ActiveTabID != "t1" {
		t.Errorf("identity lost: %s / %s", after.ID, after.ActiveTabID)
	}
	if len(after.Panes) != 3 {
		t.Fatalf("pane count = %d, want 3", len(after.Panes))
	}
	if after.Panes["pa"].Content.Terminal.Command != "htop" {
		t.Error("terminal payload lost")
	}
	if d := after.Panes["pa"].Drawer; d == nil || !d.IsExpanded || !d.MinimizedPaneIDs["pd"] {
		t.Errorf("drawer lost: %+v", d)
	}

	tab := after.Tabs[0]
	if tab.ActiveArrangementID != "a2" {
		t.Errorf("active arrangement = %s", tab.ActiveArrangementID)
	}
	def := tab.DefaultArrangement()
	if def == nil || def.ID != "a1" {
		t.Fatal("default arrangement lost")
	}
	root, ok := def.Root.(*layout.Split)
	if !ok {
		t.Fatalf("layout root = %T, want split", def.Root)
	}
	if root.ID != "s1" || root.Ratio != 0.3 || root.Direction != layout.Vertical {
		t.Errorf("split lost fields: %+v", root)
	}
	if !reflect.DeepEqual(layout.PaneIDs(def.Root), []string{"pa", "pb"}) {
		t.Errorf("layout panes = %v", layout.PaneIDs(def.Root))
	}
	if !tab.MinimizedPaneIDs["pb"] {
		t.Error("minimized set lost")
	}
}

func TestMarshal_StableOutput(t *testing.T) {
	st := sampleState()
	a, _ := Marshal(st)
	b, _ := Marshal(st)
	if string(a) != string(b) {
		t.Error("Marshal output differs between calls")
	}
	if !strings.HasPrefix(string(a), "{\n") {
		t.Error("document should be pretty-printed")
	}
}

func TestUnmarshal_UnknownContentKind(t *testing.T) {
	data, _ := Marshal(sampleState())
	patched := strings.Replace(string(data), `"kind": "browser"`, `"kind": "webgl"`, 1)

	st, _, err := Unmarshal([]byte(patched))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	p := st.Panes["pb"]
	if p.Content.Kind != workspace.ContentUnsupported {
		t.Errorf("kind = %s, want unsupported", p.Content.Kind)
	}
	if p.Content.Raw == nil || p.Content.Raw.Kind != "webgl" {
		t.Errorf("raw payload = %+v, want original kind preserved", p.Content.Raw)
	}
}

func TestUnmarshal_BadArrangementDropped(t *testing.T) {
	doc := `{
	  "version": 2, "id": "w1", "name": "work",
	  "panes": [{"id": "pa", "content": {"kind": "terminal", "terminal": {}}, "residency": {"state": "active"}, "createdAt": "2025-01-01T00:00:00Z"}],
	  "tabs": [{
	    "id": "t1", "name": "main",
	    "arrangements": [
	      {"id": "a1", "name": "main", "isDefault": true, "layout": {"type": "leaf", "paneId": "pa"}},
	      {"id": "a2", "name": "broken", "layout": {"type": "wedge"}}
	    ],
	    "activeArrangementId": "a1"
	  }],
	  "activeTabId": "t1", "sidebarWidth": 280,
	  "createdAt": "2025-01-01T00:00:00Z", "updatedAt": "2025-01-01T00:00:00Z"
	}`

	st, warnings, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one for the dropped arrangement", warnings)
	}
	if len(st.Tabs[0].Arrangements) != 1 || st.Tabs[0].Arrangements[0].ID != "a1" {
		t.Errorf("arrangements = %+v, want only a1", st.Tabs[0].Arrangements)
	}
}

func TestUnmarshal_NewerSchemaRejected(t *testing.T) {
	doc := fmt.Sprintf(`{"version": %d, "id": "x", "panes": [], "tabs": []}`, SchemaVersion+1)
	if _, _, err := Unmarshal([]byte(doc)); err == nil {
		t.Error("newer schema should be rejected so the loader can fall back")
	}
}

func TestUnmarshalLegacy_PreservesIDs(t *testing.T) {
	legacy := `{
	  "sessions": [
	    {"id": "sess-1", "kind": "terminal", "command": "vim", "title": "edit"},
	    {"id": "sess-2", "kind": "browser", "url": "http://x"},
	    {"id": "sess-3", "kind": "hologram"}
	  ],
	  "views": [
	    {"id": "view-1", "name": "dev", "activeSessionId": "sess-1",
	     "layout": {"type": "split", "direction": "horizontal", "ratio": 0.5,
	       "left": {"type": "leaf", "paneId": "sess-1"},
	       "right": {"type": "leaf", "paneId": "sess-2"}}}
	  ],
	  "activeViewId": "view-1",
	  "sidebarWidth": 320
	}`

	st, _, err := UnmarshalLegacy([]byte(legacy))
	if err != nil {
		t.Fatalf("UnmarshalLegacy: %v", err)
	}
	if _, ok := st.Panes["sess-1"]; !ok {
		t.Error("session id not preserved as pane id")
	}
	if st.Panes["sess-1"].Content.Terminal.Command != "vim" {
		t.Error("terminal command lost in migration")
	}
	if st.Panes["sess-3"].Content.Kind != workspace.ContentUnsupported {
		t.Errorf("unknown session kind = %s, want unsupported", st.Panes["sess-3"].Content.Kind)
	}
	if len(st.Tabs) != 1 || st.Tabs[0].ID != "view-1" {
		t.Fatal("view id not preserved as tab id")
	}
	tab := st.Tabs[0]
	if d := tab.DefaultArrangement(); d == nil || !reflect.DeepEqual(layout.PaneIDs(d.Root), []string{"sess-1", "sess-2"}) {
		t.Error("view layout lost in migration")
	}
	if st.ActiveTabID != "view-1" || st.SidebarWidth != 320 {
		t.Errorf("document fields lost: %s / %d", st.ActiveTabID, st.SidebarWidth)
	}
}

func TestLoad_FallbackChain(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "workspace.json")
	if err := os.WriteFile(garbage, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	legacyPath := filepath.Join(dir, "sessions.json")
	legacy := `{"sessions": [{"id": "s1", "kind": "terminal"}],
	  "views": [{"id": "v1", "name": "dev", "layout": {"type": "leaf", "paneId": "s1"}}]}`
	if err := os.WriteFile(legacyPath, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	st := Load([]string{garbage, legacyPath}, testLogger(t))
	if len(st.Tabs) != 1 || st.Tabs[0].ID != "v1" {
		t.Errorf("expected legacy fallback, got %d tabs", len(st.Tabs))
	}
}

func TestLoad_NothingFoundIsEmptyState(t *testing.T) {
	dir := t.TempDir()
	st := Load([]string{filepath.Join(dir, "missing.json")}, testLogger(t))
	if st == nil || len(st.Tabs) != 0 || len(st.Panes) != 0 {
		t.Error("expected a fresh empty workspace")
	}
}

func TestSave_AtomicAndValid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "workspace.json")

	if err := Save(path, sampleState()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved document is not valid JSON: %v", err)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file leaked: %s", e.Name())
		}
	}
}

type countingGuard struct {
	mu       sync.Mutex
	acquired int
	released int
}

func (g *countingGuard) Acquire(string) func() {
	g.mu.Lock()
	g.acquired++
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		g.released++
		g.mu.Unlock()
	}
}

func (g *countingGuard) counts() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.acquired, g.released
}

func TestWriter_DebouncedSave(t *testing.T) {
	lm := testLogManager(t)
	store := workspace.New(workspace.NewState("w"), lm)
	path := filepath.Join(t.TempDir(), "workspace.json")
	guard := &countingGuard{}

	w := NewWriter(path, store, lm.For("persist"), 30*time.Millisecond, guard)
	defer w.Close()

	// A burst of mutations coalesces into one write.
	for i := 0; i < 5; i++ {
		if err := store.AddPane(&workspace.Pane{
			ID:      fmt.Sprintf("p%d", i),
			Content: workspace.Content{Kind: workspace.ContentTerminal, Terminal: &workspace.TerminalContent{}},
		}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("write should be debounced, not immediate")
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.Dirty() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if store.Dirty() {
		t.Fatal("store still dirty after debounce window")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("document not written: %v", err)
	}

	acquired, released := guard.counts()
	if acquired != 1 || released != 1 {
		t.Errorf("guard acquired/released = %d/%d, want 1/1", acquired, released)
	}
}

func TestWriter_FlushIsImmediate(t *testing.T) {
	lm := testLogManager(t)
	store := workspace.New(workspace.NewState("w"), lm)
	path := filepath.Join(t.TempDir(), "workspace.json")

	w := NewWriter(path, store, lm.For("persist"), time.Hour, nil)
	defer w.Close()

	if err := store.AddPane(&workspace.Pane{
		ID:      "p1",
		Content: workspace.Content{Kind: workspace.ContentTerminal, Terminal: &workspace.TerminalContent{}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if store.Dirty() {
		t.Error("store should be clean after flush")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("document not written by flush: %v", err)
	}
}

func TestWriter_FailedSaveKeepsDirty(t *testing.T) {
	lm := testLogManager(t)
	store := workspace.New(workspace.NewState("w"), lm)
	path := filepath.Join(t.TempDir(), "workspace.json")

	w := NewWriter(path, store, lm.For("persist"), time.Hour, nil)
	defer w.Close()
	fail := true
	w.saveFunc = func(p string, st *workspace.State) error {
		if fail {
			return fmt.Errorf("disk full")
		}
		return Save(p, st)
	}

	_ = store.SetSidebarWidth(300)
	if err := w.Flush(); err == nil {
		t.Fatal("expected flush failure")
	}
	if !store.Dirty() {
		t.Error("failed save must leave the store dirty for retry")
	}

	fail = false
	if err := w.Flush(); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if store.Dirty() {
		t.Error("store should be clean after successful retry")
	}
}
