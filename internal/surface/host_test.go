package surface

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"deskmux/internal/layout"
	"deskmux/internal/logging"
	"deskmux/internal/process"
	"deskmux/internal/workspace"
)

type fakeProc struct {
	cfg     process.Config
	started bool
	stopped bool
	dead    bool
	writes  []string
	resizes [][2]uint16
	done    chan struct{}
}

func (f *fakeProc) Start(ctx context.Context) error {
	f.started = true
	return nil
}

func (f *fakeProc) Stop() error {
	f.stopped = true
	return nil
}

func (f *fakeProc) Write(p []byte) (int, error) {
	f.writes = append(f.writes, string(p))
	return len(p), nil
}

func (f *fakeProc) Resize(rows, cols uint16) error {
	f.resizes = append(f.resizes, [2]uint16{rows, cols})
	return nil
}

func (f *fakeProc) Running() bool { return f.started && !f.stopped && !f.dead }

func (f *fakeProc) Done() <-chan struct{} { return f.done }

type hostFixture struct {
	host  *Host
	procs []*fakeProc
}

func newTestHost(t *testing.T) *hostFixture {
	t.Helper()
	lm := logging.NewTestLogManager(100)
	t.Cleanup(func() { _ = lm.Close() })

	fx := &hostFixture{host: NewHost(lm.For("surface"))}
	fx.host.newProcFunc = func(cfg process.Config) proc {
		p := &fakeProc{cfg: cfg, done: make(chan struct{})}
		fx.procs = append(fx.procs, p)
		return p
	}
	n := 0
	fx.host.newIDFunc = func() string {
		n++
		return fmt.Sprintf("res-%d", n)
	}
	return fx
}

func terminalContent(command string) workspace.Content {
	return workspace.Content{
		Kind:     workspace.ContentTerminal,
		Terminal: &workspace.TerminalContent{Command: command},
	}
}

func TestHost_CreateTerminalSurface(t *testing.T) {
	fx := newTestHost(t)

	h, err := fx.host.CreateSurface(context.Background(), terminalContent("htop"), Metadata{
		PaneID:     "p1",
		WorkingDir: "/tmp",
	})
	if err != nil {
		t.Fatalf("CreateSurface() error = %v", err)
	}
	if h.Kind != workspace.ContentTerminal {
		t.Errorf("handle kind = %q, want terminal", h.Kind)
	}
	if len(fx.procs) != 1 {
		t.Fatalf("spawned %d procs, want 1", len(fx.procs))
	}

	cfg := fx.procs[0].cfg
	if !cfg.PTY {
		t.Error("terminal surface should run on a PTY")
	}
	if cfg.RestartOn != process.Never {
		t.Error("terminal surface must not auto-restart")
	}
	if cfg.Dir != "/tmp" {
		t.Errorf("cfg.Dir = %q, want /tmp", cfg.Dir)
	}
	if len(cfg.Args) != 2 || cfg.Args[0] != "-c" || cfg.Args[1] != "htop" {
		t.Errorf("cfg.Args = %v, want [-c htop]", cfg.Args)
	}
	if !fx.procs[0].started {
		t.Error("process was not started")
	}
}

func TestHost_CreateBrowserSurfaceIsHandleOnly(t *testing.T) {
	fx := newTestHost(t)

	content := workspace.Content{
		Kind:    workspace.ContentBrowser,
		Browser: &workspace.BrowserContent{URL: "http://localhost:3000"},
	}
	h, err := fx.host.CreateSurface(context.Background(), content, Metadata{PaneID: "p1"})
	if err != nil {
		t.Fatalf("CreateSurface() error = %v", err)
	}
	if len(fx.procs) != 0 {
		t.Errorf("browser surface should not spawn a process, got %d", len(fx.procs))
	}

	v, ok := fx.host.Attach(h.ResourceID, "p1")
	if !ok {
		t.Fatal("Attach() failed for live resource")
	}
	if !strings.Contains(v.Render(40, 3), "localhost:3000") {
		t.Error("placeholder view should show the page URL")
	}
}

func TestHost_AttachUnknownResource(t *testing.T) {
	fx := newTestHost(t)
	if _, ok := fx.host.Attach("nope", "p1"); ok {
		t.Error("Attach() should fail for unknown resource")
	}
}

func TestHost_CloseRetainsForUndo(t *testing.T) {
	fx := newTestHost(t)

	h, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: "p1"})

	fx.host.Detach(h.ResourceID, DetachClose)
	if fx.procs[0].stopped {
		t.Fatal("close must keep the process warm for undo")
	}

	got, ok := fx.host.UndoClose()
	if !ok {
		t.Fatal("UndoClose() found nothing retained")
	}
	if got.ResourceID != h.ResourceID {
		t.Errorf("UndoClose() = %q, want %q", got.ResourceID, h.ResourceID)
	}
	if _, ok := fx.host.Attach(h.ResourceID, "p1"); !ok {
		t.Error("resurrected resource should be attachable again")
	}
}

func TestHost_AttachResurrectsRetained(t *testing.T) {
	fx := newTestHost(t)

	h, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: "p1"})
	fx.host.Detach(h.ResourceID, DetachClose)

	if _, ok := fx.host.Attach(h.ResourceID, "p2"); !ok {
		t.Fatal("Attach() should resurrect a retained resource")
	}
	// Resurrection removes it from the retained stack.
	if _, ok := fx.host.UndoClose(); ok {
		t.Error("resurrected resource should no longer be on the retained stack")
	}
}

func TestHost_UndoCloseSkipsDeadProcess(t *testing.T) {
	fx := newTestHost(t)

	h, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: "p1"})
	fx.host.Detach(h.ResourceID, DetachClose)
	fx.procs[0].dead = true

	if _, ok := fx.host.UndoClose(); ok {
		t.Error("UndoClose() should skip a session whose process died")
	}
	if _, ok := fx.host.Attach(h.ResourceID, "p1"); ok {
		t.Error("Attach() should not resurrect a dead session")
	}
}

func TestHost_NonCloseDetachKeepsResource(t *testing.T) {
	fx := newTestHost(t)

	h, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: "p1"})
	for _, reason := range []DetachReason{DetachHidden, DetachMinimized, DetachBackground} {
		fx.host.Detach(h.ResourceID, reason)
		if _, ok := fx.host.Attach(h.ResourceID, "p1"); !ok {
			t.Errorf("resource gone after Detach(%s)", reason)
		}
	}
}

func TestHost_DestroyIsIdempotent(t *testing.T) {
	fx := newTestHost(t)

	h, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: "p1"})
	fx.host.Destroy(h.ResourceID)
	if !fx.procs[0].stopped {
		t.Error("Destroy() should stop the process")
	}

	// Second destroy and a destroy of a never-created id are no-ops.
	fx.host.Destroy(h.ResourceID)
	fx.host.Destroy("never-existed")
}

func TestHost_DestroyRetainedResource(t *testing.T) {
	fx := newTestHost(t)

	h, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: "p1"})
	fx.host.Detach(h.ResourceID, DetachClose)
	fx.host.Destroy(h.ResourceID)

	if !fx.procs[0].stopped {
		t.Error("Destroy() should stop a retained process")
	}
	if _, ok := fx.host.UndoClose(); ok {
		t.Error("destroyed resource must not be resurrectable")
	}
}

func TestHost_RetentionCapEvictsOldest(t *testing.T) {
	fx := newTestHost(t)

	handles := make([]Handle, 0, retainedCap+1)
	for i := 0; i <= retainedCap; i++ {
		h, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: fmt.Sprintf("p%d", i)})
		handles = append(handles, h)
	}
	for _, h := range handles {
		fx.host.Detach(h.ResourceID, DetachClose)
	}

	if !fx.procs[0].stopped {
		t.Error("oldest retained session should be evicted and stopped")
	}
	for i := 1; i <= retainedCap; i++ {
		if fx.procs[i].stopped {
			t.Errorf("session %d within the cap should stay warm", i)
		}
	}
}

func TestHost_TerminalIO(t *testing.T) {
	fx := newTestHost(t)

	h, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: "p1"})

	if err := fx.host.Input(h.ResourceID, []byte("ls\n")); err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if got := fx.procs[0].writes; len(got) != 1 || got[0] != "ls\n" {
		t.Errorf("writes = %v, want [ls\\n]", got)
	}

	if err := fx.host.ResizeTerminal(h.ResourceID, 50, 120); err != nil {
		t.Fatalf("ResizeTerminal() error = %v", err)
	}
	if got := fx.procs[0].resizes; len(got) != 1 || got[0] != [2]uint16{50, 120} {
		t.Errorf("resizes = %v, want [[50 120]]", got)
	}

	out, ok := fx.host.Output(h.ResourceID)
	if !ok {
		t.Fatal("Output() missing for terminal resource")
	}
	_, _ = out.Write([]byte("hello\n"))
	if string(out.Bytes()) != "hello\n" {
		t.Errorf("output bytes = %q", out.Bytes())
	}

	if err := fx.host.Input("nope", []byte("x")); err == nil {
		t.Error("Input() should fail for unknown resource")
	}
}

func TestHost_Shutdown(t *testing.T) {
	fx := newTestHost(t)

	h1, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: "p1"})
	h2, _ := fx.host.CreateSurface(context.Background(), terminalContent(""), Metadata{PaneID: "p2"})
	fx.host.Detach(h2.ResourceID, DetachClose)

	fx.host.Shutdown()
	for i, p := range fx.procs {
		if !p.stopped {
			t.Errorf("proc %d not stopped on shutdown", i)
		}
	}
	if _, ok := fx.host.Attach(h1.ResourceID, "p1"); ok {
		t.Error("no resource should survive shutdown")
	}
}

func TestOutputBuffer_TrimAndSubscribe(t *testing.T) {
	buf := NewOutputBuffer()

	ch, cancel := buf.Subscribe()
	defer cancel()

	_, _ = buf.Write([]byte("abc"))
	select {
	case chunk := <-ch:
		if string(chunk) != "abc" {
			t.Errorf("chunk = %q, want abc", chunk)
		}
	default:
		t.Fatal("subscriber did not receive chunk")
	}

	big := make([]byte, maxOutputBytes+100)
	for i := range big {
		big[i] = 'x'
	}
	_, _ = buf.Write(big)
	if got := len(buf.Bytes()); got != maxOutputBytes {
		t.Errorf("retained %d bytes, want %d", got, maxOutputBytes)
	}

	cancel()
	_, _ = buf.Write([]byte("after"))
	// Cancelled subscriber may still see the buffered chunk from before,
	// but the buffer must not block.
}

func TestTerminalView_RenderTail(t *testing.T) {
	buf := NewOutputBuffer()
	for i := 1; i <= 5; i++ {
		_, _ = buf.Write([]byte(fmt.Sprintf("line-%d\r\n", i)))
	}

	v := &terminalView{paneID: "p1", out: buf}
	got := v.Render(20, 2)
	want := "line-4\nline-5"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	if v.Render(3, 1) != "lin" {
		t.Errorf("Render() should truncate to width, got %q", v.Render(3, 1))
	}
	if v.Render(0, 0) != "" {
		t.Error("Render() with no space should be empty")
	}
}

type stubView struct{ id string }

func (s *stubView) PaneID() string         { return s.id }
func (s *stubView) Render(w, h int) string { return s.id }

func TestRegistry_RenderTreePromotesSibling(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubView{id: "a"}, "a")
	// Pane b has no view yet.

	root := &layout.Split{
		ID:        "s1",
		Direction: layout.Horizontal,
		Ratio:     0.5,
		Left:      &layout.Leaf{PaneID: "a"},
		Right:     &layout.Leaf{PaneID: "b"},
	}

	node := r.RenderTree(root)
	if node == nil || !node.IsLeaf() {
		t.Fatalf("expected surviving sibling promoted to a leaf, got %+v", node)
	}
	if node.View.PaneID() != "a" {
		t.Errorf("promoted view = %q, want a", node.View.PaneID())
	}

	r.Register(&stubView{id: "b"}, "b")
	node = r.RenderTree(root)
	if node == nil || node.IsLeaf() {
		t.Fatal("expected a split once both views exist")
	}

	r.Unregister("a")
	r.Unregister("b")
	if r.RenderTree(root) != nil {
		t.Error("tree with no views should render nil")
	}
}
