package layout

import (
	"reflect"
	"sort"
	"testing"
)

// buildThree returns a tree of A | (B / C): A beside a vertical stack.
func buildThree() Node {
	return &Split{
		ID:        "s1",
		Direction: Horizontal,
		Ratio:     0.5,
		Left:      NewLeaf("A"),
		Right: &Split{
			ID:        "s2",
			Direction: Vertical,
			Ratio:     0.3,
			Left:      NewLeaf("B"),
			Right:     NewLeaf("C"),
		},
	}
}

func TestInserting_ReplacesTargetLeaf(t *testing.T) {
	root := Inserting(NewLeaf("A"), "B", "A", Horizontal, After)

	s, ok := root.(*Split)
	if !ok {
		t.Fatalf("Inserting returned %T, want *Split", root)
	}
	if s.Ratio != 0.5 {
		t.Errorf("new split ratio = %v, want 0.5", s.Ratio)
	}
	if got := PaneIDs(root); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("PaneIDs = %v, want [A B]", got)
	}
}

func TestInserting_PositionBefore(t *testing.T) {
	root := Inserting(NewLeaf("A"), "B", "A", Vertical, Before)
	if got := PaneIDs(root); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("PaneIDs = %v, want [B A]", got)
	}
}

func TestInserting_MissingTargetReturnsUnchanged(t *testing.T) {
	orig := buildThree()
	root := Inserting(orig, "X", "nope", Horizontal, After)
	if root != orig {
		t.Error("Inserting with unknown target should return the same tree")
	}
}

func TestInserting_DoesNotMutateInput(t *testing.T) {
	orig := buildThree()
	_ = Inserting(orig, "D", "B", Horizontal, After)
	if got := PaneIDs(orig); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("original tree changed: PaneIDs = %v", got)
	}
}

func TestRemoving_PromotesSibling(t *testing.T) {
	root := Removing(buildThree(), "B")
	if got := PaneIDs(root); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("PaneIDs = %v, want [A C]", got)
	}
	// The inner split is gone; C is promoted to the right child of s1.
	s := root.(*Split)
	if _, ok := s.Right.(*Leaf); !ok {
		t.Errorf("right child = %T, want *Leaf", s.Right)
	}
}

func TestRemoving_SubtreePromotion(t *testing.T) {
	// Removing A promotes the whole B/C subtree to the root.
	root := Removing(buildThree(), "A")
	s, ok := root.(*Split)
	if !ok {
		t.Fatalf("root = %T, want *Split", root)
	}
	if s.ID != "s2" {
		t.Errorf("promoted split id = %q, want s2", s.ID)
	}
}

func TestRemoving_LastLeafReturnsNil(t *testing.T) {
	if got := Removing(NewLeaf("A"), "A"); got != nil {
		t.Errorf("Removing sole leaf = %v, want nil", got)
	}
}

func TestRemoving_UnknownPaneReturnsUnchanged(t *testing.T) {
	orig := buildThree()
	if got := Removing(orig, "X"); got != orig {
		t.Error("Removing unknown pane should return the same tree")
	}
}

func TestRemoveThenInsertRestoresPaneSet(t *testing.T) {
	root := buildThree()
	for _, pane := range []string{"A", "B", "C"} {
		removed := Removing(root, pane)
		if removed == nil {
			t.Fatalf("Removing(%q) = nil on three-pane tree", pane)
		}
		anchor := PaneIDs(removed)[0]
		restored := Inserting(removed, pane, anchor, Horizontal, After)

		want := []string{"A", "B", "C"}
		got := PaneIDs(restored)
		sort.Strings(got)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("after remove+insert of %q: panes = %v, want %v", pane, got, want)
		}
	}
}

func TestResizing_Clamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.5, 0.5},
		{0.05, MinRatio},
		{-1, MinRatio},
		{0.95, MaxRatio},
		{2, MaxRatio},
		{0.1, 0.1},
		{0.9, 0.9},
	}
	for _, tt := range tests {
		root := Resizing(buildThree(), "s2", tt.in)
		s := root.(*Split).Right.(*Split)
		if s.Ratio != tt.want {
			t.Errorf("Resizing(%v): ratio = %v, want %v", tt.in, s.Ratio, tt.want)
		}
	}
}

func TestResizing_UnknownSplitReturnsUnchanged(t *testing.T) {
	orig := buildThree()
	if got := Resizing(orig, "nope", 0.5); got != orig {
		t.Error("Resizing unknown split should return the same tree")
	}
}

func TestEqualized_Idempotent(t *testing.T) {
	once := Equalized(buildThree())
	twice := Equalized(once)
	if once != twice {
		t.Error("Equalized of an equalized tree should return the same tree")
	}
	var check func(Node)
	check = func(n Node) {
		if s, ok := n.(*Split); ok {
			if s.Ratio != 0.5 {
				t.Errorf("split %s ratio = %v, want 0.5", s.ID, s.Ratio)
			}
			check(s.Left)
			check(s.Right)
		}
	}
	check(once)
}

func TestResizeTarget(t *testing.T) {
	root := buildThree()

	tests := []struct {
		pane    string
		dir     Direction
		wantID  string
		wantInc bool
		wantOK  bool
	}{
		{"A", Horizontal, "s1", true, true},
		{"B", Vertical, "s2", true, true},
		{"C", Vertical, "s2", false, true},
		{"B", Horizontal, "s1", false, true}, // B sits in s1's right subtree
		{"A", Vertical, "", false, false},    // A is alone on the vertical axis
	}
	for _, tt := range tests {
		id, inc, ok := ResizeTarget(root, tt.pane, tt.dir)
		if ok != tt.wantOK {
			t.Errorf("ResizeTarget(%s, %s): ok = %v, want %v", tt.pane, tt.dir, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if id != tt.wantID || inc != tt.wantInc {
			t.Errorf("ResizeTarget(%s, %s) = (%s, %v), want (%s, %v)",
				tt.pane, tt.dir, id, inc, tt.wantID, tt.wantInc)
		}
	}
}

func TestPaneIDs_DepthFirstOrder(t *testing.T) {
	if got := PaneIDs(buildThree()); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("PaneIDs = %v, want [A B C]", got)
	}
	if got := PaneIDs(nil); got != nil {
		t.Errorf("PaneIDs(nil) = %v, want nil", got)
	}
}

func TestContains(t *testing.T) {
	root := buildThree()
	if !Contains(root, "C") {
		t.Error("Contains(C) = false, want true")
	}
	if Contains(root, "X") {
		t.Error("Contains(X) = true, want false")
	}
	if Contains(nil, "A") {
		t.Error("Contains on nil tree = true, want false")
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	orig := buildThree()
	decoded, err := Decode(Encode(orig))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !reflect.DeepEqual(PaneIDs(decoded), PaneIDs(orig)) {
		t.Errorf("round-trip PaneIDs = %v, want %v", PaneIDs(decoded), PaneIDs(orig))
	}
	s := decoded.(*Split)
	if s.ID != "s1" || s.Ratio != 0.5 {
		t.Errorf("root split = {%s %v}, want {s1 0.5}", s.ID, s.Ratio)
	}
	inner := s.Right.(*Split)
	if inner.ID != "s2" || inner.Ratio != 0.3 || inner.Direction != Vertical {
		t.Errorf("inner split = {%s %s %v}, want {s2 vertical 0.3}", inner.ID, inner.Direction, inner.Ratio)
	}
}

func TestDecode_RepairsBadFields(t *testing.T) {
	e := &Encoded{
		Type:      wireSplit,
		Direction: "diagonal",
		Ratio:     1.5,
		Left:      &Encoded{Type: wireLeaf, PaneID: "A"},
		Right:     &Encoded{Type: wireLeaf, PaneID: "B"},
	}
	n, err := Decode(e)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	s := n.(*Split)
	if s.ID == "" {
		t.Error("missing split id was not regenerated")
	}
	if s.Ratio != 0.5 {
		t.Errorf("out-of-range ratio decoded to %v, want 0.5", s.Ratio)
	}
	if s.Direction != Horizontal {
		t.Errorf("unknown direction decoded to %q, want horizontal", s.Direction)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   *Encoded
	}{
		{"leaf without pane", &Encoded{Type: wireLeaf}},
		{"split missing child", &Encoded{Type: wireSplit, Left: &Encoded{Type: wireLeaf, PaneID: "A"}}},
		{"unknown type", &Encoded{Type: "circle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.in); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}
