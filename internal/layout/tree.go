// pattern: Functional Core

// Package layout implements the persistent binary split tree that describes
// the on-screen geometry of an arrangement. Nodes are immutable values;
// every operation returns a new root and leaves the input untouched, so two
// snapshots of a workspace never alias mutable tree nodes.
package layout

import "github.com/google/uuid"

// Direction is the axis of a split.
type Direction string

const (
	Horizontal Direction = "horizontal" // children side by side
	Vertical   Direction = "vertical"   // children stacked
)

// Position places a newly inserted leaf relative to its target.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// Ratio bounds for Resizing. A split can never collapse either side entirely.
const (
	MinRatio = 0.1
	MaxRatio = 0.9
)

// Node is a tree node: either a *Leaf holding a pane id or a *Split holding
// two children. The sum is closed; no other implementations exist.
type Node interface {
	isNode()
}

// Leaf holds a single pane.
type Leaf struct {
	PaneID string
}

// Split divides its region between two children along Direction.
// Ratio is the share given to Left, in (0, 1).
type Split struct {
	ID        string
	Direction Direction
	Ratio     float64
	Left      Node
	Right     Node
}

func (*Leaf) isNode()  {}
func (*Split) isNode() {}

// NewLeaf returns a leaf for the given pane.
func NewLeaf(paneID string) *Leaf {
	return &Leaf{PaneID: paneID}
}

// NewSplitID returns a fresh stable identifier for a split node.
func NewSplitID() string {
	return uuid.NewString()
}

// Inserting replaces the leaf holding targetID with a split whose children
// are the target and a new leaf for paneID, ordered by pos along dir. The
// new split's ratio is 0.5. When the target is not found the tree is
// returned unchanged; callers are expected to pre-validate the target.
func Inserting(root Node, paneID, targetID string, dir Direction, pos Position) Node {
	if root == nil {
		return nil
	}
	switch n := root.(type) {
	case *Leaf:
		if n.PaneID != targetID {
			return n
		}
		s := &Split{ID: NewSplitID(), Direction: dir, Ratio: 0.5}
		if pos == Before {
			s.Left = NewLeaf(paneID)
			s.Right = n
		} else {
			s.Left = n
			s.Right = NewLeaf(paneID)
		}
		return s
	case *Split:
		left := Inserting(n.Left, paneID, targetID, dir, pos)
		right := Inserting(n.Right, paneID, targetID, dir, pos)
		if left == n.Left && right == n.Right {
			return n
		}
		return &Split{ID: n.ID, Direction: n.Direction, Ratio: n.Ratio, Left: left, Right: right}
	}
	return root
}

// Removing removes the leaf holding paneID and promotes its sibling in
// place of the parent split. Removing the sole remaining leaf returns nil,
// signalling that the layout is now empty.
func Removing(root Node, paneID string) Node {
	if root == nil {
		return nil
	}
	switch n := root.(type) {
	case *Leaf:
		if n.PaneID == paneID {
			return nil
		}
		return n
	case *Split:
		if l, ok := n.Left.(*Leaf); ok && l.PaneID == paneID {
			return n.Right
		}
		if r, ok := n.Right.(*Leaf); ok && r.PaneID == paneID {
			return n.Left
		}
		left := Removing(n.Left, paneID)
		right := Removing(n.Right, paneID)
		if left == n.Left && right == n.Right {
			return n
		}
		// A subtree collapsing to nil cannot happen below a split: leaves are
		// removed at their parent, so recursion only ever rewrites splits.
		return &Split{ID: n.ID, Direction: n.Direction, Ratio: n.Ratio, Left: left, Right: right}
	}
	return root
}

// Resizing replaces the ratio of the split with the given id, clamped to
// [MinRatio, MaxRatio]. Unknown split ids leave the tree unchanged.
func Resizing(root Node, splitID string, ratio float64) Node {
	if ratio < MinRatio {
		ratio = MinRatio
	}
	if ratio > MaxRatio {
		ratio = MaxRatio
	}
	return resizing(root, splitID, ratio)
}

func resizing(root Node, splitID string, ratio float64) Node {
	n, ok := root.(*Split)
	if !ok {
		return root
	}
	if n.ID == splitID {
		return &Split{ID: n.ID, Direction: n.Direction, Ratio: ratio, Left: n.Left, Right: n.Right}
	}
	left := resizing(n.Left, splitID, ratio)
	right := resizing(n.Right, splitID, ratio)
	if left == n.Left && right == n.Right {
		return n
	}
	return &Split{ID: n.ID, Direction: n.Direction, Ratio: n.Ratio, Left: left, Right: right}
}

// Equalized resets every split's ratio to 0.5. Idempotent.
func Equalized(root Node) Node {
	n, ok := root.(*Split)
	if !ok {
		return root
	}
	left := Equalized(n.Left)
	right := Equalized(n.Right)
	if n.Ratio == 0.5 && left == n.Left && right == n.Right {
		return n
	}
	return &Split{ID: n.ID, Direction: n.Direction, Ratio: 0.5, Left: left, Right: right}
}

// ResizeTarget finds the nearest ancestor split of paneID whose axis matches
// dir, for keyboard-driven resize. shouldIncrease reports whether growing
// the pane means increasing that split's ratio (the pane sits in the left
// subtree). ok is false when the pane is alone on that axis.
func ResizeTarget(root Node, paneID string, dir Direction) (splitID string, shouldIncrease bool, ok bool) {
	path := pathTo(root, paneID)
	if path == nil {
		return "", false, false
	}
	// Walk from the leaf's parent toward the root.
	for i := len(path) - 1; i >= 0; i-- {
		s := path[i]
		if s.Direction != dir {
			continue
		}
		var child Node
		if i == len(path)-1 {
			child = leafIn(s, paneID)
		} else {
			child = path[i+1]
		}
		return s.ID, child == s.Left, true
	}
	return "", false, false
}

// leafIn returns whichever direct child of s contains paneID.
func leafIn(s *Split, paneID string) Node {
	if Contains(s.Left, paneID) {
		return s.Left
	}
	return s.Right
}

// pathTo returns the chain of splits from the root down to (but excluding)
// the leaf holding paneID, or nil when absent.
func pathTo(root Node, paneID string) []*Split {
	switch n := root.(type) {
	case *Leaf:
		if n.PaneID == paneID {
			return []*Split{}
		}
		return nil
	case *Split:
		if p := pathTo(n.Left, paneID); p != nil {
			return append([]*Split{n}, p...)
		}
		if p := pathTo(n.Right, paneID); p != nil {
			return append([]*Split{n}, p...)
		}
	}
	return nil
}

// PaneIDs returns pane ids in deterministic left-to-right depth-first
// order. This order doubles as rendering order and default tab ordering.
func PaneIDs(root Node) []string {
	var ids []string
	walk(root, func(l *Leaf) {
		ids = append(ids, l.PaneID)
	})
	return ids
}

// Contains reports whether paneID appears as a leaf in the tree.
func Contains(root Node, paneID string) bool {
	switch n := root.(type) {
	case *Leaf:
		return n.PaneID == paneID
	case *Split:
		return Contains(n.Left, paneID) || Contains(n.Right, paneID)
	}
	return false
}

// FromPaneIDs builds a right-leaning tree of equal splits over the given
// panes along dir. Used when an arrangement or migration has only a pane
// list and no structural information. Returns nil for an empty list.
func FromPaneIDs(ids []string, dir Direction) Node {
	if len(ids) == 0 {
		return nil
	}
	var root Node = NewLeaf(ids[len(ids)-1])
	for i := len(ids) - 2; i >= 0; i-- {
		root = &Split{
			ID:        NewSplitID(),
			Direction: dir,
			Ratio:     0.5,
			Left:      NewLeaf(ids[i]),
			Right:     root,
		}
	}
	return root
}

// Leaves returns the number of leaves in the tree.
func Leaves(root Node) int {
	count := 0
	walk(root, func(*Leaf) { count++ })
	return count
}

func walk(root Node, fn func(*Leaf)) {
	switch n := root.(type) {
	case *Leaf:
		fn(n)
	case *Split:
		walk(n.Left, fn)
		walk(n.Right, fn)
	}
}
