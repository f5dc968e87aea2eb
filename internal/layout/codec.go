// pattern: Functional Core

package layout

import "fmt"

// Wire node types for the persisted document.
const (
	wireLeaf  = "leaf"
	wireSplit = "split"
)

// Encoded is the JSON-friendly representation of a tree node. Exactly one
// of PaneID or the split fields is populated, selected by Type.
type Encoded struct {
	Type      string    `json:"type"`
	PaneID    string    `json:"paneId,omitempty"`
	ID        string    `json:"id,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Ratio     float64   `json:"ratio,omitempty"`
	Left      *Encoded  `json:"left,omitempty"`
	Right     *Encoded  `json:"right,omitempty"`
}

// Encode converts a tree into its wire shape. Nil trees encode as nil.
func Encode(root Node) *Encoded {
	switch n := root.(type) {
	case *Leaf:
		return &Encoded{Type: wireLeaf, PaneID: n.PaneID}
	case *Split:
		return &Encoded{
			Type:      wireSplit,
			ID:        n.ID,
			Direction: n.Direction,
			Ratio:     n.Ratio,
			Left:      Encode(n.Left),
			Right:     Encode(n.Right),
		}
	}
	return nil
}

// Decode rebuilds a tree from its wire shape. Split ids are preserved so
// resize state survives a restart; missing ids are regenerated. Malformed
// nodes are an error so the loader can fall back to repair or skip.
func Decode(e *Encoded) (Node, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Type {
	case wireLeaf:
		if e.PaneID == "" {
			return nil, fmt.Errorf("leaf node without pane id")
		}
		return NewLeaf(e.PaneID), nil
	case wireSplit:
		if e.Left == nil || e.Right == nil {
			return nil, fmt.Errorf("split node %q missing a child", e.ID)
		}
		left, err := Decode(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := Decode(e.Right)
		if err != nil {
			return nil, err
		}
		id := e.ID
		if id == "" {
			id = NewSplitID()
		}
		ratio := e.Ratio
		if ratio <= 0 || ratio >= 1 {
			ratio = 0.5
		}
		dir := e.Direction
		if dir != Horizontal && dir != Vertical {
			dir = Horizontal
		}
		return &Split{ID: id, Direction: dir, Ratio: ratio, Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unknown layout node type %q", e.Type)
	}
}
