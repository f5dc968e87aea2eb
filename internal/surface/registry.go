// pattern: Imperative Shell

package surface

import (
	"sync"

	"deskmux/internal/layout"
)

// Registry maps pane ids to their attached views. It is rebuilt at runtime
// and never persisted.
type Registry struct {
	mu    sync.RWMutex
	views map[string]View
}

// NewRegistry returns an empty view registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]View)}
}

// Register attaches a view to a pane, replacing any previous view.
func (r *Registry) Register(v View, paneID string) {
	r.mu.Lock()
	r.views[paneID] = v
	r.mu.Unlock()
}

// Unregister detaches whatever view the pane had. Unknown panes are a
// no-op so teardown paths can be called twice.
func (r *Registry) Unregister(paneID string) {
	r.mu.Lock()
	delete(r.views, paneID)
	r.mu.Unlock()
}

// View returns the view attached to a pane.
func (r *Registry) View(paneID string) (View, bool) {
	r.mu.RLock()
	v, ok := r.views[paneID]
	r.mu.RUnlock()
	return v, ok
}

// Len returns the number of registered views.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// RenderNode is the on-screen split tree produced from a layout. A leaf
// carries a view; a split carries direction, ratio, and two children.
type RenderNode struct {
	View      View
	Direction layout.Direction
	Ratio     float64
	Left      *RenderNode
	Right     *RenderNode
}

// IsLeaf reports whether the node carries a view.
func (n *RenderNode) IsLeaf() bool {
	return n != nil && n.View != nil
}

// RenderTree converts a layout into its renderable split tree. Leaves
// whose view is missing are dropped and the surviving sibling is promoted
// in place of the split; the result is nil only when every leaf's view is
// missing.
func (r *Registry) RenderTree(root layout.Node) *RenderNode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.renderLocked(root)
}

func (r *Registry) renderLocked(root layout.Node) *RenderNode {
	switch n := root.(type) {
	case *layout.Leaf:
		v, ok := r.views[n.PaneID]
		if !ok {
			return nil
		}
		return &RenderNode{View: v}
	case *layout.Split:
		left := r.renderLocked(n.Left)
		right := r.renderLocked(n.Right)
		switch {
		case left == nil:
			return right
		case right == nil:
			return left
		}
		return &RenderNode{Direction: n.Direction, Ratio: n.Ratio, Left: left, Right: right}
	}
	return nil
}
