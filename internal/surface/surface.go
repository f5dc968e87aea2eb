// pattern: Functional Core

// Package surface defines the contract between the workspace coordinator
// and the layer that owns live content resources (terminal processes,
// browser pages), plus the runtime registry of attached views.
package surface

import (
	"context"

	"deskmux/internal/workspace"
)

// Handle identifies a live resource owned by the surface layer.
type Handle struct {
	ResourceID string
	Kind       workspace.ContentKind
}

// Metadata carries the pane attributes a surface needs at creation time.
type Metadata struct {
	PaneID     string
	Title      string
	WorkingDir string
	Env        map[string]string
}

// DetachReason tells the surface layer why a view is going away, so it can
// decide whether to keep the resource warm.
type DetachReason string

const (
	DetachHidden     DetachReason = "hidden"     // arrangement switch, pane still owned
	DetachMinimized  DetachReason = "minimized"  // pane minimized in place
	DetachBackground DetachReason = "background" // pane backgrounded, resource kept alive
	DetachClose      DetachReason = "close"      // pane closed, retained briefly for undo
)

// View is a renderable attachment of a resource to a pane. The rendering
// layer supplies concrete implementations; the state engine only routes
// them.
type View interface {
	PaneID() string
	Render(width, height int) string
}

// Collaborator is the external surface-creation contract consumed by the
// coordinator. Creation is asynchronous and fallible; everything else must
// be tolerant of unknown resource ids (a superseded action may destroy a
// resource that arrives late).
type Collaborator interface {
	CreateSurface(ctx context.Context, content workspace.Content, meta Metadata) (Handle, error)
	Attach(resourceID, paneID string) (View, bool)
	Detach(resourceID string, reason DetachReason)
	Destroy(resourceID string)

	// UndoClose returns the most recently detached-for-close resource, if
	// the surface layer still retains one, letting undo skip a fresh
	// creation.
	UndoClose() (Handle, bool)
}
