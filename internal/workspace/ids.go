// pattern: Functional Core

package workspace

import "github.com/google/uuid"

// newIDFunc generates entity ids. Swappable in tests for deterministic
// identifiers.
var newIDFunc = uuid.NewString

// NewPaneID returns a fresh pane identifier.
func NewPaneID() string {
	return newIDFunc()
}
