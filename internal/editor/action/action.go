package action

import (
	"errors"

	"github.com/dshills/nodestorm/internal/editor/graph"
)

// Errors returned by action lifecycle violations. Both indicate
// programming errors at call sites, not document conditions.
var (
	// ErrNotFinalized indicates Do/Undo was called before the
	// action's after-state was captured.
	ErrNotFinalized = errors.New("action not finalized")

	// ErrAlreadyFinalized indicates a second finalize call on an
	// action whose after-state is already captured.
	ErrAlreadyFinalized = errors.New("action already finalized")
)

// Action is one atomic, reversible edit.
type Action interface {
	// Do applies the edit's after-state to the live document.
	Do(doc *graph.Document) error

	// Undo applies the edit's before-state to the live document.
	Undo(doc *graph.Document) error

	// Description returns a human-readable label. Informational only.
	Description() string
}

// Releaser is implemented by actions that own heap buffers (terrain
// patch records). Release must be safe to call more than once.
type Releaser interface {
	Release()
}

// Release disposes an action's owned buffers, if it has any.
func Release(a Action) {
	if r, ok := a.(Releaser); ok {
		r.Release()
	}
}
