package handle

import (
	"errors"
	"fmt"
)

// Errors returned by addressing and replay-time resolution.
var (
	// ErrMissingContext indicates a context path segment could not be
	// resolved, typically because an enclosing sub-graph was deleted
	// after the action was recorded.
	ErrMissingContext = errors.New("missing context")

	// ErrMissingEntity indicates an entity handle or name no longer
	// resolves inside its context.
	ErrMissingEntity = errors.New("missing entity")
)

// MissingContextError reports the exact path segment that failed to
// resolve and the context it was searched in.
type MissingContextError struct {
	// Segment is the context name that was not found.
	Segment string
	// In is the name of the context that was searched ("" for root).
	In string
}

// Error implements the error interface.
func (e *MissingContextError) Error() string {
	if e.In == "" {
		return fmt.Sprintf("missing context %q in root", e.Segment)
	}
	return fmt.Sprintf("missing context %q in %q", e.Segment, e.In)
}

// Unwrap allows errors.Is(err, ErrMissingContext).
func (e *MissingContextError) Unwrap() error { return ErrMissingContext }

// MissingEntityError reports an entity that could not be resolved.
type MissingEntityError struct {
	// Name is the entity name, if it was addressed by name.
	Name string
	// Handle is the entity handle, if it was addressed by handle.
	Handle EntityHandle
	// In is the name of the context that was searched.
	In string
}

// Error implements the error interface.
func (e *MissingEntityError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("missing entity %q in %q", e.Name, e.In)
	}
	return fmt.Sprintf("missing entity %v in %q", e.Handle, e.In)
}

// Unwrap allows errors.Is(err, ErrMissingEntity).
func (e *MissingEntityError) Unwrap() error { return ErrMissingEntity }
