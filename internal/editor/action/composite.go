package action

import (
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/graph"
)

// Composite groups two or more actions into one atomic user-visible
// edit.
//
// Undo applies the sub-actions' Undo in the SAME list order as Do,
// not reversed: callers compose sub-actions that are already in
// correct dependency order for both directions, and replay preserves
// that order exactly.
//
// Replay is not transactional: a failure partway through leaves the
// earlier sub-actions applied.
type Composite struct {
	actions []Action
}

// NewComposite creates a composite from 2+ actions.
func NewComposite(actions ...Action) (*Composite, error) {
	if len(actions) < 2 {
		return nil, fmt.Errorf("composite needs at least 2 actions, got %d", len(actions))
	}
	return &Composite{actions: actions}, nil
}

// Actions returns the sub-actions in order. The slice is shared; do
// not mutate.
func (c *Composite) Actions() []Action { return c.actions }

// Do applies every sub-action in list order.
func (c *Composite) Do(doc *graph.Document) error {
	for i, a := range c.actions {
		if err := a.Do(doc); err != nil {
			return fmt.Errorf("composite step %d (%s): %w", i, a.Description(), err)
		}
	}
	return nil
}

// Undo applies every sub-action's Undo in list order.
func (c *Composite) Undo(doc *graph.Document) error {
	for i, a := range c.actions {
		if err := a.Undo(doc); err != nil {
			return fmt.Errorf("composite step %d (%s): %w", i, a.Description(), err)
		}
	}
	return nil
}

// Description returns the last sub-action's description, matching the
// convention that the final edit names the user-visible intent.
func (c *Composite) Description() string {
	return c.actions[len(c.actions)-1].Description()
}

// Release disposes every sub-action's owned buffers.
func (c *Composite) Release() {
	for _, a := range c.actions {
		Release(a)
	}
}
