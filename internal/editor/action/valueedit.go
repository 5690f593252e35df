package action

import (
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/handle"
	"github.com/dshills/nodestorm/internal/editor/snapshot"
)

// ValueEdit records a change to one node's ordered value slots.
// Both snapshots are supplied at construction, so the action is
// Finalized immediately.
type ValueEdit struct {
	path       handle.ContextPath
	nodeID     uint32
	nodeName   string
	before     []byte
	after      []byte
	resizable  bool
	structural bool
}

// NewValueEdit creates a value edit for n with captured before/after
// values snapshots. structural is passed through to the document's
// dirty tracking. If the node's archetype is fixed-size, a slot-count
// change between before and after fails fast with a
// SizeMismatchError so the action can never reach the history.
func NewValueEdit(n *graph.Node, before, after snapshot.Snapshot, structural bool) (*ValueEdit, error) {
	resizable := n.Archetype().Resizable
	if !resizable {
		bv, err := snapshot.DecodeValues(before.Payload)
		if err != nil {
			return nil, fmt.Errorf("value edit before-snapshot: %w", err)
		}
		av, err := snapshot.DecodeValues(after.Payload)
		if err != nil {
			return nil, fmt.Errorf("value edit after-snapshot: %w", err)
		}
		if len(bv) != len(av) {
			return nil, &graph.SizeMismatchError{Want: len(bv), Got: len(av)}
		}
	}
	return &ValueEdit{
		path:       n.Context().Path(),
		nodeID:     n.ID(),
		nodeName:   n.Name(),
		before:     before.Payload,
		after:      after.Payload,
		resizable:  resizable,
		structural: structural,
	}, nil
}

// Do writes the after-values into the live node.
func (a *ValueEdit) Do(doc *graph.Document) error {
	return a.apply(doc, a.after)
}

// Undo writes the before-values into the live node.
func (a *ValueEdit) Undo(doc *graph.Document) error {
	return a.apply(doc, a.before)
}

func (a *ValueEdit) apply(doc *graph.Document, payload []byte) error {
	ctx, err := doc.ResolveContext(a.path)
	if err != nil {
		return err
	}
	n, err := ctx.NodeByID(a.nodeID)
	if err != nil {
		return err
	}
	if err := snapshot.RestoreValues(n, payload, a.resizable); err != nil {
		return err
	}
	doc.NotifyValueChanged(handle.Whole(a.nodeID))
	doc.MarkModified(a.structural)
	return nil
}

// Description returns a human-readable label.
func (a *ValueEdit) Description() string {
	return fmt.Sprintf("Edit %s values", a.nodeName)
}
