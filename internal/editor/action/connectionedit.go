package action

import (
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/handle"
	"github.com/dshills/nodestorm/internal/editor/snapshot"
)

// ConnectionEdit records a change to one node's connection topology.
// It is two-phase: the constructor captures the before-topology from
// the live node, the caller performs its live link edits, then calls
// End exactly once to capture the after-topology.
type ConnectionEdit struct {
	path      handle.ContextPath
	nodeID    uint32
	nodeName  string
	before    []byte
	after     []byte
	finalized bool
}

// NewConnectionEdit captures the before-topology of n.
func NewConnectionEdit(n *graph.Node) *ConnectionEdit {
	return &ConnectionEdit{
		path:     n.Context().Path(),
		nodeID:   n.ID(),
		nodeName: n.Name(),
		before:   snapshot.CaptureTopology(n).Payload,
	}
}

// End captures the after-topology, finalizing the action. Calling End
// a second time is a programming error.
func (a *ConnectionEdit) End(n *graph.Node) error {
	if a.finalized {
		return fmt.Errorf("%w: connection edit on %q", ErrAlreadyFinalized, a.nodeName)
	}
	if n.ID() != a.nodeID {
		return fmt.Errorf("connection edit recorded node %d, End got node %d", a.nodeID, n.ID())
	}
	a.after = snapshot.CaptureTopology(n).Payload
	a.finalized = true
	return nil
}

// Finalized reports whether End has been called.
func (a *ConnectionEdit) Finalized() bool { return a.finalized }

// Do replays the after-topology.
func (a *ConnectionEdit) Do(doc *graph.Document) error {
	return a.apply(doc, a.after)
}

// Undo replays the before-topology.
func (a *ConnectionEdit) Undo(doc *graph.Document) error {
	return a.apply(doc, a.before)
}

func (a *ConnectionEdit) apply(doc *graph.Document, payload []byte) error {
	if !a.finalized {
		return fmt.Errorf("%w: connection edit on %q", ErrNotFinalized, a.nodeName)
	}
	ctx, err := doc.ResolveContext(a.path)
	if err != nil {
		return err
	}
	touched, err := snapshot.RestoreTopology(ctx, a.nodeID, payload)
	if err != nil {
		return err
	}
	// One notification per touched port, even when a port was touched
	// from both sides of a link; RestoreTopology deduplicates.
	for _, h := range touched {
		doc.NotifyConnectionsChanged(h)
	}
	doc.MarkModified(true)
	return nil
}

// Description returns a human-readable label.
func (a *ConnectionEdit) Description() string {
	return fmt.Sprintf("Rewire %s", a.nodeName)
}
