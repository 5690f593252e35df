package graph

import (
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/handle"
)

// Flags holds per-entity bit flags.
type Flags uint32

// Node flag bits.
const (
	// FlagDisabled marks a node excluded from evaluation.
	FlagDisabled Flags = 1 << iota
	// FlagLocked marks a node protected from interactive edits.
	FlagLocked
)

// Node is one editable unit inside a context: a stable id, a name
// unique within its context, ordered float32 value slots, and boxes
// (ports) carrying symmetric links to other boxes.
type Node struct {
	id     uint32
	name   string
	color  uint32
	flags  Flags
	arch   *Archetype
	values []float32
	boxes  []*Box
	ctx    *Context
}

// ID returns the node's document-unique id.
func (n *Node) ID() uint32 { return n.id }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Color returns the node's display color.
func (n *Node) Color() uint32 { return n.color }

// SetColor sets the node's display color.
func (n *Node) SetColor(c uint32) { n.color = c }

// Flags returns the node's flags.
func (n *Node) Flags() Flags { return n.flags }

// SetFlags sets the node's flags.
func (n *Node) SetFlags(f Flags) { n.flags = f }

// Archetype returns the node's archetype.
func (n *Node) Archetype() *Archetype { return n.arch }

// Context returns the context that owns this node.
func (n *Node) Context() *Context { return n.ctx }

// Handle returns the handle addressing the whole node.
func (n *Node) Handle() handle.EntityHandle { return handle.Whole(n.id) }

// SlotCount returns the current number of value slots.
func (n *Node) SlotCount() int { return len(n.values) }

// Value returns the value in one slot.
func (n *Node) Value(slot int) (float32, error) {
	if slot < 0 || slot >= len(n.values) {
		return 0, fmt.Errorf("slot %d out of range (node has %d)", slot, len(n.values))
	}
	return n.values[slot], nil
}

// SetValue writes one slot in place.
func (n *Node) SetValue(slot int, v float32) error {
	if slot < 0 || slot >= len(n.values) {
		return fmt.Errorf("slot %d out of range (node has %d)", slot, len(n.values))
	}
	n.values[slot] = v
	return nil
}

// CopyValues returns an independent copy of all value slots.
func (n *Node) CopyValues() []float32 {
	out := make([]float32, len(n.values))
	copy(out, n.values)
	return out
}

// WriteValues replaces the node's slots. When resize is false the
// incoming slot count must match the current one; a mismatch yields
// a SizeMismatchError and leaves the node untouched.
func (n *Node) WriteValues(vals []float32, resize bool) error {
	if !resize && len(vals) != len(n.values) {
		return &SizeMismatchError{Want: len(n.values), Got: len(vals)}
	}
	n.values = make([]float32, len(vals))
	copy(n.values, vals)
	return nil
}

// BoxCount returns the number of boxes on the node.
func (n *Node) BoxCount() int { return len(n.boxes) }

// Box returns the box at the given index.
func (n *Node) Box(index int32) (*Box, error) {
	if index < 0 || int(index) >= len(n.boxes) {
		return nil, fmt.Errorf("%w: %d on node %q (%d boxes)", ErrBoxIndex, index, n.name, len(n.boxes))
	}
	return n.boxes[index], nil
}

// Boxes returns the node's boxes in order. The slice is shared; do
// not mutate.
func (n *Node) Boxes() []*Box { return n.boxes }

// Box is one port on a node. Links are symmetric: connecting A to B
// appends B to A's link list and A to B's.
type Box struct {
	owner *Node
	index int32
	links []*Box
}

// Owner returns the node the box belongs to.
func (b *Box) Owner() *Node { return b.owner }

// Index returns the box's position on its node.
func (b *Box) Index() int32 { return b.index }

// Handle returns the handle addressing this box.
func (b *Box) Handle() handle.EntityHandle {
	return handle.At(b.owner.id, b.index)
}

// LinkCount returns the number of links on the box.
func (b *Box) LinkCount() int { return len(b.links) }

// Links returns the remote ends in link order.
func (b *Box) Links() []*Box {
	out := make([]*Box, len(b.links))
	copy(out, b.links)
	return out
}

// LinkHandles returns the remote ends as handles, in link order.
func (b *Box) LinkHandles() []handle.EntityHandle {
	out := make([]handle.EntityHandle, len(b.links))
	for i, l := range b.links {
		out[i] = l.Handle()
	}
	return out
}

// LinkedTo reports whether the box is linked to remote.
func (b *Box) LinkedTo(remote *Box) bool {
	for _, l := range b.links {
		if l == remote {
			return true
		}
	}
	return false
}

// Connect links two boxes on both ends. Linking a box to itself or
// duplicating an existing link is rejected.
func Connect(a, b *Box) error {
	if a == b {
		return fmt.Errorf("cannot link box %v to itself", a.Handle())
	}
	if a.LinkedTo(b) {
		return fmt.Errorf("boxes %v and %v already linked", a.Handle(), b.Handle())
	}
	a.links = append(a.links, b)
	b.links = append(b.links, a)
	return nil
}

// Disconnect removes the link between two boxes on both ends. It is
// a no-op if the boxes are not linked.
func Disconnect(a, b *Box) {
	a.removeLink(b)
	b.removeLink(a)
}

// ClearLinks removes every link on the box, including the back-link
// on each remote end. It returns the remote boxes that were touched.
func (b *Box) ClearLinks() []*Box {
	touched := b.links
	for _, remote := range touched {
		remote.removeLink(b)
	}
	b.links = nil
	return touched
}

func (b *Box) removeLink(remote *Box) {
	for i, l := range b.links {
		if l == remote {
			b.links = append(b.links[:i], b.links[i+1:]...)
			return
		}
	}
}
