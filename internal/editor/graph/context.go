package graph

import (
	"fmt"

	"github.com/dshills/nodestorm/internal/editor/handle"
)

// Context is one nested editing scope: a sub-graph that owns nodes
// and further nested contexts. Every non-root context has a name
// unique among its siblings; the tree has exactly one root.
type Context struct {
	name     string
	parent   *Context
	children []*Context
	nodes    map[uint32]*Node
	doc      *Document
}

func newContext(name string, parent *Context, doc *Document) *Context {
	return &Context{
		name:   name,
		parent: parent,
		nodes:  make(map[uint32]*Node),
		doc:    doc,
	}
}

// Name returns the context's user-visible name ("" for the root).
func (c *Context) Name() string { return c.name }

// Parent returns the enclosing context, or nil at the root.
func (c *Context) Parent() *Context { return c.parent }

// Document returns the owning document.
func (c *Context) Document() *Document { return c.doc }

// Path returns the stable path addressing this context.
func (c *Context) Path() handle.ContextPath {
	return handle.PathFromContext(c)
}

// ContextName implements handle.Context.
func (c *Context) ContextName() string { return c.name }

// ParentContext implements handle.Context.
func (c *Context) ParentContext() handle.Context {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

// ChildContext implements handle.Context.
func (c *Context) ChildContext(name string) handle.Context {
	child := c.Child(name)
	if child == nil {
		return nil
	}
	return child
}

// Child returns the direct child context with the given name, or nil.
func (c *Context) Child(name string) *Context {
	for _, child := range c.children {
		if child.name == name {
			return child
		}
	}
	return nil
}

// Children returns the child contexts in creation order. The slice
// is shared; do not mutate.
func (c *Context) Children() []*Context { return c.children }

// NewChild creates a nested context. The name must be non-empty and
// unique among siblings.
func (c *Context) NewChild(name string) (*Context, error) {
	if name == "" {
		return nil, fmt.Errorf("context name must not be empty")
	}
	if c.Child(name) != nil {
		return nil, fmt.Errorf("%w: context %q in %q", ErrDuplicateName, name, c.name)
	}
	child := newContext(name, c, c.doc)
	c.children = append(c.children, child)
	return child, nil
}

// RemoveChild detaches and discards the named child context and
// everything inside it.
func (c *Context) RemoveChild(name string) error {
	for i, child := range c.children {
		if child.name == name {
			child.parent = nil
			c.children = append(c.children[:i], c.children[i+1:]...)
			return nil
		}
	}
	return &handle.MissingContextError{Segment: name, In: c.name}
}

// NewNode creates a node of the given archetype inside this context.
// Node names are unique within the context.
func (c *Context) NewNode(name, archetype string) (*Node, error) {
	if _, err := c.NodeByName(name); err == nil {
		return nil, fmt.Errorf("%w: node %q in context %q", ErrDuplicateName, name, c.name)
	}
	arch, err := c.doc.registry.Get(archetype)
	if err != nil {
		return nil, err
	}

	n := &Node{
		id:     c.doc.allocNodeID(),
		name:   name,
		arch:   arch,
		values: make([]float32, arch.SlotCount),
		ctx:    c,
	}
	n.boxes = make([]*Box, arch.BoxCount)
	for i := range n.boxes {
		n.boxes[i] = &Box{owner: n, index: int32(i)}
	}
	c.nodes[n.id] = n
	return n, nil
}

// RemoveNode detaches a node, clearing its links first so no remote
// box keeps a dangling back-link.
func (c *Context) RemoveNode(id uint32) error {
	n, ok := c.nodes[id]
	if !ok {
		return &handle.MissingEntityError{Handle: handle.Whole(id), In: c.name}
	}
	for _, b := range n.boxes {
		b.ClearLinks()
	}
	n.ctx = nil
	delete(c.nodes, id)
	return nil
}

// NodeByID returns the node with the given id.
func (c *Context) NodeByID(id uint32) (*Node, error) {
	n, ok := c.nodes[id]
	if !ok {
		return nil, &handle.MissingEntityError{Handle: handle.Whole(id), In: c.name}
	}
	return n, nil
}

// NodeByName returns the node with the given name.
func (c *Context) NodeByName(name string) (*Node, error) {
	for _, n := range c.nodes {
		if n.name == name {
			return n, nil
		}
	}
	return nil, &handle.MissingEntityError{Name: name, In: c.name}
}

// NodeCount returns the number of nodes in the context.
func (c *Context) NodeCount() int { return len(c.nodes) }

// NodeIDs returns the ids of all nodes, unordered.
func (c *Context) NodeIDs() []uint32 {
	ids := make([]uint32, 0, len(c.nodes))
	for id := range c.nodes {
		ids = append(ids, id)
	}
	return ids
}

// ResolveBox resolves a box handle inside this context.
func (c *Context) ResolveBox(h handle.EntityHandle) (*Box, error) {
	n, err := c.NodeByID(h.Container)
	if err != nil {
		return nil, err
	}
	return n.Box(h.Local)
}
