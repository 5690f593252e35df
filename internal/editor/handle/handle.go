package handle

import "fmt"

// EntityHandle identifies an editable entity by value: the id of the
// container (e.g. node id) plus a local index inside it (e.g. port or
// box index). Handles are lookup keys, never ownership; equality and
// hashing are structural, so handles work as map keys.
type EntityHandle struct {
	// Container is the id of the owning entity (node, track, patch).
	Container uint32
	// Local is an index inside the container, or -1 when the handle
	// addresses the container itself.
	Local int32
}

// Whole returns a handle addressing the container itself.
func Whole(container uint32) EntityHandle {
	return EntityHandle{Container: container, Local: -1}
}

// At returns a handle addressing a local index inside a container.
func At(container uint32, local int32) EntityHandle {
	return EntityHandle{Container: container, Local: local}
}

// String returns "container:local" for diagnostics.
func (h EntityHandle) String() string {
	if h.Local < 0 {
		return fmt.Sprintf("%d", h.Container)
	}
	return fmt.Sprintf("%d:%d", h.Container, h.Local)
}

// ContextPath is the chain of context names from a target context up
// to (but excluding) the root, innermost first. A nil or empty path
// addresses the root context itself.
type ContextPath []string

// Equal reports element-wise sequence equality. Nil and empty paths
// are equal (both address the root).
func (p ContextPath) Equal(other ContextPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// IsRoot reports whether the path addresses the root context.
func (p ContextPath) IsRoot() bool { return len(p) == 0 }

// String joins the segments outermost-first for diagnostics.
func (p ContextPath) String() string {
	if len(p) == 0 {
		return "/"
	}
	s := ""
	for i := len(p) - 1; i >= 0; i-- {
		s += "/" + p[i]
	}
	return s
}

// Clone returns an independent copy of the path.
func (p ContextPath) Clone() ContextPath {
	if p == nil {
		return nil
	}
	out := make(ContextPath, len(p))
	copy(out, p)
	return out
}

// Context is the minimal view of a nested editing context needed for
// addressing. The live graph implements it; resolution never mutates.
type Context interface {
	// ContextName returns the context's user-visible name. The root's
	// name is ignored by addressing.
	ContextName() string

	// ParentContext returns the enclosing context, or nil at the root.
	ParentContext() Context

	// ChildContext returns the direct child with the given name, or
	// nil if no such child exists.
	ChildContext(name string) Context
}

// PathFromContext builds the path addressing ctx by walking parent
// links up to (excluding) the root. Passing the root itself yields
// the empty path.
func PathFromContext(ctx Context) ContextPath {
	var path ContextPath
	for ctx != nil && ctx.ParentContext() != nil {
		path = append(path, ctx.ContextName())
		ctx = ctx.ParentContext()
	}
	return path
}

// PathFromChild builds a path for a named child that is not itself a
// context (a comment, a sub-block). The child's own name becomes
// element 0, followed by the parent context's path.
func PathFromChild(name string, parent Context) ContextPath {
	path := ContextPath{name}
	return append(path, PathFromContext(parent)...)
}

// ResolvePath walks path from root downward, matching names
// outermost-first. It returns the addressed context, or a
// MissingContextError naming the first absent segment and the context
// it was searched in.
func ResolvePath(root Context, path ContextPath) (Context, error) {
	cur := root
	for i := len(path) - 1; i >= 0; i-- {
		next := cur.ChildContext(path[i])
		if next == nil {
			in := ""
			if cur != root {
				in = cur.ContextName()
			}
			return nil, &MissingContextError{Segment: path[i], In: in}
		}
		cur = next
	}
	return cur, nil
}
