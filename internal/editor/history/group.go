package history

// GroupScope provides a convenient way to group actions using defer.
// Usage:
//
//	func pasteNodes(s *history.Stack) {
//	    defer s.GroupScope("Paste nodes").End()
//	    // ... multiple edits ...
//	}
type GroupScope struct {
	stack  *Stack
	active bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (s *Stack) GroupScope(name string) *GroupScope {
	s.BeginGroup(name)
	return &GroupScope{
		stack:  s,
		active: true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.stack.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope without recording a composite.
// Note: edits already applied still affect the document.
func (g *GroupScope) Cancel() {
	if g.active {
		g.stack.CancelGroup()
		g.active = false
	}
}

// Transaction records everything fn does as a single undo unit.
// If fn returns an error, the group is cancelled.
func (s *Stack) Transaction(name string, fn func() error) error {
	s.BeginGroup(name)

	if err := fn(); err != nil {
		s.CancelGroup()
		return err
	}

	s.EndGroup()
	return nil
}
