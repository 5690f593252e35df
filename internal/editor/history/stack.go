package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/nodestorm/internal/editor/action"
	"github.com/dshills/nodestorm/internal/editor/capture"
	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/logging"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// entry wraps an action with metadata.
type entry struct {
	act       action.Action
	timestamp time.Time
}

// OperationInfo describes one stack entry for UI listing.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}

// Stack manages undo/redo state for one document.
type Stack struct {
	mu sync.Mutex

	doc *graph.Document
	log *logging.Logger

	undoStack []*entry
	redoStack []*entry

	// Grouping state
	grouping  bool
	groupName string
	groupActs []action.Action

	// Configuration
	enabled    bool
	maxEntries int
}

// NewStack creates a stack recording against doc.
func NewStack(doc *graph.Document, maxEntries int, log *logging.Logger) *Stack {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Stack{
		doc:        doc,
		log:        log.WithComponent("history"),
		enabled:    true,
		maxEntries: maxEntries,
	}
}

// Enabled reports whether the stack records incoming actions.
func (s *Stack) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled toggles recording. A disabled stack releases and drops
// every incoming action; existing entries stay replayable.
func (s *Stack) SetEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = v
}

// Sink returns the stack as a capture sink, or nil when recording is
// disabled so capture blocks skip their snapshots entirely.
func (s *Stack) Sink() capture.Sink {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return nil
	}
	return s
}

// Execute applies an action to the document and records it.
func (s *Stack) Execute(a action.Action) error {
	if err := a.Do(s.doc); err != nil {
		return err
	}
	s.AddAction(a)
	return nil
}

// AddAction records an already-applied action. Clears the redo stack.
func (s *Stack) AddAction(a action.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		action.Release(a)
		return
	}
	if s.grouping {
		s.groupActs = append(s.groupActs, a)
		return
	}
	s.pushLocked(a)
}

// pushLocked records an action without acquiring the lock.
func (s *Stack) pushLocked(a action.Action) {
	s.undoStack = append(s.undoStack, &entry{
		act:       a,
		timestamp: time.Now(),
	})

	// A new edit invalidates the redo branch; its actions will never
	// replay again, so their buffers go back now.
	for _, e := range s.redoStack {
		action.Release(e.act)
	}
	s.redoStack = nil

	if len(s.undoStack) > s.maxEntries {
		excess := len(s.undoStack) - s.maxEntries
		for _, e := range s.undoStack[:excess] {
			action.Release(e.act)
		}
		s.undoStack = s.undoStack[excess:]
	}
}

// Undo replays the last recorded action's before-state.
// The lock is released during replay to avoid holding it across
// snapshot restores.
func (s *Stack) Undo() error {
	s.mu.Lock()
	if len(s.undoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	e := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.mu.Unlock()

	if err := e.act.Undo(s.doc); err != nil {
		// Restore entry on failure
		s.mu.Lock()
		s.undoStack = append(s.undoStack, e)
		s.mu.Unlock()
		s.log.Error("undo %q failed: %v", e.act.Description(), err)
		return err
	}

	s.mu.Lock()
	s.redoStack = append(s.redoStack, e)
	s.mu.Unlock()
	return nil
}

// Redo replays the last undone action's after-state.
func (s *Stack) Redo() error {
	s.mu.Lock()
	if len(s.redoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToRedo
	}
	e := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.mu.Unlock()

	if err := e.act.Do(s.doc); err != nil {
		s.mu.Lock()
		s.redoStack = append(s.redoStack, e)
		s.mu.Unlock()
		s.log.Error("redo %q failed: %v", e.act.Description(), err)
		return err
	}

	s.mu.Lock()
	s.undoStack = append(s.undoStack, e)
	s.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (s *Stack) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

// RedoCount returns the number of redo entries.
func (s *Stack) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack)
}

// BeginGroup starts an action group.
// Actions recorded while grouping combine into a single undo unit.
func (s *Stack) BeginGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grouping {
		// Already grouping, ignore nested calls
		return
	}
	s.grouping = true
	s.groupName = name
	s.groupActs = nil
}

// EndGroup finishes an action group. A single grouped action lands
// directly; two or more land as one composite.
func (s *Stack) EndGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.grouping {
		return
	}
	s.grouping = false

	switch len(s.groupActs) {
	case 0:
	case 1:
		s.pushLocked(s.groupActs[0])
	default:
		c, err := action.NewComposite(s.groupActs...)
		if err != nil {
			s.log.Error("group %q: %v", s.groupName, err)
			break
		}
		s.pushLocked(c)
	}
	s.groupActs = nil
}

// CancelGroup discards the open group without recording. The grouped
// actions will never replay again, so they are released.
// Note: edits already applied still affect the document!
func (s *Stack) CancelGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grouping = false
	for _, a := range s.groupActs {
		action.Release(a)
	}
	s.groupActs = nil
}

// IsGrouping returns true if currently in an action group.
func (s *Stack) IsGrouping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grouping
}

// Clear removes all undo/redo history, releasing every entry.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.undoStack {
		action.Release(e.act)
	}
	for _, e := range s.redoStack {
		action.Release(e.act)
	}
	for _, a := range s.groupActs {
		action.Release(a)
	}
	s.undoStack = nil
	s.redoStack = nil
	s.grouping = false
	s.groupActs = nil
}

// UndoInfo returns info about available undo entries, oldest first.
func (s *Stack) UndoInfo() []OperationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]OperationInfo, len(s.undoStack))
	for i, e := range s.undoStack {
		result[i] = OperationInfo{
			Description: e.act.Description(),
			Timestamp:   e.timestamp,
		}
	}
	return result
}

// RedoInfo returns info about available redo entries, oldest first.
func (s *Stack) RedoInfo() []OperationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]OperationInfo, len(s.redoStack))
	for i, e := range s.redoStack {
		result[i] = OperationInfo{
			Description: e.act.Description(),
			Timestamp:   e.timestamp,
		}
	}
	return result
}

// PeekUndo returns info about the next undo entry without removing it.
func (s *Stack) PeekUndo() (OperationInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undoStack) == 0 {
		return OperationInfo{}, false
	}
	e := s.undoStack[len(s.undoStack)-1]
	return OperationInfo{Description: e.act.Description(), Timestamp: e.timestamp}, true
}

// PeekRedo returns info about the next redo entry without removing it.
func (s *Stack) PeekRedo() (OperationInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redoStack) == 0 {
		return OperationInfo{}, false
	}
	e := s.redoStack[len(s.redoStack)-1]
	return OperationInfo{Description: e.act.Description(), Timestamp: e.timestamp}, true
}

// SetMaxEntries changes the stack depth, evicting and releasing the
// oldest entries if the current stack is larger.
func (s *Stack) SetMaxEntries(max int) {
	if max <= 0 {
		max = 1000
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.maxEntries = max
	if len(s.undoStack) > max {
		excess := len(s.undoStack) - max
		for _, e := range s.undoStack[:excess] {
			action.Release(e.act)
		}
		s.undoStack = s.undoStack[excess:]
	}
}

// MaxEntries returns the stack depth limit.
func (s *Stack) MaxEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEntries
}
