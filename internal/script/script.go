// Package script runs editor macros written in Lua.
//
// A macro sees the document through a small `editor` table of edit
// primitives. Every primitive applies its change to the live document
// and records the matching action, and the whole macro runs inside
// one history transaction: it lands as a single undo unit, and a
// failing macro records nothing.
//
// gopher-lua's LState is not goroutine-safe; the runner creates a
// fresh state per macro and the editing model is single-threaded
// anyway.
//
// Slot and box indices in macro source are 1-based, Lua convention.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/nodestorm/internal/editor/action"
	"github.com/dshills/nodestorm/internal/editor/capture"
	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/history"
	"github.com/dshills/nodestorm/internal/editor/snapshot"
	"github.com/dshills/nodestorm/internal/editor/timeline"
	"github.com/dshills/nodestorm/internal/logging"
)

// Runner executes macros against one document and history stack.
type Runner struct {
	doc   *graph.Document
	stack *history.Stack
	log   *logging.Logger
}

// NewRunner creates a macro runner.
func NewRunner(doc *graph.Document, stack *history.Stack, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{
		doc:   doc,
		stack: stack,
		log:   log.WithComponent("script"),
	}
}

// Run executes macro source as a single undo unit named name.
func (r *Runner) Run(name, source string) error {
	r.log.Debug("running macro %q", name)
	return r.stack.Transaction(name, func() error {
		L := lua.NewState()
		defer L.Close()
		r.register(L)

		if err := L.DoString(source); err != nil {
			r.log.Warn("macro %q failed: %v", name, err)
			return fmt.Errorf("macro %q: %w", name, err)
		}
		return nil
	})
}

func (r *Runner) register(L *lua.LState) {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"set_value":    r.luaSetValue,
		"connect":      r.luaConnect,
		"disconnect":   r.luaDisconnect,
		"add_track":    r.luaAddTrack,
		"remove_track": r.luaRemoveTrack,
		"rename_track": r.luaRenameTrack,
		"move_track":   r.luaMoveTrack,
		"set_duration": r.luaSetDuration,
	})
	L.SetGlobal("editor", mod)
}

// node resolves a root-context node by name, raising a Lua error when
// it is missing.
func (r *Runner) node(L *lua.LState, name string) *graph.Node {
	n, err := r.doc.Root().NodeByName(name)
	if err != nil {
		L.RaiseError("node %q: %v", name, err)
		return nil
	}
	return n
}

func (r *Runner) box(L *lua.LState, node string, index int) *graph.Box {
	n := r.node(L, node)
	b, err := n.Box(int32(index - 1))
	if err != nil {
		L.RaiseError("node %q: %v", node, err)
		return nil
	}
	return b
}

// editor.set_value(node, slot, value)
func (r *Runner) luaSetValue(L *lua.LState) int {
	name := L.CheckString(1)
	slot := L.CheckInt(2)
	value := float32(L.CheckNumber(3))

	n := r.node(L, name)
	before := snapshot.CaptureValues(n)
	if err := n.SetValue(slot-1, value); err != nil {
		L.RaiseError("set_value on %q: %v", name, err)
	}
	after := snapshot.CaptureValues(n)

	act, err := action.NewValueEdit(n, before, after, false)
	if err != nil {
		L.RaiseError("set_value on %q: %v", name, err)
	}
	r.doc.NotifyValueChanged(n.Handle())
	r.doc.MarkModified(false)
	r.stack.AddAction(act)
	return 0
}

// editor.connect(node_a, box_a, node_b, box_b)
func (r *Runner) luaConnect(L *lua.LState) int {
	a := r.box(L, L.CheckString(1), L.CheckInt(2))
	b := r.box(L, L.CheckString(3), L.CheckInt(4))

	edit := action.NewConnectionEdit(a.Owner())
	if err := graph.Connect(a, b); err != nil {
		L.RaiseError("connect: %v", err)
	}
	r.finishConnectionEdit(L, edit, a, b)
	return 0
}

// editor.disconnect(node_a, box_a, node_b, box_b)
func (r *Runner) luaDisconnect(L *lua.LState) int {
	a := r.box(L, L.CheckString(1), L.CheckInt(2))
	b := r.box(L, L.CheckString(3), L.CheckInt(4))

	edit := action.NewConnectionEdit(a.Owner())
	graph.Disconnect(a, b)
	r.finishConnectionEdit(L, edit, a, b)
	return 0
}

func (r *Runner) finishConnectionEdit(L *lua.LState, edit *action.ConnectionEdit, a, b *graph.Box) {
	if err := edit.End(a.Owner()); err != nil {
		L.RaiseError("connection edit: %v", err)
	}
	r.doc.NotifyConnectionsChanged(a.Handle())
	r.doc.NotifyConnectionsChanged(b.Handle())
	r.doc.MarkModified(true)
	r.stack.AddAction(edit)
}

// editor.add_track(name, archetype[, group])
func (r *Runner) luaAddTrack(L *lua.LState) int {
	name := L.CheckString(1)
	archetype := L.CheckString(2)
	group := L.OptString(3, "")

	tr := timeline.NewTrack(name, archetype)
	tr.SetGroup(group)
	if _, err := r.doc.Timeline().Add(tr); err != nil {
		L.RaiseError("add_track: %v", err)
	}

	act, err := action.NewTrackAdded(tr, r.doc, r.log)
	if err != nil {
		L.RaiseError("add_track: %v", err)
	}
	r.doc.NotifyArranged()
	r.doc.MarkModified(true)
	r.stack.AddAction(act)
	return 0
}

// editor.remove_track(name)
func (r *Runner) luaRemoveTrack(L *lua.LState) int {
	name := L.CheckString(1)
	tr, ok := r.doc.Timeline().Track(name)
	if !ok {
		L.RaiseError("remove_track: no track %q", name)
	}

	// Capture before the remove so the header is still live.
	act, err := action.NewTrackRemoved(tr, r.doc, r.log)
	if err != nil {
		L.RaiseError("remove_track: %v", err)
	}
	if _, err := r.doc.Timeline().Remove(name); err != nil {
		L.RaiseError("remove_track: %v", err)
	}
	r.doc.NotifyArranged()
	r.doc.MarkModified(true)
	r.stack.AddAction(act)
	return 0
}

// editor.rename_track(old, new)
func (r *Runner) luaRenameTrack(L *lua.LState) int {
	oldName := L.CheckString(1)
	newName := L.CheckString(2)

	if err := r.doc.Timeline().Rename(oldName, newName); err != nil {
		L.RaiseError("rename_track: %v", err)
	}
	r.doc.MarkModified(true)
	r.stack.AddAction(action.NewRename(oldName, newName))
	return 0
}

// editor.move_track(name, group, order)
func (r *Runner) luaMoveTrack(L *lua.LState) int {
	name := L.CheckString(1)
	group := L.CheckString(2)
	order := L.CheckInt(3)

	tr, ok := r.doc.Timeline().Track(name)
	if !ok {
		L.RaiseError("move_track: no track %q", name)
	}
	before := action.Placement{Group: tr.Group(), Order: tr.Order()}
	if err := r.doc.Timeline().Move(name, group, order); err != nil {
		L.RaiseError("move_track: %v", err)
	}
	after := action.Placement{Group: tr.Group(), Order: tr.Order()}

	r.doc.NotifyOrderChanged()
	r.doc.MarkModified(true)
	r.stack.AddAction(action.NewReorder(name, before, after))
	return 0
}

// editor.set_duration(seconds)
func (r *Runner) luaSetDuration(L *lua.LState) int {
	seconds := float64(L.CheckNumber(1))

	blk, err := capture.Begin(r.stack.Sink(), capture.DurationTarget{Doc: r.doc})
	if err != nil {
		L.RaiseError("set_duration: %v", err)
	}
	r.doc.Timeline().SetDuration(seconds)
	if err := blk.End(); err != nil {
		L.RaiseError("set_duration: %v", err)
	}
	r.doc.NotifyArranged()
	r.doc.MarkModified(false)
	return 0
}
