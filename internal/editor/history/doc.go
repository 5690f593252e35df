// Package history manages the editor's undo/redo stacks.
//
// The stack stores finalized actions: snapshot pairs that replay an
// edit in either direction against the live document. Key concepts:
//
// # Actions
//
// Actions implement action.Action with Do and Undo methods. The stack
// never inspects an action's payload; it only replays and releases.
//
// # Stack
//
// The Stack owns the undo and redo lists and the bounded depth:
//
//	stack := history.NewStack(doc, 1000, log)
//
//	// Record finished edits
//	stack.AddAction(act)
//
//	// Undo/redo
//	stack.Undo()
//	stack.Redo()
//
// Recording a new action clears the redo list; depth overflow evicts
// the oldest entry. Dropped actions are always Released so terrain
// patch buffers return to their manager.
//
// # Grouping
//
// Multiple actions can be grouped as a single undo unit:
//
//	stack.BeginGroup("Paste nodes")
//	// ... multiple edits ...
//	stack.EndGroup()
//
// The group lands as one composite that undoes with a single step.
//
// # Disabled recording
//
// A disabled stack releases and drops incoming actions, so call sites
// record unconditionally and configuration decides whether a history
// exists.
package history
