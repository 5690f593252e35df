// Package action defines the atomic, reversible edit records consumed
// by the undo history.
//
// An Action captures enough addressing information (entity handles,
// context paths, track names) to re-resolve its target at replay
// time, plus opaque before/after snapshot payloads. It never holds a
// live pointer into the document: the target may be destroyed and
// recreated between recording and replay.
//
// # State machine
//
// Every action is either Recorded (constructed, "before" fixed) or
// Finalized ("after" captured). Most variants finalize at
// construction; two-phase variants (connection edits, terrain edits)
// finalize through an explicit End/OnEditingEnd call. Do and Undo are
// valid only once Finalized; finalizing twice is a programming error
// and is rejected, not ignored.
//
// # Replay errors
//
// A missing context or entity at replay time aborts that single Do or
// Undo and surfaces to the caller; it means the document changed
// incompatibly since recording. Composite replay is not transactional:
// sub-actions applied before a failure stay applied.
package action
