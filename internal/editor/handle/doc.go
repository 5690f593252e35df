// Package handle provides stable addressing for editable entities.
//
// Entities live inside a mutable, nameable, nested tree of editing
// contexts (sub-graphs inside sub-graphs). Undo actions must be able
// to find their target long after it was recorded, across document
// save/load and across destroy/recreate cycles, so they never hold
// live pointers. Instead they hold:
//
//   - EntityHandle: a (container id, local index) pair identifying a
//     node, port, or slot inside one context.
//   - ContextPath: the chain of context names from the target context
//     up to (but excluding) the root, innermost first.
//
// Resolution is pure and read-only. A path whose segment no longer
// exists resolves to a MissingContextError naming the segment and the
// context it was searched in; this is a legitimate runtime condition
// (the user may have deleted an enclosing sub-graph), not a bug.
package handle
