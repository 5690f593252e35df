// Package graph implements the live node-graph document that undo
// actions record against and replay into.
//
// A Document owns a tree of named Contexts (sub-graphs nested inside
// sub-graphs). Each Context owns Nodes; each Node owns ordered value
// slots and Boxes (ports) whose links are kept symmetric on both
// ends. The Document also owns the timeline and the terrain field so
// a single replay entry point can reach every editable surface.
//
// Entities are addressed by stable identifiers (dense uint32 node
// ids, context name paths, track names), never by pointer, so that
// undo actions recorded before a save/load round trip or before an
// entity was destroyed and recreated still resolve.
package graph
