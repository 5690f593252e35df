package graph

import (
	"github.com/dshills/nodestorm/internal/editor/handle"
	"github.com/dshills/nodestorm/internal/editor/terrain"
	"github.com/dshills/nodestorm/internal/editor/timeline"
	"github.com/dshills/nodestorm/internal/event"
	"github.com/dshills/nodestorm/internal/event/topic"
)

// CurrentFormatVersion is the document format version written by this
// build. Loads accept any version up to and including it; archetype
// payload codecs upgrade older captures.
const CurrentFormatVersion = 3

// Document is the editing session's root object: the context tree,
// the timeline, and the terrain field, plus the notification bus and
// dirty tracking. All collaborators are injected; there is no
// package-level document.
type Document struct {
	root       *Context
	registry   *Registry
	bus        *event.Bus
	timeline   *timeline.Timeline
	terrain    *terrain.Field
	version    int
	nextNodeID uint32

	modified   bool
	structural bool
}

// Option configures a Document.
type Option func(*Document)

// WithBus attaches a notification bus.
func WithBus(bus *event.Bus) Option {
	return func(d *Document) { d.bus = bus }
}

// WithTerrain attaches a terrain field.
func WithTerrain(f *terrain.Field) Option {
	return func(d *Document) { d.terrain = f }
}

// WithFormatVersion overrides the document's format version, used
// when loading an older persisted document.
func WithFormatVersion(v int) Option {
	return func(d *Document) { d.version = v }
}

// NewDocument creates an empty document with a root context.
func NewDocument(registry *Registry, opts ...Option) *Document {
	d := &Document{
		registry: registry,
		timeline: timeline.New(),
		version:  CurrentFormatVersion,
	}
	d.root = newContext("", nil, d)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the root context.
func (d *Document) Root() *Context { return d.root }

// Registry returns the archetype registry.
func (d *Document) Registry() *Registry { return d.registry }

// Timeline returns the document's timeline.
func (d *Document) Timeline() *timeline.Timeline { return d.timeline }

// Terrain returns the document's terrain field, or nil.
func (d *Document) Terrain() *terrain.Field { return d.terrain }

// FormatVersion returns the version snapshots in this document carry.
func (d *Document) FormatVersion() int { return d.version }

// Modified reports whether the document has unsaved changes.
func (d *Document) Modified() bool { return d.modified }

// StructurallyChanged reports whether any modification changed graph
// structure (as opposed to values only).
func (d *Document) StructurallyChanged() bool { return d.structural }

// ClearModified resets dirty tracking, typically after a save.
func (d *Document) ClearModified() {
	d.modified = false
	d.structural = false
}

// MarkModified marks the document dirty. structural records that the
// change affected graph structure, not just values.
func (d *Document) MarkModified(structural bool) {
	d.modified = true
	if structural {
		d.structural = true
	}
	d.publish(topic.DocumentModified, structural)
}

// ResolveContext resolves a stable path to a live context.
func (d *Document) ResolveContext(path handle.ContextPath) (*Context, error) {
	resolved, err := handle.ResolvePath(d.root, path)
	if err != nil {
		return nil, err
	}
	return resolved.(*Context), nil
}

// NotifyValueChanged announces that an entity's value slots changed.
func (d *Document) NotifyValueChanged(h handle.EntityHandle) {
	d.publish(topic.GraphValueChanged, h)
}

// NotifyConnectionsChanged announces that a port's link list changed.
func (d *Document) NotifyConnectionsChanged(h handle.EntityHandle) {
	d.publish(topic.GraphConnectionsChanged, h)
}

// NotifyStructureChanged announces an entity add/remove.
func (d *Document) NotifyStructureChanged() {
	d.publish(topic.GraphStructureChanged, nil)
}

// NotifyArranged announces that the timeline must re-derive its
// arrangement.
func (d *Document) NotifyArranged() {
	d.timeline.Arrange()
	d.publish(topic.TimelineArranged, nil)
}

// NotifyOrderChanged announces a track reorder.
func (d *Document) NotifyOrderChanged() {
	d.timeline.Arrange()
	d.publish(topic.TimelineOrderChanged, nil)
}

// NotifyTerrainModified announces replayed terrain patches.
func (d *Document) NotifyTerrainModified() {
	d.publish(topic.TerrainModified, nil)
}

func (d *Document) publish(t topic.Topic, payload any) {
	if d.bus == nil {
		return
	}
	d.bus.Publish(event.New(t, payload, "document"))
}

func (d *Document) allocNodeID() uint32 {
	d.nextNodeID++
	return d.nextNodeID
}

// AdoptNodeID advances the id allocator past an externally assigned
// id, used when loading a persisted document.
func (d *Document) AdoptNodeID(id uint32) {
	if id > d.nextNodeID {
		d.nextNodeID = id
	}
}

// RestoreNode recreates a node with a known id, used when loading a
// persisted document. The id must not be in use.
func (c *Context) RestoreNode(id uint32, name, archetype string) (*Node, error) {
	n, err := c.NewNode(name, archetype)
	if err != nil {
		return nil, err
	}
	delete(c.nodes, n.id)
	n.id = id
	c.nodes[id] = n
	c.doc.AdoptNodeID(id)
	return n, nil
}
