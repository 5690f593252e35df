package action

import (
	"fmt"
	"time"

	"github.com/dshills/nodestorm/internal/editor/graph"
	"github.com/dshills/nodestorm/internal/editor/patchbuf"
	"github.com/dshills/nodestorm/internal/editor/snapshot"
	"github.com/dshills/nodestorm/internal/editor/terrain"
)

// PatchRecord is one captured terrain patch: the coordinate, the
// layer, and the owned before/after buffers. Buffers are exclusively
// owned by the record from capture until the action is released; no
// other component may mutate them.
type PatchRecord struct {
	// Coord addresses the patch in the grid.
	Coord terrain.PatchCoord
	// Tag is the edited data layer.
	Tag terrain.LayerTag

	before []byte
	after  []byte
}

// TerrainEdit records one painting stroke over the terrain: a set of
// patch before/after captures plus deferred navmesh rebuild bounds.
// Two-phase: AddPatch captures before-state per touched coordinate
// during the stroke; OnEditingEnd captures after-state for every
// tracked patch exactly once.
type TerrainEdit struct {
	tag       terrain.LayerTag
	patchLen  int
	records   []*PatchRecord
	index     map[terrain.PatchCoord]int
	bounds    []terrain.Bounds
	timeout   time.Duration
	nav       terrain.NavMeshRequester
	buffers   *patchbuf.Manager
	finalized bool
	released  bool
}

// NewTerrainEdit creates a terrain edit for one layer. The per-patch
// buffer length is edgeSamples squared times the layer's stride. nav
// may be nil when no navmesh exists; timeout bounds each rebuild
// request.
func NewTerrainEdit(tag terrain.LayerTag, edgeSamples int, buffers *patchbuf.Manager, nav terrain.NavMeshRequester, timeout time.Duration) *TerrainEdit {
	return &TerrainEdit{
		tag:      tag,
		patchLen: edgeSamples * edgeSamples * tag.Stride(),
		index:    make(map[terrain.PatchCoord]int),
		timeout:  timeout,
		nav:      nav,
		buffers:  buffers,
	}
}

// PatchLen returns the byte length of one patch buffer.
func (a *TerrainEdit) PatchLen() int { return a.patchLen }

// PatchCount returns the number of tracked patches.
func (a *TerrainEdit) PatchCount() int { return len(a.records) }

// HasPatch reports whether the coordinate is already tracked, letting
// callers skip duplicate capture during a stroke.
func (a *TerrainEdit) HasPatch(coord terrain.PatchCoord) bool {
	_, ok := a.index[coord]
	return ok
}

// AddPatch captures the before-state of the patch at coord from the
// live field. Adding an already-tracked coordinate is a no-op.
func (a *TerrainEdit) AddPatch(f *terrain.Field, coord terrain.PatchCoord) error {
	if a.finalized {
		return fmt.Errorf("%w: terrain edit", ErrAlreadyFinalized)
	}
	if a.HasPatch(coord) {
		return nil
	}
	buf := a.buffers.Get(a.patchLen)
	if err := snapshot.CapturePatch(f, a.tag, coord, buf); err != nil {
		a.buffers.Put(buf)
		return err
	}
	a.index[coord] = len(a.records)
	a.records = append(a.records, &PatchRecord{Coord: coord, Tag: a.tag, before: buf})
	return nil
}

// AddRebuildBounds records a world-space region whose navmesh must be
// rebuilt after replay.
func (a *TerrainEdit) AddRebuildBounds(b terrain.Bounds) {
	a.bounds = append(a.bounds, b)
}

// OnEditingEnd captures the after-state of every tracked patch,
// finalizing the action, then requests one async navmesh rebuild per
// recorded bounds. Calling it twice is a programming error.
func (a *TerrainEdit) OnEditingEnd(f *terrain.Field) error {
	if a.finalized {
		return fmt.Errorf("%w: terrain edit", ErrAlreadyFinalized)
	}
	for _, rec := range a.records {
		buf := a.buffers.Get(a.patchLen)
		if err := snapshot.CapturePatch(f, a.tag, rec.Coord, buf); err != nil {
			a.buffers.Put(buf)
			return err
		}
		rec.after = buf
	}
	a.finalized = true
	a.requestRebuilds()
	return nil
}

// Do writes every patch's after-buffer back into the live field.
func (a *TerrainEdit) Do(doc *graph.Document) error {
	return a.apply(doc, func(rec *PatchRecord) []byte { return rec.after })
}

// Undo writes every patch's before-buffer back into the live field.
func (a *TerrainEdit) Undo(doc *graph.Document) error {
	return a.apply(doc, func(rec *PatchRecord) []byte { return rec.before })
}

func (a *TerrainEdit) apply(doc *graph.Document, pick func(*PatchRecord) []byte) error {
	if !a.finalized {
		return fmt.Errorf("%w: terrain edit", ErrNotFinalized)
	}
	f := doc.Terrain()
	if f == nil {
		return fmt.Errorf("document has no terrain field")
	}
	for _, rec := range a.records {
		if err := snapshot.RestorePatch(f, rec.Tag, rec.Coord, pick(rec)); err != nil {
			return err
		}
	}
	a.requestRebuilds()
	doc.NotifyTerrainModified()
	doc.MarkModified(false)
	return nil
}

func (a *TerrainEdit) requestRebuilds() {
	if a.nav == nil {
		return
	}
	for _, b := range a.bounds {
		a.nav.RequestRebuild(b, a.timeout)
	}
}

// Release returns every owned buffer to the manager. Idempotent.
func (a *TerrainEdit) Release() {
	if a.released {
		return
	}
	a.released = true
	for _, rec := range a.records {
		a.buffers.Put(rec.before)
		rec.before = nil
		a.buffers.Put(rec.after)
		rec.after = nil
	}
}

// Description returns a human-readable label.
func (a *TerrainEdit) Description() string {
	return fmt.Sprintf("Paint terrain %s (%d patches)", a.tag, len(a.records))
}
