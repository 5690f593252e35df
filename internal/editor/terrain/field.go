// Package terrain implements the live terrain field edited by the
// heightmap painter: a sparse grid of fixed-size patches per data
// layer. The patch is the unit of granularity for undo capture;
// buffers handed to callers are always copies, never aliases of the
// field's own storage.
package terrain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrPatchSize indicates a patch buffer with the wrong length.
var ErrPatchSize = errors.New("patch buffer length mismatch")

// LayerTag identifies one terrain data layer.
type LayerTag uint8

// Terrain data layers.
const (
	// LayerHeight stores float32 height samples.
	LayerHeight LayerTag = iota
	// LayerHoles stores a 1-byte hole mask per sample.
	LayerHoles
	// LayerSplat stores packed 4-byte color splat weights.
	LayerSplat
)

// Stride returns the bytes per sample for the layer.
func (t LayerTag) Stride() int {
	switch t {
	case LayerHeight:
		return 4
	case LayerHoles:
		return 1
	case LayerSplat:
		return 4
	default:
		return 0
	}
}

// String returns the layer name for diagnostics.
func (t LayerTag) String() string {
	switch t {
	case LayerHeight:
		return "height"
	case LayerHoles:
		return "holes"
	case LayerSplat:
		return "splat"
	default:
		return fmt.Sprintf("layer(%d)", uint8(t))
	}
}

// PatchCoord addresses one patch in the grid.
type PatchCoord struct {
	X, Y int32
}

// String returns "(x,y)" for diagnostics.
func (c PatchCoord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// NavMeshRequester receives deferred navigation-mesh rebuild requests
// after terrain replay. Requests are fire-and-forget: the engine
// never waits on them and never cancels them.
type NavMeshRequester interface {
	RequestRebuild(bounds Bounds, timeout time.Duration)
}

// Field is the live terrain: per-layer sparse patch storage. Patches
// are row-major sample buffers of edgeSamples² samples. A patch that
// was never written reads back as zeroes.
type Field struct {
	edgeSamples int
	layers      map[LayerTag]map[PatchCoord][]byte
}

// NewField creates a field with the given patch edge sample count
// (e.g. 65 for 64 quads per patch edge).
func NewField(edgeSamples int) *Field {
	return &Field{
		edgeSamples: edgeSamples,
		layers:      make(map[LayerTag]map[PatchCoord][]byte),
	}
}

// EdgeSamples returns the per-edge sample count.
func (f *Field) EdgeSamples() int { return f.edgeSamples }

// PatchLen returns the byte length of one patch buffer for a layer.
func (f *Field) PatchLen(tag LayerTag) int {
	return f.edgeSamples * f.edgeSamples * tag.Stride()
}

// CopyPatch copies the patch at coord into dst, which must be exactly
// PatchLen(tag) bytes. An unwritten patch copies as zeroes.
func (f *Field) CopyPatch(tag LayerTag, coord PatchCoord, dst []byte) error {
	want := f.PatchLen(tag)
	if len(dst) != want {
		return fmt.Errorf("%w: layer %v needs %d bytes, got %d", ErrPatchSize, tag, want, len(dst))
	}
	src, ok := f.layers[tag][coord]
	if !ok {
		for i := range dst {
			dst[i] = 0
		}
		return nil
	}
	copy(dst, src)
	return nil
}

// SetPatch overwrites the patch at coord with a copy of data, which
// must be exactly PatchLen(tag) bytes.
func (f *Field) SetPatch(tag LayerTag, coord PatchCoord, data []byte) error {
	want := f.PatchLen(tag)
	if len(data) != want {
		return fmt.Errorf("%w: layer %v needs %d bytes, got %d", ErrPatchSize, tag, want, len(data))
	}
	layer, ok := f.layers[tag]
	if !ok {
		layer = make(map[PatchCoord][]byte)
		f.layers[tag] = layer
	}
	buf, ok := layer[coord]
	if !ok {
		buf = make([]byte, want)
		layer[coord] = buf
	}
	copy(buf, data)
	return nil
}

// WrittenPatches returns the coordinates of every written patch in a
// layer, sorted by (Y, X) so save output is deterministic.
func (f *Field) WrittenPatches(tag LayerTag) []PatchCoord {
	layer := f.layers[tag]
	out := make([]PatchCoord, 0, len(layer))
	for coord := range layer {
		out = append(out, coord)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Written reports whether the patch has ever been written.
func (f *Field) Written(tag LayerTag, coord PatchCoord) bool {
	_, ok := f.layers[tag][coord]
	return ok
}

// Sample reads one raw sample's bytes; mainly for tests and tools.
func (f *Field) Sample(tag LayerTag, coord PatchCoord, row, col int) ([]byte, error) {
	if row < 0 || row >= f.edgeSamples || col < 0 || col >= f.edgeSamples {
		return nil, fmt.Errorf("sample (%d,%d) outside %d-sample patch", row, col, f.edgeSamples)
	}
	stride := tag.Stride()
	buf, ok := f.layers[tag][coord]
	if !ok {
		return make([]byte, stride), nil
	}
	off := (row*f.edgeSamples + col) * stride
	out := make([]byte, stride)
	copy(out, buf[off:off+stride])
	return out, nil
}
