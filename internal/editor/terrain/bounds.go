package terrain

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Bounds is a world-space axis-aligned box used to scope deferred
// navmesh rebuilds around edited terrain.
type Bounds struct {
	MinX, MinY, MinZ float32
	MaxX, MaxY, MaxZ float32
}

// NewBounds returns a box spanning the two corners in any order.
func NewBounds(x0, y0, z0, x1, y1, z1 float32) Bounds {
	return Bounds{
		MinX: math32.Min(x0, x1),
		MinY: math32.Min(y0, y1),
		MinZ: math32.Min(z0, z1),
		MaxX: math32.Max(x0, x1),
		MaxY: math32.Max(y0, y1),
		MaxZ: math32.Max(z0, z1),
	}
}

// Union returns the smallest box containing both.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		MinX: math32.Min(b.MinX, o.MinX),
		MinY: math32.Min(b.MinY, o.MinY),
		MinZ: math32.Min(b.MinZ, o.MinZ),
		MaxX: math32.Max(b.MaxX, o.MaxX),
		MaxY: math32.Max(b.MaxY, o.MaxY),
		MaxZ: math32.Max(b.MaxZ, o.MaxZ),
	}
}

// Expand returns the box grown by margin on every side.
func (b Bounds) Expand(margin float32) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MinZ: b.MinZ - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
		MaxZ: b.MaxZ + margin,
	}
}

// Extent returns the box dimensions.
func (b Bounds) Extent() (dx, dy, dz float32) {
	return b.MaxX - b.MinX, b.MaxY - b.MinY, b.MaxZ - b.MinZ
}

// Diagonal returns the length of the box diagonal.
func (b Bounds) Diagonal() float32 {
	dx, dy, dz := b.Extent()
	return math32.Sqrt(dx*dx + dy*dy + dz*dz)
}

// String formats the box for diagnostics.
func (b Bounds) String() string {
	return fmt.Sprintf("[%g,%g,%g]..[%g,%g,%g]", b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ)
}
