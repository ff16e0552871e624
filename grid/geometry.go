package grid

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Footprint is the collision rectangle of a multi-tile object, anchored at the
// object's tile. It is independent of the sprite's render size.
type Footprint struct {
	Width   float64
	Height  float64
	OffsetX float64
	OffsetY float64
}

// Empty reports whether the footprint adds no collision.
func (f Footprint) Empty() bool {
	return f.Width <= 0 || f.Height <= 0
}

// Rect returns the absolute rectangle for an object anchored at anchor,
// grown by margin on every side.
func (f Footprint) Rect(anchor TileCoord, margin float64) cp.BB {
	minX := float64(anchor.X) + f.OffsetX
	minY := float64(anchor.Y) + f.OffsetY
	return cp.BB{
		L: minX - margin,
		B: minY - margin,
		R: minX + f.Width + margin,
		T: minY + f.Height + margin,
	}
}

// extent is how many tiles away from its anchor the footprint can reach.
func (f Footprint) extent() float64 {
	x := math.Max(math.Abs(f.OffsetX), math.Abs(f.OffsetX+f.Width))
	y := math.Max(math.Abs(f.OffsetY), math.Abs(f.OffsetY+f.Height))
	return math.Max(x, y)
}

// GeometryTable maps tile types to their footprint. Types without an entry
// collide as a single tile.
type GeometryTable map[string]Footprint

// FootprintFor looks up the footprint of a tile type. Zero-sized entries are
// reported as absent.
func (g GeometryTable) FootprintFor(tileType string) (Footprint, bool) {
	if g == nil {
		return Footprint{}, false
	}
	fp, ok := g[tileType]
	if !ok || fp.Empty() {
		return Footprint{}, false
	}
	return fp, true
}

// Has reports whether the type has a footprint definition, even a zero-sized one.
func (g GeometryTable) Has(tileType string) bool {
	_, ok := g[tileType]
	return ok
}

// Reach is the search radius needed to find every footprint that can cover a
// tile: the largest extent plus one tile of margin.
func (g GeometryTable) Reach() int {
	largest := 0.0
	for _, fp := range g {
		if fp.Empty() {
			continue
		}
		largest = math.Max(largest, fp.extent())
	}
	return int(math.Ceil(largest)) + 1
}
