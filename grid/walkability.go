package grid

// Resolver combines the tile oracle, the geometry table and NPC occupancy
// into one walkability predicate over tile coordinates.
type Resolver struct {
	oracle    TileOracle
	geometry  GeometryTable
	halfWidth float64
	reach     int
}

// NewResolver builds a resolver. halfWidth is half the avatar width in tiles
// and is used as the margin around footprints and NPC radii.
func NewResolver(oracle TileOracle, geometry GeometryTable, halfWidth float64) *Resolver {
	if halfWidth < 0 {
		halfWidth = 0
	}
	return &Resolver{
		oracle:    oracle,
		geometry:  geometry,
		halfWidth: halfWidth,
		reach:     geometry.Reach(),
	}
}

// HalfWidth is the avatar margin the resolver was built with.
func (r *Resolver) HalfWidth() float64 {
	if r == nil {
		return 0
	}
	return r.halfWidth
}

// InBounds reports whether the coordinate lies on the current map.
func (r *Resolver) InBounds(x, y int) bool {
	if r == nil || r.oracle == nil {
		return false
	}
	w, h := r.oracle.Size()
	return x >= 0 && y >= 0 && x < w && y < h
}

// IsWalkable reports whether an avatar may stand on the tile. NPCs in avoid
// with a positive collision radius block tiles whose centre is within their
// radius plus the avatar half width.
func (r *Resolver) IsWalkable(x, y int, avoid []NPC) bool {
	if !r.InBounds(x, y) {
		return false
	}
	tile, ok := r.oracle.TileAt(x, y)
	if !ok {
		return false
	}
	if tile.Class == Solid && !r.geometry.Has(tile.Type) {
		return false
	}

	center := TileCoord{X: x, Y: y}.Center()
	if r.coveredByFootprint(x, y, center) {
		return false
	}

	for _, npc := range avoid {
		if npc.CollisionRadius <= 0 {
			continue
		}
		if center.Vec().Distance(npc.Position.Vec()) < npc.CollisionRadius+r.halfWidth {
			return false
		}
	}
	return true
}

func (r *Resolver) coveredByFootprint(x, y int, center Position) bool {
	point := center.Vec()
	for dy := -r.reach; dy <= r.reach; dy++ {
		for dx := -r.reach; dx <= r.reach; dx++ {
			ax, ay := x+dx, y+dy
			if !r.InBounds(ax, ay) {
				continue
			}
			anchor, ok := r.oracle.TileAt(ax, ay)
			if !ok || anchor.Class != Solid {
				continue
			}
			fp, ok := r.geometry.FootprintFor(anchor.Type)
			if !ok {
				continue
			}
			if fp.Rect(TileCoord{X: ax, Y: ay}, r.halfWidth).ContainsVect(point) {
				return true
			}
		}
	}
	return false
}

// Snapshot captures a copy of avoid and returns a memoising predicate, so
// every query made through it during one search sees the same inputs.
func (r *Resolver) Snapshot(avoid []NPC) func(TileCoord) bool {
	npcs := append([]NPC(nil), avoid...)
	seen := make(map[TileCoord]bool, 256)
	return func(t TileCoord) bool {
		if v, ok := seen[t]; ok {
			return v
		}
		v := r.IsWalkable(t.X, t.Y, npcs)
		seen[t] = v
		return v
	}
}
