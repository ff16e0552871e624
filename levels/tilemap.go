package levels

import (
	"fmt"
	"unicode/utf8"

	"github.com/milk9111/tilewalk/grid"
)

// TileMap is a loaded level resolved against the tile set's collision
// classes. It is read-only once built.
type TileMap struct {
	name   string
	width  int
	height int
	tiles  []grid.Tile
	spawn  grid.TileCoord
	npcs   []Placement
}

// NewTileMap validates lvl and resolves every cell to a typed tile. The spawn
// must be walkable for an avatar of the given half width once footprints from
// geometry are applied, so the avatar never starts inside collision.
func NewTileMap(lvl *Level, classes map[string]grid.CollisionClass, geometry grid.GeometryTable, halfWidth float64) (*TileMap, error) {
	if lvl == nil || len(lvl.Rows) == 0 {
		return nil, fmt.Errorf("levels: empty level")
	}
	width := utf8.RuneCountInString(lvl.Rows[0])
	if width == 0 {
		return nil, fmt.Errorf("levels: %s: empty first row", lvl.Name)
	}

	m := &TileMap{
		name:   lvl.Name,
		width:  width,
		height: len(lvl.Rows),
		tiles:  make([]grid.Tile, 0, width*len(lvl.Rows)),
		spawn:  grid.TileCoord{X: lvl.Spawn.X, Y: lvl.Spawn.Y},
		npcs:   append([]Placement(nil), lvl.NPCs...),
	}

	for y, row := range lvl.Rows {
		if n := utf8.RuneCountInString(row); n != width {
			return nil, fmt.Errorf("levels: %s: row %d has %d tiles, want %d", lvl.Name, y, n, width)
		}
		for x, r := range []rune(row) {
			typ, ok := lvl.Legend[string(r)]
			if !ok {
				return nil, fmt.Errorf("levels: %s: glyph %q at %d,%d not in legend", lvl.Name, r, x, y)
			}
			class, ok := classes[typ]
			if !ok {
				return nil, fmt.Errorf("levels: %s: tile type %q has no collision class", lvl.Name, typ)
			}
			m.tiles = append(m.tiles, grid.Tile{Type: typ, Class: class})
		}
	}

	if !m.inBounds(m.spawn.X, m.spawn.Y) {
		return nil, fmt.Errorf("levels: %s: spawn %v off map", lvl.Name, m.spawn)
	}
	if !grid.NewResolver(m, geometry, halfWidth).IsWalkable(m.spawn.X, m.spawn.Y, nil) {
		t, _ := m.TileAt(m.spawn.X, m.spawn.Y)
		return nil, fmt.Errorf("levels: %s: spawn %v on %q is blocked", lvl.Name, m.spawn, t.Type)
	}
	for _, p := range m.npcs {
		if !m.inBounds(p.X, p.Y) {
			return nil, fmt.Errorf("levels: %s: npc %q off map", lvl.Name, p.ID)
		}
	}
	return m, nil
}

func (m *TileMap) TileAt(x, y int) (grid.Tile, bool) {
	if !m.inBounds(x, y) {
		return grid.Tile{}, false
	}
	return m.tiles[y*m.width+x], true
}

func (m *TileMap) Size() (int, int) {
	return m.width, m.height
}

func (m *TileMap) Name() string {
	return m.name
}

// Spawn is the avatar's start position, at a tile centre.
func (m *TileMap) Spawn() grid.Position {
	return m.spawn.Center()
}

// Placements returns a copy of the level's NPC placements.
func (m *TileMap) Placements() []Placement {
	return append([]Placement(nil), m.npcs...)
}

func (m *TileMap) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}
