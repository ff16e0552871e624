package levels

import (
	"testing"

	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/pathing"
	"github.com/milk9111/tilewalk/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testClasses = map[string]grid.CollisionClass{
	"grass":   grid.Walkable,
	"wall":    grid.Solid,
	"door":    grid.Special,
	"tree":    grid.Solid,
	"sign":    grid.Solid,
	"flowers": grid.Solid,
}

var testGeometry = grid.GeometryTable{
	"tree":    {Width: 3, Height: 2, OffsetX: -1, OffsetY: -1},
	"sign":    {Width: 1, Height: 1},
	"flowers": {},
}

func TestNames(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"cottage", "meadow"}, names)
}

func TestLoadLevelFromFS(t *testing.T) {
	for _, name := range []string{"meadow", "meadow.json", "levels/meadow.json"} {
		lvl, err := LoadLevelFromFS(name)
		require.NoError(t, err, name)
		assert.Equal(t, "meadow", lvl.Name)
	}
	_, err := LoadLevelFromFS("nowhere")
	assert.Error(t, err)
}

func TestNewTileMap(t *testing.T) {
	lvl := &Level{
		Name:   "hut",
		Legend: map[string]string{".": "grass", "#": "wall", "D": "door"},
		Rows: []string{
			"####",
			"#..D",
			"####",
		},
		Spawn: Cell{X: 1, Y: 1},
		NPCs:  []Placement{{ID: "a", Kind: "cat", X: 2, Y: 1}},
	}
	m, err := NewTileMap(lvl, testClasses, testGeometry, 0.3)
	require.NoError(t, err)

	w, h := m.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
	assert.Equal(t, "hut", m.Name())
	assert.Equal(t, grid.Position{X: 1.5, Y: 1.5}, m.Spawn())

	tile, ok := m.TileAt(3, 1)
	require.True(t, ok)
	assert.Equal(t, grid.Tile{Type: "door", Class: grid.Special}, tile)
	tile, _ = m.TileAt(0, 0)
	assert.Equal(t, grid.Solid, tile.Class)

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}} {
		_, ok := m.TileAt(c[0], c[1])
		assert.False(t, ok, c)
	}

	places := m.Placements()
	places[0].ID = "mutated"
	assert.Equal(t, "a", m.Placements()[0].ID)
}

func TestNewTileMapErrors(t *testing.T) {
	base := func() *Level {
		return &Level{
			Name:   "bad",
			Legend: map[string]string{".": "grass", "#": "wall"},
			Rows:   []string{"...", "..."},
			Spawn:  Cell{X: 0, Y: 0},
		}
	}
	tests := []struct {
		name   string
		mutate func(l *Level)
	}{
		{name: "no rows", mutate: func(l *Level) { l.Rows = nil }},
		{name: "ragged", mutate: func(l *Level) { l.Rows[1] = ".." }},
		{name: "unknown glyph", mutate: func(l *Level) { l.Rows[0] = ".?." }},
		{name: "unclassified type", mutate: func(l *Level) { l.Legend["."] = "lava" }},
		{name: "spawn off map", mutate: func(l *Level) { l.Spawn = Cell{X: 3, Y: 0} }},
		{name: "spawn on solid", mutate: func(l *Level) { l.Rows[0] = "#.." }},
		{name: "npc off map", mutate: func(l *Level) { l.NPCs = []Placement{{ID: "x", X: 0, Y: 9}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base()
			tt.mutate(l)
			_, err := NewTileMap(l, testClasses, testGeometry, 0.3)
			assert.Error(t, err)
		})
	}
}

func TestNewTileMapSpawnCollision(t *testing.T) {
	tests := []struct {
		name      string
		rows      []string
		halfWidth float64
		ok        bool
	}{
		{name: "open grass", rows: []string{"...", "..."}, halfWidth: 0.3, ok: true},
		{name: "under a tree footprint", rows: []string{"...", ".T."}, halfWidth: 0.3},
		{name: "beside a sign", rows: []string{".S.", "..."}, halfWidth: 0.3, ok: true},
		{name: "beside a sign, wide avatar", rows: []string{".S.", "..."}, halfWidth: 0.6},
		{name: "zero footprint is passable", rows: []string{"*..", "..."}, halfWidth: 0.3, ok: true},
		{name: "plain wall", rows: []string{"#..", "..."}, halfWidth: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl := &Level{
				Name:   "spawn",
				Legend: map[string]string{".": "grass", "#": "wall", "T": "tree", "S": "sign", "*": "flowers"},
				Rows:   tt.rows,
				Spawn:  Cell{X: 0, Y: 0},
			}
			_, err := NewTileMap(lvl, testClasses, testGeometry, tt.halfWidth)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, "spawn")
			}
		})
	}
}

func TestShippedLevelsArePlayable(t *testing.T) {
	tiles, err := prefabs.LoadTileSetSpec()
	require.NoError(t, err)
	classes, err := tiles.Classes()
	require.NoError(t, err)

	names, err := Names()
	require.NoError(t, err)
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			lvl, err := LoadLevelFromFS(name)
			require.NoError(t, err)
			m, err := NewTileMap(lvl, classes, tiles.GeometryTable(), 0.3)
			require.NoError(t, err)

			resolver := grid.NewResolver(m, tiles.GeometryTable(), 0.3)
			spawn := m.Spawn().Tile()
			require.True(t, resolver.IsWalkable(spawn.X, spawn.Y, nil), "spawn is walkable")

			planner := pathing.NewPlanner(resolver, pathing.Config{}, zap.NewNop())
			for _, p := range m.Placements() {
				target := grid.TileCoord{X: p.X, Y: p.Y}.Center()
				_, err := planner.FindPath(m.Spawn(), target, pathing.Options{StopAdjacent: true})
				assert.NoErrorf(t, err, "npc %s reachable from spawn", p.ID)
			}
		})
	}
}
