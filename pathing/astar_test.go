package pathing

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/milk9111/tilewalk/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// asciiMap is a tile oracle built from rows of '.', '#' and 'T'.
type asciiMap struct {
	rows []string
}

func newASCIIMap(rows ...string) *asciiMap {
	return &asciiMap{rows: rows}
}

func openMap(w, h int) *asciiMap {
	rows := make([]string, h)
	for i := range rows {
		rows[i] = strings.Repeat(".", w)
	}
	return newASCIIMap(rows...)
}

func (m *asciiMap) Size() (int, int) {
	if len(m.rows) == 0 {
		return 0, 0
	}
	return len(m.rows[0]), len(m.rows)
}

func (m *asciiMap) TileAt(x, y int) (grid.Tile, bool) {
	w, h := m.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return grid.Tile{}, false
	}
	switch m.rows[y][x] {
	case '#':
		return grid.Tile{Type: "wall", Class: grid.Solid}, true
	case 'T':
		return grid.Tile{Type: "tree", Class: grid.Solid}, true
	default:
		return grid.Tile{Type: "grass", Class: grid.Walkable}, true
	}
}

var treeGeometry = grid.GeometryTable{
	"tree": {Width: 3, Height: 3, OffsetX: -1, OffsetY: -1},
}

func newTestPlanner(m grid.TileOracle, maxIterations int) *Planner {
	return NewPlanner(grid.NewResolver(m, treeGeometry, 0.3), Config{MaxIterations: maxIterations}, zap.NewNop())
}

func at(x, y int) grid.Position {
	return grid.TileCoord{X: x, Y: y}.Center()
}

func requireContiguous(t *testing.T, start grid.Position, path grid.Path) {
	t.Helper()
	prev := start.Tile()
	for i, wp := range path {
		cur := wp.Tile()
		step := math.Abs(float64(cur.X-prev.X)) + math.Abs(float64(cur.Y-prev.Y))
		require.Equalf(t, 1.0, step, "waypoint %d %v does not follow %v", i, cur, prev)
		require.Equalf(t, cur.Center(), wp, "waypoint %d is not a tile centre", i)
		prev = cur
	}
}

func TestFindPathOpenGridIsManhattan(t *testing.T) {
	p := newTestPlanner(openMap(8, 3), 0)

	path, err := p.FindPath(grid.Position{X: 0.2, Y: 0.7}, at(5, 0), Options{})
	require.NoError(t, err)
	require.Len(t, path, 5)
	requireContiguous(t, grid.Position{X: 0.2, Y: 0.7}, path)
	for i, wp := range path {
		assert.Equal(t, at(i+1, 0), wp)
	}
}

func TestFindPathAlreadyThere(t *testing.T) {
	p := newTestPlanner(openMap(4, 4), 0)

	path, err := p.FindPath(grid.Position{X: 1.1, Y: 2.9}, grid.Position{X: 1.8, Y: 2.2}, Options{})
	require.NoError(t, err)
	require.NotNil(t, path)
	assert.Empty(t, path)
}

func TestFindPathTenByTenScenario(t *testing.T) {
	p := newTestPlanner(openMap(10, 10), 0)
	start := at(0, 0)

	path, err := p.FindPath(start, at(9, 9), Options{})
	require.NoError(t, err)
	require.Len(t, path, 18)
	requireContiguous(t, start, path)
	last, ok := path.Last()
	require.True(t, ok)
	assert.Equal(t, grid.Position{X: 9.5, Y: 9.5}, last)
}

func TestFindPathDeterministic(t *testing.T) {
	m := newASCIIMap(
		"..........",
		"...#......",
		"...#..#...",
		"...#..#...",
		"......#...",
	)
	p := newTestPlanner(m, 0)
	npcs := []grid.NPC{{ID: "cat", Position: at(5, 0), CollisionRadius: 0.4}}

	first, err := p.FindPath(at(0, 4), at(9, 0), Options{AvoidNPCs: npcs})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.FindPath(at(0, 4), at(9, 0), Options{AvoidNPCs: npcs})
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestFindPathAvoidsFootprint(t *testing.T) {
	m := newASCIIMap(
		".........",
		".........",
		".........",
		"....T....",
		".........",
		".........",
		".........",
	)
	p := newTestPlanner(m, 0)
	canopy := func(c grid.TileCoord) bool {
		return c.X >= 3 && c.X <= 5 && c.Y >= 2 && c.Y <= 4
	}

	pairs := [][2]grid.Position{
		{at(0, 3), at(8, 3)},
		{at(4, 0), at(4, 6)},
		{at(2, 2), at(6, 4)},
		{at(8, 0), at(0, 6)},
	}
	for _, pair := range pairs {
		path, err := p.FindPath(pair[0], pair[1], Options{})
		require.NoError(t, err)
		requireContiguous(t, pair[0], path)
		for _, wp := range path {
			assert.Falsef(t, canopy(wp.Tile()), "path %v -> %v enters footprint at %v", pair[0], pair[1], wp)
		}
	}

	_, err := p.FindPath(at(0, 0), at(4, 2), Options{})
	assert.ErrorIs(t, err, ErrGoalBlocked)
}

func TestFindPathStopAdjacent(t *testing.T) {
	p := newTestPlanner(openMap(9, 9), 0)
	npc := grid.NPC{ID: "baker", Position: grid.Position{X: 4.3, Y: 4.6}, CollisionRadius: 0.4}

	path, err := p.FindPath(at(0, 0), npc.Position, Options{StopAdjacent: true})
	require.NoError(t, err)
	last, ok := path.Last()
	require.True(t, ok)

	goal := npc.Position.Tile()
	lt := last.Tile()
	dx, dy := lt.X-goal.X, lt.Y-goal.Y
	assert.NotEqual(t, goal, lt)
	assert.LessOrEqual(t, dx*dx, 1)
	assert.LessOrEqual(t, dy*dy, 1)
	// below is preferred when walkable
	assert.Equal(t, goal.Add(0, 1), lt)
}

func TestFindPathStopAdjacentFallsBackInOrder(t *testing.T) {
	m := newASCIIMap(
		".....",
		".###.",
		".#.#.",
		".....",
	)
	p := newTestPlanner(m, 0)

	path, err := p.FindPath(at(0, 0), at(2, 2), Options{StopAdjacent: true})
	require.NoError(t, err)
	last, _ := path.Last()
	// below (2,3) is open and wins over the diagonals
	assert.Equal(t, at(2, 3), last)

	m = newASCIIMap(
		"#####",
		"#...#",
		"#...#",
		"#####",
	)
	p = newTestPlanner(m, 0)
	path, err = p.FindPath(at(3, 1), at(1, 2), Options{StopAdjacent: true})
	require.NoError(t, err)
	last, _ = path.Last()
	// below and left are walls, above (1,1) is next in order
	assert.Equal(t, at(1, 1), last)
}

func TestFindPathStopAdjacentDiagonalOrder(t *testing.T) {
	cases := []struct {
		name string
		rows []string
		want grid.Position
	}{
		{
			name: "below-left first",
			rows: []string{".....", "..#..", ".#.#.", "..#..", "....."},
			want: at(1, 3),
		},
		{
			name: "then below-right",
			rows: []string{".....", "..#..", ".#.#.", ".##..", "....."},
			want: at(3, 3),
		},
		{
			name: "then above-left",
			rows: []string{".....", "..#..", ".#.#.", ".###.", "....."},
			want: at(1, 1),
		},
		{
			name: "then above-right",
			rows: []string{".....", ".##..", ".#.#.", ".###.", "....."},
			want: at(3, 1),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPlanner(newASCIIMap(tc.rows...), 0)
			path, err := p.FindPath(at(0, 0), at(2, 2), Options{StopAdjacent: true})
			require.NoError(t, err)
			last, ok := path.Last()
			require.True(t, ok)
			assert.Equal(t, tc.want, last)
		})
	}
}

func TestFindPathEnclosed(t *testing.T) {
	m := newASCIIMap(
		".....",
		".###.",
		".#.#.",
		".###.",
		".....",
	)
	p := newTestPlanner(m, 0)

	_, err := p.FindPath(at(0, 0), at(2, 2), Options{StopAdjacent: true})
	assert.ErrorIs(t, err, ErrEnclosed)
	assert.ErrorIs(t, err, ErrUnreachable)

	_, err = p.FindPath(at(0, 0), at(2, 2), Options{})
	assert.ErrorIs(t, err, ErrNoPath)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestFindPathIterationCeiling(t *testing.T) {
	p := newTestPlanner(openMap(10, 10), 3)

	path, err := p.FindPath(at(0, 0), at(9, 9), Options{})
	assert.Nil(t, path)
	assert.True(t, errors.Is(err, ErrSearchExhausted))
	assert.ErrorIs(t, err, ErrUnreachable)

	assert.Equal(t, DefaultMaxIterations, newTestPlanner(openMap(1, 1), 0).MaxIterations())
}

func TestFindPathOutOfBoundsGoal(t *testing.T) {
	p := newTestPlanner(openMap(3, 3), 0)

	_, err := p.FindPath(at(0, 0), at(7, 1), Options{})
	assert.ErrorIs(t, err, ErrGoalBlocked)
	_, err = p.FindPath(at(0, 0), at(-1, 1), Options{StopAdjacent: true})
	assert.NoError(t, err, "a neighbour of an off-map goal can still be on the map")
}

func TestFindPathRoutesAroundNPC(t *testing.T) {
	m := newASCIIMap(
		"#####",
		".....",
		"#.#.#",
	)
	p := newTestPlanner(m, 0)
	blocker := grid.NPC{ID: "guard", Position: at(2, 1), CollisionRadius: 0.45}

	_, err := p.FindPath(at(0, 1), at(4, 1), Options{AvoidNPCs: []grid.NPC{blocker}})
	assert.ErrorIs(t, err, ErrNoPath)

	path, err := p.FindPath(at(0, 1), at(4, 1), Options{})
	require.NoError(t, err)
	assert.Len(t, path, 4)
}
