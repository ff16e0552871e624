package movement

import (
	"strings"

	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/pathing"
	"go.uber.org/zap"
)

type asciiMap []string

func openMap(w, h int) asciiMap {
	rows := make(asciiMap, h)
	for i := range rows {
		rows[i] = strings.Repeat(".", w)
	}
	return rows
}

func (m asciiMap) Size() (int, int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m[0]), len(m)
}

func (m asciiMap) TileAt(x, y int) (grid.Tile, bool) {
	w, h := m.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return grid.Tile{}, false
	}
	if m[y][x] == '#' {
		return grid.Tile{Type: "wall", Class: grid.Solid}, true
	}
	return grid.Tile{Type: "grass", Class: grid.Walkable}, true
}

type staticRoster []grid.NPC

func (r staticRoster) ListNPCs() []grid.NPC {
	return append([]grid.NPC(nil), r...)
}

func at(x, y int) grid.Position {
	return grid.TileCoord{X: x, Y: y}.Center()
}

func newResolver(m grid.TileOracle) *grid.Resolver {
	return grid.NewResolver(m, nil, DefaultHalfWidth)
}

func newFollower(m grid.TileOracle, roster grid.Roster) *Follower {
	planner := pathing.NewPlanner(newResolver(m), pathing.Config{}, zap.NewNop())
	return NewFollower(planner, roster, FollowerConfig{}, zap.NewNop())
}
