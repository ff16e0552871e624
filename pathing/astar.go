package pathing

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/tilewalk/grid"
	"go.uber.org/zap"
)

// DefaultMaxIterations bounds a search when Config leaves it unset. It is
// large relative to any shipped map so it only trips on corrupt input.
const DefaultMaxIterations = 4000

var (
	// ErrUnreachable is matched by every planning failure.
	ErrUnreachable     = errors.New("pathing: destination unreachable")
	ErrGoalBlocked     = fmt.Errorf("%w: goal tile is not walkable", ErrUnreachable)
	ErrEnclosed        = fmt.Errorf("%w: no walkable tile next to goal", ErrUnreachable)
	ErrNoPath          = fmt.Errorf("%w: open set exhausted", ErrUnreachable)
	ErrSearchExhausted = fmt.Errorf("%w: iteration ceiling reached", ErrUnreachable)
)

// Config tunes the planner.
type Config struct {
	// MaxIterations caps node expansions per search.
	MaxIterations int
}

// Options are per-request planning flags.
type Options struct {
	// AvoidNPCs are treated as circular obstacles for this call only.
	AvoidNPCs []grid.NPC
	// StopAdjacent targets a walkable neighbour of the goal tile instead of
	// the tile itself.
	StopAdjacent bool
}

// Planner runs A* over the walkability grid.
type Planner struct {
	resolver      *grid.Resolver
	maxIterations int
	logger        *zap.Logger
}

func NewPlanner(resolver *grid.Resolver, cfg Config, logger *zap.Logger) *Planner {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		resolver:      resolver,
		maxIterations: cfg.MaxIterations,
		logger:        logger,
	}
}

// MaxIterations is the configured expansion ceiling.
func (p *Planner) MaxIterations() int {
	return p.maxIterations
}

// Resolver returns the walkability resolver the planner searches over.
func (p *Planner) Resolver() *grid.Resolver {
	return p.resolver
}

// adjacentOffsets is the preference order for stop-adjacent targets:
// below, above, left, right, then the diagonals.
var adjacentOffsets = [...]grid.TileCoord{
	{X: 0, Y: 1},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: -1, Y: 1},
	{X: 1, Y: 1},
	{X: -1, Y: -1},
	{X: 1, Y: -1},
}

// expandOffsets is the neighbour order: up, down, left, right. Together with
// the first-wins linear scan it fixes which equal-cost path is returned.
var expandOffsets = [...]grid.TileCoord{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

// FindPath plans from start to goal. The returned path excludes the start
// tile and is empty, not nil, when start and target share a tile. Every
// failure matches ErrUnreachable.
func (p *Planner) FindPath(start, goal grid.Position, opts Options) (grid.Path, error) {
	if p == nil || p.resolver == nil {
		return nil, ErrNoPath
	}
	walkable := p.resolver.Snapshot(opts.AvoidNPCs)

	from := start.Tile()
	target := goal.Tile()
	if opts.StopAdjacent {
		adj, ok := adjacentTarget(target, walkable)
		if !ok {
			p.logger.Debug("goal enclosed", zap.Stringer("goal", target))
			return nil, ErrEnclosed
		}
		target = adj
	} else if !walkable(target) {
		return nil, ErrGoalBlocked
	}

	if from == target {
		return grid.Path{}, nil
	}

	tiles, expanded, err := search(from, target, walkable, p.maxIterations)
	if err != nil {
		p.logger.Debug("path search failed",
			zap.Stringer("start", from),
			zap.Stringer("target", target),
			zap.Int("expanded", expanded),
			zap.Error(err),
		)
		return nil, err
	}

	path := make(grid.Path, 0, len(tiles)-1)
	for _, t := range tiles[1:] {
		path = append(path, t.Center())
	}
	p.logger.Debug("path found",
		zap.Stringer("start", from),
		zap.Stringer("target", target),
		zap.Int("expanded", expanded),
		zap.Int("length", len(path)),
	)
	return path, nil
}

func adjacentTarget(goal grid.TileCoord, walkable func(grid.TileCoord) bool) (grid.TileCoord, bool) {
	for _, d := range adjacentOffsets {
		n := goal.Add(d.X, d.Y)
		if walkable(n) {
			return n, true
		}
	}
	return grid.TileCoord{}, false
}

// search is a 4-way A* with a linear-scan open list. It returns the tiles
// from start to goal inclusive and the number of expansions made.
func search(start, goal grid.TileCoord, walkable func(grid.TileCoord) bool, maxNodes int) ([]grid.TileCoord, int, error) {
	open := make([]grid.TileCoord, 0, 64)
	open = append(open, start)
	inOpen := map[grid.TileCoord]bool{start: true}
	closed := make(map[grid.TileCoord]bool, 128)

	cameFrom := make(map[grid.TileCoord]grid.TileCoord, 128)
	gScore := map[grid.TileCoord]float64{start: 0}
	fScore := map[grid.TileCoord]float64{start: heuristic(start, goal)}

	iterations := 0
	for len(open) > 0 {
		if iterations >= maxNodes {
			return nil, iterations, ErrSearchExhausted
		}
		iterations++

		// lowest f wins; on ties the earliest entry in the list does
		bestIdx := 0
		bestScore := math.Inf(1)
		for i, n := range open {
			if f := fScore[n]; f < bestScore {
				bestScore = f
				bestIdx = i
			}
		}
		current := open[bestIdx]
		open = append(open[:bestIdx], open[bestIdx+1:]...)
		delete(inOpen, current)

		if current == goal {
			return reconstructPath(cameFrom, start, goal), iterations, nil
		}
		closed[current] = true

		for _, d := range expandOffsets {
			n := current.Add(d.X, d.Y)
			if closed[n] || !walkable(n) {
				continue
			}
			tentative := gScore[current] + 1
			prev, seen := gScore[n]
			if seen && tentative >= prev {
				continue
			}
			cameFrom[n] = current
			gScore[n] = tentative
			fScore[n] = tentative + heuristic(n, goal)
			if !inOpen[n] {
				open = append(open, n)
				inOpen[n] = true
			}
		}
	}

	return nil, iterations, ErrNoPath
}

func reconstructPath(cameFrom map[grid.TileCoord]grid.TileCoord, start, goal grid.TileCoord) []grid.TileCoord {
	path := make([]grid.TileCoord, 0, 32)
	cur := goal
	for {
		path = append(path, cur)
		if cur == start {
			break
		}
		cur = cameFrom[cur]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// heuristic is the Manhattan distance, admissible for unit-cost 4-way moves.
func heuristic(a, b grid.TileCoord) float64 {
	return math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Y-b.Y))
}
