package npc

import (
	"fmt"
	"math"

	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/levels"
	"github.com/milk9111/tilewalk/pathing"
	"github.com/milk9111/tilewalk/prefabs"
	"go.uber.org/zap"
)

const DefaultSpeed = 1.5

// Pathfinder plans NPC walks. *pathing.Planner satisfies it.
type Pathfinder interface {
	FindPath(start, goal grid.Position, opts pathing.Options) (grid.Path, error)
}

// Spawn places one NPC.
type Spawn struct {
	ID     string
	Kind   string
	Home   grid.TileCoord
	Radius float64
	Speed  float64
	// Script names a tengo script under prefabs/scripts. Empty means the
	// NPC never moves.
	Script string
	Params map[string]any
}

// leashParams are the params the roster itself reads.
type leashParams struct {
	// Leash caps how far, in tiles, a walk may end from home. Zero is
	// unlimited.
	Leash int `yaml:"leash"`
}

type actor struct {
	npc    grid.NPC
	kind   string
	home   grid.TileCoord
	speed  float64
	leash  int
	path   grid.Path
	script *scriptRuntime
	params map[string]any
}

// Roster owns the live NPCs of one map and moves them under their scripts.
type Roster struct {
	planner Pathfinder
	logger  *zap.Logger
	actors  []*actor
}

func NewRoster(planner Pathfinder, spawns []Spawn, logger *zap.Logger) (*Roster, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Roster{planner: planner, logger: logger}
	seen := make(map[string]bool, len(spawns))
	for _, s := range spawns {
		if s.ID == "" {
			return nil, fmt.Errorf("npc: spawn at %v has no id", s.Home)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("npc: duplicate id %q", s.ID)
		}
		seen[s.ID] = true

		lp, err := prefabs.DecodeParams[leashParams](s.Params)
		if err != nil {
			return nil, fmt.Errorf("npc: %s params: %w", s.ID, err)
		}
		a := &actor{
			npc: grid.NPC{
				ID:              s.ID,
				Position:        s.Home.Center(),
				CollisionRadius: s.Radius,
			},
			kind:   s.Kind,
			home:   s.Home,
			speed:  s.Speed,
			leash:  lp.Leash,
			params: s.Params,
		}
		if a.speed <= 0 {
			a.speed = DefaultSpeed
		}
		if s.Script != "" {
			rt, err := compileScript(s.Script)
			if err != nil {
				return nil, err
			}
			a.script = rt
		}
		r.actors = append(r.actors, a)
	}
	return r, nil
}

// SpawnsFor resolves level placements against the NPC archetypes.
func SpawnsFor(placements []levels.Placement, kinds *prefabs.NPCSetSpec) ([]Spawn, error) {
	out := make([]Spawn, 0, len(placements))
	for _, p := range placements {
		k, err := kinds.Kind(p.Kind)
		if err != nil {
			return nil, fmt.Errorf("npc: place %s: %w", p.ID, err)
		}
		out = append(out, Spawn{
			ID:     p.ID,
			Kind:   k.Name,
			Home:   grid.TileCoord{X: p.X, Y: p.Y},
			Radius: k.Radius,
			Speed:  k.Speed,
			Script: k.Script,
			Params: k.Params,
		})
	}
	return out, nil
}

// ListNPCs returns a fresh snapshot of every NPC.
func (r *Roster) ListNPCs() []grid.NPC {
	out := make([]grid.NPC, 0, len(r.actors))
	for _, a := range r.actors {
		out = append(out, a.npc)
	}
	return out
}

func (r *Roster) Len() int {
	return len(r.actors)
}

// Lookup finds an NPC by id.
func (r *Roster) Lookup(id string) (grid.NPC, bool) {
	for _, a := range r.actors {
		if a.npc.ID == id {
			return a.npc, true
		}
	}
	return grid.NPC{}, false
}

// Kind returns the archetype name an NPC was spawned from.
func (r *Roster) Kind(id string) string {
	for _, a := range r.actors {
		if a.npc.ID == id {
			return a.kind
		}
	}
	return ""
}

// NPCAt picks the NPC under a clicked position: the closest one whose body
// or tile contains p.
func (r *Roster) NPCAt(p grid.Position) (grid.NPC, bool) {
	best := math.Inf(1)
	var hit *actor
	for _, a := range r.actors {
		d := a.npc.Position.Vec().Distance(p.Vec())
		if d > a.npc.CollisionRadius && a.npc.Position.Tile() != p.Tile() {
			continue
		}
		if d < best {
			best = d
			hit = a
		}
	}
	if hit == nil {
		return grid.NPC{}, false
	}
	return hit.npc, true
}

// SetPlanner swaps the planner used for NPC walks.
func (r *Roster) SetPlanner(p Pathfinder) {
	r.planner = p
}

// Update runs every script once, then moves every NPC along its walk.
func (r *Roster) Update(dt float64) {
	for _, a := range r.actors {
		if a.script != nil {
			if err := a.script.run("update", r.buildEngine(a, dt)); err != nil {
				r.logger.Warn("npc script failed; disabling",
					zap.String("npc", a.npc.ID),
					zap.String("script", a.script.name),
					zap.Error(err),
				)
				a.script = nil
			}
		}
		a.step(dt)
	}
}

// Reload recompiles every script, e.g. after an edit on disk. Script state
// restarts; positions and walks in progress are kept. On error nothing
// changes.
func (r *Roster) Reload() error {
	compiled := make([]*scriptRuntime, len(r.actors))
	for i, a := range r.actors {
		name := ""
		if a.script != nil {
			name = a.script.name
		}
		if name == "" {
			continue
		}
		rt, err := compileScript(name)
		if err != nil {
			return err
		}
		compiled[i] = rt
	}
	for i, a := range r.actors {
		if compiled[i] != nil {
			a.script = compiled[i]
		}
	}
	r.logger.Info("npc scripts reloaded", zap.Int("npcs", len(r.actors)))
	return nil
}

func (r *Roster) walkTo(a *actor, x, y int) bool {
	if r.planner == nil {
		return false
	}
	goal := grid.TileCoord{X: x, Y: y}
	if a.leash > 0 && abs(goal.X-a.home.X)+abs(goal.Y-a.home.Y) > a.leash {
		return false
	}
	path, err := r.planner.FindPath(a.npc.Position, goal.Center(), pathing.Options{})
	if err != nil {
		r.logger.Debug("npc walk rejected",
			zap.String("npc", a.npc.ID),
			zap.Stringer("goal", goal),
			zap.Error(err),
		)
		return false
	}
	// paths start at the next tile, so re-centre first
	if c := a.npc.Position.Tile().Center(); a.npc.Position != c {
		path = append(grid.Path{c}, path...)
	}
	a.path = path
	return true
}

func (a *actor) step(dt float64) {
	budget := a.speed * math.Max(dt, 0)
	for budget > 0 && len(a.path) > 0 {
		wp := a.path[0]
		d := wp.Vec().Sub(a.npc.Position.Vec())
		dist := d.Length()
		if dist <= budget {
			a.npc.Position = wp
			a.path = a.path[1:]
			budget -= dist
			continue
		}
		a.npc.Position = a.npc.Position.Add(d.Mult(budget / dist))
		budget = 0
	}
	if len(a.path) == 0 {
		a.path = nil
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
