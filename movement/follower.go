package movement

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/pathing"
	"go.uber.org/zap"
)

// DefaultArriveThreshold is the distance, in tiles, under which a waypoint
// counts as reached.
const DefaultArriveThreshold = 0.1

// Pathfinder plans paths. *pathing.Planner satisfies it.
type Pathfinder interface {
	FindPath(start, goal grid.Position, opts pathing.Options) (grid.Path, error)
}

// CancelReason records why a path stopped being followed.
type CancelReason int

const (
	CancelManual CancelReason = iota
	CancelInput
	CancelOverlay
	CancelCutscene
	CancelMapChange
	CancelDialogue
	CancelContextMenu
	CancelArrived
	CancelSuperseded
)

var cancelReasonNames = [...]string{
	"manual",
	"input",
	"overlay",
	"cutscene",
	"map_change",
	"dialogue",
	"context_menu",
	"arrived",
	"superseded",
}

func (r CancelReason) String() string {
	if r < 0 || int(r) >= len(cancelReasonNames) {
		return "unknown"
	}
	return cancelReasonNames[r]
}

// FollowerConfig tunes waypoint arrival.
type FollowerConfig struct {
	ArriveThreshold float64
}

// Follower is the path-following state machine. It is Idle while it holds no
// path and Following otherwise; exhausting the path returns it to Idle.
type Follower struct {
	planner Pathfinder
	roster  grid.Roster
	arrive  float64
	logger  *zap.Logger
	onStop  func(CancelReason, *grid.NPC)

	path        grid.Path
	index       int
	destination *grid.Position
	target      *grid.NPC
}

func NewFollower(planner Pathfinder, roster grid.Roster, cfg FollowerConfig, logger *zap.Logger) *Follower {
	if cfg.ArriveThreshold <= 0 {
		cfg.ArriveThreshold = DefaultArriveThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Follower{
		planner: planner,
		roster:  roster,
		arrive:  cfg.ArriveThreshold,
		logger:  logger,
	}
}

// OnStop registers a callback run whenever a held path is dropped, with the
// target NPC that path was approaching, if any.
func (f *Follower) OnStop(fn func(reason CancelReason, target *grid.NPC)) {
	f.onStop = fn
}

// SetPlanner swaps the planner, e.g. after a map change.
func (f *Follower) SetPlanner(p Pathfinder) {
	f.planner = p
}

// SetDestination plans from the avatar's position to dest. With a target NPC
// it plans to a walkable neighbour of the NPC and does not avoid it. On
// failure the current state is left untouched.
func (f *Follower) SetDestination(from, dest grid.Position, target *grid.NPC) error {
	if f.planner == nil {
		return fmt.Errorf("movement: set destination %v: %w", dest, pathing.ErrNoPath)
	}
	var npcs []grid.NPC
	if f.roster != nil {
		npcs = f.roster.ListNPCs()
	}

	opts := pathing.Options{AvoidNPCs: npcs}
	goal := dest
	var targetCopy *grid.NPC
	if target != nil {
		t := *target
		for _, n := range npcs {
			if n.ID == t.ID {
				t = n
				break
			}
		}
		targetCopy = &t
		goal = t.Position
		opts.StopAdjacent = true
		opts.AvoidNPCs = withoutNPC(npcs, t.ID)
	}

	path, err := f.planner.FindPath(from, goal, opts)
	if err != nil {
		f.logger.Debug("destination rejected", zap.Stringer("goal", goal), zap.Error(err))
		return fmt.Errorf("movement: set destination %v: %w", goal, err)
	}

	if f.path != nil {
		f.Cancel(CancelSuperseded)
	}

	marker := from.Tile().Center()
	if last, ok := path.Last(); ok {
		marker = last
	}
	f.path = path
	f.index = 0
	f.destination = &marker
	f.target = targetCopy
	f.logger.Debug("destination set",
		zap.Stringer("goal", goal),
		zap.Int("waypoints", len(path)),
	)
	return nil
}

// CancelPath drops any held path. Calling it while Idle does nothing.
func (f *Follower) CancelPath() {
	f.Cancel(CancelManual)
}

// Cancel drops any held path and records why.
func (f *Follower) Cancel(reason CancelReason) {
	if f.path == nil && f.destination == nil && f.target == nil {
		return
	}
	target := f.target
	f.path = nil
	f.index = 0
	f.destination = nil
	f.target = nil
	f.logger.Debug("path stopped", zap.Stringer("reason", reason))
	if f.onStop != nil {
		f.onStop(reason, target)
	}
}

// Following reports whether a path is held.
func (f *Follower) Following() bool {
	return f.path != nil
}

// Path returns a copy of the held path.
func (f *Follower) Path() grid.Path {
	if f.path == nil {
		return nil
	}
	return append(grid.Path{}, f.path...)
}

// Index is the current waypoint index.
func (f *Follower) Index() int {
	return f.index
}

// Remaining returns a copy of the waypoints not yet reached.
func (f *Follower) Remaining() grid.Path {
	if f.path == nil || f.index >= len(f.path) {
		return nil
	}
	return append(grid.Path{}, f.path[f.index:]...)
}

// Destination is the final waypoint of the held path, for UI markers.
func (f *Follower) Destination() (grid.Position, bool) {
	if f.destination == nil {
		return grid.Position{}, false
	}
	return *f.destination, true
}

// Target is the NPC being approached, if any.
func (f *Follower) Target() (grid.NPC, bool) {
	if f.target == nil {
		return grid.NPC{}, false
	}
	return *f.target, true
}

// Waypoint peeks at the current waypoint without changing progress.
func (f *Follower) Waypoint() (grid.Position, bool) {
	if f.path == nil || f.index >= len(f.path) {
		return grid.Position{}, false
	}
	return f.path[f.index], true
}

// Advance moves to the next waypoint. Running off the end is arrival.
func (f *Follower) Advance() {
	if f.path == nil {
		return
	}
	f.index++
	if f.index >= len(f.path) {
		f.Cancel(CancelArrived)
	}
}

// MovementVector is the once-per-tick transition. It advances past a reached
// waypoint and returns the unit vector toward the current one, or false when
// Idle or on arrival.
func (f *Follower) MovementVector(pos grid.Position) (cp.Vector, bool) {
	wp, ok := f.Waypoint()
	if !ok {
		// covers the empty "already there" path too
		f.Cancel(CancelArrived)
		return cp.Vector{}, false
	}

	d := wp.Vec().Sub(pos.Vec())
	if d.Length() < f.arrive {
		f.Advance()
		if wp, ok = f.Waypoint(); !ok {
			return cp.Vector{}, false
		}
		d = wp.Vec().Sub(pos.Vec())
	}
	if d.LengthSq() == 0 {
		return cp.Vector{}, true
	}
	return d.Normalize(), true
}

func withoutNPC(npcs []grid.NPC, id string) []grid.NPC {
	out := make([]grid.NPC, 0, len(npcs))
	for _, n := range npcs {
		if n.ID == id {
			continue
		}
		out = append(out, n)
	}
	return out
}
