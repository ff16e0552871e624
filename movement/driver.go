package movement

import (
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilewalk/grid"
	"go.uber.org/zap"
)

// Driver owns one avatar's follower and controller and runs them in a fixed
// order each tick. Every competing source of intent or scene discontinuity
// goes through it and drops the in-flight path.
type Driver struct {
	follower   *Follower
	controller *Controller
	logger     *zap.Logger
}

func NewDriver(follower *Follower, controller *Controller, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		follower:   follower,
		controller: controller,
		logger:     logger,
	}
}

func (d *Driver) Follower() *Follower     { return d.follower }
func (d *Driver) Controller() *Controller { return d.controller }

// Tick runs one simulation step: key input cancels a held path, the follower
// is queried exactly once, then the controller integrates.
func (d *Driver) Tick(dt float64, now time.Duration, keys cp.Vector) Result {
	if !isZero(keys) && d.follower.Following() {
		d.follower.Cancel(CancelInput)
	}

	in := Input{Keys: keys}
	pos := d.controller.Position()
	if v, ok := d.follower.MovementVector(pos); ok {
		in.Path = v
		in.HasPath = true
		if wp, ok := d.follower.Waypoint(); ok {
			in.PathLimit = wp.Vec().Distance(pos.Vec())
		}
	}
	return d.controller.Update(dt, now, in)
}

// GoTo plans a path to a world position.
func (d *Driver) GoTo(dest grid.Position) error {
	return d.follower.SetDestination(d.controller.Position(), dest, nil)
}

// Approach plans a path that ends next to npc.
func (d *Driver) Approach(npc grid.NPC) error {
	return d.follower.SetDestination(d.controller.Position(), npc.Position, &npc)
}

// Interrupt drops the in-flight path because of an external trigger such as
// an overlay, cutscene, dialogue or context menu.
func (d *Driver) Interrupt(reason CancelReason) {
	if d.follower.Following() {
		d.logger.Debug("path interrupted", zap.Stringer("reason", reason))
	}
	d.follower.Cancel(reason)
}

// ChangeMap cancels the path, swaps the collision grid and planner and places
// the avatar at spawn.
func (d *Driver) ChangeMap(resolver *grid.Resolver, planner Pathfinder, spawn grid.Position) {
	d.follower.Cancel(CancelMapChange)
	d.follower.SetPlanner(planner)
	d.controller.SetResolver(resolver)
	d.controller.Teleport(spawn)
	d.logger.Info("map changed", zap.Stringer("spawn", spawn))
}
