package movement

import (
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/pathing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDriver(m grid.TileOracle, roster grid.Roster, start grid.Position) *Driver {
	f := newFollower(m, roster)
	c := newController(m, start, ControllerConfig{Speed: 4})
	return NewDriver(f, c, zap.NewNop())
}

func run(d *Driver, ticks int, keys cp.Vector) {
	for i := 0; i < ticks; i++ {
		d.Tick(tick, time.Duration(i)*time.Second/60, keys)
	}
}

func TestDriverWalksPathToDestination(t *testing.T) {
	d := newDriver(openMap(10, 10), nil, at(0, 0))
	var reasons []CancelReason
	d.Follower().OnStop(func(r CancelReason, _ *grid.NPC) { reasons = append(reasons, r) })

	require.NoError(t, d.GoTo(grid.Position{X: 9.2, Y: 9.7}))
	require.Len(t, d.Follower().Path(), 18)

	// 18 tiles at 4 tiles/s is 4.5s; leave slack for the arrival tick
	for i := 0; i < 400 && d.Follower().Following(); i++ {
		res := d.Tick(tick, time.Duration(i)*time.Second/60, cp.Vector{})
		if d.Follower().Following() {
			require.False(t, res.IsKeyboardInput)
		}
	}

	assert.False(t, d.Follower().Following())
	assert.Equal(t, []CancelReason{CancelArrived}, reasons)
	assert.InDelta(t, 0, d.Controller().Position().Vec().Distance(at(9, 9).Vec()), DefaultArriveThreshold)
}

func TestDriverKeyInputCancelsPath(t *testing.T) {
	d := newDriver(openMap(10, 10), nil, at(0, 0))
	var reasons []CancelReason
	d.Follower().OnStop(func(r CancelReason, _ *grid.NPC) { reasons = append(reasons, r) })

	require.NoError(t, d.GoTo(at(9, 0)))
	run(d, 10, cp.Vector{})
	require.True(t, d.Follower().Following())
	before := d.Controller().Position()

	res := d.Tick(tick, time.Second, cp.Vector{Y: 1})
	assert.True(t, res.IsKeyboardInput)
	assert.False(t, d.Follower().Following())
	assert.Equal(t, []CancelReason{CancelInput}, reasons)
	assert.Greater(t, d.Controller().Position().Y, before.Y)

	_, ok := d.Follower().Destination()
	assert.False(t, ok, "destination marker cleared")
}

func TestDriverInterrupt(t *testing.T) {
	d := newDriver(openMap(6, 6), nil, at(0, 0))
	var got CancelReason = -1
	d.Follower().OnStop(func(r CancelReason, _ *grid.NPC) { got = r })

	d.Interrupt(CancelOverlay)
	assert.Equal(t, CancelReason(-1), got, "idle interrupt is silent")

	require.NoError(t, d.GoTo(at(5, 5)))
	d.Interrupt(CancelCutscene)
	assert.Equal(t, CancelCutscene, got)
	assert.False(t, d.Follower().Following())

	before := d.Controller().Position()
	run(d, 5, cp.Vector{})
	assert.Equal(t, before, d.Controller().Position(), "no motion after interruption")
}

func TestDriverApproach(t *testing.T) {
	baker := grid.NPC{ID: "baker", Position: at(5, 2), CollisionRadius: 0.4}
	d := newDriver(openMap(8, 6), staticRoster{baker}, at(0, 0))
	var target *grid.NPC
	d.Follower().OnStop(func(r CancelReason, n *grid.NPC) {
		if r == CancelArrived {
			target = n
		}
	})

	require.NoError(t, d.Approach(baker))
	dest, _ := d.Follower().Destination()
	assert.Equal(t, at(5, 3), dest)

	for i := 0; i < 600 && d.Follower().Following(); i++ {
		d.Tick(tick, 0, cp.Vector{})
	}
	require.NotNil(t, target)
	assert.Equal(t, "baker", target.ID)
}

func TestDriverChangeMap(t *testing.T) {
	d := newDriver(openMap(6, 6), nil, at(0, 0))
	var reasons []CancelReason
	d.Follower().OnStop(func(r CancelReason, _ *grid.NPC) { reasons = append(reasons, r) })
	require.NoError(t, d.GoTo(at(5, 5)))

	walled := asciiMap{
		"....",
		".##.",
		"....",
	}
	resolver := newResolver(walled)
	planner := pathing.NewPlanner(resolver, pathing.Config{}, zap.NewNop())
	d.ChangeMap(resolver, planner, at(0, 0))

	assert.Equal(t, []CancelReason{CancelMapChange}, reasons)
	assert.Equal(t, at(0, 0), d.Controller().Position())
	assert.Zero(t, d.Controller().Frame())

	err := d.GoTo(at(5, 5))
	assert.ErrorIs(t, err, pathing.ErrGoalBlocked, "old map's tiles are gone")

	require.NoError(t, d.GoTo(at(3, 2)))
	for _, wp := range d.Follower().Path() {
		assert.NotEqual(t, grid.TileCoord{X: 1, Y: 1}, wp.Tile())
		assert.NotEqual(t, grid.TileCoord{X: 2, Y: 1}, wp.Tile())
	}
}
