package movement

import (
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilewalk/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 1.0 / 60

var boxRoom = asciiMap{
	"#####",
	"#...#",
	"#...#",
	"#####",
}

func newController(m grid.TileOracle, start grid.Position, cfg ControllerConfig) *Controller {
	return NewController(newResolver(m), cfg, start, UniformSkin("test", 3))
}

func TestControllerKeysBeatPath(t *testing.T) {
	c := newController(openMap(10, 10), at(5, 5), ControllerConfig{Speed: 6})

	res := c.Update(0.1, 0, Input{
		Keys:    cp.Vector{X: -1},
		Path:    cp.Vector{Y: 1},
		HasPath: true,
	})
	assert.True(t, res.IsMoving)
	assert.True(t, res.IsKeyboardInput)
	assert.InDelta(t, 5.5-0.6, c.Position().X, 1e-9)
	assert.InDelta(t, 5.5, c.Position().Y, 1e-9)
	assert.Equal(t, grid.Left, c.Direction())

	res = c.Update(0.1, 0, Input{Path: cp.Vector{Y: 1}, HasPath: true})
	assert.True(t, res.IsMoving)
	assert.False(t, res.IsKeyboardInput)
	assert.InDelta(t, 5.5+0.6, c.Position().Y, 1e-9)
	assert.Equal(t, grid.Down, c.Direction())
}

func TestControllerDiagonalKeysAreNormalised(t *testing.T) {
	c := newController(openMap(10, 10), at(5, 5), ControllerConfig{Speed: 1})

	c.Update(1, 0, Input{Keys: cp.Vector{X: 1, Y: 1}})
	moved := c.Position().Vec().Distance(at(5, 5).Vec())
	assert.InDelta(t, 1.0, moved, 1e-9)
}

func TestControllerSlidesAlongWall(t *testing.T) {
	start := grid.Position{X: 1.5, Y: 1.3}
	c := newController(boxRoom, start, ControllerConfig{Speed: 4})

	res := c.Update(0.05, 0, Input{Keys: cp.Vector{X: 1, Y: -1}})
	require.True(t, res.IsMoving)
	assert.False(t, res.Blocked)
	assert.Greater(t, c.Position().X, start.X, "open axis still moves")
	assert.Equal(t, start.Y, c.Position().Y, "blocked axis is rejected")
}

func TestControllerFullyBlocked(t *testing.T) {
	start := grid.Position{X: 1.3, Y: 1.3}
	c := newController(boxRoom, start, ControllerConfig{Speed: 4})

	res := c.Update(0.05, 0, Input{Keys: cp.Vector{X: -1}})
	assert.False(t, res.IsMoving)
	assert.True(t, res.Blocked)
	assert.True(t, res.IsKeyboardInput)
	assert.Equal(t, start, c.Position())
	assert.Equal(t, grid.Left, c.Direction(), "faces the wall it pushes against")
	assert.Zero(t, c.Frame())
}

func TestControllerKeepsDirectionWhenIdle(t *testing.T) {
	c := newController(openMap(10, 10), at(5, 5), ControllerConfig{})

	c.Update(tick, 0, Input{Keys: cp.Vector{X: 1}})
	require.Equal(t, grid.Right, c.Direction())
	for i := 0; i < 5; i++ {
		res := c.Update(tick, 0, Input{})
		assert.False(t, res.IsMoving)
	}
	assert.Equal(t, grid.Right, c.Direction())
}

func TestControllerPingPongWhileWalking(t *testing.T) {
	c := newController(openMap(40, 3), at(1, 1), ControllerConfig{Speed: 2})

	var frames []int
	for i := 0; i < 8; i++ {
		res := c.Update(tick, time.Duration(i)*time.Second/60, Input{Keys: cp.Vector{X: 1}})
		require.True(t, res.IsMoving)
		frames = append(frames, c.Frame())
	}
	assert.Equal(t, []int{1, 2, 3, 2, 1, 0, 1, 2}, frames)
}

func TestControllerIdleResetsCycle(t *testing.T) {
	c := newController(openMap(40, 3), at(1, 1), ControllerConfig{Speed: 2})
	walk := Input{Keys: cp.Vector{X: 1}}

	c.Update(tick, 0, walk)
	c.Update(tick, 0, walk)
	c.Update(tick, 0, walk)
	c.Update(tick, 0, walk)
	require.Equal(t, 2, c.Frame(), "descending after the peak")

	c.Update(tick, 0, Input{})
	assert.Zero(t, c.Frame())

	c.Update(tick, 0, walk)
	assert.Equal(t, 1, c.Frame(), "next step starts ascending from the base pose")
}

func TestControllerHoverIdleKeepsAnimating(t *testing.T) {
	c := newController(openMap(5, 5), at(2, 2), ControllerConfig{HoverIdle: true})

	var frames []int
	for i := 0; i < 4; i++ {
		res := c.Update(tick, 0, Input{})
		require.False(t, res.IsMoving)
		frames = append(frames, c.Frame())
	}
	assert.Equal(t, []int{1, 2, 3, 2}, frames)
	assert.Equal(t, at(2, 2), c.Position())
}

func TestControllerFrameInterval(t *testing.T) {
	c := newController(openMap(40, 3), at(1, 1), ControllerConfig{Speed: 1, FrameInterval: 100 * time.Millisecond})
	walk := Input{Keys: cp.Vector{X: 1}}

	c.Update(tick, 0, walk)
	assert.Equal(t, 1, c.Frame())
	c.Update(tick, 50*time.Millisecond, walk)
	assert.Equal(t, 1, c.Frame())
	c.Update(tick, 100*time.Millisecond, walk)
	assert.Equal(t, 2, c.Frame())
	c.Update(tick, 150*time.Millisecond, walk)
	assert.Equal(t, 2, c.Frame())
}

func TestControllerPerDirectionFrames(t *testing.T) {
	skin := Skin{Name: "owl", MaxFrames: map[grid.Direction]int{grid.Right: 4, grid.Down: 1}}
	c := NewController(newResolver(openMap(20, 20)), ControllerConfig{}, at(5, 5), skin)

	for i := 0; i < 3; i++ {
		c.Update(tick, 0, Input{Keys: cp.Vector{X: 1}})
	}
	require.Equal(t, 3, c.Frame())

	c.Update(tick, 0, Input{Keys: cp.Vector{Y: 1}})
	assert.Equal(t, 0, c.Frame(), "clamped to down's single step and descending")
	c.Update(tick, 0, Input{Keys: cp.Vector{Y: 1}})
	assert.Equal(t, 1, c.Frame())
}

func TestControllerPathLimitStopsOnWaypoint(t *testing.T) {
	c := newController(openMap(10, 3), at(1, 1), ControllerConfig{Speed: 10})

	c.Update(1, 0, Input{Path: cp.Vector{X: 1}, HasPath: true, PathLimit: 1})
	assert.Equal(t, at(2, 1), c.Position())
}

func TestControllerTeleport(t *testing.T) {
	c := newController(openMap(10, 3), at(1, 1), ControllerConfig{})
	c.Update(tick, 0, Input{Keys: cp.Vector{X: 1}})
	require.NotZero(t, c.Frame())

	c.Teleport(at(7, 2))
	assert.Equal(t, at(7, 2), c.Position())
	assert.Zero(t, c.Frame())
}
