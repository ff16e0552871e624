package movement

import (
	"math"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilewalk/grid"
)

const (
	DefaultSpeed     = 4.0
	DefaultHalfWidth = 0.3
)

// ControllerConfig tunes avatar motion.
type ControllerConfig struct {
	// Speed is in tiles per second.
	Speed float64
	// HalfWidth is half the avatar's collision box, in tiles.
	HalfWidth float64
	// FrameInterval is the minimum time between walk-cycle frames. Zero
	// steps the cycle every moving tick.
	FrameInterval time.Duration
	// HoverIdle keeps the cycle running while the avatar stands still.
	HoverIdle bool
}

// Input is one tick's movement intent.
type Input struct {
	// Keys is the keyboard/touch vector; any non-zero value wins.
	Keys cp.Vector
	// Path is the unit vector from the follower, valid when HasPath is set.
	Path    cp.Vector
	HasPath bool
	// PathLimit caps path-driven travel this tick, normally the distance to
	// the current waypoint. Zero means no cap.
	PathLimit float64
}

// Result reports what one tick did.
type Result struct {
	IsMoving        bool
	IsKeyboardInput bool
	// Blocked is set when a vector was present but both axes were rejected.
	Blocked bool
}

// Controller integrates one avatar's motion, facing and walk cycle.
type Controller struct {
	resolver *grid.Resolver
	cfg      ControllerConfig
	skin     Skin

	pos         grid.Position
	dir         grid.Direction
	anim        PingPong
	lastFrameAt time.Duration
	framed      bool
}

func NewController(resolver *grid.Resolver, cfg ControllerConfig, start grid.Position, skin Skin) *Controller {
	if cfg.Speed <= 0 {
		cfg.Speed = DefaultSpeed
	}
	if cfg.HalfWidth <= 0 {
		cfg.HalfWidth = DefaultHalfWidth
	}
	return &Controller{
		resolver: resolver,
		cfg:      cfg,
		skin:     skin,
		pos:      start,
	}
}

func (c *Controller) Position() grid.Position   { return c.pos }
func (c *Controller) Direction() grid.Direction { return c.dir }
func (c *Controller) Frame() int                { return c.anim.Frame() }
func (c *Controller) Skin() Skin                { return c.skin }
func (c *Controller) Config() ControllerConfig  { return c.cfg }

// Resolver is the walkability view the controller collides against.
func (c *Controller) Resolver() *grid.Resolver {
	return c.resolver
}

// SetSkin swaps character art. The frame is clamped on the next step.
func (c *Controller) SetSkin(s Skin) {
	c.skin = s
}

// SetConfig applies new tuning, keeping position and facing.
func (c *Controller) SetConfig(cfg ControllerConfig) {
	if cfg.Speed <= 0 {
		cfg.Speed = DefaultSpeed
	}
	if cfg.HalfWidth <= 0 {
		cfg.HalfWidth = DefaultHalfWidth
	}
	c.cfg = cfg
}

// SetResolver swaps the collision grid, e.g. after a map change.
func (c *Controller) SetResolver(r *grid.Resolver) {
	c.resolver = r
}

// Teleport places the avatar without collision checks and resets the cycle.
func (c *Controller) Teleport(p grid.Position) {
	c.pos = p
	c.anim.Reset()
	c.framed = false
}

// Update runs one simulation tick. dt is in seconds; now is the host clock
// used to pace the walk cycle.
func (c *Controller) Update(dt float64, now time.Duration, in Input) Result {
	var res Result
	var v cp.Vector
	limit := 0.0
	switch {
	case !isZero(in.Keys):
		v = in.Keys
		if v.Length() > 1 {
			v = v.Normalize()
		}
		res.IsKeyboardInput = true
	case in.HasPath && !isZero(in.Path):
		v = in.Path
		limit = in.PathLimit
	}

	if isZero(v) {
		c.settle(now)
		return res
	}

	c.dir = grid.FacingFor(v.X, v.Y, c.dir)

	dist := c.cfg.Speed * math.Max(dt, 0)
	if limit > 0 && dist > limit {
		dist = limit
	}
	if c.slide(v.Mult(dist)) {
		res.IsMoving = true
		c.animate(now)
		return res
	}

	res.Blocked = true
	c.settle(now)
	return res
}

// slide applies step one axis at a time so a blocked axis does not stop
// motion along the open one.
func (c *Controller) slide(step cp.Vector) bool {
	next := c.pos
	if step.X != 0 {
		cand := grid.Position{X: c.pos.X + step.X, Y: c.pos.Y}
		if c.fits(cand) {
			next.X = cand.X
		}
	}
	if step.Y != 0 {
		cand := grid.Position{X: next.X, Y: c.pos.Y + step.Y}
		if c.fits(cand) {
			next.Y = cand.Y
		}
	}
	moved := next != c.pos
	c.pos = next
	return moved
}

// fits reports whether every tile under the avatar's box at p is walkable.
func (c *Controller) fits(p grid.Position) bool {
	if c.resolver == nil {
		return true
	}
	hw := c.cfg.HalfWidth
	const edge = 1e-9
	minX := int(math.Floor(p.X - hw))
	maxX := int(math.Floor(p.X + hw - edge))
	minY := int(math.Floor(p.Y - hw))
	maxY := int(math.Floor(p.Y + hw - edge))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if !c.resolver.IsWalkable(x, y, nil) {
				return false
			}
		}
	}
	return true
}

func (c *Controller) animate(now time.Duration) {
	if c.framed && c.cfg.FrameInterval > 0 && now-c.lastFrameAt < c.cfg.FrameInterval {
		return
	}
	c.anim.Step(c.skin.MaxFrame(c.dir))
	c.lastFrameAt = now
	c.framed = true
}

// settle handles a tick without motion.
func (c *Controller) settle(now time.Duration) {
	if c.cfg.HoverIdle {
		c.animate(now)
		return
	}
	c.anim.Reset()
	c.framed = false
}

func isZero(v cp.Vector) bool {
	return v.X == 0 && v.Y == 0
}
