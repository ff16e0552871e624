package movement

import "github.com/milk9111/tilewalk/grid"

// PingPong is a walk-cycle frame counter that reverses at its bounds instead
// of wrapping: 0,1,...,max,max-1,...,0,1,...
type PingPong struct {
	frame      int
	descending bool
}

// Frame is the current frame index.
func (p *PingPong) Frame() int {
	return p.frame
}

// Step advances one frame toward the current bound and returns the new
// frame. A max below the current frame, e.g. after turning to a direction
// with fewer frames, clamps to max and starts descending.
func (p *PingPong) Step(max int) int {
	if max <= 0 {
		p.Reset()
		return 0
	}
	if p.frame > max {
		p.frame = max
		p.descending = true
	}
	if p.descending {
		p.frame--
		if p.frame <= 0 {
			p.frame = 0
			p.descending = false
		}
	} else {
		p.frame++
		if p.frame >= max {
			p.frame = max
			p.descending = true
		}
	}
	return p.frame
}

// Reset returns to the base pose, ascending.
func (p *PingPong) Reset() {
	p.frame = 0
	p.descending = false
}

// Skin is the per-direction frame layout of one character art set. Values
// are the highest frame index for that direction.
type Skin struct {
	Name      string
	MaxFrames map[grid.Direction]int
}

// MaxFrame returns the highest frame index for d, or 0 when the skin has no
// walk frames for it.
func (s Skin) MaxFrame(d grid.Direction) int {
	if s.MaxFrames == nil {
		return 0
	}
	return s.MaxFrames[d]
}

// UniformSkin gives every direction the same max frame.
func UniformSkin(name string, max int) Skin {
	return Skin{
		Name: name,
		MaxFrames: map[grid.Direction]int{
			grid.Down:  max,
			grid.Up:    max,
			grid.Left:  max,
			grid.Right: max,
		},
	}
}
