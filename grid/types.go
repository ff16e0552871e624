package grid

import (
	"fmt"
	"math"
	"strings"

	"github.com/jakecoffman/cp"
)

// Position is a continuous location in tile units. The fractional part is the
// offset within a tile.
type Position struct {
	X float64
	Y float64
}

// Tile floors the position to the tile that contains it.
func (p Position) Tile() TileCoord {
	return TileCoord{X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y))}
}

// Vec converts the position to a chipmunk vector.
func (p Position) Vec() cp.Vector {
	return cp.Vector{X: p.X, Y: p.Y}
}

// Add offsets the position by v.
func (p Position) Add(v cp.Vector) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// TileCoord addresses one cell of the grid.
type TileCoord struct {
	X int
	Y int
}

// Center returns the tile-centre position.
func (t TileCoord) Center() Position {
	return Position{X: float64(t.X) + 0.5, Y: float64(t.Y) + 0.5}
}

// Add offsets the coordinate by dx, dy tiles.
func (t TileCoord) Add(dx, dy int) TileCoord {
	return TileCoord{X: t.X + dx, Y: t.Y + dy}
}

func (t TileCoord) String() string {
	return fmt.Sprintf("[%d,%d]", t.X, t.Y)
}

// Direction is the facing of an avatar.
type Direction int

const (
	Down Direction = iota
	Up
	Left
	Right
)

var directionNames = [...]string{"down", "up", "left", "right"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// ParseDirection maps a config name to a Direction.
func ParseDirection(name string) (Direction, error) {
	clean := strings.ToLower(strings.TrimSpace(name))
	for i, n := range directionNames {
		if n == clean {
			return Direction(i), nil
		}
	}
	return Down, fmt.Errorf("grid: unknown direction %q", name)
}

// FacingFor derives a facing from the dominant axis of (dx, dy). The zero
// vector keeps fallback so a stopped avatar keeps its last heading.
func FacingFor(dx, dy float64, fallback Direction) Direction {
	if dx == 0 && dy == 0 {
		return fallback
	}
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return Right
		}
		return Left
	}
	if dy > 0 {
		return Down
	}
	return Up
}

// CollisionClass is the coarse collision classification of a tile type.
type CollisionClass int

const (
	Walkable CollisionClass = iota
	Solid
	Special
)

func (c CollisionClass) String() string {
	switch c {
	case Walkable:
		return "walkable"
	case Solid:
		return "solid"
	case Special:
		return "special"
	default:
		return "unknown"
	}
}

// ParseCollisionClass reads the class names used in tile specs. An empty
// name is walkable.
func ParseCollisionClass(name string) (CollisionClass, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "walkable":
		return Walkable, nil
	case "solid":
		return Solid, nil
	case "special":
		return Special, nil
	default:
		return Walkable, fmt.Errorf("grid: unknown collision class %q", name)
	}
}

// Tile is what the oracle reports for one coordinate.
type Tile struct {
	Type  string
	Class CollisionClass
}

// TileOracle is the read-only tile lookup of the current map.
type TileOracle interface {
	TileAt(x, y int) (Tile, bool)
	Size() (w, h int)
}

// NPC is a transient snapshot of a live NPC used as a circular obstacle.
type NPC struct {
	ID              string
	Position        Position
	CollisionRadius float64
}

// Roster lists the live NPCs. Implementations must return a fresh slice.
type Roster interface {
	ListNPCs() []NPC
}

// Path is an ordered list of tile-centre waypoints, excluding the start tile.
// An empty non-nil path means the mover is already at its destination.
type Path []Position

// Last returns the final waypoint.
func (p Path) Last() (Position, bool) {
	if len(p) == 0 {
		return Position{}, false
	}
	return p[len(p)-1], true
}
