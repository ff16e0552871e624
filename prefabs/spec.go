package prefabs

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/movement"
	"github.com/milk9111/tilewalk/pathing"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// TileSetSpec describes every tile type a level legend may name.
type TileSetSpec struct {
	Tiles map[string]TileSpec `yaml:"tiles"`
}

type TileSpec struct {
	Class string     `yaml:"class"`
	Color *YAMLColor `yaml:"color"`
	// Glyph is the terminal viewer's character for the type.
	Glyph  string     `yaml:"glyph"`
	Sprite SpriteSpec `yaml:"sprite"`
	// Footprint is set for multi-tile objects whose collision differs from
	// their anchor tile. A zero-sized footprint makes the anchor passable.
	Footprint *ColliderSpec `yaml:"footprint"`
}

// SpriteSpec is the render size in tiles, anchored at the tile's top-left
// and offset like a footprint.
type SpriteSpec struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

type ColliderSpec struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

func LoadTileSetSpec() (*TileSetSpec, error) {
	spec, err := LoadSpec[TileSetSpec]("tiles.yaml")
	if err != nil {
		return nil, err
	}
	if len(spec.Tiles) == 0 {
		return nil, fmt.Errorf("prefabs: tiles.yaml: no tile types")
	}
	return &spec, nil
}

// Classes maps each tile type to its collision class.
func (s *TileSetSpec) Classes() (map[string]grid.CollisionClass, error) {
	out := make(map[string]grid.CollisionClass, len(s.Tiles))
	for name, t := range s.Tiles {
		c, err := grid.ParseCollisionClass(t.Class)
		if err != nil {
			return nil, fmt.Errorf("prefabs: tile %q: %w", name, err)
		}
		out[name] = c
	}
	return out, nil
}

// GeometryTable collects the footprints of every type that declares one.
func (s *TileSetSpec) GeometryTable() grid.GeometryTable {
	table := grid.GeometryTable{}
	for name, t := range s.Tiles {
		if t.Footprint == nil {
			continue
		}
		table[name] = grid.Footprint{
			Width:   t.Footprint.Width,
			Height:  t.Footprint.Height,
			OffsetX: t.Footprint.OffsetX,
			OffsetY: t.Footprint.OffsetY,
		}
	}
	return table
}

// Names returns the tile type names in a stable order.
func (s *TileSetSpec) Names() []string {
	names := make([]string, 0, len(s.Tiles))
	for name := range s.Tiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvatarSpec holds the player's movement tuning and art sets.
type AvatarSpec struct {
	Name            string     `yaml:"name"`
	Speed           float64    `yaml:"speed"`
	HalfWidth       float64    `yaml:"half_width"`
	ArriveThreshold float64    `yaml:"arrive_threshold"`
	FrameIntervalMS int        `yaml:"frame_interval_ms"`
	HoverIdle       bool       `yaml:"hover_idle"`
	DefaultSkin     string     `yaml:"default_skin"`
	Skins           []SkinSpec `yaml:"skins"`
}

type SkinSpec struct {
	Name  string     `yaml:"name"`
	Color *YAMLColor `yaml:"color"`
	// Frames maps direction names to the highest walk-cycle frame index.
	Frames map[string]int `yaml:"frames"`
}

func LoadAvatarSpec() (*AvatarSpec, error) {
	spec, err := LoadSpec[AvatarSpec]("avatar.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *AvatarSpec) ControllerConfig() movement.ControllerConfig {
	return movement.ControllerConfig{
		Speed:         s.Speed,
		HalfWidth:     s.HalfWidth,
		FrameInterval: time.Duration(s.FrameIntervalMS) * time.Millisecond,
		HoverIdle:     s.HoverIdle,
	}
}

func (s *AvatarSpec) FollowerConfig() movement.FollowerConfig {
	return movement.FollowerConfig{ArriveThreshold: s.ArriveThreshold}
}

// Skin returns the named skin, or the default skin when name is empty.
func (s *AvatarSpec) Skin(name string) (movement.Skin, error) {
	if name == "" {
		name = s.DefaultSkin
	}
	for _, sk := range s.Skins {
		if sk.Name == name {
			return sk.Skin()
		}
	}
	return movement.Skin{}, fmt.Errorf("prefabs: avatar skin %q not found", name)
}

// SkinNames lists the skins in file order.
func (s *AvatarSpec) SkinNames() []string {
	names := make([]string, 0, len(s.Skins))
	for _, sk := range s.Skins {
		names = append(names, sk.Name)
	}
	return names
}

func (s SkinSpec) Skin() (movement.Skin, error) {
	out := movement.Skin{Name: s.Name, MaxFrames: make(map[grid.Direction]int, len(s.Frames))}
	for dir, n := range s.Frames {
		d, err := grid.ParseDirection(dir)
		if err != nil {
			return movement.Skin{}, fmt.Errorf("prefabs: skin %q: %w", s.Name, err)
		}
		if n < 0 {
			return movement.Skin{}, fmt.Errorf("prefabs: skin %q: negative frame count for %s", s.Name, dir)
		}
		out.MaxFrames[d] = n
	}
	return out, nil
}

// NavSpec tunes the path planner.
type NavSpec struct {
	MaxIterations int `yaml:"max_iterations"`
}

func LoadNavSpec() (*NavSpec, error) {
	spec, err := LoadSpec[NavSpec]("nav.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *NavSpec) PlannerConfig() pathing.Config {
	return pathing.Config{MaxIterations: s.MaxIterations}
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// Or returns the parsed colour, or fallback when unset.
func (c *YAMLColor) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
