package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/tilewalk/common"
	"github.com/milk9111/tilewalk/grid"
	"golang.org/x/image/colornames"
)

const ts = float32(common.TileSize)

// mapOrigin centres the current map in the layout.
func mapOrigin(g *Game) (float64, float64) {
	w, h := g.world.Map().Size()
	ox := (common.BaseWidth - float64(w)*common.TileSize) / 2
	oy := (common.BaseHeight - float64(h)*common.TileSize) / 2
	return math.Max(ox, 0), math.Max(oy, 0)
}

// toScreen converts tile units to layout pixels.
func toScreen(g *Game, p grid.Position) (float32, float32) {
	ox, oy := mapOrigin(g)
	return float32(ox + p.X*common.TileSize), float32(oy + p.Y*common.TileSize)
}

func drawWorld(screen *ebiten.Image, g *Game) {
	screen.Fill(colornames.Black)
	drawTiles(screen, g)
	drawPath(screen, g)
	drawNPCs(screen, g)
	drawAvatar(screen, g)
	drawSprites(screen, g)
	if g.debug {
		drawDebug(screen, g)
	}
}

func drawTiles(screen *ebiten.Image, g *Game) {
	tiles := g.world.Tiles()
	m := g.world.Map()
	w, h := m.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t, _ := m.TileAt(x, y)
			spec := tiles.Tiles[t.Type]
			sx, sy := toScreen(g, grid.Position{X: float64(x), Y: float64(y)})
			c := spec.Color.Or(colornames.Magenta)
			if spec.Sprite.Width > 0 {
				// the object is drawn later; the ground under it is grass
				c = tiles.Tiles["grass"].Color.Or(colornames.Darkgreen)
			}
			vector.FillRect(screen, sx, sy, ts, ts, c, false)
		}
	}
}

// drawSprites draws multi-tile objects last so they overlap what stands
// behind them.
func drawSprites(screen *ebiten.Image, g *Game) {
	tiles := g.world.Tiles()
	m := g.world.Map()
	w, h := m.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t, _ := m.TileAt(x, y)
			spec := tiles.Tiles[t.Type]
			if spec.Sprite.Width <= 0 || spec.Sprite.Height <= 0 {
				continue
			}
			sx, sy := toScreen(g, grid.Position{
				X: float64(x) + spec.Sprite.OffsetX,
				Y: float64(y) + spec.Sprite.OffsetY,
			})
			c := spec.Color.Or(colornames.Forestgreen)
			vector.FillRect(screen, sx, sy, float32(spec.Sprite.Width)*ts, float32(spec.Sprite.Height)*ts, fade(c, 220), false)
		}
	}
}

func drawPath(screen *ebiten.Image, g *Game) {
	f := g.world.Driver().Follower()
	if !f.Following() {
		return
	}

	px, py := toScreen(g, g.world.Driver().Controller().Position())
	for _, wp := range f.Remaining() {
		x, y := toScreen(g, wp)
		vector.StrokeLine(screen, px, py, x, y, 2, colornames.Lightgrey, true)
		vector.FillCircle(screen, x, y, 3, colornames.Lightgrey, true)
		px, py = x, y
	}

	if dest, ok := f.Destination(); ok {
		x, y := toScreen(g, dest)
		pulse := float32(math.Sin(g.world.Clock().Seconds() * 6))
		r := common.Lerp(ts*0.25, ts*0.4, (pulse+1)/2)
		vector.StrokeCircle(screen, x, y, r, 2, colornames.Gold, true)
	}
	if t, ok := f.Target(); ok {
		x, y := toScreen(g, t.Position)
		vector.StrokeCircle(screen, x, y, float32(t.CollisionRadius)*ts+4, 2, colornames.Gold, true)
	}
}

func drawNPCs(screen *ebiten.Image, g *Game) {
	for _, n := range g.world.Roster().ListNPCs() {
		var c color.Color = colornames.Tan
		if k, ok := g.world.NPCKind(n.ID); ok {
			c = k.Color.Or(c)
		}
		x, y := toScreen(g, n.Position)
		r := float32(math.Max(n.CollisionRadius, 0.2)) * ts
		vector.FillCircle(screen, x, y, r, c, true)
		ebitenutil.DebugPrintAt(screen, n.ID, int(x-r), int(y+r))
	}
}

func drawAvatar(screen *ebiten.Image, g *Game) {
	c := g.world.Driver().Controller()
	var body color.Color = colornames.Crimson
	if s, ok := g.world.SkinSpec(); ok {
		body = s.Color.Or(body)
	}

	hw := float32(c.Config().HalfWidth) * ts
	if hw <= 0 {
		hw = ts * 0.3
	}
	x, y := toScreen(g, c.Position())
	// walk frames bob the body
	bob := float32(c.Frame() % 2 * 2)
	vector.FillRect(screen, x-hw, y-hw-bob, hw*2, hw*2, body, false)

	dx, dy := facingOffset(c.Direction())
	vector.StrokeLine(screen, x, y-bob, x+dx*hw, y+dy*hw-bob, 3, colornames.White, true)
}

func facingOffset(d grid.Direction) (float32, float32) {
	switch d {
	case grid.Up:
		return 0, -1
	case grid.Left:
		return -1, 0
	case grid.Right:
		return 1, 0
	default:
		return 0, 1
	}
}

// drawDebug outlines footprints and unwalkable tiles.
func drawDebug(screen *ebiten.Image, g *Game) {
	m := g.world.Map()
	w, h := m.Size()
	geom := g.world.Tiles().GeometryTable()
	npcs := g.world.Roster().ListNPCs()
	resolver := g.world.Driver().Controller().Resolver()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := toScreen(g, grid.Position{X: float64(x), Y: float64(y)})
			if resolver != nil && !resolver.IsWalkable(x, y, npcs) {
				vector.FillRect(screen, sx, sy, ts, ts, color.RGBA{R: 255, A: 48}, false)
			}
			t, _ := m.TileAt(x, y)
			fp, ok := geom.FootprintFor(t.Type)
			if !ok || fp.Empty() {
				continue
			}
			bb := fp.Rect(grid.TileCoord{X: x, Y: y}, 0)
			bx, by := toScreen(g, grid.Position{X: bb.L, Y: bb.B})
			vector.StrokeRect(screen, bx, by, float32(bb.R-bb.L)*ts, float32(bb.T-bb.B)*ts, 1, color.RGBA{R: 255, A: 200}, false)
		}
	}
}

func drawHUD(screen *ebiten.Image, g *Game) {
	lines := []string{
		fmt.Sprintf("%s  skin: %s  FPS: %.0f", g.world.LevelName(), g.world.Skin(), ebiten.ActualFPS()),
		"click: walk/talk  right-click: menu  WASD: move  Tab: level  F2: skin  F3: copy path  Esc: pause",
	}
	if g.status != "" && g.world.Clock() < g.statusUntil {
		lines = append(lines, g.status)
	}
	if g.debug {
		cur := g.input.Cursor
		lines = append(lines, fmt.Sprintf("cursor %s tile %s", cur, cur.Tile()))
	}
	ebitenutil.DebugPrint(screen, strings.Join(lines, "\n"))
}

func fade(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}
