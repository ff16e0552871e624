package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilewalk/common"
	"github.com/milk9111/tilewalk/grid"
	"golang.design/x/clipboard"
	"go.uber.org/zap"
)

// stickDeadZone ignores gamepad drift.
const stickDeadZone = 0.3

// frameInput is what the simulation reads from one frame of input.
type frameInput struct {
	// Keys is the held movement direction, one unit per axis.
	Keys cp.Vector
	// Cursor is the pointer in tile units.
	Cursor grid.Position
}

// InputSystem polls keyboard, mouse and gamepad, handles the host shortcuts
// and feeds clicks to the world.
type InputSystem struct{}

func (s *InputSystem) Update(g *Game) {
	mx, my := ebiten.CursorPosition()
	g.input = frameInput{Cursor: screenToTile(g, float64(mx), float64(my))}

	if g.overlay != overlayNone {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.closeOverlay()
			return
		}
		g.ui.Update()
		return
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.openPause()
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		delta := 1
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			delta = -1
		}
		if err := g.world.SwitchLevel(delta); err != nil {
			g.logger.Warn("level switch failed", zap.Error(err))
			g.setStatus("level switch failed")
		} else {
			g.setStatus("level " + g.world.LevelName())
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		g.world.CycleSkin()
		g.setStatus("skin " + g.world.Skin())
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.copyPath()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.openContextMenu(g.input.Cursor)
		return
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		_ = g.world.ClickAt(g.input.Cursor)
	}

	g.input.Keys = movementKeys()
}

func movementKeys() cp.Vector {
	var v cp.Vector
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		v.X -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		v.X += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		v.Y -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		v.Y += 1
	}

	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) > 0 && v.X == 0 && v.Y == 0 {
		gid := ids[0]
		lx := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Abs(lx) > stickDeadZone {
			v.X = math.Copysign(1, lx)
		}
		if math.Abs(ly) > stickDeadZone {
			v.Y = math.Copysign(1, ly)
		}
	}
	return v
}

func (g *Game) copyPath() {
	text := g.world.PathText()
	if !g.clipboard {
		g.logger.Info("path", zap.String("text", text))
		g.setStatus("clipboard unavailable; path logged")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	g.setStatus("path copied")
}

// screenToTile converts a layout-space pixel to tile units.
func screenToTile(g *Game, x, y float64) grid.Position {
	ox, oy := mapOrigin(g)
	return grid.Position{
		X: (x - ox) / common.TileSize,
		Y: (y - oy) / common.TileSize,
	}
}
