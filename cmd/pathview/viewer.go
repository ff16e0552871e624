package main

import (
	"fmt"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/movement"
	"github.com/milk9111/tilewalk/session"
	"golang.design/x/clipboard"
	"go.uber.org/zap"
)

const (
	// cellW is how many columns one tile takes, so tiles look square.
	cellW = 2
	// mapTop leaves a header line above the map.
	mapTop = 1
	// keyHold keeps a direction held between key repeats; terminals do
	// not report key release.
	keyHold   = 150 * time.Millisecond
	statusTTL = 3 * time.Second
	frameTime = 16 * time.Millisecond
)

type player interface {
	Play()
}

type viewer struct {
	screen tcell.Screen
	world  *session.World
	logger *zap.Logger
	cue    player

	held        cp.Vector
	heldUntil   time.Duration
	buttons     tcell.ButtonMask
	rejections  int
	status      string
	statusUntil time.Duration
	clipboard   bool
}

func newViewer(screen tcell.Screen, world *session.World, logger *zap.Logger) *viewer {
	screen.EnableMouse()
	v := &viewer{
		screen: screen,
		world:  world,
		logger: logger,
	}
	v.clipboard = clipboard.Init() == nil
	return v
}

func (v *viewer) run() {
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			if !v.handle(ev) {
				return
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			v.step(dt)
			v.draw()
		}
	}
}

// handle applies one terminal event. It returns false to quit.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		buttons := ev.Buttons()
		pressed := buttons &^ v.buttons
		v.buttons = buttons
		if pressed&tcell.Button1 != 0 {
			x, y := ev.Position()
			v.click(x, y)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		v.hold(cp.Vector{Y: -1})
	case tcell.KeyDown:
		v.hold(cp.Vector{Y: 1})
	case tcell.KeyLeft:
		v.hold(cp.Vector{X: -1})
	case tcell.KeyRight:
		v.hold(cp.Vector{X: 1})
	case tcell.KeyTab:
		v.switchLevel(1)
	case tcell.KeyBacktab:
		v.switchLevel(-1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'w':
			v.hold(cp.Vector{Y: -1})
		case 's':
			v.hold(cp.Vector{Y: 1})
		case 'a':
			v.hold(cp.Vector{X: -1})
		case 'd':
			v.hold(cp.Vector{X: 1})
		case 'k':
			v.world.CycleSkin()
			v.setStatus("skin " + v.world.Skin())
		case 'y':
			v.copyPath()
		case ' ':
			v.world.Interrupt(movement.CancelManual)
		}
	}
	return true
}

func (v *viewer) hold(dir cp.Vector) {
	v.held = dir
	v.heldUntil = v.world.Clock() + keyHold
}

func (v *viewer) click(x, y int) {
	_ = v.world.ClickAt(cellToTile(x, y))
}

func (v *viewer) switchLevel(delta int) {
	if err := v.world.SwitchLevel(delta); err != nil {
		v.setStatus("level switch failed: " + err.Error())
		return
	}
	v.screen.Clear()
	v.setStatus("level " + v.world.LevelName())
}

func (v *viewer) copyPath() {
	text := v.world.PathText()
	if !v.clipboard {
		v.setStatus(text)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	v.setStatus("path copied")
}

func (v *viewer) setStatus(msg string) {
	v.status = msg
	v.statusUntil = v.world.Clock() + statusTTL
}

// step advances the world and reacts to what happened.
func (v *viewer) step(dt float64) {
	var keys cp.Vector
	if v.world.Clock() < v.heldUntil {
		keys = v.held
	}
	v.world.Step(dt, keys)

	if n := v.world.Rejections(); n != v.rejections {
		v.rejections = n
		v.setStatus("can't walk there")
		if v.cue != nil {
			v.cue.Play()
		}
	}
	if n, ok := v.world.TakeDialogue(); ok {
		msg := n.ID + ": ..."
		if k, ok := v.world.NPCKind(n.ID); ok && k.Greeting != "" {
			msg = n.ID + ": " + k.Greeting
		}
		v.setStatus(msg)
	}
	if reason, ok := v.world.TakeStop(); ok && reason != movement.CancelArrived {
		v.logger.Debug("path stopped", zap.Stringer("reason", reason))
	}
}

func (v *viewer) draw() {
	v.screen.Clear()
	v.drawMap()
	v.drawPath()
	v.drawNPCs()
	v.drawAvatar()
	v.drawText()
	v.screen.Show()
}

func (v *viewer) drawMap() {
	tiles := v.world.Tiles()
	m := v.world.Map()
	w, h := m.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t, _ := m.TileAt(x, y)
			spec := tiles.Tiles[t.Type]
			glyph := firstRune(spec.Glyph, '?')
			style := tcell.StyleDefault.Foreground(toColor(spec.Color.Or(color.White)))
			for i := 0; i < cellW; i++ {
				r := glyph
				if i > 0 {
					r = ' '
				}
				v.screen.SetContent(x*cellW+i, mapTop+y, r, nil, style)
			}
		}
	}
}

func (v *viewer) drawPath() {
	f := v.world.Driver().Follower()
	if !f.Following() {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorGold)
	for _, wp := range f.Remaining() {
		x, y := tileToCell(wp)
		v.screen.SetContent(x, y, '·', nil, style)
	}
	if dest, ok := f.Destination(); ok {
		x, y := tileToCell(dest)
		v.screen.SetContent(x, y, 'x', nil, style.Bold(true))
	}
}

func (v *viewer) drawNPCs() {
	for _, n := range v.world.Roster().ListNPCs() {
		glyph := 'n'
		style := tcell.StyleDefault
		if k, ok := v.world.NPCKind(n.ID); ok {
			glyph = firstRune(k.Glyph, glyph)
			style = style.Foreground(toColor(k.Color.Or(color.White)))
		}
		x, y := tileToCell(n.Position)
		v.screen.SetContent(x, y, glyph, nil, style)
	}
}

func (v *viewer) drawAvatar() {
	c := v.world.Driver().Controller()
	style := tcell.StyleDefault.Bold(true)
	if s, ok := v.world.SkinSpec(); ok {
		style = style.Foreground(toColor(s.Color.Or(color.White)))
	}
	x, y := tileToCell(c.Position())
	v.screen.SetContent(x, y, '@', nil, style)
}

func (v *viewer) drawText() {
	header := fmt.Sprintf("%s  skin:%s  click/arrows move  tab level  k skin  y copy  q quit",
		v.world.LevelName(), v.world.Skin())
	putString(v.screen, 0, 0, header, tcell.StyleDefault)

	_, h := v.world.Map().Size()
	putString(v.screen, 0, mapTop+h, v.world.PathText(), tcell.StyleDefault.Dim(true))
	if v.status != "" && v.world.Clock() < v.statusUntil {
		putString(v.screen, 0, mapTop+h+1, v.status, tcell.StyleDefault)
	}
}

// cellToTile maps a terminal cell to the centre of that cell in tile units.
func cellToTile(x, y int) grid.Position {
	return grid.Position{
		X: (float64(x) + 0.5) / cellW,
		Y: float64(y-mapTop) + 0.5,
	}
}

func tileToCell(p grid.Position) (int, int) {
	return int(p.X * cellW), mapTop + int(p.Y)
}

func putString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func firstRune(s string, fallback rune) rune {
	for _, r := range s {
		return r
	}
	return fallback
}

func toColor(c color.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}
