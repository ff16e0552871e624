package main

import (
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/tilewalk/common"
	"github.com/milk9111/tilewalk/prefabs"
	"github.com/milk9111/tilewalk/session"
	"golang.design/x/clipboard"
	"go.uber.org/zap"
)

// statusTTL is how long a status line stays in the HUD.
const statusTTL = 2 * time.Second

type GameOptions struct {
	Level string
	Skin  string
	Debug bool
	Watch bool
}

type Game struct {
	frames int
	debug  bool
	logger *zap.Logger

	world     *session.World
	scheduler *Scheduler
	input     frameInput
	watcher   *prefabs.Watcher
	clipboard bool

	overlay     overlayKind
	ui          *ebitenui.UI
	status      string
	statusUntil time.Duration
}

func NewGame(opts GameOptions, logger *zap.Logger) (*Game, error) {
	world, err := session.New(opts.Level, opts.Skin, logger)
	if err != nil {
		return nil, err
	}

	g := &Game{
		debug:  opts.Debug,
		logger: logger,
		world:  world,
	}

	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", zap.Error(err))
	} else {
		g.clipboard = true
	}

	if opts.Watch {
		w, err := prefabs.WatchPrefabDirs()
		if err != nil {
			logger.Warn("prefab watch disabled", zap.Error(err))
		}
		g.watcher = w
	}

	g.scheduler = NewScheduler(
		&ReloadSystem{},
		&InputSystem{},
		&SimulationSystem{},
		NewCueSystem(),
	)
	return g, nil
}

func (g *Game) Update() error {
	g.frames++
	g.scheduler.Update(g)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawWorld(screen, g)
	drawHUD(screen, g)
	if g.ui != nil {
		g.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() error {
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}

// setStatus shows msg in the HUD for a couple of seconds of game time.
func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusUntil = g.world.Clock() + statusTTL
}

func (g *Game) dt() float64 {
	return 1.0 / float64(ebiten.TPS())
}
