package main

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/tilewalk/assets"
	"github.com/milk9111/tilewalk/movement"
	"github.com/milk9111/tilewalk/prefabs"
	"go.uber.org/zap"
)

// System is one stage of a frame. Systems run in registration order.
type System interface {
	Update(g *Game)
}

type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(g *Game) {
	for _, system := range s.systems {
		system.Update(g)
	}
}

// ReloadSystem applies prefab edits reported by the watcher.
type ReloadSystem struct{}

func (s *ReloadSystem) Update(g *Game) {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			change := prefabs.Classify(path)
			if change == prefabs.ChangeOther {
				continue
			}
			if err := g.world.Reload(change); err != nil {
				g.logger.Warn("prefab reload failed", zap.String("path", path), zap.Error(err))
				g.setStatus("reload failed: " + err.Error())
				continue
			}
			g.setStatus("reloaded " + path)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Warn("prefab watch error", zap.Error(err))
		default:
			return
		}
	}
}

// SimulationSystem advances the world unless an overlay holds the map.
type SimulationSystem struct{}

func (s *SimulationSystem) Update(g *Game) {
	if g.overlay != overlayNone {
		return
	}
	g.world.Step(g.dt(), g.input.Keys)

	if reason, ok := g.world.TakeStop(); ok && reason != movement.CancelArrived {
		g.logger.Debug("path stopped", zap.Stringer("reason", reason))
	}
	if n, ok := g.world.TakeDialogue(); ok {
		g.openDialogue(n)
	}
}

// CueSystem plays a short tone whenever a destination request is refused.
type CueSystem struct {
	seen   int
	player *audio.Player
}

func NewCueSystem() *CueSystem {
	return &CueSystem{player: assets.TonePlayer(196, 120*time.Millisecond, 0.35)}
}

func (s *CueSystem) Update(g *Game) {
	n := g.world.Rejections()
	if n == s.seen {
		return
	}
	s.seen = n
	g.setStatus(fmt.Sprintf("can't walk there (%d)", n))
	if s.player == nil {
		return
	}
	_ = s.player.Rewind()
	s.player.Play()
}
