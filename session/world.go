// Package session holds the renderer-independent game: the loaded level,
// its NPCs and the avatar driver. The ebiten and terminal hosts both drive it.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/levels"
	"github.com/milk9111/tilewalk/movement"
	"github.com/milk9111/tilewalk/npc"
	"github.com/milk9111/tilewalk/pathing"
	"github.com/milk9111/tilewalk/prefabs"
	"go.uber.org/zap"
)

// World is the renderer-independent game state: the current scene, the
// avatar's driver and the events the hosts react to.
type World struct {
	logger  *zap.Logger
	catalog *catalog

	levelNames []string
	levelIndex int
	scene      *scene
	driver     *movement.Driver
	skin       string
	clock      time.Duration

	// rejections counts failed destination requests; hosts play a cue when
	// it changes.
	rejections int
	// talkTo is set when the avatar arrives next to a targeted NPC.
	talkTo *grid.NPC
	// lastStop is the most recent reason a path ended.
	lastStop movement.CancelReason
	stopped  bool
}

func New(levelName, skin string, logger *zap.Logger) (*World, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	names, err := levels.Names()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("session: no levels embedded")
	}

	idx := 0
	if levelName != "" {
		idx = -1
		want := strings.TrimSuffix(levelName, ".json")
		for i, n := range names {
			if n == want {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("session: unknown level %q (have %s)", levelName, strings.Join(names, ", "))
		}
	}

	sc, err := buildScene(names[idx], cat, logger)
	if err != nil {
		return nil, err
	}
	sk, err := cat.avatar.Skin(skin)
	if err != nil {
		return nil, err
	}

	w := &World{
		logger:     logger,
		catalog:    cat,
		levelNames: names,
		levelIndex: idx,
		scene:      sc,
		skin:       sk.Name,
	}
	follower := movement.NewFollower(sc.planner, w, cat.avatar.FollowerConfig(), logger.Named("follower"))
	follower.OnStop(w.onStop)
	controller := movement.NewController(sc.resolver, cat.avatar.ControllerConfig(), sc.tileMap.Spawn(), sk)
	w.driver = movement.NewDriver(follower, controller, logger.Named("driver"))

	logger.Info("level loaded", zap.String("level", sc.tileMap.Name()), zap.String("skin", sk.Name))
	return w, nil
}

// ListNPCs makes the world the follower's roster, so a level change swaps
// the NPC source along with the map.
func (w *World) ListNPCs() []grid.NPC {
	if w.scene == nil || w.scene.roster == nil {
		return nil
	}
	return w.scene.roster.ListNPCs()
}

func (w *World) onStop(reason movement.CancelReason, target *grid.NPC) {
	w.lastStop = reason
	w.stopped = true
	if reason == movement.CancelArrived && target != nil {
		t := *target
		w.talkTo = &t
	}
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64, keys cp.Vector) movement.Result {
	w.clock += time.Duration(dt * float64(time.Second))
	w.scene.roster.Update(dt)
	return w.driver.Tick(dt, w.clock, keys)
}

// ClickAt treats p as a destination request: clicking an NPC approaches it,
// anything else walks there.
func (w *World) ClickAt(p grid.Position) error {
	var err error
	if n, ok := w.scene.roster.NPCAt(p); ok {
		err = w.driver.Approach(n)
	} else {
		err = w.driver.GoTo(p)
	}
	switch {
	case err == nil:
	case isRejection(err):
		w.rejections++
		w.logger.Debug("click rejected", zap.Stringer("at", p), zap.Error(err))
	default:
		w.logger.Warn("click failed", zap.Stringer("at", p), zap.Error(err))
	}
	return err
}

// TakeDialogue returns and clears the NPC the avatar just arrived at.
func (w *World) TakeDialogue() (grid.NPC, bool) {
	if w.talkTo == nil {
		return grid.NPC{}, false
	}
	n := *w.talkTo
	w.talkTo = nil
	return n, true
}

// TakeStop returns and clears the last stop reason.
func (w *World) TakeStop() (movement.CancelReason, bool) {
	if !w.stopped {
		return 0, false
	}
	w.stopped = false
	return w.lastStop, true
}

func (w *World) LevelName() string {
	return w.scene.tileMap.Name()
}

// SwitchLevel moves delta levels along the embedded list, wrapping.
func (w *World) SwitchLevel(delta int) error {
	n := len(w.levelNames)
	idx := ((w.levelIndex+delta)%n + n) % n
	sc, err := buildScene(w.levelNames[idx], w.catalog, w.logger)
	if err != nil {
		return err
	}
	w.levelIndex = idx
	w.scene = sc
	w.talkTo = nil
	w.driver.ChangeMap(sc.resolver, sc.planner, sc.tileMap.Spawn())
	return nil
}

// Reload re-reads the prefabs after an edit on disk. Anything that changes
// collision rebuilds the scene in place, which drops the in-flight path.
func (w *World) Reload(change prefabs.Change) error {
	if change == prefabs.ChangeScript {
		return w.scene.roster.Reload()
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	sk, err := cat.avatar.Skin(w.skin)
	if err != nil {
		if sk, err = cat.avatar.Skin(""); err != nil {
			return err
		}
	}
	sc, err := buildScene(w.levelNames[w.levelIndex], cat, w.logger)
	if err != nil {
		return err
	}

	w.catalog = cat
	w.scene = sc
	w.skin = sk.Name
	pos := w.driver.Controller().Position()
	w.driver.Controller().SetConfig(cat.avatar.ControllerConfig())
	w.driver.Controller().SetSkin(sk)
	w.driver.ChangeMap(sc.resolver, sc.planner, pos)
	w.logger.Info("prefabs reloaded", zap.Int("change", int(change)))
	return nil
}

// CycleSkin switches to the next avatar skin.
func (w *World) CycleSkin() {
	names := w.catalog.avatar.SkinNames()
	if len(names) == 0 {
		return
	}
	next := names[0]
	for i, n := range names {
		if n == w.skin {
			next = names[(i+1)%len(names)]
			break
		}
	}
	sk, err := w.catalog.avatar.Skin(next)
	if err != nil {
		w.logger.Warn("skin switch failed", zap.String("skin", next), zap.Error(err))
		return
	}
	w.skin = sk.Name
	w.driver.Controller().SetSkin(sk)
}

// PathText renders the remaining path for the clipboard.
func (w *World) PathText() string {
	f := w.driver.Follower()
	var b strings.Builder
	fmt.Fprintf(&b, "%s from %s", w.LevelName(), w.driver.Controller().Position())
	if !f.Following() {
		b.WriteString(": idle")
		return b.String()
	}
	if t, ok := f.Target(); ok {
		fmt.Fprintf(&b, " approaching %s", t.ID)
	}
	for _, wp := range f.Remaining() {
		b.WriteString(" -> ")
		b.WriteString(wp.String())
	}
	return b.String()
}

// isRejection reports whether err is a planner refusal rather than a bug.
func isRejection(err error) bool {
	return errors.Is(err, pathing.ErrUnreachable)
}

func (w *World) Driver() *movement.Driver { return w.driver }
func (w *World) Map() *levels.TileMap     { return w.scene.tileMap }
func (w *World) Roster() *npc.Roster      { return w.scene.roster }
func (w *World) Tiles() *prefabs.TileSetSpec {
	return w.catalog.tiles
}
func (w *World) Clock() time.Duration { return w.clock }
func (w *World) Rejections() int      { return w.rejections }
func (w *World) Skin() string         { return w.skin }

// SkinSpec returns the prefab entry of the current skin.
func (w *World) SkinSpec() (prefabs.SkinSpec, bool) {
	for _, s := range w.catalog.avatar.Skins {
		if s.Name == w.skin {
			return s, true
		}
	}
	return prefabs.SkinSpec{}, false
}

// NPCKind returns the archetype of a live NPC.
func (w *World) NPCKind(id string) (prefabs.NPCKindSpec, bool) {
	k, err := w.catalog.npcs.Kind(w.scene.roster.Kind(id))
	if err != nil {
		return prefabs.NPCKindSpec{}, false
	}
	return k, true
}

// Interrupt drops the avatar's path because a host opened something over
// the map.
func (w *World) Interrupt(reason movement.CancelReason) {
	w.driver.Interrupt(reason)
}
