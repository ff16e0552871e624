package session

import (
	"fmt"

	"github.com/milk9111/tilewalk/grid"
	"github.com/milk9111/tilewalk/levels"
	"github.com/milk9111/tilewalk/movement"
	"github.com/milk9111/tilewalk/npc"
	"github.com/milk9111/tilewalk/pathing"
	"github.com/milk9111/tilewalk/prefabs"
	"go.uber.org/zap"
)

// catalog is every prefab spec the game reads, loaded together so a reload
// swaps them atomically.
type catalog struct {
	tiles   *prefabs.TileSetSpec
	classes map[string]grid.CollisionClass
	avatar  *prefabs.AvatarSpec
	nav     *prefabs.NavSpec
	npcs    *prefabs.NPCSetSpec
}

func loadCatalog() (*catalog, error) {
	tiles, err := prefabs.LoadTileSetSpec()
	if err != nil {
		return nil, err
	}
	classes, err := tiles.Classes()
	if err != nil {
		return nil, err
	}
	avatar, err := prefabs.LoadAvatarSpec()
	if err != nil {
		return nil, err
	}
	nav, err := prefabs.LoadNavSpec()
	if err != nil {
		return nil, err
	}
	npcs, err := prefabs.LoadNPCSetSpec()
	if err != nil {
		return nil, err
	}
	return &catalog{tiles: tiles, classes: classes, avatar: avatar, nav: nav, npcs: npcs}, nil
}

// scene is one loaded map and everything derived from it.
type scene struct {
	tileMap  *levels.TileMap
	resolver *grid.Resolver
	planner  *pathing.Planner
	roster   *npc.Roster
}

func buildScene(name string, cat *catalog, logger *zap.Logger) (*scene, error) {
	lvl, err := levels.LoadLevelFromFS(name)
	if err != nil {
		return nil, fmt.Errorf("session: scene %s: %w", name, err)
	}
	hw := cat.avatar.HalfWidth
	if hw <= 0 {
		hw = movement.DefaultHalfWidth
	}
	geometry := cat.tiles.GeometryTable()
	tm, err := levels.NewTileMap(lvl, cat.classes, geometry, hw)
	if err != nil {
		return nil, err
	}

	resolver := grid.NewResolver(tm, geometry, hw)
	planner := pathing.NewPlanner(resolver, cat.nav.PlannerConfig(), logger.Named("pathing"))

	spawns, err := npc.SpawnsFor(tm.Placements(), cat.npcs)
	if err != nil {
		return nil, err
	}
	// NPCs walk the terrain without the avatar's margin
	npcPlanner := pathing.NewPlanner(grid.NewResolver(tm, geometry, 0), cat.nav.PlannerConfig(), logger.Named("npc"))
	roster, err := npc.NewRoster(npcPlanner, spawns, logger.Named("npc"))
	if err != nil {
		return nil, err
	}

	return &scene{
		tileMap:  tm,
		resolver: resolver,
		planner:  planner,
		roster:   roster,
	}, nil
}
