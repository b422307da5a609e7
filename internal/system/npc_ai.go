package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/core/ecs"
	"github.com/wrengo/server/internal/core/event"
	core "github.com/wrengo/server/internal/core/system"
	"github.com/wrengo/server/internal/geom"
	"github.com/wrengo/server/internal/world"
)

// NpcAI decides NPC movement each tick: dead NPCs are torn down, NPCs with a
// combat target chase until adjacent, idle NPCs occasionally wander one tile
// in a random direction.
type NpcAI struct {
	World *world.State
	Log   *zap.Logger
}

func NewNpcAI(w *world.State, log *zap.Logger) *NpcAI {
	return &NpcAI{World: w, Log: log}
}

func (s *NpcAI) Phase() core.Phase { return core.PhaseAI }

func (s *NpcAI) Update(_ time.Duration) {
	s.World.Each(func(obj *world.GameObject) {
		if obj.Kind != world.KindNpc || obj.AIID == ecs.NoComp {
			return
		}
		stats, err := s.World.StatsOf(obj)
		if err != nil {
			s.Log.Error("npc has no stats", zap.Uint64("entity", uint64(obj.ID)), zap.Error(err))
			return
		}
		if stats.Health <= 0 {
			s.killNpc(obj, stats)
			return
		}

		ai, err := s.World.AIs.Get(obj.AIID)
		if err != nil {
			s.Log.Error("npc ai component missing", zap.Uint64("entity", uint64(obj.ID)), zap.Error(err))
			return
		}

		if ai.TargetID != 0 {
			s.chase(obj, ai)
			return
		}
		s.wander(obj)
	})
}

// killNpc runs exactly once per NPC: health hits zero in a combat or ability
// pass, and the next AI pass flags the death, announces the loot, and tears
// the entity down.
func (s *NpcAI) killNpc(obj *world.GameObject, stats *component.Stats) {
	if !stats.Alive {
		return
	}
	stats.Alive = false

	var items []int32
	if obj.InventoryID != ecs.NoComp {
		if inv, err := s.World.Inventories.Get(obj.InventoryID); err == nil {
			items = inv.LiveItems()
		}
	}
	event.Emit(s.World.Bus, event.NpcDeath{ID: obj.ID, ItemIDs: items})
	if err := s.World.DeleteGameObject(obj.ID); err != nil {
		s.Log.Error("npc teardown", zap.Uint64("entity", uint64(obj.ID)), zap.Error(err))
		return
	}
	s.Log.Info("npc died", zap.Uint64("entity", uint64(obj.ID)), zap.String("name", stats.Name))
}

func (s *NpcAI) chase(obj *world.GameObject, ai *component.AI) {
	target, err := s.World.Get(ai.TargetID)
	if err != nil {
		// Teardown clears dangling targets synchronously, so this only
		// happens if the target died earlier in this same pass.
		ai.TargetID = 0
		return
	}
	if geom.AdjacentOrDiagonal(obj.LocalPosition, target.LocalPosition, s.World.Params.TileSize) {
		return // in melee range, combat pass handles the rest
	}
	if obj.IsMoving {
		return
	}
	dir := geom.ClosestDirection(obj.LocalPosition, target.LocalPosition, s.World.Params.TileSize)
	s.World.TryStartMove(obj, dir)
}

func (s *NpcAI) wander(obj *world.GameObject) {
	if obj.IsMoving {
		return
	}
	if s.World.Rand.Intn(s.World.Params.WanderOneIn) != 0 {
		return
	}
	dir := geom.Directions[s.World.Rand.Intn(len(geom.Directions))]
	s.World.TryStartMove(obj, dir)
}
