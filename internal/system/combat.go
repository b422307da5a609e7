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

// hitThreshold is the d100 roll a swing must beat to connect.
const hitThreshold = 50

// Combat advances every melee swing timer and resolves swings that come due
// while attacker and target stand on adjacent tiles. Players with auto
// attack on and NPCs with a combat target share the same resolution path.
type Combat struct {
	World *world.State
	Log   *zap.Logger
}

func NewCombat(w *world.State, log *zap.Logger) *Combat {
	return &Combat{World: w, Log: log}
}

func (s *Combat) Phase() core.Phase { return core.PhaseCombat }

func (s *Combat) Update(dt time.Duration) {
	seconds := dt.Seconds()

	s.World.Sessions.Each(func(_ ecs.CompID, owner ecs.EntityID, sess *component.PlayerSession) {
		if !sess.AutoAttackOn || sess.TargetID == 0 {
			return
		}
		attacker, err := s.World.Get(owner)
		if err != nil {
			return
		}
		sess.SwingTimer += seconds
		if sess.SwingTimer < s.World.Params.WeaponSpeed {
			return
		}
		if s.trySwing(attacker, sess.TargetID) {
			sess.SwingTimer = 0
		}
	})

	s.World.AIs.Each(func(_ ecs.CompID, owner ecs.EntityID, ai *component.AI) {
		if ai.TargetID == 0 {
			return
		}
		attacker, err := s.World.Get(owner)
		if err != nil {
			return
		}
		ai.SwingTimer += seconds
		if ai.SwingTimer < s.World.Params.WeaponSpeed {
			return
		}
		if s.trySwing(attacker, ai.TargetID) {
			ai.SwingTimer = 0
		}
	})
}

// trySwing resolves one swing attempt. It reports whether a swing happened
// (hit or miss) so the caller can reset the timer; an out-of-range target
// leaves the timer primed.
func (s *Combat) trySwing(attacker *world.GameObject, targetID ecs.EntityID) bool {
	target, err := s.World.Get(targetID)
	if err != nil {
		return false
	}
	if !geom.AdjacentOrDiagonal(attacker.LocalPosition, target.LocalPosition, s.World.Params.TileSize) {
		return false
	}
	targetStats, err := s.World.StatsOf(target)
	if err != nil || !targetStats.Alive {
		return false
	}

	if s.World.Rand.Intn(100) <= hitThreshold {
		event.Emit(s.World.Bus, event.AttackMiss{AttackerID: attacker.ID, TargetID: target.ID})
		return true
	}

	p := s.World.Params
	dmg := p.DamageMin + s.World.Rand.Int31n(p.DamageMax-p.DamageMin+1)
	component.ApplyDamage(targetStats, dmg)
	event.Emit(s.World.Bus, event.AttackHit{
		AttackerID: attacker.ID,
		TargetID:   target.ID,
		Damage:     dmg,
	})

	// NPCs retaliate against whoever hit them first.
	if target.Kind == world.KindNpc && target.AIID != ecs.NoComp {
		if ai, err := s.World.AIs.Get(target.AIID); err == nil && ai.TargetID == 0 {
			ai.TargetID = attacker.ID
		}
	}

	// Player deaths are flagged immediately; NPC deaths wait for the next
	// AI pass so the loot announcement and teardown happen in one place.
	if target.Kind == world.KindPlayer && targetStats.Health == 0 {
		targetStats.Alive = false
		s.Log.Info("player died",
			zap.Uint64("entity", uint64(target.ID)),
			zap.String("name", targetStats.Name),
		)
	}
	return true
}
