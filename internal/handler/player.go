package handler

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/core/ecs"
	"github.com/wrengo/server/internal/geom"
	"github.com/wrengo/server/internal/persist"
	"github.com/wrengo/server/internal/scripting"
	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

// autoAttackName identifies the one ability handled natively; everything
// else goes through the scripting engine.
const autoAttackName = "Auto Attack"

// posEpsilon bounds how far the client's reported position may drift from
// the simulated one before a correction is issued. Float formatting noise
// sits well below this.
const posEpsilon = 0.001

func handleHeartbeat(_ wire.Datagram, _ *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	sess.LastHeartbeat = deps.World.Now()
}

// handlePlayerUpdate reconciles one client movement frame. The client
// reports where it thinks it is plus its raw input; the server checks the
// position against its own integration, corrects on mismatch, and feeds the
// input through the same movement rules NPCs use.
func handlePlayerUpdate(d wire.Datagram, obj *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	if !sess.InWorld() {
		return
	}

	updateID := int32Arg(d.Args[2])
	if updateID != sess.UpdateCounter {
		deps.Log.Debug("update counter out of step",
			zap.Int32("account", sess.AccountID),
			zap.Int32("got", updateID),
			zap.Int32("want", sess.UpdateCounter),
		)
	}

	clientPos := geom.Vec3{
		X: float64Arg(d.Args[4]),
		Y: float64Arg(d.Args[5]),
		Z: float64Arg(d.Args[6]),
	}
	// Correction is decided against the pre-input position, so the client
	// replays from the same point the server integrates from.
	if clientPos.Sub(obj.LocalPosition).Length() > posEpsilon {
		deps.Send.SendTo(d.Addr, wire.OpPlayerCorrection,
			intArg(sess.UpdateCounter),
			floatArg(obj.LocalPosition.X),
			floatArg(obj.LocalPosition.Y),
			floatArg(obj.LocalPosition.Z),
		)
	}

	sess.IsRightClickHeld = d.Args[7] == "1"
	sess.MouseDirection = geom.Vec3{
		X: float64Arg(d.Args[8]),
		Y: float64Arg(d.Args[9]),
		Z: float64Arg(d.Args[10]),
	}

	if sess.IsRightClickHeld && !obj.IsMoving {
		dir := geom.NearestDirection(sess.MouseDirection)
		deps.World.TryStartMove(obj, dir)
	}

	sess.UpdateCounter++
}

func handleSetTarget(d wire.Datagram, _ *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	targetID := ecs.EntityID(uint64Arg(d.Args[2]))
	target, err := deps.World.Get(targetID)
	if err != nil {
		deps.Log.Debug("set target on unknown entity, ignoring",
			zap.Int32("account", sess.AccountID),
			zap.Uint64("target", uint64(targetID)),
		)
		return
	}

	// Retargeting onto scenery while auto attack is on forces the toggle
	// off; the client learns via the toggle echo.
	if target.IsStatic && sess.AutoAttackOn {
		sess.AutoAttackOn = false
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, invalidAttackTarget, messageTypeError)
		deps.Send.SendTo(d.Addr, wire.OpActivateAbilitySuccess, intArg(autoAttackID(deps)))
	}
	sess.TargetID = targetID
}

func handleUnsetTarget(d wire.Datagram, _ *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	sess.TargetID = 0
	if sess.AutoAttackOn {
		sess.AutoAttackOn = false
		deps.Send.SendTo(d.Addr, wire.OpActivateAbilitySuccess, intArg(autoAttackID(deps)))
	}
}

func handleActivateAbility(d wire.Datagram, obj *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	if !sess.InWorld() {
		return
	}
	abilityID := int32Arg(d.Args[2])
	ability := findAbility(deps.Abilities, abilityID)
	if ability == nil {
		deps.Log.Warn("activate unknown ability, ignoring",
			zap.Int32("account", sess.AccountID),
			zap.Int32("ability", abilityID),
		)
		return
	}

	if ability.Name == autoAttackName {
		activateAutoAttack(d, sess, deps, ability)
		return
	}
	activateScripted(d, obj, sess, deps, ability)
}

// activateAutoAttack flips the melee toggle. Turning it on requires a live,
// attackable target; turning it off always succeeds.
func activateAutoAttack(d wire.Datagram, sess *component.PlayerSession, deps *Deps, ability *persist.AbilityRow) {
	if sess.AutoAttackOn {
		sess.AutoAttackOn = false
		deps.Send.SendTo(d.Addr, wire.OpActivateAbilitySuccess, intArg(ability.ID))
		return
	}
	if sess.TargetID == 0 {
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, noAttackTarget, messageTypeError)
		return
	}
	target, err := deps.World.Get(sess.TargetID)
	if err != nil || target.IsStatic || target.StatsID == ecs.NoComp {
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, invalidAttackTarget, messageTypeError)
		return
	}
	sess.AutoAttackOn = true
	sess.SwingTimer = 0
	deps.Send.SendTo(d.Addr, wire.OpActivateAbilitySuccess, intArg(ability.ID))
}

func activateScripted(d wire.Datagram, obj *world.GameObject, sess *component.PlayerSession, deps *Deps, ability *persist.AbilityRow) {
	stats, err := deps.World.StatsOf(obj)
	if err != nil {
		deps.Log.Error("caster has no stats", zap.Int32("account", sess.AccountID), zap.Error(err))
		return
	}

	var target *world.GameObject
	var targetStats *component.Stats
	if ability.Targeted && sess.TargetID != 0 {
		if t, err := deps.World.Get(sess.TargetID); err == nil && !t.IsStatic && t.StatsID != ecs.NoComp {
			if ts, err := deps.World.StatsOf(t); err == nil {
				target, targetStats = t, ts
			}
		}
	}

	res := scripting.AbilityResult{OK: true}
	if deps.Scripts != nil {
		res = deps.Scripts.ActivateAbility(scriptingContext(ability.Name, stats, targetStats))
	}
	if !res.OK {
		deps.Send.SendTo(d.Addr, wire.OpServerMessage, res.Message, messageTypeError)
		return
	}

	stats.Mana += res.ManaDelta
	if stats.Mana < 0 {
		stats.Mana = 0
	}
	if stats.Mana > stats.MaxMana {
		stats.Mana = stats.MaxMana
	}
	if res.HealthDelta != 0 {
		component.ApplyDamage(stats, -res.HealthDelta)
	}
	if res.TargetDamage > 0 && targetStats != nil {
		component.ApplyDamage(targetStats, res.TargetDamage)
		deps.Log.Debug("scripted damage",
			zap.String("ability", ability.Name),
			zap.Uint64("target", uint64(target.ID)),
			zap.Int32("damage", res.TargetDamage),
		)
	}
	deps.Send.SendTo(d.Addr, wire.OpActivateAbilitySuccess, intArg(ability.ID))
}

func scriptingContext(name string, caster, target *component.Stats) scripting.AbilityContext {
	ctx := scripting.AbilityContext{
		AbilityName:     name,
		CasterName:      caster.Name,
		CasterHealth:    caster.Health,
		CasterMaxHealth: caster.MaxHealth,
		CasterMana:      caster.Mana,
		CasterMaxMana:   caster.MaxMana,
	}
	if target != nil {
		ctx.HasTarget = true
		ctx.TargetHealth = target.Health
	}
	return ctx
}

func findAbility(abilities []persist.AbilityRow, id int32) *persist.AbilityRow {
	for i := range abilities {
		if abilities[i].ID == id {
			return &abilities[i]
		}
	}
	return nil
}

// autoAttackID resolves the Auto Attack ability id for toggle echoes.
func autoAttackID(deps *Deps) int32 {
	for _, a := range deps.Abilities {
		if a.Name == autoAttackName {
			return a.ID
		}
	}
	return 1
}

func int32Arg(s string) int32 {
	v, _ := strconv.ParseInt(s, 10, 32)
	return int32(v)
}

func uint64Arg(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

func float64Arg(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
