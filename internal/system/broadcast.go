package system

import (
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/core/ecs"
	"github.com/wrengo/server/internal/core/event"
	core "github.com/wrengo/server/internal/core/system"
	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

// Sender transmits one datagram. Implemented by net.Conn.
type Sender interface {
	SendTo(addr *net.UDPAddr, op wire.Opcode, args ...string)
}

// Broadcast is the output phase: every in-world client gets the tick's
// entity updates, then the queued events (hits, misses, deaths, removals)
// are fanned out. Nothing earlier in the tick talks to clients about world
// state, so clients only ever observe post-step snapshots.
type Broadcast struct {
	World *world.State
	Send  Sender
	Log   *zap.Logger
}

func NewBroadcast(w *world.State, send Sender, log *zap.Logger) *Broadcast {
	b := &Broadcast{World: w, Send: send, Log: log}

	event.Subscribe(w.Bus, func(ev event.EntityRemoved) {
		b.toEveryone(wire.OpDeleteGameObject, fmtID(ev.ID))
	})
	event.Subscribe(w.Bus, func(ev event.AttackHit) {
		b.toEveryone(wire.OpAttackHit,
			fmtID(ev.AttackerID), fmtID(ev.TargetID), strconv.FormatInt(int64(ev.Damage), 10))
	})
	event.Subscribe(w.Bus, func(ev event.AttackMiss) {
		b.toEveryone(wire.OpAttackMiss, fmtID(ev.AttackerID), fmtID(ev.TargetID))
	})
	event.Subscribe(w.Bus, func(ev event.NpcDeath) {
		b.toEveryone(wire.OpNpcDeath, fmtID(ev.ID), itemList(ev.ItemIDs))
	})
	return b
}

func (b *Broadcast) Phase() core.Phase { return core.PhaseOutput }

func (b *Broadcast) Update(_ time.Duration) {
	b.World.Sessions.Each(func(_ ecs.CompID, recipient ecs.EntityID, sess *component.PlayerSession) {
		if !sess.InWorld() || sess.Addr == nil {
			return
		}
		// Static objects are boot-time data the client already has; only
		// things that move or die are streamed.
		b.World.Each(func(obj *world.GameObject) {
			switch obj.Kind {
			case world.KindNpc:
				b.Send.SendTo(sess.Addr, wire.OpGameObjectUpdate,
					fmtID(obj.ID),
					fmtFloat(obj.LocalPosition.X), fmtFloat(obj.LocalPosition.Y), fmtFloat(obj.LocalPosition.Z),
					fmtFloat(obj.MovementVector.X), fmtFloat(obj.MovementVector.Y), fmtFloat(obj.MovementVector.Z),
					strconv.Itoa(int(obj.Kind)),
				)
			case world.KindPlayer:
				if obj.ID == recipient {
					return // the owner reconciles via PlayerCorrection, not snapshots
				}
				other, err := b.World.Sessions.Get(obj.PlayerID)
				if err != nil || !other.InWorld() {
					return
				}
				b.Send.SendTo(sess.Addr, wire.OpOtherPlayerUpdate,
					fmtID(obj.ID),
					fmtFloat(obj.LocalPosition.X), fmtFloat(obj.LocalPosition.Y), fmtFloat(obj.LocalPosition.Z),
					fmtFloat(obj.MovementVector.X), fmtFloat(obj.MovementVector.Y), fmtFloat(obj.MovementVector.Z),
					strconv.FormatInt(int64(other.ModelID), 10),
					strconv.FormatInt(int64(other.TextureID), 10),
					other.CharacterName,
				)
			}
		})
	})

	b.World.Bus.DispatchAll()
}

// toEveryone fans one datagram out to every in-world session.
func (b *Broadcast) toEveryone(op wire.Opcode, args ...string) {
	b.World.Sessions.Each(func(_ ecs.CompID, _ ecs.EntityID, sess *component.PlayerSession) {
		if !sess.InWorld() || sess.Addr == nil {
			return
		}
		b.Send.SendTo(sess.Addr, op, args...)
	})
}

func itemList(ids []int32) string {
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(strconv.FormatInt(int64(id), 10))
		sb.WriteByte(';')
	}
	return sb.String()
}

func fmtID(id ecs.EntityID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
