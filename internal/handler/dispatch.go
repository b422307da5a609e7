package handler

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

// HandlerFunc processes one decoded request. For authenticated opcodes the
// dispatcher has already resolved the session and validated its token; obj
// and sess are nil for Connect and CreateAccount.
type HandlerFunc func(d wire.Datagram, obj *world.GameObject, sess *component.PlayerSession, deps *Deps)

type entry struct {
	fn        HandlerFunc
	minArgs   int
	needsAuth bool
}

// Dispatcher maps opcodes to handlers. Unknown opcodes, short argument
// lists, and token mismatches all drop the packet — transport-level
// failures are never surfaced to the sender.
type Dispatcher struct {
	handlers map[wire.Opcode]*entry
	deps     *Deps
}

func NewDispatcher(deps *Deps) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[wire.Opcode]*entry, 16),
		deps:     deps,
	}
	d.register(wire.OpConnect, 2, false, handleConnect)
	d.register(wire.OpCreateAccount, 2, false, handleCreateAccount)
	d.register(wire.OpDisconnect, 2, true, handleDisconnect)
	d.register(wire.OpCreateCharacter, 3, true, handleCreateCharacter)
	d.register(wire.OpDeleteCharacter, 3, true, handleDeleteCharacter)
	d.register(wire.OpEnterWorld, 3, true, handleEnterWorld)
	d.register(wire.OpHeartbeat, 2, true, handleHeartbeat)
	d.register(wire.OpPlayerUpdate, 11, true, handlePlayerUpdate)
	d.register(wire.OpActivateAbility, 3, true, handleActivateAbility)
	d.register(wire.OpSendChatMessage, 4, true, handleSendChatMessage)
	d.register(wire.OpSetTarget, 3, true, handleSetTarget)
	d.register(wire.OpUnsetTarget, 2, true, handleUnsetTarget)
	return d
}

func (d *Dispatcher) register(op wire.Opcode, minArgs int, needsAuth bool, fn HandlerFunc) {
	d.handlers[op] = &entry{fn: fn, minArgs: minArgs, needsAuth: needsAuth}
}

// Dispatch runs on the simulation goroutine, so handlers mutate world state
// without locks.
func (d *Dispatcher) Dispatch(dg wire.Datagram) {
	log := d.deps.Log
	e, ok := d.handlers[dg.Op]
	if !ok {
		log.Debug("unknown opcode, ignoring packet", zap.String("op", string(dg.Op)))
		return
	}
	if len(dg.Args) < e.minArgs {
		log.Warn("malformed packet, ignoring",
			zap.String("op", string(dg.Op)),
			zap.Int("args", len(dg.Args)),
			zap.Int("want", e.minArgs),
		)
		return
	}

	var obj *world.GameObject
	var sess *component.PlayerSession
	if e.needsAuth {
		accountID, err := strconv.ParseInt(dg.Args[0], 10, 32)
		if err != nil {
			log.Warn("bad account id, ignoring packet", zap.String("op", string(dg.Op)))
			return
		}
		obj, sess, err = d.deps.World.SessionByAccount(int32(accountID))
		if err != nil {
			log.Warn("packet for unknown session, ignoring",
				zap.String("op", string(dg.Op)),
				zap.Int64("account", accountID),
			)
			return
		}
		// Session token is a hard precondition: a stale token must not
		// mutate anything.
		if dg.Args[1] != sess.Token {
			log.Warn("session token mismatch, ignoring packet",
				zap.String("op", string(dg.Op)),
				zap.Int64("account", accountID),
			)
			return
		}
		sess.Addr = dg.Addr
	}

	e.fn(dg, obj, sess, d.deps)
}
