package handler

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/core/ecs"
	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

// maxChatLength bounds a chat message so the reply still fits in one
// datagram alongside its header and sender name.
const maxChatLength = 256

// handleSendChatMessage fans a chat line out to every connected session. The
// sender name in the packet is ignored; the session's character name is the
// only identity the server vouches for.
func handleSendChatMessage(d wire.Datagram, _ *world.GameObject, sess *component.PlayerSession, deps *Deps) {
	if !sess.InWorld() {
		return
	}
	msg := strings.TrimSpace(d.Args[2])
	if msg == "" {
		return
	}
	if len(msg) > maxChatLength {
		msg = msg[:maxChatLength]
	}

	deps.World.Sessions.Each(func(_ ecs.CompID, _ ecs.EntityID, other *component.PlayerSession) {
		if other.Addr == nil {
			return
		}
		deps.Send.SendTo(other.Addr, wire.OpPropagateChatMessage, sess.CharacterName, msg)
	})
	deps.Log.Debug("chat message",
		zap.String("from", sess.CharacterName),
		zap.Int("length", len(msg)),
	)
}
