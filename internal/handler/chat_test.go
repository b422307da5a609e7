package handler

import (
	"context"
	"testing"

	wire "github.com/wrengo/server/internal/net"
)

func TestChatFansOutToInWorldSessions(t *testing.T) {
	env := newTestEnv(t)
	_, sessA := env.login(t, "borin")
	env.enterWorld(t, sessA, "Borin", posAt(3, 3))

	env.accounts.Create(context.Background(), "thane", "secret")
	env.dispatch(clientAddr(4001), wire.OpConnect, "thane", "secret")
	_, sessB, err := env.state.SessionByAccount(2)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	env.enterWorld(t, sessB, "Thane", posAt(5, 5))
	env.send.sent = nil

	// The client-supplied sender name is ignored; the session's character
	// name is authoritative.
	env.dispatch(sessA.Addr, wire.OpSendChatMessage, "1", sessA.Token, "hello there", "Impostor")

	msgs := env.send.byOp(wire.OpPropagateChatMessage)
	if len(msgs) != 2 {
		t.Fatalf("chat reached %d sessions, want 2 (sender included)", len(msgs))
	}
	for _, m := range msgs {
		if m.args[0] != "Borin" {
			t.Fatalf("sender name = %q, want the session's character name", m.args[0])
		}
		if m.args[1] != "hello there" {
			t.Fatalf("message = %q", m.args[1])
		}
	}
}

func TestChatIgnoredFromLobby(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login(t, "borin")
	env.send.sent = nil

	env.dispatch(sess.Addr, wire.OpSendChatMessage, "1", sess.Token, "hello", "Borin")

	if len(env.send.sent) != 0 {
		t.Fatalf("lobby chat produced packets: %v", env.send.sent)
	}
}

func TestChatDropsEmptyMessage(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.login(t, "borin")
	env.enterWorld(t, sess, "Borin", posAt(3, 3))
	env.send.sent = nil

	env.dispatch(sess.Addr, wire.OpSendChatMessage, "1", sess.Token, "   ", "Borin")

	if len(env.send.sent) != 0 {
		t.Fatalf("blank chat produced packets: %v", env.send.sent)
	}
}
