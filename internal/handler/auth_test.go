package handler

import (
	"testing"

	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

func TestConnectSuccess(t *testing.T) {
	env := newTestEnv(t)
	obj, sess := env.login(t, "borin")

	replies := env.send.byOp(wire.OpLoginSuccessful)
	if len(replies) != 1 {
		t.Fatalf("got %d LoginSuccessful, want 1 (all sends: %v)", len(replies), env.send.sent)
	}
	args := replies[0].args
	if len(args) != 3 {
		t.Fatalf("LoginSuccessful args = %v, want accountId|token|characterList", args)
	}
	if args[0] != "1" {
		t.Fatalf("account id arg = %q, want 1", args[0])
	}
	if args[1] != sess.Token || sess.Token == "" {
		t.Fatalf("token arg %q does not match session token %q", args[1], sess.Token)
	}
	if obj.Kind != world.KindPlayer {
		t.Fatalf("login created a %v entity", obj.Kind)
	}
	if sess.InWorld() {
		t.Fatal("fresh login is already in world")
	}
}

func TestConnectWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "borin")
	before := env.state.Len()

	env.dispatch(clientAddr(4001), wire.OpConnect, "borin", "wrong")

	fails := env.send.byOp(wire.OpLoginUnsuccessful)
	if len(fails) != 1 || fails[0].args[0] != "Incorrect Password." {
		t.Fatalf("got %v, want one Incorrect Password reply", fails)
	}
	if env.state.Len() != before {
		t.Fatal("failed login changed the entity count")
	}
}

func TestConnectUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	env.dispatch(clientAddr(4000), wire.OpConnect, "nobody", "secret")

	fails := env.send.byOp(wire.OpLoginUnsuccessful)
	if len(fails) != 1 || fails[0].args[0] != "Incorrect Username." {
		t.Fatalf("got %v, want one Incorrect Username reply", fails)
	}
	if env.state.Len() != 0 {
		t.Fatal("failed login created an entity")
	}
}

func TestConnectNormalizesAccountName(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "borin")
	env.send.sent = nil

	// Same account, different case: resolves to the same row and replaces
	// the lingering session rather than duplicating it.
	env.dispatch(clientAddr(4002), wire.OpConnect, "  BORIN ", "secret")

	if got := env.send.byOp(wire.OpLoginSuccessful); len(got) != 1 {
		t.Fatalf("case-variant login got %v", env.send.sent)
	}
	if env.state.Len() != 1 {
		t.Fatalf("entity count = %d after relogin, want 1", env.state.Len())
	}
}

func TestConnectReplacesLingeringSession(t *testing.T) {
	env := newTestEnv(t)
	_, first := env.login(t, "borin")
	firstToken := first.Token

	env.dispatch(clientAddr(4001), wire.OpConnect, "borin", "secret")

	if env.state.Len() != 1 {
		t.Fatalf("entity count = %d after relogin, want 1", env.state.Len())
	}
	_, sess, err := env.state.SessionByAccount(1)
	if err != nil {
		t.Fatalf("relogin lost the session: %v", err)
	}
	if sess.Token == firstToken {
		t.Fatal("relogin kept the old token")
	}
}

func TestConnectReplaceSavesLingeringPosition(t *testing.T) {
	env := newTestEnv(t)
	_, first := env.login(t, "borin")
	env.enterWorld(t, first, "Borin", posAt(3, 3))
	charID := first.CharacterID

	// Reconnect after a crash: the in-world character the old session left
	// behind persists its position, same as an orderly disconnect.
	env.dispatch(clientAddr(4001), wire.OpConnect, "borin", "secret")

	if len(env.characters.saved) != 1 {
		t.Fatalf("positions saved %d times, want 1", len(env.characters.saved))
	}
	got := env.characters.saved[0]
	want := posAt(3, 3)
	if got.charID != charID || got.x != want.X || got.z != want.Z {
		t.Fatalf("saved %+v, want character %d at (%v, _, %v)", got, charID, want.X, want.Z)
	}
}

func TestCreateAccount(t *testing.T) {
	env := newTestEnv(t)
	env.dispatch(clientAddr(4000), wire.OpCreateAccount, "thane", "secret")

	if got := env.send.byOp(wire.OpCreateAccountSuccessful); len(got) != 1 {
		t.Fatalf("got %v, want CreateAccountSuccessful", env.send.sent)
	}
	if _, ok := env.accounts.rows["thane"]; !ok {
		t.Fatal("account row not created")
	}

	env.send.sent = nil
	env.dispatch(clientAddr(4000), wire.OpCreateAccount, "thane", "secret")
	fails := env.send.byOp(wire.OpCreateAccountUnsuccessful)
	if len(fails) != 1 || fails[0].args[0] != "Account already exists." {
		t.Fatalf("duplicate create got %v", env.send.sent)
	}
}

func TestDisconnectTearsDownAndSaves(t *testing.T) {
	env := newTestEnv(t)
	obj, sess := env.login(t, "borin")
	env.enterWorld(t, sess, "Borin", posAt(3, 3))
	charID := sess.CharacterID

	env.dispatch(sess.Addr, wire.OpDisconnect, "1", sess.Token)

	if env.state.Alive(obj.ID) {
		t.Fatal("disconnect left the entity alive")
	}
	if len(env.characters.saved) != 1 {
		t.Fatalf("positions saved %d times, want 1", len(env.characters.saved))
	}
	if env.characters.saved[0].charID != charID {
		t.Fatalf("saved character %d, want %d", env.characters.saved[0].charID, charID)
	}
	if env.state.Map.IsTileOccupied(obj.LocalPosition) {
		t.Fatal("disconnected player still claims its tile")
	}
}
