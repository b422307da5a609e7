package handler

import (
	"context"
	"math/rand"
	"net"
	"sort"
	"testing"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/component"
	"github.com/wrengo/server/internal/config"
	"github.com/wrengo/server/internal/geom"
	"github.com/wrengo/server/internal/persist"
	"github.com/wrengo/server/internal/scripting"
	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

type fakeAccounts struct {
	rows   map[string]*persist.AccountRow
	nextID int32
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{rows: map[string]*persist.AccountRow{}, nextID: 1}
}

func (f *fakeAccounts) GetByName(_ context.Context, name string) (*persist.AccountRow, error) {
	row, ok := f.rows[name]
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (f *fakeAccounts) Create(_ context.Context, name, rawPassword string) (*persist.AccountRow, error) {
	row := &persist.AccountRow{ID: f.nextID, Name: name, PasswordHash: "hash:" + rawPassword}
	f.nextID++
	f.rows[name] = row
	return row, nil
}

func (f *fakeAccounts) ValidatePassword(hash, rawPassword string) bool {
	return hash == "hash:"+rawPassword
}

type savedPos struct {
	charID  int32
	x, y, z float64
}

type fakeCharacters struct {
	rows      map[string]*persist.CharacterRow
	skills    map[int32][]persist.SkillRow
	abilities map[int32][]persist.AbilityRow
	saved     []savedPos
	nextID    int32
}

func newFakeCharacters() *fakeCharacters {
	return &fakeCharacters{
		rows:      map[string]*persist.CharacterRow{},
		skills:    map[int32][]persist.SkillRow{},
		abilities: map[int32][]persist.AbilityRow{},
		nextID:    1,
	}
}

func (f *fakeCharacters) Exists(_ context.Context, name string) (bool, error) {
	_, ok := f.rows[name]
	return ok, nil
}

func (f *fakeCharacters) Create(_ context.Context, accountID int32, name string) error {
	f.rows[name] = &persist.CharacterRow{ID: f.nextID, AccountID: accountID, Name: name}
	f.nextID++
	return nil
}

func (f *fakeCharacters) Delete(_ context.Context, name string) error {
	delete(f.rows, name)
	return nil
}

func (f *fakeCharacters) GetByName(_ context.Context, name string) (*persist.CharacterRow, error) {
	row, ok := f.rows[name]
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (f *fakeCharacters) SavePosition(_ context.Context, charID int32, x, y, z float64) error {
	f.saved = append(f.saved, savedPos{charID, x, y, z})
	return nil
}

func (f *fakeCharacters) ListNames(_ context.Context, accountID int32) ([]string, error) {
	var rows []*persist.CharacterRow
	for _, row := range f.rows {
		if row.AccountID == accountID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, nil
}

func (f *fakeCharacters) ListSkills(_ context.Context, charID int32) ([]persist.SkillRow, error) {
	return f.skills[charID], nil
}

func (f *fakeCharacters) ListAbilities(_ context.Context, charID int32) ([]persist.AbilityRow, error) {
	return f.abilities[charID], nil
}

type sentPacket struct {
	addr *net.UDPAddr
	op   wire.Opcode
	args []string
}

type recorder struct {
	sent []sentPacket
}

func (r *recorder) SendTo(addr *net.UDPAddr, op wire.Opcode, args ...string) {
	r.sent = append(r.sent, sentPacket{addr: addr, op: op, args: args})
}

func (r *recorder) byOp(op wire.Opcode) []sentPacket {
	var out []sentPacket
	for _, p := range r.sent {
		if p.op == op {
			out = append(out, p)
		}
	}
	return out
}

func (r *recorder) last() *sentPacket {
	if len(r.sent) == 0 {
		return nil
	}
	return &r.sent[len(r.sent)-1]
}

type testEnv struct {
	deps       *Deps
	dispatcher *Dispatcher
	accounts   *fakeAccounts
	characters *fakeCharacters
	send       *recorder
	state      *world.State
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	params := world.DefaultParams()
	params.MapWidth = 10
	params.MapHeight = 10
	params.MaxEntities = 16
	state := world.NewState(params, rand.New(rand.NewSource(1)), nil)

	scripts, err := scripting.NewEngine("../../scripts", zap.NewNop())
	if err != nil {
		t.Fatalf("load scripts: %v", err)
	}
	t.Cleanup(scripts.Close)

	env := &testEnv{
		accounts:   newFakeAccounts(),
		characters: newFakeCharacters(),
		send:       &recorder{},
		state:      state,
	}
	env.deps = &Deps{
		Accounts:   env.accounts,
		Characters: env.characters,
		Send:       env.send,
		World:      state,
		Cfg:        config.Defaults(),
		Log:        zap.NewNop(),
		Scripts:    scripts,
		Abilities: []persist.AbilityRow{
			{ID: 1, Name: "Auto Attack", SpriteID: 1, Toggled: true, Targeted: true},
			{ID: 2, Name: "Fireball", SpriteID: 2, Targeted: true},
			{ID: 3, Name: "Healing", SpriteID: 3},
		},
	}
	env.dispatcher = NewDispatcher(env.deps)
	return env
}

// posAt centers a position on the given tile of the test map.
func posAt(col, row int) geom.Vec3 {
	return geom.Vec3{X: float64(col)*30 + 15, Z: float64(row)*30 + 15}
}

func clientAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}

func (env *testEnv) dispatch(addr *net.UDPAddr, op wire.Opcode, args ...string) {
	env.dispatcher.Dispatch(wire.Datagram{Addr: addr, Op: op, Args: args})
}

// login seeds an account and runs the Connect handler for it, returning the
// live session.
func (env *testEnv) login(t *testing.T, name string) (*world.GameObject, *component.PlayerSession) {
	t.Helper()
	if _, ok := env.accounts.rows[name]; !ok {
		if _, err := env.accounts.Create(context.Background(), name, "secret"); err != nil {
			t.Fatalf("seed account: %v", err)
		}
	}
	env.dispatch(clientAddr(4000), wire.OpConnect, name, "secret")

	obj, sess, err := env.state.SessionByAccount(env.accounts.rows[name].ID)
	if err != nil {
		t.Fatalf("login did not register a session: %v", err)
	}
	return obj, sess
}

// enterWorld seeds a character for the session's account and runs the
// EnterWorld handler.
func (env *testEnv) enterWorld(t *testing.T, sess *component.PlayerSession, charName string, pos geom.Vec3) {
	t.Helper()
	env.characters.rows[charName] = &persist.CharacterRow{
		ID:        env.characters.nextID,
		AccountID: sess.AccountID,
		Name:      charName,
		PosX:      pos.X,
		PosY:      pos.Y,
		PosZ:      pos.Z,
	}
	env.characters.nextID++
	env.dispatch(sess.Addr, wire.OpEnterWorld, intArg(sess.AccountID), sess.Token, charName)
	if !sess.InWorld() {
		t.Fatalf("EnterWorld did not bind character %q", charName)
	}
}
