package handler

import (
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/wrengo/server/internal/config"
	"github.com/wrengo/server/internal/persist"
	"github.com/wrengo/server/internal/scripting"
	"github.com/wrengo/server/internal/world"
	wire "github.com/wrengo/server/internal/net"
)

// Reply strings, preserved verbatim from the source protocol.
const (
	incorrectUsername      = "Incorrect Username."
	incorrectPassword      = "Incorrect Password."
	accountAlreadyExists   = "Account already exists."
	characterAlreadyExists = "Character already exists."
	characterNotFound      = "Character not found."
	invalidAttackTarget    = "You can't attack that!"
	noAttackTarget         = "You need a target before attacking!"
	serverFull             = "Server is full."
	serverError            = "Server error."

	messageTypeError = "ERROR"
)

// AccountStore is the account half of the repository capability. The
// concrete implementation is persist.AccountRepo; tests use in-memory
// fakes.
type AccountStore interface {
	GetByName(ctx context.Context, name string) (*persist.AccountRow, error)
	Create(ctx context.Context, name, rawPassword string) (*persist.AccountRow, error)
	ValidatePassword(hash, rawPassword string) bool
}

// CharacterStore is the character half of the repository capability.
type CharacterStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, accountID int32, name string) error
	Delete(ctx context.Context, name string) error
	GetByName(ctx context.Context, name string) (*persist.CharacterRow, error)
	SavePosition(ctx context.Context, charID int32, x, y, z float64) error
	ListNames(ctx context.Context, accountID int32) ([]string, error)
	ListSkills(ctx context.Context, charID int32) ([]persist.SkillRow, error)
	ListAbilities(ctx context.Context, charID int32) ([]persist.AbilityRow, error)
}

// Sender transmits one response datagram. Implemented by net.Conn.
type Sender interface {
	SendTo(addr *net.UDPAddr, op wire.Opcode, args ...string)
}

// Deps carries everything the packet handlers need. One instance, built at
// startup, shared by all handlers on the simulation goroutine.
type Deps struct {
	Accounts   AccountStore
	Characters CharacterStore
	Send       Sender
	World      *world.State
	Cfg        *config.Config
	Log        *zap.Logger
	Scripts    *scripting.Engine
	Abilities  []persist.AbilityRow
}
