package component

import (
	"net"
	"time"

	"github.com/wrengo/server/internal/core/ecs"
	"github.com/wrengo/server/internal/geom"
)

// PlayerSession is the server-side session for one logged-in account. It is
// created on Connect, mutated by every inbound packet for the account, and
// destroyed on Disconnect or heartbeat timeout.
type PlayerSession struct {
	AccountID int32
	Token     string
	Addr      *net.UDPAddr

	LastHeartbeat time.Time

	// Zero until EnterWorld.
	CharacterID   int32
	CharacterName string
	ModelID       int32
	TextureID     int32

	TargetID     ecs.EntityID
	AutoAttackOn bool
	SwingTimer   float64

	// Reconciliation state (movement intent is the only thing the server
	// trusts from the client).
	UpdateCounter    int32
	IsRightClickHeld bool
	MouseDirection   geom.Vec3
}

// InWorld reports whether the session has selected a character and entered
// the world.
func (s *PlayerSession) InWorld() bool {
	return s.CharacterID != 0
}
