package world

import (
	"github.com/wrengo/server/internal/core/ecs"
	"github.com/wrengo/server/internal/geom"
)

// Kind distinguishes the three entity classes the simulation owns.
type Kind int

const (
	KindPlayer Kind = iota
	KindNpc
	KindStaticObject
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNpc:
		return "npc"
	case KindStaticObject:
		return "static"
	default:
		return "unknown"
	}
}

// GameObject is the identity record for one live entity. Component fields
// are non-owning id references into the per-kind stores (NoComp = absent);
// the stores own the data, the State owns the lifecycle.
type GameObject struct {
	ID   ecs.EntityID
	Kind Kind

	LocalPosition  geom.Vec3
	MovementVector geom.Vec3
	Destination    geom.Vec3
	IsMoving       bool
	// Placed is set once the object claims a tile (boot spawn, EnterWorld).
	// A lobby player has a position of zero but no tile; teardown must not
	// free tile (0,0) out from under whoever stands there.
	Placed bool

	// IsStatic blocks AI targeting and movement; scenery.
	IsStatic bool
	// StaticID is the data-table id for static objects and NPC templates.
	StaticID int32

	StatsID     ecs.CompID
	InventoryID ecs.CompID
	AIID        ecs.CompID
	PlayerID    ecs.CompID
}
