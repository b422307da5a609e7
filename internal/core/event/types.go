package event

import "github.com/wrengo/server/internal/core/ecs"

// EntityRemoved is published when a GameObject is torn down, after its
// components are released and its tile cleared. Systems holding the id as a
// target have already been cleaned up synchronously; this event only feeds
// the client-facing DeleteGameObject broadcast.
type EntityRemoved struct {
	ID ecs.EntityID
}

// AttackHit is published when a melee swing connects.
type AttackHit struct {
	AttackerID ecs.EntityID
	TargetID   ecs.EntityID
	Damage     int32
}

// AttackMiss is published when a melee swing whiffs.
type AttackMiss struct {
	AttackerID ecs.EntityID
	TargetID   ecs.EntityID
}

// NpcDeath is published once when an NPC's health reaches zero. ItemIDs
// carries the NPC's inventory for the loot notification.
type NpcDeath struct {
	ID      ecs.EntityID
	ItemIDs []int32
}
