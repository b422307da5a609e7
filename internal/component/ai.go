package component

import "github.com/wrengo/server/internal/core/ecs"

// AI drives one NPC: a combat target (zero when none) and the melee swing
// timer in seconds.
type AI struct {
	TargetID   ecs.EntityID
	SwingTimer float64
}
