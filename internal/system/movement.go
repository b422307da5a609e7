package system

import (
	"time"

	core "github.com/wrengo/server/internal/core/system"
	"github.com/wrengo/server/internal/geom"
	"github.com/wrengo/server/internal/world"
)

// Movement integrates every in-flight single-tile move and snaps entities to
// their destination on arrival. Players and NPCs advance through the exact
// same integration, which is what lets the client predict its own movement
// and only get corrected when it truly diverged.
type Movement struct {
	World *world.State
}

func NewMovement(w *world.State) *Movement {
	return &Movement{World: w}
}

func (s *Movement) Phase() core.Phase { return core.PhaseMovement }

func (s *Movement) Update(dt time.Duration) {
	speed := s.World.Params.MoveSpeed * dt.Seconds()
	s.World.Each(func(obj *world.GameObject) {
		if !obj.IsMoving {
			return
		}
		step := obj.MovementVector.Scale(speed)
		remaining := obj.Destination.Sub(obj.LocalPosition)
		if remaining.Length() <= step.Length() {
			// Arrival snaps exactly onto the destination so tile-quantized
			// positions never accumulate float drift.
			obj.LocalPosition = obj.Destination
			obj.MovementVector = geom.Zero
			obj.IsMoving = false
			return
		}
		obj.LocalPosition = obj.LocalPosition.Add(step)
	})
}
