package system

import "time"

// Phase defines execution ordering within a single simulation step. The
// order is a hard guarantee: every system of a phase runs for all entities
// before the next phase starts, and no client sees state mid-step.
type Phase int

const (
	PhaseAI       Phase = iota // NPC movement decisions
	PhaseCombat                // swing timers, hit resolution
	PhaseMovement              // advance + snap in-flight movement
	PhaseTimeout               // heartbeat expiry teardown
	PhaseOutput                // per-client delta broadcast + event dispatch
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
