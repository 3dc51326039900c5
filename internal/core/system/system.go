package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: advance scheduler clock, fire due callbacks
	PhasePreUpdate               // 1: drain regenerate requests
	PhaseUpdate                  // 2: navigation build progress
	PhasePostUpdate              // 3: dispatch cycle events to sinks
	PhaseCleanup                 // 4: end-of-tick bookkeeping
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
