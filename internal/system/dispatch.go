package system

import (
	"time"

	"github.com/hexforge/hexgrid/internal/core/event"
	coresys "github.com/hexforge/hexgrid/internal/core/system"
)

// EventDispatchSystem delivers the events emitted during the tick.
// Phase 3 (PostUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(b *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: b}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
