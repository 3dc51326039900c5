// Package system holds the tick systems that drive the grid from the game
// loop.
package system

import (
	"time"

	coresys "github.com/hexforge/hexgrid/internal/core/system"
	"github.com/hexforge/hexgrid/internal/world"
)

// TimerSystem advances the scheduler clock, firing due gate checks.
// Phase 0 (Input).
type TimerSystem struct {
	clock *world.Clock
}

func NewTimerSystem(c *world.Clock) *TimerSystem { return &TimerSystem{clock: c} }

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *TimerSystem) Update(_ time.Duration) { s.clock.Advance() }

// NavBuildSystem advances an in-flight navigation rebuild.
// Phase 2 (Update).
type NavBuildSystem struct {
	nav *world.NavMesh
}

func NewNavBuildSystem(n *world.NavMesh) *NavBuildSystem { return &NavBuildSystem{nav: n} }

func (s *NavBuildSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *NavBuildSystem) Update(_ time.Duration) { s.nav.Tick() }
