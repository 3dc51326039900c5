package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/hexforge/hexgrid/internal/core/system"
	"github.com/hexforge/hexgrid/internal/grid"
	"github.com/hexforge/hexgrid/internal/world"
)

// RegenSystem runs queued regenerate requests on the game loop and, when an
// interval is set, regenerates on its own. After each regenerate it marks
// the navigation mesh for rebuild so population waits for it.
// Phase 1 (PreUpdate).
type RegenSystem struct {
	mgr      *grid.Manager
	nav      *world.NavMesh
	build    func() grid.Request
	interval time.Duration
	elapsed  time.Duration
	requests chan grid.Request
	log      *zap.Logger
}

// NewRegenSystem creates the system. build supplies the request used for
// automatic and default regenerations. interval 0 disables the automatic
// cycle.
func NewRegenSystem(mgr *grid.Manager, nav *world.NavMesh, build func() grid.Request, interval time.Duration, log *zap.Logger) *RegenSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegenSystem{
		mgr:      mgr,
		nav:      nav,
		build:    build,
		interval: interval,
		requests: make(chan grid.Request, 8),
		log:      log,
	}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

// Request queues req for the next tick. Safe to call from any goroutine.
// Returns false when the queue is full.
func (s *RegenSystem) Request(req grid.Request) bool {
	select {
	case s.requests <- req:
		return true
	default:
		return false
	}
}

// RequestDefault queues a regenerate built from the configured defaults.
func (s *RegenSystem) RequestDefault() bool {
	return s.Request(s.build())
}

func (s *RegenSystem) Update(dt time.Duration) {
	var (
		req    grid.Request
		queued int
	)
drain:
	for {
		select {
		case r := <-s.requests:
			req = r
			queued++
		default:
			break drain
		}
	}

	if queued == 0 {
		if s.interval <= 0 {
			return
		}
		s.elapsed += dt
		if s.elapsed < s.interval {
			return
		}
		req = s.build()
	}
	s.elapsed = 0

	if queued > 1 {
		s.log.Debug("regen: coalesced requests", zap.Int("queued", queued))
	}
	s.mgr.Regenerate(req)
	if s.nav != nil {
		s.nav.Invalidate(s.mgr.Tiles().Len())
	}
	s.log.Info("regen: cycle started",
		zap.Uint64("cycle", s.mgr.Cycle()),
		zap.Int("tiles", s.mgr.Tiles().Len()))
}
