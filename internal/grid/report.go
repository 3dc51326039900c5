package grid

import (
	"time"

	"github.com/google/uuid"

	"github.com/hexforge/hexgrid/internal/spawn"
)

// CycleReport summarizes one populated cycle.
type CycleReport struct {
	ID         uuid.UUID         `json:"id"`
	Cycle      uint64            `json:"cycle"`
	Seed       int64             `json:"seed"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Tiles      int               `json:"tiles"`
	Grass      int               `json:"grass"`
	Water      int               `json:"water"`
	Policy     spawn.Policy      `json:"policy"`
	Requested  int               `json:"requested"`
	Placed     int               `json:"placed"`
	Spawned    int               `json:"spawned"`
	Attempts   int               `json:"gate_attempts"`
	StartedAt  time.Time         `json:"started_at"`
	ReadyAt    time.Time         `json:"ready_at"`
	Placements []spawn.Placement `json:"placements"`
}

// Wait is the time population spent behind the gate.
func (r CycleReport) Wait() time.Duration {
	if r.ReadyAt.IsZero() {
		return 0
	}
	return r.ReadyAt.Sub(r.StartedAt)
}

// Observer is notified after every populated cycle. Implementations must
// not block the game loop.
type Observer interface {
	CycleCompleted(CycleReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(CycleReport)

func (f ObserverFunc) CycleCompleted(r CycleReport) { f(r) }
