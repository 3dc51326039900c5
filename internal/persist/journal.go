// Package persist records completed grid cycles to an audit journal.
// Nothing here is ever loaded back into a running grid.
package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hexforge/hexgrid/internal/config"
	"github.com/hexforge/hexgrid/internal/grid"
	"github.com/hexforge/hexgrid/internal/spawn"
)

// ErrNotFound is returned when a cycle id is not in the journal.
var ErrNotFound = errors.New("cycle not found")

// CycleSummary is one journal row without its placements.
type CycleSummary struct {
	ID         uuid.UUID `json:"id"`
	Cycle      uint64    `json:"cycle"`
	Seed       int64     `json:"seed"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Tiles      int       `json:"tiles"`
	Grass      int       `json:"grass"`
	Water      int       `json:"water"`
	Policy     string    `json:"policy"`
	Requested  int       `json:"requested"`
	Placed     int       `json:"placed"`
	Spawned    int       `json:"spawned"`
	Attempts   int       `json:"gate_attempts"`
	StartedAt  time.Time `json:"started_at"`
	ReadyAt    time.Time `json:"ready_at"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Journal stores cycle reports.
type Journal interface {
	Record(ctx context.Context, r grid.CycleReport) error
	// Recent returns up to n summaries, newest first.
	Recent(ctx context.Context, n int) ([]CycleSummary, error)
	Placements(ctx context.Context, id uuid.UUID) ([]spawn.Placement, error)
	Close() error
}

// Open returns the journal selected by cfg.Driver. Driver "none" (or empty)
// returns a nil Journal and no error.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (Journal, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, db.Pool, log); err != nil {
			db.Close()
			return nil, err
		}
		return NewPGJournal(db), nil
	case "sqlite":
		return OpenSQLite(cfg.DSN)
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
