package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hexforge/hexgrid/internal/grid"
	"github.com/hexforge/hexgrid/internal/spawn"
)

// PGJournal writes cycles to the grid_cycles table.
type PGJournal struct {
	db *DB
}

func NewPGJournal(db *DB) *PGJournal {
	return &PGJournal{db: db}
}

func (j *PGJournal) Record(ctx context.Context, r grid.CycleReport) error {
	blob, err := encodePlacements(r.Placements)
	if err != nil {
		return err
	}
	_, err = j.db.Pool.Exec(ctx,
		`INSERT INTO grid_cycles (id, cycle, seed, width, height, tiles, grass, water, policy,
		 requested, placed, spawned, gate_attempts, started_at, ready_at, placements)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		r.ID, int64(r.Cycle), r.Seed, r.Width, r.Height, r.Tiles, r.Grass, r.Water, r.Policy.String(),
		r.Requested, r.Placed, r.Spawned, r.Attempts, r.StartedAt, r.ReadyAt, blob,
	)
	if err != nil {
		return fmt.Errorf("insert cycle %d: %w", r.Cycle, err)
	}
	return nil
}

func (j *PGJournal) Recent(ctx context.Context, n int) ([]CycleSummary, error) {
	rows, err := j.db.Pool.Query(ctx,
		`SELECT id::text, cycle, seed, width, height, tiles, grass, water, policy,
		        requested, placed, spawned, gate_attempts, started_at, ready_at, recorded_at
		 FROM grid_cycles ORDER BY recorded_at DESC, cycle DESC LIMIT $1`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleSummary
	for rows.Next() {
		var (
			s     CycleSummary
			id    string
			cycle int64
		)
		if err := rows.Scan(&id, &cycle, &s.Seed, &s.Width, &s.Height, &s.Tiles, &s.Grass, &s.Water,
			&s.Policy, &s.Requested, &s.Placed, &s.Spawned, &s.Attempts,
			&s.StartedAt, &s.ReadyAt, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse cycle id: %w", err)
		}
		s.Cycle = uint64(cycle)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (j *PGJournal) Placements(ctx context.Context, id uuid.UUID) ([]spawn.Placement, error) {
	var blob []byte
	err := j.db.Pool.QueryRow(ctx,
		`SELECT placements FROM grid_cycles WHERE id = $1`, id,
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	return decodePlacements(blob)
}

func (j *PGJournal) Close() error {
	j.db.Close()
	return nil
}
