package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hexforge/hexgrid/internal/grid"
	"github.com/hexforge/hexgrid/internal/spawn"
)

// SQLiteJournal writes cycles to a local SQLite file.
type SQLiteJournal struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteJournal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS grid_cycles (
			id TEXT PRIMARY KEY,
			cycle INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			tiles INTEGER NOT NULL,
			grass INTEGER NOT NULL,
			water INTEGER NOT NULL,
			policy TEXT NOT NULL,
			requested INTEGER NOT NULL,
			placed INTEGER NOT NULL,
			spawned INTEGER NOT NULL,
			gate_attempts INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ready_at TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			placements BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_grid_cycles_cycle ON grid_cycles(cycle);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (j *SQLiteJournal) Record(ctx context.Context, r grid.CycleReport) error {
	blob, err := encodePlacements(r.Placements)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO grid_cycles (id, cycle, seed, width, height, tiles, grass, water, policy,
		 requested, placed, spawned, gate_attempts, started_at, ready_at, recorded_at, placements)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), int64(r.Cycle), r.Seed, r.Width, r.Height, r.Tiles, r.Grass, r.Water,
		r.Policy.String(), r.Requested, r.Placed, r.Spawned, r.Attempts,
		formatTime(r.StartedAt), formatTime(r.ReadyAt), formatTime(time.Now()), blob,
	)
	if err != nil {
		return fmt.Errorf("insert cycle %d: %w", r.Cycle, err)
	}
	return nil
}

func (j *SQLiteJournal) Recent(ctx context.Context, n int) ([]CycleSummary, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, cycle, seed, width, height, tiles, grass, water, policy,
		        requested, placed, spawned, gate_attempts, started_at, ready_at, recorded_at
		 FROM grid_cycles ORDER BY rowid DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleSummary
	for rows.Next() {
		var (
			s                         CycleSummary
			id, started, ready, recAt string
			cycle                     int64
		)
		if err := rows.Scan(&id, &cycle, &s.Seed, &s.Width, &s.Height, &s.Tiles, &s.Grass, &s.Water,
			&s.Policy, &s.Requested, &s.Placed, &s.Spawned, &s.Attempts,
			&started, &ready, &recAt); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse cycle id: %w", err)
		}
		s.Cycle = uint64(cycle)
		s.StartedAt = parseTime(started)
		s.ReadyAt = parseTime(ready)
		s.RecordedAt = parseTime(recAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Placements(ctx context.Context, id uuid.UUID) ([]spawn.Placement, error) {
	var blob []byte
	err := j.db.QueryRowContext(ctx,
		`SELECT placements FROM grid_cycles WHERE id = ?`, id.String(),
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	return decodePlacements(blob)
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
