// cyclelog lists grid cycles recorded in the journal.
//
// Usage:
//
//	go run ./cmd/cyclelog [-config path] [-n count] [-id uuid]
//
// With -id the placements of that cycle are printed instead of the list.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hexforge/hexgrid/internal/config"
	"github.com/hexforge/hexgrid/internal/persist"
)

func main() {
	cfgPath := flag.String("config", "config/hexgrid.toml", "server config file")
	n := flag.Int("n", 20, "number of cycles to list")
	id := flag.String("id", "", "print the placements of one cycle")
	flag.Parse()

	if err := run(*cfgPath, *n, *id); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string, n int, id string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	j, err := persist.Open(ctx, cfg.Database, zap.NewNop())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j == nil {
		return fmt.Errorf("journal disabled (database.driver = %q)", cfg.Database.Driver)
	}
	defer j.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if id != "" {
		cid, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("parse id: %w", err)
		}
		ps, err := j.Placements(ctx, cid)
		if err != nil {
			return fmt.Errorf("placements %s: %w", cid, err)
		}
		fmt.Fprintln(w, "CLASS\tTILE\tSTACK\tX\tY\tZ\tYAW")
		for _, p := range ps {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%.1f\t%.1f\t%.0f\n",
				p.Class, p.Tile, p.Stack, p.Position.X(), p.Position.Y(), p.Position.Z(), p.Yaw)
		}
		return nil
	}

	rows, err := j.Recent(ctx, n)
	if err != nil {
		return fmt.Errorf("list cycles: %w", err)
	}
	fmt.Fprintln(w, "ID\tCYCLE\tSEED\tGRID\tGRASS/WATER\tPOLICY\tPLACED\tSPAWNED\tWAIT\tRECORDED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%dx%d\t%d/%d\t%s\t%d/%d\t%d\t%s\t%s\n",
			r.ID, r.Cycle, r.Seed, r.Width, r.Height, r.Grass, r.Water, r.Policy,
			r.Placed, r.Requested, r.Spawned, r.ReadyAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.RecordedAt.Local().Format(time.DateTime))
	}
	return nil
}
