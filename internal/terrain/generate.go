// Package terrain converts a grid index space into world tile positions and
// biome classification by sampling coherent noise.
package terrain

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/hexforge/hexgrid/internal/noise"
)

// ErrNoiseUnavailable is the precondition failure reported when no
// initialized noise source is available.
var ErrNoiseUnavailable = errors.New("terrain: noise source not initialized")

// Layout holds the grid dimensions and the hex layout constants.
type Layout struct {
	Width                  int        `toml:"width"`
	Height                 int        `toml:"height"`
	TileHorizontalOffset   float64    `toml:"tile_horizontal_offset"`
	OddRowHorizontalOffset float64    `toml:"odd_row_horizontal_offset"`
	TileVerticalOffset     float64    `toml:"tile_vertical_offset"`
	HeightStrength         float64    `toml:"height_strength"`
	Origin                 mgl64.Vec3 `toml:"origin"`
}

// DefaultLayout is a 5x5 pointy-top hex grid with 100-unit circumradius tiles.
func DefaultLayout() Layout {
	return Layout{
		Width:                  5,
		Height:                 5,
		TileHorizontalOffset:   173.2,
		OddRowHorizontalOffset: 86.6,
		TileVerticalOffset:     150,
		HeightStrength:         1,
	}
}

// Planar returns the local (x, y) of grid cell (gx, gy). Odd rows shift
// right by the odd-row offset.
func (l Layout) Planar(gx, gy int) (float64, float64) {
	x := float64(gx) * l.TileHorizontalOffset
	if gy%2 == 1 {
		x += l.OddRowHorizontalOffset
	}
	return x, float64(gy) * l.TileVerticalOffset
}

// Generate builds the tile table for l by sampling src once per cell in
// row-major order. A nil policy means Linear.
func Generate(l Layout, src noise.Source, policy HeightPolicy) (*Table, error) {
	if src == nil {
		return nil, ErrNoiseUnavailable
	}
	if l.Width <= 0 || l.Height <= 0 {
		return &Table{}, nil
	}
	if policy == nil {
		policy = Linear{}
	}

	t := &Table{
		width:  l.Width,
		height: l.Height,
		tiles:  make([]Tile, 0, l.Width*l.Height),
	}
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			px, py := l.Planar(x, y)
			n := src.Sample(px, py)
			b := Classify(n)
			local := mgl64.Vec3{px, py, policy.Height(b, n, l.HeightStrength)}
			t.tiles = append(t.tiles, Tile{
				GridX:    x,
				GridY:    y,
				Position: l.Origin.Add(local),
				Biome:    b,
				Noise:    n,
			})
		}
	}
	return t, nil
}

// Generator configures a noise source for each cycle and builds the table.
type Generator struct {
	noise  noise.Configurer
	policy HeightPolicy
	log    *zap.Logger
}

func NewGenerator(nc noise.Configurer, policy HeightPolicy, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{noise: nc, policy: policy, log: log}
}

// Generate configures the noise source once and builds the table. When the
// source cannot be initialized the failure is logged and ErrNoiseUnavailable
// returned; callers treat it as a no-op, never as fatal.
func (g *Generator) Generate(l Layout, p noise.Params) (*Table, error) {
	if g.noise == nil {
		g.log.Warn("terrain: no noise configurer, generation skipped")
		return nil, ErrNoiseUnavailable
	}
	src, ok := g.noise.Configure(p)
	if !ok || src == nil {
		g.log.Warn("terrain: noise source not initialized, generation skipped",
			zap.Stringer("type", p.Type),
			zap.Int32("seed", p.Seed),
			zap.Float64("frequency", p.Frequency),
			zap.Int("octaves", p.Octaves),
		)
		return nil, ErrNoiseUnavailable
	}

	t, err := Generate(l, src, g.policy)
	if err != nil {
		return nil, err
	}
	g.log.Debug("terrain generated",
		zap.Int("width", l.Width),
		zap.Int("height", l.Height),
		zap.Int("grass", t.Count(Grass)),
		zap.Int("water", t.Count(Water)),
	)
	return t, nil
}
