package terrain

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/hexforge/hexgrid/internal/noise"
)

// constSource returns the same value everywhere.
type constSource float64

func (c constSource) Sample(_, _ float64) float64 { return float64(c) }

// planeSource returns a value derived from the coordinates so tests can
// predict the classification of each tile.
type planeSource struct{}

func (planeSource) Sample(x, _ float64) float64 {
	if x >= 200 {
		return -0.5
	}
	return 0.5
}

type refuseConfigurer struct{ calls int }

func (r *refuseConfigurer) Configure(noise.Params) (noise.Source, bool) {
	r.calls++
	return nil, false
}

func testLayout(w, h int) Layout {
	return Layout{
		Width:                  w,
		Height:                 h,
		TileHorizontalOffset:   100,
		OddRowHorizontalOffset: 50,
		TileVerticalOffset:     80,
		HeightStrength:         10,
		Origin:                 mgl64.Vec3{1000, 2000, 3000},
	}
}

func TestGenerateRowMajorOrder(t *testing.T) {
	tbl, err := Generate(testLayout(4, 3), constSource(0.25), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tbl.Len() != 12 {
		t.Fatalf("len = %d, want 12", tbl.Len())
	}
	checks := []struct{ idx, x, y int }{
		{0, 0, 0},
		{3, 3, 0},
		{4, 0, 1},
		{11, 3, 2},
	}
	for _, c := range checks {
		tile := tbl.At(c.idx)
		if tile.GridX != c.x || tile.GridY != c.y {
			t.Fatalf("tile %d = (%d,%d), want (%d,%d)", c.idx, tile.GridX, tile.GridY, c.x, c.y)
		}
		if i, ok := tbl.Index(c.x, c.y); !ok || i != c.idx {
			t.Fatalf("Index(%d,%d) = %d,%v want %d", c.x, c.y, i, ok, c.idx)
		}
	}
	if _, ok := tbl.Index(4, 0); ok {
		t.Fatalf("Index accepted out of range x")
	}
}

func TestGenerateOddRowOffset(t *testing.T) {
	l := testLayout(2, 2)
	tbl, err := Generate(l, constSource(0), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	even := tbl.At(0) // (0,0)
	odd := tbl.At(2)  // (0,1)
	if even.Position.X() != l.Origin.X() {
		t.Fatalf("even row x = %v, want %v", even.Position.X(), l.Origin.X())
	}
	if odd.Position.X() != l.Origin.X()+50 {
		t.Fatalf("odd row x = %v, want %v", odd.Position.X(), l.Origin.X()+50)
	}
	if odd.Position.Y() != l.Origin.Y()+80 {
		t.Fatalf("odd row y = %v, want %v", odd.Position.Y(), l.Origin.Y()+80)
	}
	if got := tbl.At(3).Position.X(); got != l.Origin.X()+150 {
		t.Fatalf("tile (1,1) x = %v, want %v", got, l.Origin.X()+150)
	}
}

func TestClassifyZeroIsGrass(t *testing.T) {
	tbl, err := Generate(testLayout(1, 1), constSource(0), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tile := tbl.At(0); tile.Biome != Grass || tile.Noise != 0 {
		t.Fatalf("noise 0 classified as %v", tile.Biome)
	}
	if Classify(-0.0001) != Water {
		t.Fatalf("negative noise must be water")
	}
}

func TestGenerateHeightAndBiomes(t *testing.T) {
	l := testLayout(4, 1)
	tbl, err := Generate(l, planeSource{}, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tbl.Count(Grass) != 2 || tbl.Count(Water) != 2 {
		t.Fatalf("grass=%d water=%d, want 2/2", tbl.Count(Grass), tbl.Count(Water))
	}
	if z := tbl.At(0).Position.Z(); z != l.Origin.Z()+5 {
		t.Fatalf("grass z = %v, want %v", z, l.Origin.Z()+5)
	}
	if z := tbl.At(3).Position.Z(); z != l.Origin.Z()-5 {
		t.Fatalf("water z = %v, want %v", z, l.Origin.Z()-5)
	}

	damped, err := Generate(l, planeSource{}, WaterDamping{Factor: 0.5})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if z := damped.At(3).Position.Z(); z != l.Origin.Z()-2.5 {
		t.Fatalf("damped water z = %v, want %v", z, l.Origin.Z()-2.5)
	}
	if z := damped.At(0).Position.Z(); z != l.Origin.Z()+5 {
		t.Fatalf("damping touched grass: z = %v", z)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := noise.DefaultParams()
	p.Type = noise.ValueFractal
	g := NewGenerator(noise.Factory{}, nil, zap.NewNop())
	l := DefaultLayout()
	l.Width, l.Height = 9, 7

	a, err := g.Generate(l, p)
	if err != nil {
		t.Fatalf("generate a: %v", err)
	}
	b, err := g.Generate(l, p)
	if err != nil {
		t.Fatalf("generate b: %v", err)
	}
	if a.Len() != b.Len() {
		t.Fatalf("len %d != %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("tile %d differs: %+v vs %+v", i, a.At(i), b.At(i))
		}
	}
}

func TestGenerateEmptyDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 3}} {
		tbl, err := Generate(testLayout(dims[0], dims[1]), constSource(1), nil)
		if err != nil {
			t.Fatalf("%v: %v", dims, err)
		}
		if tbl.Len() != 0 {
			t.Fatalf("%v: len = %d, want 0", dims, tbl.Len())
		}
	}
}

func TestGeneratePreconditionFailures(t *testing.T) {
	if _, err := Generate(testLayout(2, 2), nil, nil); !errors.Is(err, ErrNoiseUnavailable) {
		t.Fatalf("nil source err = %v", err)
	}

	rc := &refuseConfigurer{}
	g := NewGenerator(rc, nil, zap.NewNop())
	tbl, err := g.Generate(testLayout(2, 2), noise.DefaultParams())
	if !errors.Is(err, ErrNoiseUnavailable) || tbl.Len() != 0 {
		t.Fatalf("uninitialized source: tbl=%d err=%v", tbl.Len(), err)
	}
	if rc.calls != 1 {
		t.Fatalf("configure called %d times, want 1", rc.calls)
	}

	if _, err := NewGenerator(nil, nil, nil).Generate(testLayout(1, 1), noise.DefaultParams()); !errors.Is(err, ErrNoiseUnavailable) {
		t.Fatalf("nil configurer err = %v", err)
	}
}

func TestNilTableIsEmpty(t *testing.T) {
	var tbl *Table
	if tbl.Len() != 0 || tbl.Positions() != nil || tbl.Count(Grass) != 0 {
		t.Fatalf("nil table not empty")
	}
}
