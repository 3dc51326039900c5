package spawn

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

func grid(n int) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, n)
	for i := range out {
		out[i] = mgl64.Vec3{float64(i) * 100, 0, 10}
	}
	return out
}

// scriptedRand replays fixed draws, then falls back to a seeded stream.
type scriptedRand struct {
	floats []float64
	ints   []int
	rest   *rand.Rand
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) > 0 {
		f := s.floats[0]
		s.floats = s.floats[1:]
		return f
	}
	return s.rest.Float64()
}

func (s *scriptedRand) Intn(n int) int {
	if len(s.ints) > 0 {
		i := s.ints[0]
		s.ints = s.ints[1:]
		return i % n
	}
	return s.rest.Intn(n)
}

func TestAllocateConservation(t *testing.T) {
	defs := []Definition{{Class: "crate", Amount: 5}}
	got := Allocate(grid(10), defs, rand.New(rand.NewSource(7)), zap.NewNop())
	if len(got) != 5 {
		t.Fatalf("placements = %d, want 5", len(got))
	}
	seen := map[int]bool{}
	for _, p := range got {
		if seen[p.Tile] {
			t.Fatalf("tile %d used twice", p.Tile)
		}
		seen[p.Tile] = true
		if p.Stack != 0 {
			t.Fatalf("non-stacking placement on layer %d", p.Stack)
		}
	}
}

func TestAllocateExhaustion(t *testing.T) {
	defs := []Definition{
		{Class: "rock", Amount: 20},
		{Class: "tree", Amount: 3},
	}
	got := Allocate(grid(5), defs, rand.New(rand.NewSource(1)), zap.NewNop())
	if len(got) != 5 {
		t.Fatalf("placements = %d, want 5", len(got))
	}
	seen := map[int]bool{}
	for _, p := range got {
		if p.Class != "rock" {
			t.Fatalf("unexpected class %q after exhaustion", p.Class)
		}
		if seen[p.Tile] {
			t.Fatalf("tile %d reused", p.Tile)
		}
		seen[p.Tile] = true
	}
}

func TestAllocateExhaustionContinuesWithNextDefinition(t *testing.T) {
	defs := []Definition{
		{Class: "rock", Amount: 8},
		{Class: "coin", Amount: 2, AllowStacking: true, StackChance: 1},
	}
	got := Allocate(grid(4), defs, rand.New(rand.NewSource(3)), zap.NewNop())
	counts := Summary(got)
	if counts["rock"] != 4 || counts["coin"] != 2 {
		t.Fatalf("counts = %v, want rock=4 coin=2", counts)
	}
	for _, p := range got {
		if p.Class == "coin" && p.Stack < 1 {
			t.Fatalf("coin placed on empty tile %d", p.Tile)
		}
	}
}

func TestAllocateStackingHeight(t *testing.T) {
	tiles := grid(3)
	defs := []Definition{{
		Class:           "token",
		Amount:          2,
		MinHeightOffset: 20,
		MaxHeightOffset: 20,
		AllowStacking:   true,
		StackChance:     0.5,
	}}
	// Instance 0: stack roll 0.9 fails -> fresh tile 1, height draw.
	// Instance 1: stack roll 0.1 succeeds -> used[0] == tile 1.
	rng := &scriptedRand{
		floats: []float64{0.9, 0.3, 0.1, 0.3},
		ints:   []int{1, 0},
		rest:   rand.New(rand.NewSource(1)),
	}
	got := Allocate(tiles, defs, rng, zap.NewNop())
	if len(got) != 2 {
		t.Fatalf("placements = %d, want 2", len(got))
	}
	if got[0].Tile != 1 || got[1].Tile != 1 {
		t.Fatalf("tiles = %d,%d, want 1,1", got[0].Tile, got[1].Tile)
	}
	dz := got[1].Position.Z() - got[0].Position.Z()
	if dz < LayerSeparation {
		t.Fatalf("stacked height delta %v < %v", dz, LayerSeparation)
	}
	if got[0].Position.Z() != tiles[1].Z()+20 {
		t.Fatalf("base placement z = %v, want %v", got[0].Position.Z(), tiles[1].Z()+20)
	}
	if got[1].Stack != 1 {
		t.Fatalf("second placement layer = %d, want 1", got[1].Stack)
	}
}

func TestAllocateRotation(t *testing.T) {
	defs := []Definition{
		{Class: "spin", Amount: 4, RandomRotate: true},
		{Class: "still", Amount: 4},
	}
	got := Allocate(grid(20), defs, rand.New(rand.NewSource(11)), zap.NewNop())
	for _, p := range got {
		switch p.Class {
		case "spin":
			if p.Yaw < 0 || p.Yaw >= 360 {
				t.Fatalf("yaw %v outside [0,360)", p.Yaw)
			}
		case "still":
			if p.Yaw != 0 {
				t.Fatalf("non-rotating placement has yaw %v", p.Yaw)
			}
		}
	}
}

func TestAllocateDeterministic(t *testing.T) {
	defs := []Definition{
		{Class: "enemy", Amount: 6, MinHeightOffset: 0, MaxHeightOffset: 50, RandomRotate: true},
		{Class: "coin", Amount: 10, AllowStacking: true, StackChance: 0.6, MaxHeightOffset: 30},
	}
	a := Allocate(grid(25), defs, rand.New(rand.NewSource(99)), nil)
	b := Allocate(grid(25), defs, rand.New(rand.NewSource(99)), nil)
	if len(a) != len(b) {
		t.Fatalf("len %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("placement %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestAllocateDegenerateInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := Allocate(nil, []Definition{{Class: "x", Amount: 3}}, rng, nil); len(got) != 0 {
		t.Fatalf("empty tiles produced %d placements", len(got))
	}
	if got := Allocate(grid(4), nil, rng, nil); len(got) != 0 {
		t.Fatalf("no definitions produced %d placements", len(got))
	}
	defs := []Definition{
		{Class: "", Amount: 3},
		{Class: "zero", Amount: 0},
		{Class: "neg", Amount: -2},
		{Class: "ok", Amount: 1},
	}
	got := Allocate(grid(4), defs, rng, nil)
	if len(got) != 1 || got[0].Class != "ok" {
		t.Fatalf("got %+v, want one ok placement", got)
	}
}
