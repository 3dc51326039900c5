// Package spawn distributes spawnable definitions over generated tiles.
//
// Two policies exist and are kept apart on purpose: CountBased places a
// requested number of instances per definition with stacking and tile
// uniqueness, PerTileRoll rolls once per tile across mutually exclusive
// enemy / pickup / prop bands.
package spawn

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ClassRef is an opaque entity type handle supplied by the caller.
type ClassRef string

// Rand is the random stream consumed by allocation. *math/rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Definition describes one category of entity to place.
type Definition struct {
	Class           ClassRef
	Amount          int
	MinHeightOffset float64
	MaxHeightOffset float64
	AllowStacking   bool
	StackChance     float64
	RandomRotate    bool
}

// Placement is a resolved spawn ready for instantiation.
type Placement struct {
	Class    ClassRef   `json:"class"`
	Tile     int        `json:"tile"`
	Position mgl64.Vec3 `json:"position"`
	// Yaw in degrees, [0, 360). Zero when the definition does not rotate.
	Yaw   float64 `json:"yaw"`
	Stack int     `json:"stack"`
}

// Policy selects the allocation algorithm.
type Policy uint8

const (
	CountBased Policy = iota
	PerTileRoll
)

func (p Policy) String() string {
	switch p {
	case CountBased:
		return "count"
	case PerTileRoll:
		return "roll"
	}
	return fmt.Sprintf("policy(%d)", p)
}

func (p Policy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Policy) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "count", "count_based":
		*p = CountBased
	case "roll", "per_tile_roll":
		*p = PerTileRoll
	default:
		return fmt.Errorf("unknown spawn policy %q", b)
	}
	return nil
}

// Summary counts placements per class.
func Summary(placements []Placement) map[ClassRef]int {
	out := make(map[ClassRef]int)
	for _, p := range placements {
		out[p.Class]++
	}
	return out
}

func uniform(rng Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
