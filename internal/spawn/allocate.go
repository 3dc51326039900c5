package spawn

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	// MaxFreshAttempts bounds the rejection sampling for an unused tile.
	MaxFreshAttempts = 200
	// LayerSeparation is the vertical gap added per entity already on a tile.
	LayerSeparation = 100.0
)

// occupancy is the per-pass bookkeeping. used keeps insertion order so a
// stacking pick is a pure function of the random stream.
type occupancy struct {
	stack  map[int]int
	isUsed map[int]bool
	used   []int
}

func newOccupancy() *occupancy {
	return &occupancy{
		stack:  make(map[int]int),
		isUsed: make(map[int]bool),
	}
}

func (o *occupancy) markUsed(i int) {
	if !o.isUsed[i] {
		o.isUsed[i] = true
		o.used = append(o.used, i)
	}
}

// pick chooses the tile for the next instance of def. ok is false when no
// unused tile was found within MaxFreshAttempts draws.
func (o *occupancy) pick(def Definition, tiles int, rng Rand) (int, bool) {
	if def.AllowStacking && rng.Float64() < def.StackChance && len(o.used) > 0 {
		return o.used[rng.Intn(len(o.used))], true
	}
	if len(o.used) >= tiles {
		return 0, false
	}
	for attempt := 0; attempt < MaxFreshAttempts; attempt++ {
		i := rng.Intn(tiles)
		if !o.isUsed[i] {
			o.markUsed(i)
			return i, true
		}
	}
	return 0, false
}

// Allocate runs the count-based policy. Definitions are processed in order,
// instances of a definition in order. Definitions with an empty class or a
// non-positive amount are skipped. When a definition runs out of unused
// tiles its remaining instances are abandoned and allocation continues with
// the next definition.
func Allocate(tiles []mgl64.Vec3, defs []Definition, rng Rand, log *zap.Logger) []Placement {
	if len(tiles) == 0 || len(defs) == 0 {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	occ := newOccupancy()
	var out []Placement
	for _, def := range defs {
		if def.Class == "" || def.Amount <= 0 {
			continue
		}
		for i := 0; i < def.Amount; i++ {
			idx, ok := occ.pick(def, len(tiles), rng)
			if !ok {
				log.Warn("spawn: ran out of unique tiles",
					zap.String("class", string(def.Class)),
					zap.Int("placed", i),
					zap.Int("requested", def.Amount),
					zap.Int("tiles", len(tiles)))
				break
			}

			offset := uniform(rng, def.MinHeightOffset, def.MaxHeightOffset)
			layer := occ.stack[idx]
			if layer > 0 {
				offset += float64(layer) * LayerSeparation
			}

			var yaw float64
			if def.RandomRotate {
				yaw = rng.Float64() * 360
			}

			out = append(out, Placement{
				Class:    def.Class,
				Tile:     idx,
				Position: tiles[idx].Add(mgl64.Vec3{0, 0, offset}),
				Yaw:      yaw,
				Stack:    layer,
			})
			occ.stack[idx] = layer + 1
		}
	}
	return out
}
