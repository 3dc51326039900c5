package spawn

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Allocator binds a policy to its inputs.
type Allocator struct {
	Policy      Policy
	Definitions []Definition
	Rolls       RollTable
	Log         *zap.Logger
}

// Requested is the number of instances the count-based policy asks for.
// The roll policy has no fixed demand and reports zero.
func (a Allocator) Requested() int {
	if a.Policy != CountBased {
		return 0
	}
	n := 0
	for _, d := range a.Definitions {
		if d.Class != "" && d.Amount > 0 {
			n += d.Amount
		}
	}
	return n
}

// Run allocates placements over tiles with the configured policy.
func (a Allocator) Run(tiles []mgl64.Vec3, rng Rand) []Placement {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}
	switch a.Policy {
	case PerTileRoll:
		if a.Rolls.Empty() {
			log.Warn("spawn: roll table has no classes")
			return nil
		}
		return Roll(tiles, a.Rolls, rng)
	default:
		if len(a.Definitions) == 0 {
			log.Warn("spawn: no spawn data defined")
			return nil
		}
		return Allocate(tiles, a.Definitions, rng, log)
	}
}
