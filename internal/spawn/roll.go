package spawn

import "github.com/go-gl/mathgl/mgl64"

// RollTable configures the per-tile roll policy. Chances are cumulative
// bands checked in enemy, pickup, prop order.
type RollTable struct {
	Enemies      []ClassRef
	Pickups      []ClassRef
	Props        []ClassRef
	EnemyChance  float64
	PickupChance float64
	PropChance   float64
}

// DefaultRollTable carries the stock chances with no classes.
func DefaultRollTable() RollTable {
	return RollTable{
		EnemyChance:  0.03,
		PickupChance: 0.04,
		PropChance:   0.10,
	}
}

// Empty reports whether no roll can ever place anything.
func (t RollTable) Empty() bool {
	return len(t.Enemies) == 0 && len(t.Pickups) == 0 && len(t.Props) == 0
}

// Roll draws one value per tile and places at most one entity on it. A band
// with no classes places nothing.
func Roll(tiles []mgl64.Vec3, table RollTable, rng Rand) []Placement {
	if len(tiles) == 0 || table.Empty() {
		return nil
	}
	enemyTop := table.EnemyChance
	pickupTop := enemyTop + table.PickupChance
	propTop := pickupTop + table.PropChance

	var out []Placement
	for i, pos := range tiles {
		r := rng.Float64()
		var pool []ClassRef
		switch {
		case r < enemyTop:
			pool = table.Enemies
		case r < pickupTop:
			pool = table.Pickups
		case r < propTop:
			pool = table.Props
		default:
			continue
		}
		if len(pool) == 0 {
			continue
		}
		out = append(out, Placement{
			Class:    pool[rng.Intn(len(pool))],
			Tile:     i,
			Position: pos,
		})
	}
	return out
}
