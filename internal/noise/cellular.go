package noise

import "math"

// cellularSource is Worley-style noise: one jittered feature point per
// lattice cell, nearest points searched in the 3x3 neighbourhood.
type cellularSource struct {
	seed     int32
	freq     float64
	jitter   float64
	distance CellularDistance
	ret      CellularReturn
}

func (s cellularSource) Sample(x, y float64) float64 {
	x *= s.freq
	y *= s.freq
	cx := int32(math.Floor(x))
	cy := int32(math.Floor(y))

	best, second := math.MaxFloat64, math.MaxFloat64
	var bestHash uint32
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			ix, iy := cx+dx, cy+dy
			h := hash2(s.seed, ix, iy)
			px := float64(ix) + 0.5 + unit(h)*0.5*s.jitter
			py := float64(iy) + 0.5 + unit(hash32(h))*0.5*s.jitter
			d := s.metric(px-x, py-y)
			if d < best {
				second = best
				best = d
				bestHash = h
			} else if d < second {
				second = d
			}
		}
	}

	switch s.ret {
	case Distance:
		return clamp(best*2 - 1)
	case Distance2:
		return clamp(second*2 - 1)
	}
	return unit(bestHash)
}

func (s cellularSource) metric(dx, dy float64) float64 {
	switch s.distance {
	case Manhattan:
		return math.Abs(dx) + math.Abs(dy)
	case Natural:
		return 0.5 * (math.Sqrt(dx*dx+dy*dy) + math.Abs(dx) + math.Abs(dy))
	}
	return math.Sqrt(dx*dx + dy*dy)
}
