package noise

import "math"

type valueSource struct {
	seed   int32
	freq   float64
	interp Interp
}

func (s valueSource) Sample(x, y float64) float64 {
	return clamp(valueAt(s.seed, x*s.freq, y*s.freq, s.interp))
}

func valueAt(seed int32, x, y float64, interp Interp) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	ix, iy := int32(x0), int32(y0)
	tx := curve(interp, x-x0)
	ty := curve(interp, y-y0)

	v00 := unit(hash2(seed, ix, iy))
	v10 := unit(hash2(seed, ix+1, iy))
	v01 := unit(hash2(seed, ix, iy+1))
	v11 := unit(hash2(seed, ix+1, iy+1))

	return lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), ty)
}

func curve(interp Interp, t float64) float64 {
	switch interp {
	case Hermite:
		return t * t * (3 - 2*t)
	case Quintic:
		return t * t * t * (t*(t*6-15) + 10)
	}
	return t
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// fractal sums octaves of a base lattice function. Each octave reseeds so
// layers stay decorrelated.
type fractal struct {
	base       func(seed int32, x, y float64) float64
	seed       int32
	freq       float64
	octaves    int
	lacunarity float64
	gain       float64
	kind       FractalType
}

func (f fractal) Sample(x, y float64) float64 {
	x *= f.freq
	y *= f.freq
	amp := 1.0
	sum, norm := 0.0, 0.0
	for i := 0; i < f.octaves; i++ {
		v := f.base(f.seed+int32(i), x, y)
		switch f.kind {
		case Billow:
			v = math.Abs(v)*2 - 1
		case RigidMulti:
			v = 1 - 2*math.Abs(v)
		}
		sum += v * amp
		norm += math.Abs(amp)
		amp *= f.gain
		x *= f.lacunarity
		y *= f.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return clamp(sum / norm)
}

type whiteSource struct {
	seed int32
	freq float64
}

func (s whiteSource) Sample(x, y float64) float64 {
	xb := math.Float64bits(x * s.freq)
	yb := math.Float64bits(y * s.freq)
	h := uint32(s.seed)
	h ^= (uint32(xb) ^ uint32(xb>>32)) * 0x9e3779b1
	h ^= (uint32(yb) ^ uint32(yb>>32)) * 0x85ebca6b
	return unit(hash32(h))
}
