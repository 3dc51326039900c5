package noise

import perlin "github.com/aquilax/go-perlin"

// perlinSource adapts go-perlin. The library's alpha divides each successive
// octave, so it is the inverse of gain; beta is the lacunarity.
type perlinSource struct {
	gen  *perlin.Perlin
	freq float64
}

func newPerlinSource(p Params) perlinSource {
	octaves := int32(1)
	beta := 2.0
	if p.Type.Fractal() {
		octaves = int32(p.Octaves)
		beta = p.Lacunarity
	}
	alpha := 2.0
	if p.Gain > 0 {
		alpha = 1 / p.Gain
	}
	return perlinSource{
		gen:  perlin.NewPerlin(alpha, beta, octaves, int64(p.Seed)),
		freq: p.Frequency,
	}
}

func (s perlinSource) Sample(x, y float64) float64 {
	return clamp(s.gen.Noise2D(x*s.freq, y*s.freq))
}
