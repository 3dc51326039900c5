package noise

import "fmt"

// New builds the Source described by p.
//
// Simplex and SimplexFractal are served by the gradient (Perlin) generator;
// both are coherent gradient noise and terrain classification only depends
// on the sign of the sample.
func New(p Params) (Source, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.Type {
	case Value:
		return valueSource{seed: p.Seed, freq: p.Frequency, interp: p.Interp}, nil
	case ValueFractal:
		interp := p.Interp
		return fractal{
			base: func(seed int32, x, y float64) float64 {
				return valueAt(seed, x, y, interp)
			},
			seed:       p.Seed,
			freq:       p.Frequency,
			octaves:    p.Octaves,
			lacunarity: p.Lacunarity,
			gain:       p.Gain,
			kind:       p.Fractal,
		}, nil
	case Perlin, PerlinFractal, Simplex, SimplexFractal:
		return newPerlinSource(p), nil
	case Cellular:
		return cellularSource{
			seed:     p.Seed,
			freq:     p.Frequency,
			jitter:   p.CellularJitter,
			distance: p.CellularDistance,
			ret:      p.CellularReturn,
		}, nil
	case WhiteNoise:
		return whiteSource{seed: p.Seed, freq: p.Frequency}, nil
	}
	return nil, fmt.Errorf("unknown noise type %s", p.Type)
}

// Factory is the default Configurer.
type Factory struct{}

func (Factory) Configure(p Params) (Source, bool) {
	src, err := New(p)
	if err != nil {
		return nil, false
	}
	return src, true
}
