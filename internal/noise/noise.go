// Package noise provides the coherent noise sources sampled by terrain
// generation. Every Source is a pure function of its Params and the
// coordinates it is asked for.
package noise

import (
	"fmt"
	"strings"
)

// Type selects the noise algorithm.
type Type uint8

const (
	Value Type = iota
	ValueFractal
	Perlin
	PerlinFractal
	Simplex
	SimplexFractal
	Cellular
	WhiteNoise
)

var typeNames = []string{"value", "value_fractal", "perlin", "perlin_fractal", "simplex", "simplex_fractal", "cellular", "white_noise"}

func (t Type) String() string { return enumString(typeNames, int(t)) }

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	return enumParse(typeNames, "noise type", b, (*uint8)(t))
}

// Fractal reports whether the type sums multiple octaves.
func (t Type) Fractal() bool {
	return t == ValueFractal || t == PerlinFractal || t == SimplexFractal
}

// Interp is the lattice interpolation curve for value noise.
type Interp uint8

const (
	Linear Interp = iota
	Hermite
	Quintic
)

var interpNames = []string{"linear", "hermite", "quintic"}

func (i Interp) String() string { return enumString(interpNames, int(i)) }

func (i Interp) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *Interp) UnmarshalText(b []byte) error {
	return enumParse(interpNames, "interp", b, (*uint8)(i))
}

// FractalType shapes how octaves are combined.
type FractalType uint8

const (
	FBM FractalType = iota
	Billow
	RigidMulti
)

var fractalNames = []string{"fbm", "billow", "rigid_multi"}

func (f FractalType) String() string { return enumString(fractalNames, int(f)) }

func (f FractalType) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FractalType) UnmarshalText(b []byte) error {
	return enumParse(fractalNames, "fractal type", b, (*uint8)(f))
}

// CellularDistance is the metric used to find the nearest feature point.
type CellularDistance uint8

const (
	Euclidean CellularDistance = iota
	Manhattan
	Natural
)

var distanceNames = []string{"euclidean", "manhattan", "natural"}

func (d CellularDistance) String() string { return enumString(distanceNames, int(d)) }

func (d CellularDistance) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *CellularDistance) UnmarshalText(b []byte) error {
	return enumParse(distanceNames, "cellular distance", b, (*uint8)(d))
}

// CellularReturn selects what a cellular sample reports.
type CellularReturn uint8

const (
	CellValue CellularReturn = iota
	Distance
	Distance2
)

var returnNames = []string{"cell_value", "distance", "distance2"}

func (r CellularReturn) String() string { return enumString(returnNames, int(r)) }

func (r CellularReturn) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *CellularReturn) UnmarshalText(b []byte) error {
	return enumParse(returnNames, "cellular return", b, (*uint8)(r))
}

// Params are the fixed generation parameters of one noise source.
type Params struct {
	Type             Type             `toml:"type" yaml:"type"`
	Seed             int32            `toml:"seed" yaml:"seed"`
	Frequency        float64          `toml:"frequency" yaml:"frequency"`
	Interp           Interp           `toml:"interp" yaml:"interp"`
	Fractal          FractalType      `toml:"fractal" yaml:"fractal"`
	Octaves          int              `toml:"octaves" yaml:"octaves"`
	Lacunarity       float64          `toml:"lacunarity" yaml:"lacunarity"`
	Gain             float64          `toml:"gain" yaml:"gain"`
	CellularJitter   float64          `toml:"cellular_jitter" yaml:"cellular_jitter"`
	CellularDistance CellularDistance `toml:"cellular_distance" yaml:"cellular_distance"`
	CellularReturn   CellularReturn   `toml:"cellular_return" yaml:"cellular_return"`
}

// DefaultParams mirrors the defaults the generator ships with.
func DefaultParams() Params {
	return Params{
		Type:             Simplex,
		Seed:             1337,
		Frequency:        0.01,
		Interp:           Quintic,
		Fractal:          FBM,
		Octaves:          3,
		Lacunarity:       2.0,
		Gain:             0.5,
		CellularJitter:   0.45,
		CellularDistance: Euclidean,
		CellularReturn:   CellValue,
	}
}

// Validate reports why p cannot produce a source, or nil.
func (p Params) Validate() error {
	if int(p.Type) >= len(typeNames) {
		return fmt.Errorf("unknown noise type %d", p.Type)
	}
	if !(p.Frequency > 0) {
		return fmt.Errorf("frequency must be > 0, got %v", p.Frequency)
	}
	if p.Type.Fractal() {
		if p.Octaves < 1 {
			return fmt.Errorf("fractal noise needs octaves >= 1, got %d", p.Octaves)
		}
		if !(p.Lacunarity > 0) {
			return fmt.Errorf("lacunarity must be > 0, got %v", p.Lacunarity)
		}
	}
	if p.CellularJitter < 0 {
		return fmt.Errorf("cellular jitter must be >= 0, got %v", p.CellularJitter)
	}
	return nil
}

// Source samples 2D noise. Results are in [-1, 1].
type Source interface {
	Sample(x, y float64) float64
}

// Configurer builds a Source from Params. ok is false when the parameters
// cannot produce an initialized source.
type Configurer interface {
	Configure(p Params) (src Source, ok bool)
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

func enumString(names []string, i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("unknown(%d)", i)
}

func enumParse(names []string, what string, b []byte, dst *uint8) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range names {
		if n == s {
			*dst = uint8(i)
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", what, s)
}
