package terrain

// HeightPolicy turns a tile's noise sample into its vertical offset.
type HeightPolicy interface {
	Height(b Biome, noise, strength float64) float64
}

// HeightFunc adapts a function to HeightPolicy.
type HeightFunc func(b Biome, noise, strength float64) float64

func (f HeightFunc) Height(b Biome, noise, strength float64) float64 { return f(b, noise, strength) }

// Linear is noise * strength for every biome.
type Linear struct{}

func (Linear) Height(_ Biome, noise, strength float64) float64 { return noise * strength }

// WaterDamping scales water noise by Factor before strength is applied,
// flattening lakes relative to land.
type WaterDamping struct {
	Factor float64
}

func (w WaterDamping) Height(b Biome, noise, strength float64) float64 {
	if b == Water {
		noise *= w.Factor
	}
	return noise * strength
}
