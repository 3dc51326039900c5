package terrain

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Biome is the coarse terrain classification of a tile.
type Biome uint8

const (
	Grass Biome = iota
	Water
)

func (b Biome) String() string {
	switch b {
	case Grass:
		return "grass"
	case Water:
		return "water"
	}
	return fmt.Sprintf("biome(%d)", b)
}

func (b Biome) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Biome) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "grass":
		*b = Grass
	case "water":
		*b = Water
	default:
		return fmt.Errorf("unknown biome %q", text)
	}
	return nil
}

// Classify maps a noise sample to a biome. Zero is grass.
func Classify(n float64) Biome {
	if n >= 0 {
		return Grass
	}
	return Water
}

// Tile is one generated grid cell. Tiles are immutable once a Table is built.
type Tile struct {
	GridX    int
	GridY    int
	Position mgl64.Vec3
	Biome    Biome
	Noise    float64
}

// Table holds the tiles of one generation cycle in row-major order
// (y outer, x inner). A nil *Table behaves as an empty table.
type Table struct {
	width  int
	height int
	tiles  []Tile
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.tiles)
}

func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return t.width
}

func (t *Table) Height() int {
	if t == nil {
		return 0
	}
	return t.height
}

// At returns the tile at index i. It panics when i is out of range.
func (t *Table) At(i int) Tile {
	return t.tiles[i]
}

// Index converts grid coordinates to a table index.
func (t *Table) Index(x, y int) (int, bool) {
	if t == nil || x < 0 || y < 0 || x >= t.width || y >= t.height {
		return 0, false
	}
	return y*t.width + x, true
}

// Each visits tiles in table order.
func (t *Table) Each(fn func(i int, tile Tile)) {
	if t == nil {
		return
	}
	for i, tile := range t.tiles {
		fn(i, tile)
	}
}

// Positions returns the world position of every tile, indexed like the table.
func (t *Table) Positions() []mgl64.Vec3 {
	if t == nil {
		return nil
	}
	out := make([]mgl64.Vec3, len(t.tiles))
	for i := range t.tiles {
		out[i] = t.tiles[i].Position
	}
	return out
}

// Count returns how many tiles carry biome b.
func (t *Table) Count(b Biome) int {
	n := 0
	t.Each(func(_ int, tile Tile) {
		if tile.Biome == b {
			n++
		}
	})
	return n
}
