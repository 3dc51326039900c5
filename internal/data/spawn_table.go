// Package data loads the static spawn tables the grid is populated from.
package data

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/hexforge/hexgrid/internal/spawn"
)

//go:embed spawn_table.schema.json
var spawnTableSchema []byte

const spawnTableSchemaURL = "mem:///spawn_table.schema.json"

// SpawnableEntry is one count-based definition.
type SpawnableEntry struct {
	Class           string  `yaml:"class"`
	Amount          int     `yaml:"amount"`
	MinHeightOffset float64 `yaml:"min_height_offset"`
	MaxHeightOffset float64 `yaml:"max_height_offset"`
	AllowStacking   bool    `yaml:"allow_stacking"`
	StackChance     float64 `yaml:"stack_chance"`
	RandomRotate    bool    `yaml:"random_rotate"`
}

// RollEntry configures the per-tile roll policy.
type RollEntry struct {
	EnemyChance  float64  `yaml:"enemy_chance"`
	PickupChance float64  `yaml:"pickup_chance"`
	PropChance   float64  `yaml:"prop_chance"`
	Enemies      []string `yaml:"enemies"`
	Pickups      []string `yaml:"pickups"`
	Props        []string `yaml:"props"`
}

type spawnTableFile struct {
	Spawnables []SpawnableEntry `yaml:"spawnables"`
	Rolls      RollEntry        `yaml:"rolls"`
}

// check covers the cross-field rules the schema cannot express.
func (f *spawnTableFile) check() error {
	for i, e := range f.Spawnables {
		if e.MinHeightOffset > e.MaxHeightOffset {
			return fmt.Errorf("spawnables[%d] %q: min_height_offset %v > max_height_offset %v",
				i, e.Class, e.MinHeightOffset, e.MaxHeightOffset)
		}
	}
	r := f.Rolls
	if sum := r.EnemyChance + r.PickupChance + r.PropChance; sum > 1+1e-9 {
		return fmt.Errorf("rolls: enemy_chance + pickup_chance + prop_chance = %v, want <= 1", sum)
	}
	return nil
}

// SpawnTable holds both policies' inputs.
type SpawnTable struct {
	entries []SpawnableEntry
	rolls   RollEntry
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(spawnTableSchemaURL, bytes.NewReader(spawnTableSchema)); err != nil {
			schemaErr = fmt.Errorf("add spawn table schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(spawnTableSchemaURL)
	})
	return schema, schemaErr
}

// LoadSpawnTable loads a spawn table from a YAML file.
func LoadSpawnTable(path string) (*SpawnTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_table: %w", err)
	}
	t, err := ParseSpawnTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseSpawnTable validates data against the table schema and decodes it.
// Roll chances left out of the file keep their defaults.
func ParseSpawnTable(data []byte) (*SpawnTable, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse spawn_table: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	doc, err := jsonValue(raw)
	if err != nil {
		return nil, fmt.Errorf("parse spawn_table: %w", err)
	}
	s, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate spawn_table: %w", err)
	}

	def := spawn.DefaultRollTable()
	f := spawnTableFile{Rolls: RollEntry{
		EnemyChance:  def.EnemyChance,
		PickupChance: def.PickupChance,
		PropChance:   def.PropChance,
	}}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_table: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, fmt.Errorf("validate spawn_table: %w", err)
	}
	return &SpawnTable{entries: f.Spawnables, rolls: f.Rolls}, nil
}

// jsonValue converts a YAML document into the shape encoding/json produces,
// which is what the schema validator expects.
func jsonValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Definitions returns the count-based definitions in file order.
func (t *SpawnTable) Definitions() []spawn.Definition {
	out := make([]spawn.Definition, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, spawn.Definition{
			Class:           spawn.ClassRef(e.Class),
			Amount:          e.Amount,
			MinHeightOffset: e.MinHeightOffset,
			MaxHeightOffset: e.MaxHeightOffset,
			AllowStacking:   e.AllowStacking,
			StackChance:     e.StackChance,
			RandomRotate:    e.RandomRotate,
		})
	}
	return out
}

// RollTable returns the per-tile roll configuration.
func (t *SpawnTable) RollTable() spawn.RollTable {
	return spawn.RollTable{
		Enemies:      classRefs(t.rolls.Enemies),
		Pickups:      classRefs(t.rolls.Pickups),
		Props:        classRefs(t.rolls.Props),
		EnemyChance:  t.rolls.EnemyChance,
		PickupChance: t.rolls.PickupChance,
		PropChance:   t.rolls.PropChance,
	}
}

// Classes returns every distinct class the table can spawn.
func (t *SpawnTable) Classes() []spawn.ClassRef {
	seen := make(map[string]bool)
	var out []spawn.ClassRef
	add := func(names ...string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, spawn.ClassRef(n))
			}
		}
	}
	for _, e := range t.entries {
		add(e.Class)
	}
	add(t.rolls.Enemies...)
	add(t.rolls.Pickups...)
	add(t.rolls.Props...)
	return out
}

// Count returns the number of count-based definitions.
func (t *SpawnTable) Count() int { return len(t.entries) }

func classRefs(names []string) []spawn.ClassRef {
	if len(names) == 0 {
		return nil
	}
	out := make([]spawn.ClassRef, len(names))
	for i, n := range names {
		out[i] = spawn.ClassRef(n)
	}
	return out
}
