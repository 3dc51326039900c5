// Package grid owns the lifecycle of one procedural hex grid: reset,
// terrain generation, gated population and teardown.
package grid

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hexforge/hexgrid/internal/core/ecs"
	"github.com/hexforge/hexgrid/internal/core/event"
	"github.com/hexforge/hexgrid/internal/gate"
	"github.com/hexforge/hexgrid/internal/noise"
	"github.com/hexforge/hexgrid/internal/spawn"
	"github.com/hexforge/hexgrid/internal/terrain"
)

// Handle identifies a spawned entity.
type Handle = ecs.EntityID

// Spawner instantiates placements. Spawn reports false when it could not
// create the entity. Destroy of a stale handle is a no-op.
type Spawner interface {
	Spawn(class spawn.ClassRef, pos mgl64.Vec3, yaw float64) (Handle, bool)
	Destroy(h Handle)
}

// Request is the full parameter set for one cycle.
type Request struct {
	Layout      terrain.Layout
	Noise       noise.Params
	Policy      spawn.Policy
	Definitions []spawn.Definition
	Rolls       spawn.RollTable
	// Seed for allocation. Zero derives one from the noise seed and cycle.
	Seed int64
}

// DefaultRequest is a 5x5 grid with the default noise and roll chances.
func DefaultRequest() Request {
	return Request{
		Layout: terrain.DefaultLayout(),
		Noise:  noise.DefaultParams(),
		Policy: spawn.CountBased,
		Rolls:  spawn.DefaultRollTable(),
	}
}

// Manager is the single owner of the tile table and tracked handles. It is
// not safe for concurrent use; drive it from the game loop.
type Manager struct {
	gen     *terrain.Generator
	gate    *gate.Gate
	spawner Spawner
	bus     *event.Bus
	log     *zap.Logger

	observers []Observer
	now       func() time.Time

	table   *terrain.Table
	handles []Handle
	cycle   uint64
	pending *Request
	started time.Time
	seed    int64
	last    *CycleReport
}

// NewManager wires the manager. bus may be nil.
func NewManager(gen *terrain.Generator, g *gate.Gate, spawner Spawner, bus *event.Bus, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		gen:     gen,
		gate:    g,
		spawner: spawner,
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
}

// AddObserver registers o for cycle reports.
func (m *Manager) AddObserver(o Observer) {
	m.observers = append(m.observers, o)
}

// Regenerate resets the grid, builds new terrain and, once the gate opens,
// populates it. A cycle still waiting on the gate is cancelled first.
// Precondition failures and empty grids end the cycle early with a warning.
func (m *Manager) Regenerate(req Request) {
	m.Reset()
	m.cycle++
	cycle := m.cycle
	m.started = m.now()
	emit(m, CycleStarted{Cycle: cycle})

	if !m.generate(req.Layout, req.Noise) {
		return
	}
	if m.table.Len() == 0 {
		m.log.Warn("grid: generated zero tiles, population skipped",
			zap.Uint64("cycle", cycle),
			zap.Int("width", req.Layout.Width),
			zap.Int("height", req.Layout.Height))
		m.abandon(cycle, "empty grid")
		return
	}

	r := req
	m.pending = &r
	m.seed = req.Seed
	if m.seed == 0 {
		m.seed = deriveSeed(req.Noise.Seed, cycle)
	}
	m.gate.Begin(func() { m.populate(cycle) })
}

// GenerateTerrainOnly resets the grid and builds terrain without populating.
func (m *Manager) GenerateTerrainOnly(l terrain.Layout, p noise.Params) {
	m.Reset()
	m.cycle++
	m.started = m.now()
	emit(m, CycleStarted{Cycle: m.cycle})
	m.generate(l, p)
}

func (m *Manager) generate(l terrain.Layout, p noise.Params) bool {
	table, err := m.gen.Generate(l, p)
	if err != nil {
		m.log.Warn("grid: terrain generation aborted",
			zap.Uint64("cycle", m.cycle), zap.Error(err))
		m.abandon(m.cycle, err.Error())
		return false
	}
	m.table = table
	emit(m, TerrainGenerated{
		Cycle: m.cycle,
		Tiles: table.Len(),
		Grass: table.Count(terrain.Grass),
		Water: table.Count(terrain.Water),
	})
	return true
}

func (m *Manager) populate(cycle uint64) {
	req := m.pending
	if cycle != m.cycle || req == nil || m.table == nil {
		return
	}
	m.pending = nil

	alloc := spawn.Allocator{
		Policy:      req.Policy,
		Definitions: req.Definitions,
		Rolls:       req.Rolls,
		Log:         m.log,
	}
	rng := rand.New(rand.NewSource(m.seed))
	placements := alloc.Run(m.table.Positions(), rng)

	spawned := 0
	for _, p := range placements {
		h, ok := m.spawner.Spawn(p.Class, p.Position, p.Yaw)
		if !ok {
			m.log.Warn("grid: spawn failed",
				zap.String("class", string(p.Class)),
				zap.Int("tile", p.Tile))
			continue
		}
		m.handles = append(m.handles, h)
		spawned++
		m.log.Debug("grid: spawned",
			zap.String("class", string(p.Class)),
			zap.Int("tile", p.Tile),
			zap.Int("stack", p.Stack))
	}

	report := CycleReport{
		ID:         uuid.New(),
		Cycle:      cycle,
		Seed:       m.seed,
		Width:      m.table.Width(),
		Height:     m.table.Height(),
		Tiles:      m.table.Len(),
		Grass:      m.table.Count(terrain.Grass),
		Water:      m.table.Count(terrain.Water),
		Policy:     req.Policy,
		Requested:  alloc.Requested(),
		Placed:     len(placements),
		Spawned:    spawned,
		Attempts:   m.gate.Attempts(),
		StartedAt:  m.started,
		ReadyAt:    m.now(),
		Placements: placements,
	}
	m.last = &report

	fields := []zap.Field{
		zap.Uint64("cycle", cycle),
		zap.Int("tiles", report.Tiles),
		zap.Int("placed", report.Placed),
		zap.Int("spawned", report.Spawned),
		zap.Duration("gate_wait", report.Wait()),
	}
	for class, n := range spawn.Summary(placements) {
		fields = append(fields, zap.Int("class."+string(class), n))
	}
	m.log.Info("grid: cycle populated", fields...)

	emit(m, PopulationCompleted{Report: report})
	for _, o := range m.observers {
		o.CycleCompleted(report)
	}
}

func (m *Manager) abandon(cycle uint64, reason string) {
	emit(m, CycleAbandoned{Cycle: cycle, Reason: reason})
}

// Reset destroys every tracked entity, clears the tile table and cancels a
// pending population. Calling it on an empty grid is a no-op.
func (m *Manager) Reset() {
	m.gate.Cancel()
	m.pending = nil
	for _, h := range m.handles {
		m.spawner.Destroy(h)
	}
	m.handles = nil
	m.table = nil
}

// Teardown releases everything the manager holds, including the last report.
func (m *Manager) Teardown() {
	m.Reset()
	m.last = nil
	m.log.Info("grid: torn down", zap.Uint64("cycles", m.cycle))
}

// Tiles returns the current tile table. The table is owned by the manager
// and replaced on the next cycle; callers must not keep it.
func (m *Manager) Tiles() *terrain.Table { return m.table }

// Handles returns a copy of the tracked entity handles.
func (m *Manager) Handles() []Handle {
	out := make([]Handle, len(m.handles))
	copy(out, m.handles)
	return out
}

// Cycle returns the number of cycles started.
func (m *Manager) Cycle() uint64 { return m.cycle }

// State returns the gate state of the current cycle.
func (m *Manager) State() gate.State { return m.gate.State() }

// Last returns the report of the most recent populated cycle.
func (m *Manager) Last() (CycleReport, bool) {
	if m.last == nil {
		return CycleReport{}, false
	}
	return *m.last, true
}

func emit[T any](m *Manager, ev T) {
	if m.bus != nil {
		event.Emit(m.bus, ev)
	}
}

func deriveSeed(noiseSeed int32, cycle uint64) int64 {
	s := int64(noiseSeed)*1_000_003 + int64(cycle)
	if s == 0 {
		s = 1
	}
	return s
}
