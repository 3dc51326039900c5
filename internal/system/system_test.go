package system

import (
	"testing"
	"time"

	"github.com/hexforge/hexgrid/internal/core/event"
	coresys "github.com/hexforge/hexgrid/internal/core/system"
	"github.com/hexforge/hexgrid/internal/gate"
	"github.com/hexforge/hexgrid/internal/grid"
	"github.com/hexforge/hexgrid/internal/noise"
	"github.com/hexforge/hexgrid/internal/spawn"
	"github.com/hexforge/hexgrid/internal/terrain"
	"github.com/hexforge/hexgrid/internal/world"
)

const tick = 100 * time.Millisecond

type loop struct {
	runner   *coresys.Runner
	regen    *RegenSystem
	mgr      *grid.Manager
	nav      *world.NavMesh
	entities *world.Entities
	bus      *event.Bus
}

func newLoop(interval time.Duration) *loop {
	clock := world.NewClock(tick)
	nav := world.NewNavMesh(3)
	ents := world.NewEntities(nil, nil)
	bus := event.NewBus()
	g := gate.New(nav, clock, gate.Config{RetryInterval: tick}, nil)
	mgr := grid.NewManager(terrain.NewGenerator(noise.Factory{}, terrain.Linear{}, nil), g, ents, bus, nil)

	build := func() grid.Request {
		req := grid.DefaultRequest()
		req.Definitions = []spawn.Definition{{Class: "crate", Amount: 4}}
		return req
	}
	regen := NewRegenSystem(mgr, nav, build, interval, nil)

	r := coresys.NewRunner()
	r.Register(NewTimerSystem(clock))
	r.Register(regen)
	r.Register(NewNavBuildSystem(nav))
	r.Register(NewEventDispatchSystem(bus))
	return &loop{runner: r, regen: regen, mgr: mgr, nav: nav, entities: ents, bus: bus}
}

func TestLoopPopulatesAfterNavBuild(t *testing.T) {
	l := newLoop(0)
	var done []grid.PopulationCompleted
	event.Subscribe(l.bus, func(e grid.PopulationCompleted) { done = append(done, e) })

	if !l.regen.RequestDefault() {
		t.Fatal("request rejected")
	}
	l.runner.Tick(tick)

	if l.mgr.Cycle() != 1 {
		t.Fatalf("cycle = %d, want 1", l.mgr.Cycle())
	}
	if !l.nav.IsBlocking() {
		t.Fatal("nav mesh not invalidated after regenerate")
	}
	if l.entities.Count() != 0 {
		t.Fatal("populated on the regenerate tick")
	}

	for i := 0; i < 10 && len(done) == 0; i++ {
		l.runner.Tick(tick)
	}
	if len(done) != 1 {
		t.Fatalf("population events = %d, want 1", len(done))
	}
	if l.entities.Count() != 4 {
		t.Fatalf("live entities = %d, want 4", l.entities.Count())
	}
	if done[0].Report.Attempts < 2 {
		t.Fatalf("gate attempts = %d, want the build to block once", done[0].Report.Attempts)
	}
}

func TestRegenCoalescesQueuedRequests(t *testing.T) {
	l := newLoop(0)
	l.regen.RequestDefault()
	l.regen.RequestDefault()
	l.regen.RequestDefault()
	l.runner.Tick(tick)

	if l.mgr.Cycle() != 1 {
		t.Fatalf("cycle = %d, want 1", l.mgr.Cycle())
	}
}

func TestRegenAutoInterval(t *testing.T) {
	l := newLoop(3 * tick)
	for i := 0; i < 2; i++ {
		l.runner.Tick(tick)
	}
	if l.mgr.Cycle() != 0 {
		t.Fatalf("regenerated early, cycle %d", l.mgr.Cycle())
	}
	l.runner.Tick(tick)
	if l.mgr.Cycle() != 1 {
		t.Fatalf("cycle = %d, want 1", l.mgr.Cycle())
	}
	for i := 0; i < 3; i++ {
		l.runner.Tick(tick)
	}
	if l.mgr.Cycle() != 2 {
		t.Fatalf("cycle = %d, want 2", l.mgr.Cycle())
	}
}
