package world

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/hexforge/hexgrid/internal/core/ecs"
	"github.com/hexforge/hexgrid/internal/spawn"
)

func TestClockRoundsUpToTicks(t *testing.T) {
	c := NewClock(100 * time.Millisecond)
	fired := 0
	c.After(250*time.Millisecond, func() { fired++ })

	c.Advance()
	c.Advance()
	if fired != 0 {
		t.Fatalf("fired early after %d ticks", c.Now())
	}
	c.Advance()
	if fired != 1 {
		t.Fatalf("fired = %d after 3 ticks, want 1", fired)
	}
	c.Advance()
	if fired != 1 {
		t.Fatalf("callback ran twice")
	}
}

func TestClockZeroDelayWaitsOneTick(t *testing.T) {
	c := NewClock(50 * time.Millisecond)
	fired := false
	c.After(0, func() { fired = true })
	if fired {
		t.Fatal("zero delay must not fire synchronously")
	}
	c.Advance()
	if !fired {
		t.Fatal("zero delay did not fire on the next tick")
	}
}

func TestClockCancel(t *testing.T) {
	c := NewClock(time.Millisecond)
	fired := false
	tok := c.After(0, func() { fired = true })
	c.Cancel(tok)
	c.Cancel(tok)
	c.Advance()
	if fired {
		t.Fatal("cancelled callback fired")
	}
	if c.Pending() != 0 {
		t.Fatalf("Pending = %d, want 0", c.Pending())
	}
}

func TestClockOrderAndReentry(t *testing.T) {
	c := NewClock(time.Millisecond)
	var got []int
	c.After(0, func() {
		got = append(got, 1)
		c.After(0, func() { got = append(got, 3) })
	})
	c.After(0, func() { got = append(got, 2) })

	c.Advance()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("first tick ran %v, want [1 2]", got)
	}
	c.Advance()
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("second tick ran %v, want [1 2 3]", got)
	}
}

func TestNavMeshBuild(t *testing.T) {
	n := NewNavMesh(2)
	if n.IsBlocking() {
		t.Fatal("fresh mesh blocking")
	}
	n.Invalidate(150)
	if n.Remaining() != 4 {
		t.Fatalf("Remaining = %d, want 4", n.Remaining())
	}
	for i := 0; i < 3; i++ {
		n.Tick()
	}
	if !n.IsBlocking() {
		t.Fatal("mesh cleared early")
	}
	n.Tick()
	if n.IsBlocking() {
		t.Fatal("mesh still blocking after build")
	}
}

func TestNavMeshLock(t *testing.T) {
	n := NewNavMesh(0)
	n.Invalidate(1000)
	if n.IsBlocking() {
		t.Fatal("instant mesh blocking")
	}
	n.Lock()
	n.Lock()
	n.Unlock()
	if !n.IsBlocking() {
		t.Fatal("held lock not blocking")
	}
	n.Unlock()
	n.Unlock()
	if n.IsBlocking() {
		t.Fatal("released lock still blocking")
	}
}

func TestEntitiesSpawnDestroy(t *testing.T) {
	e := NewEntities([]spawn.ClassRef{"rock"}, nil)

	if _, ok := e.Spawn("tree", mgl64.Vec3{}, 0); ok {
		t.Fatal("unknown class spawned")
	}
	if _, ok := e.Spawn("", mgl64.Vec3{}, 0); ok {
		t.Fatal("empty class spawned")
	}

	id, ok := e.Spawn("rock", mgl64.Vec3{1, 2, 3}, 90)
	if !ok || id == 0 {
		t.Fatalf("Spawn = %v, %v", id, ok)
	}
	k, tr, ok := e.Get(id)
	if !ok || k.Class != "rock" || tr.Position != (mgl64.Vec3{1, 2, 3}) || tr.Yaw != 90 {
		t.Fatalf("Get = %+v %+v %v", k, tr, ok)
	}
	if e.Count() != 1 {
		t.Fatalf("Count = %d, want 1", e.Count())
	}

	e.Spawn("rock", mgl64.Vec3{}, 0)
	seen := 0
	e.Each(func(_ ecs.EntityID, k Kind, _ Transform) {
		if k.Class == "rock" {
			seen++
		}
	})
	if seen != 2 {
		t.Fatalf("Each visited %d, want 2", seen)
	}

	e.Destroy(id)
	e.Destroy(id)
	if e.Alive(id) || e.Count() != 1 {
		t.Fatal("entity survived Destroy")
	}
	if _, _, ok := e.Get(id); ok {
		t.Fatal("components survived Destroy")
	}
}
