// Package world holds the in-process collaborators the grid manager drives:
// the entity store it spawns into, the navigation build it waits on, and
// the tick clock that schedules its retries.
package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/hexforge/hexgrid/internal/core/ecs"
	"github.com/hexforge/hexgrid/internal/spawn"
)

// Kind records which class an entity was spawned from.
type Kind struct {
	Class spawn.ClassRef
}

type Transform struct {
	Position mgl64.Vec3
	Yaw      float64
}

// Entities is the entity store placements are instantiated into.
type Entities struct {
	ecs        *ecs.World
	kinds      *ecs.Store[Kind]
	transforms *ecs.Store[Transform]
	known      map[spawn.ClassRef]bool
	log        *zap.Logger
}

// NewEntities creates a store. When classes is non-empty, Spawn refuses any
// class outside it.
func NewEntities(classes []spawn.ClassRef, log *zap.Logger) *Entities {
	if log == nil {
		log = zap.NewNop()
	}
	w := ecs.NewWorld()
	e := &Entities{
		ecs:        w,
		kinds:      ecs.NewStore[Kind](),
		transforms: ecs.NewStore[Transform](),
		log:        log,
	}
	w.Registry().Register(e.kinds)
	w.Registry().Register(e.transforms)
	if len(classes) > 0 {
		e.known = make(map[spawn.ClassRef]bool, len(classes))
		for _, c := range classes {
			e.known[c] = true
		}
	}
	return e
}

func (e *Entities) Spawn(class spawn.ClassRef, pos mgl64.Vec3, yaw float64) (ecs.EntityID, bool) {
	if class == "" || (e.known != nil && !e.known[class]) {
		e.log.Debug("entities: unknown class", zap.String("class", string(class)))
		return 0, false
	}
	id := e.ecs.CreateEntity()
	e.kinds.Set(id, &Kind{Class: class})
	e.transforms.Set(id, &Transform{Position: pos, Yaw: yaw})
	return id, true
}

// Destroy removes the entity. Stale handles are ignored.
func (e *Entities) Destroy(id ecs.EntityID) {
	e.ecs.Destroy(id)
}

func (e *Entities) Alive(id ecs.EntityID) bool { return e.ecs.Alive(id) }

func (e *Entities) Count() int { return e.ecs.Live() }

// Get returns the class and transform of a live entity.
func (e *Entities) Get(id ecs.EntityID) (Kind, Transform, bool) {
	k, ok := e.kinds.Get(id)
	if !ok {
		return Kind{}, Transform{}, false
	}
	tr, _ := e.transforms.Get(id)
	return *k, *tr, true
}

// Each visits every live entity. Order is unspecified.
func (e *Entities) Each(fn func(ecs.EntityID, Kind, Transform)) {
	ecs.Each2(e.kinds, e.transforms, func(id ecs.EntityID, k *Kind, tr *Transform) {
		fn(id, *k, *tr)
	})
}
