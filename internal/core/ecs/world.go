package ecs

// World is the top-level entity container. It owns the entity pool and the
// component registry. Destruction is immediate: a destroyed handle is dead
// the moment Destroy returns.
type World struct {
	pool     *EntityPool
	registry *Registry
}

func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Destroy clears the entity from every store and frees its slot.
// Returns false when id was already dead.
func (w *World) Destroy(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	w.registry.RemoveAll(id)
	return w.pool.Destroy(id)
}

// Live returns the number of entities currently alive.
func (w *World) Live() int { return w.pool.Live() }
