package ecs

// World is the top-level ECS container. It owns the entity pool, the component
// registry, and a deferred destruction queue flushed by CleanupSystem each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	pending      map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 16),
		pending:      make(map[EntityID]struct{}),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

// Alive reports whether id is allocated and not queued for destruction.
func (w *World) Alive(id EntityID) bool {
	if _, queued := w.pending[id]; queued {
		return false
	}
	return w.pool.Alive(id)
}

// Destroy removes an entity immediately.
func (w *World) Destroy(id EntityID) {
	delete(w.pending, id)
	w.registry.RemoveAll(id)
	w.pool.Destroy(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. The entity
// reports !Alive from now on; its components stay readable until the flush.
func (w *World) MarkForDestruction(id EntityID) {
	if _, queued := w.pending[id]; queued {
		return
	}
	w.pending[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() int {
	n := len(w.destroyQueue)
	for _, id := range w.destroyQueue {
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	clear(w.pending)
	return n
}

// Reset drops every entity and component. Used for a full village reset.
// Slot generations survive, so ids from before the reset never resolve.
func (w *World) Reset() {
	w.registry.ClearAll()
	w.pool.DestroyAll()
	w.destroyQueue = w.destroyQueue[:0]
	clear(w.pending)
}
