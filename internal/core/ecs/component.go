package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
	Clear()
}

// PtrComponentStore is a generic typed store for ECS components.
// Iteration follows insertion order so every projection of the village
// (rendering, snapshots, tests) sees entities in the order they were placed.
type PtrComponentStore[T any] struct {
	data  map[EntityID]*T
	order []EntityID
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		data:  make(map[EntityID]*T, 64),
		order: make([]EntityID, 0, 64),
	}
}

// Set inserts or replaces the component. Replacing keeps the original position.
func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.order = append(s.order, id)
	}
	s.data[id] = c
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; !ok {
		return
	}
	delete(s.data, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear drops every component, keeping allocated capacity.
func (s *PtrComponentStore[T]) Clear() {
	clear(s.data)
	s.order = s.order[:0]
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

// Each visits components in insertion order. fn must not add or remove
// components of this store; collect IDs first and mutate afterwards.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.order {
		fn(id, s.data[id])
	}
}

// List returns the components in insertion order.
func (s *PtrComponentStore[T]) List() []*T {
	out := make([]*T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.data[id])
	}
	return out
}

// First returns the earliest inserted component matching pred.
func (s *PtrComponentStore[T]) First(pred func(*T) bool) (*T, bool) {
	for _, id := range s.order {
		if c := s.data[id]; pred(c) {
			return c, true
		}
	}
	return nil, false
}
