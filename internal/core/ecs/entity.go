package ecs

import "fmt"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// Index 0 generation 0 is never handed out so the zero value means "none".
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// Wire returns the 32-bit handle sent to clients: index in the low 24 bits,
// low 8 bits of the generation on top. Collisions need 256 reuses of a slot
// inside one client's lifetime.
func (id EntityID) Wire() uint32 {
	return id.Generation()<<24 | id.Index()&0xFFFFFF
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d/%d", id.Index(), id.Generation())
}

// EntityPool manages entity allocation with generational indices and a free list.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
	live        int
}

func NewEntityPool() *EntityPool {
	p := &EntityPool{
		generations: make([]uint32, 1, 256),
		freeList:    make([]uint32, 0, 64),
		nextIndex:   1, // index 0 reserved
	}
	return p
}

func (p *EntityPool) Create() EntityID {
	p.live++
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntityID(idx, p.generations[idx])
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return // already destroyed (stale reference)
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.live--
}

// DestroyAll releases every live entity. Generations advance as with
// Destroy, so ids handed out before stay invalid.
func (p *EntityPool) DestroyAll() {
	free := make(map[uint32]struct{}, len(p.freeList))
	for _, idx := range p.freeList {
		free[idx] = struct{}{}
	}
	for idx := uint32(1); idx < p.nextIndex; idx++ {
		if _, ok := free[idx]; ok {
			continue
		}
		p.generations[idx]++
		p.freeList = append(p.freeList, idx)
	}
	p.live = 0
}

// Live returns the number of entities currently allocated.
func (p *EntityPool) Live() int { return p.live }
