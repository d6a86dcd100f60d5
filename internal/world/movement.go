package world

import (
	"time"

	"github.com/ashiaomair/06-final-game-charity-water/internal/core/ecs"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
)

// Direction is the held movement key.
type Direction uint8

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "none"
}

func (d Direction) valid() bool { return d >= DirUp && d <= DirRight }

func (d Direction) delta(step int32) (dx, dy int32) {
	switch d {
	case DirUp:
		return 0, -step
	case DirDown:
		return 0, step
	case DirLeft:
		return -step, 0
	case DirRight:
		return step, 0
	}
	return 0, 0
}

// Mover is the direction state machine of the controllable villager. While
// armed, every game-loop tick advances the villager by one step.
type Mover struct {
	dir      Direction
	armed    bool
	lastTick time.Time
}

func (m Mover) Direction() Direction { return m.dir }
func (m Mover) Armed() bool          { return m.armed }
func (m Mover) LastTick() time.Time  { return m.lastTick }

// Press starts moving in d unless another direction is already held.
func (s *State) Press(d Direction) bool {
	if !d.valid() || s.mover.dir != DirNone {
		return false
	}
	s.mover.dir = d
	s.mover.armed = true
	return true
}

// Release stops movement if d is the held direction. The pending tick is
// cancelled along with it.
func (s *State) Release(d Direction) bool {
	if d == DirNone || s.mover.dir != d {
		return false
	}
	s.mover.dir = DirNone
	s.mover.armed = false
	return true
}

// Tick advances the controllable villager one step in the held direction.
// A step that would leave the village or hit an obstacle is dropped; the
// direction stays held. Collectibles under the new position are picked up.
func (s *State) Tick() bool {
	if !s.mover.armed {
		return false
	}
	a := s.Controllable()
	if a == nil {
		return false
	}
	s.mover.lastTick = s.now()

	dx, dy := s.mover.dir.delta(s.settings.Step)
	next := a.Pos.Add(dx, dy)
	r := geom.RectAt(next, s.settings.ActorSize)
	if !r.Within(s.layout.Bounds) || s.IsBlocked(r) {
		return false
	}
	a.Pos = next
	a.Bounds = r

	for _, c := range s.Collectibles() {
		if geom.Overlaps(r, c.Bounds) {
			s.consume(c)
		}
	}
	return true
}

// IsBlocked reports whether r hits a tree, a structure or the river. The
// river does not block while r touches the bridge.
func (s *State) IsBlocked(r geom.Rect) bool {
	return geom.IsBlocked(r, s.obstacles(), &s.layout.Bridge)
}

func (s *State) obstacles() []geom.Obstacle {
	trees := s.Trees()
	structures := s.structures.List()
	out := make([]geom.Obstacle, 0, len(trees)+len(structures)+1)
	for _, t := range trees {
		out = append(out, geom.Obstacle{Rect: t.Bounds})
	}
	for _, st := range structures {
		out = append(out, geom.Obstacle{Rect: st.Bounds})
	}
	return append(out, geom.Obstacle{Rect: s.layout.River, Crossable: true})
}

// IsOccupied reports whether a structure or tree sits exactly at p.
func (s *State) IsOccupied(p geom.Point) bool {
	return s.occupiedExcept(p, 0)
}

func (s *State) occupiedExcept(p geom.Point, self ecs.EntityID) bool {
	if _, ok := s.structures.First(func(st *Structure) bool { return st.Pos == p && st.ID != self }); ok {
		return true
	}
	for _, t := range s.Trees() {
		if t.Pos == p {
			return true
		}
	}
	return false
}
