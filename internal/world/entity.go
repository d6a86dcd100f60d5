package world

import (
	"github.com/ashiaomair/06-final-game-charity-water/internal/core/ecs"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
)

// Kind names a structure type. The values match the building catalog keys.
type Kind string

const (
	KindHut  Kind = "hut"
	KindWall Kind = "wall"
	KindWell Kind = "well"
)

// Structure is a placed building.
type Structure struct {
	ID       ecs.EntityID
	Kind     Kind
	Pos      geom.Point
	Origin   geom.Point // cell the structure was first placed on
	Size     int32
	Bounds   geom.Rect
	Upgraded bool
	Movable  bool // may still be repositioned once
}

func (s *Structure) setPos(p geom.Point) {
	s.Pos = p
	s.Bounds = geom.RectAt(p, s.Size)
}

func (s *Structure) resize(size int32) {
	s.Size = size
	s.Bounds = geom.RectAt(s.Pos, size)
}

// Actor is a villager. Exactly one actor per village is Controllable.
type Actor struct {
	ID           ecs.EntityID
	Pos          geom.Point
	Bounds       geom.Rect
	Controllable bool
}

// Collectible is a water drop lying on the ground.
type Collectible struct {
	ID     ecs.EntityID
	Pos    geom.Point
	Bounds geom.Rect
}

// Tree is a static obstacle.
type Tree struct {
	ID     ecs.EntityID
	Pos    geom.Point
	Bounds geom.Rect
}
