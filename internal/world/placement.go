package world

import (
	"fmt"

	"github.com/ashiaomair/06-final-game-charity-water/internal/core/ecs"
	"github.com/ashiaomair/06-final-game-charity-water/internal/data"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
)

func (s *State) def(kind Kind) (*data.BuildingDef, error) {
	def := s.catalog.Get(string(kind))
	if def == nil {
		return nil, ErrUnknownKind
	}
	return def, nil
}

// PendingBuild returns the kind armed by BeginBuild.
func (s *State) PendingBuild() (Kind, bool) {
	return s.pending, s.pending != ""
}

// BeginBuild arms a build of kind; the next PlaceAt decides where it goes.
func (s *State) BeginBuild(kind Kind) error {
	def, err := s.def(kind)
	if err != nil {
		return s.fail(err)
	}
	if !s.ledger.CanAfford(def.BuildCost) {
		return s.fail(ErrNotEnoughDrops)
	}
	s.pending = kind
	s.notify(fmt.Sprintf("Click anywhere to place your %s!", def.Label))
	return nil
}

// CancelBuild disarms a pending build.
func (s *State) CancelBuild() bool {
	if s.pending == "" {
		return false
	}
	s.pending = ""
	return true
}

// PlaceAt builds the pending kind on the cell nearest target. A rejected
// click keeps the build armed.
func (s *State) PlaceAt(target geom.Point) error {
	if s.pending == "" {
		return s.fail(ErrNoPendingBuild)
	}
	if _, err := s.Place(s.pending, target); err != nil {
		return err
	}
	s.pending = ""
	return nil
}

// Place builds kind on the cell nearest target and charges its cost.
func (s *State) Place(kind Kind, target geom.Point) (*Structure, error) {
	def, err := s.def(kind)
	if err != nil {
		return nil, s.fail(err)
	}
	cell := geom.SnapToGrid(target, s.settings.CellSize)
	if err := s.checkSite(cell, def.Size, 0); err != nil {
		return nil, s.fail(err)
	}
	if err := s.ledger.Debit(RuleConstruction, def.BuildCost); err != nil {
		return nil, s.fail(err)
	}
	st := s.addStructure(def, cell, def.Movable)
	s.notify(fmt.Sprintf("Built %s!", def.Label))
	s.evaluate()
	return st, nil
}

// Reposition moves a movable structure once. The move is validated like a
// placement, ignoring the structure itself, and locks it on success.
func (s *State) Reposition(id ecs.EntityID, target geom.Point) error {
	st, ok := s.Structure(id)
	if !ok {
		return s.fail(ErrNoSuchEntity)
	}
	if !st.Movable {
		return s.fail(ErrNotMovable)
	}
	cell := geom.SnapToGrid(target, s.settings.CellSize)
	if err := s.checkSite(cell, st.Size, id); err != nil {
		return s.fail(err)
	}
	st.setPos(cell)
	st.Movable = false
	if def := s.catalog.Get(string(st.Kind)); def != nil {
		s.notify(fmt.Sprintf("Moved %s!", def.Label))
	}
	return nil
}

// checkSite validates a footprint of size at cell for a new or moved
// structure. self is excluded from the occupancy test.
func (s *State) checkSite(cell geom.Point, size int32, self ecs.EntityID) error {
	r := geom.RectAt(cell, size)
	if !r.Within(s.layout.Bounds) {
		return ErrOutOfBounds
	}
	if s.occupiedExcept(cell, self) || geom.Overlaps(r, s.layout.River) {
		return ErrOccupied
	}
	for _, a := range s.actors.List() {
		if geom.Overlaps(r, a.Bounds) {
			return ErrOccupied
		}
	}
	return nil
}
