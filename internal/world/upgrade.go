package world

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ashiaomair/06-final-game-charity-water/internal/core/ecs"
	"github.com/ashiaomair/06-final-game-charity-water/internal/core/event"
	"github.com/ashiaomair/06-final-game-charity-water/internal/data"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
)

// Selection is an open upgrade choice between several structures of a kind.
type Selection struct {
	Kind       Kind
	Candidates []ecs.EntityID
}

func (sel *Selection) has(id ecs.EntityID) bool {
	return slices.Contains(sel.Candidates, id)
}

// Selection returns the open upgrade choice, if any.
func (s *State) Selection() (Selection, bool) {
	if s.selection == nil {
		return Selection{}, false
	}
	return *s.selection, true
}

// Upgrade upgrades structures of kind. Kinds upgraded all at once are
// charged once; kinds upgraded one at a time either upgrade the single
// candidate or open a Selection for the player to choose from.
func (s *State) Upgrade(kind Kind) error {
	def, err := s.def(kind)
	if err != nil {
		return s.fail(err)
	}
	if def.UpgradeMode == data.UpgradeAll {
		return s.upgradeAll(def)
	}
	return s.upgradeOne(def)
}

func (s *State) upgradeAll(def *data.BuildingDef) error {
	kind := Kind(def.Kind)
	perimeter := kind == KindWall && !s.wallUpgraded
	var targets []*Structure
	for _, st := range s.structures.List() {
		if st.Kind == kind && !st.Upgraded {
			targets = append(targets, st)
		}
	}
	if !perimeter && len(targets) == 0 {
		return s.fail(ErrWallsUpgraded)
	}
	if err := s.ledger.Debit(RuleUpgrade, def.UpgradeCost); err != nil {
		return s.fail(rejectf(ErrNotEnoughDrops, "Not enough water drops to upgrade the %s!", def.Label))
	}
	for _, st := range targets {
		st.Upgraded = true
		st.resize(def.UpgradedSize)
	}
	if kind == KindWall {
		s.wallUpgraded = true
		if !s.wallCleared {
			s.wallCleared = true
			s.pruneTrees(s.layout.WallZone)
		}
	}
	s.notify(fmt.Sprintf("%s upgraded!", capitalize(def.Kind)))
	s.evaluate()
	return nil
}

func (s *State) upgradeOne(def *data.BuildingDef) error {
	kind := Kind(def.Kind)
	var candidates []ecs.EntityID
	for _, st := range s.structures.List() {
		if st.Kind == kind && !st.Upgraded {
			candidates = append(candidates, st.ID)
		}
	}
	if len(candidates) == 0 {
		return s.fail(rejectf(ErrNothingToUpgrade, "No %s to upgrade!", def.Label))
	}
	if !s.ledger.CanAfford(def.UpgradeCost) {
		return s.fail(rejectf(ErrNotEnoughDrops, "Not enough water drops to upgrade the %s!", def.Label))
	}
	if len(candidates) == 1 {
		st, _ := s.structures.Get(candidates[0])
		return s.applyUpgrade(st, def)
	}
	s.selection = &Selection{Kind: kind, Candidates: candidates}
	s.emitSelection()
	s.notify(fmt.Sprintf("Click the %s you want to upgrade", def.Label))
	return nil
}

// Select upgrades the chosen candidate of the open selection and closes it.
func (s *State) Select(id ecs.EntityID) error {
	if s.selection == nil {
		return s.fail(ErrNoSuchEntity)
	}
	def, err := s.def(s.selection.Kind)
	if err != nil {
		return s.fail(err)
	}
	st, ok := s.Structure(id)
	if !ok || !s.selection.has(id) || st.Upgraded {
		return s.fail(rejectf(ErrNotSelectable, "Click the %s you want to upgrade", def.Label))
	}
	s.CancelSelection()
	return s.applyUpgrade(st, def)
}

// CancelSelection closes an open selection without upgrading anything.
func (s *State) CancelSelection() bool {
	if s.selection == nil {
		return false
	}
	s.selection = nil
	s.emitSelection()
	return true
}

func (s *State) applyUpgrade(st *Structure, def *data.BuildingDef) error {
	if err := s.ledger.Debit(RuleUpgrade, def.UpgradeCost); err != nil {
		return s.fail(rejectf(ErrNotEnoughDrops, "Not enough water drops to upgrade the %s!", def.Label))
	}
	st.Upgraded = true
	st.resize(def.UpgradedSize)
	s.notify(fmt.Sprintf("%s upgraded!", capitalize(def.Label)))
	s.evaluate()
	return nil
}

func (s *State) emitSelection() {
	var ids []uint32
	if s.selection != nil {
		ids = make([]uint32, 0, len(s.selection.Candidates))
		for _, id := range s.selection.Candidates {
			ids = append(ids, id.Wire())
		}
	}
	event.Emit(s.bus, event.SelectionChanged{Village: s.id, Candidates: ids})
}

// pruneTrees queues every tree overlapping zone for removal.
func (s *State) pruneTrees(zone geom.Rect) int {
	n := 0
	for _, t := range s.Trees() {
		if geom.Overlaps(t.Bounds, zone) {
			s.ecs.MarkForDestruction(t.ID)
			n++
		}
	}
	return n
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
