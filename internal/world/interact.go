package world

import (
	"fmt"

	"github.com/ashiaomair/06-final-game-charity-water/internal/core/ecs"
)

// Interact is a click on an entity.
func (s *State) Interact(id ecs.EntityID) error {
	if st, ok := s.Structure(id); ok {
		return s.interactStructure(st)
	}
	if _, ok := s.Actor(id); ok {
		s.credit(RuleVillagerReward, s.rules.VillagerReward(string(s.difficulty)))
		return nil
	}
	if c, ok := s.Collectible(id); ok {
		s.consume(c)
		return nil
	}
	return s.fail(ErrNoSuchEntity)
}

func (s *State) interactStructure(st *Structure) error {
	if s.selection != nil && s.selection.has(st.ID) {
		return s.Select(st.ID)
	}
	if st.Kind == KindWell {
		return s.pump(st)
	}
	s.selected = st.ID
	s.notify(fmt.Sprintf("Selected %s", st.Kind))
	return nil
}

// pump draws water from a well at most once per cooldown interval.
func (s *State) pump(st *Structure) error {
	now := s.now()
	if !s.cooldowns.Ready(st.ID, now) {
		return s.fail(ErrWellCooldown)
	}
	s.cooldowns.Mark(st.ID, now)
	s.credit(RuleWellYield, s.rules.WellYield(st.Upgraded))
	return nil
}

// consume removes a collectible at once and credits the pickup reward.
func (s *State) consume(c *Collectible) {
	s.ecs.Destroy(c.ID)
	s.credit(RulePickup, s.rules.PickupReward())
}
