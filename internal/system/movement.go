package system

import (
	"time"

	coresys "github.com/ashiaomair/06-final-game-charity-water/internal/core/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// MovementSystem advances every village's held direction by one step.
// Phase 1 (Update).
type MovementSystem struct {
	villages *world.Villages
}

func NewMovementSystem(villages *world.Villages) *MovementSystem {
	return &MovementSystem{villages: villages}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(_ time.Duration) {
	s.villages.Each(func(v *world.State) {
		v.Tick()
	})
}
