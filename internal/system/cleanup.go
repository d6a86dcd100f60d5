package system

import (
	"time"

	coresys "github.com/ashiaomair/06-final-game-charity-water/internal/core/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// CleanupSystem flushes each village's deferred destruction queue at tick
// end. Phase 5 (Cleanup).
type CleanupSystem struct {
	villages *world.Villages
}

func NewCleanupSystem(villages *world.Villages) *CleanupSystem {
	return &CleanupSystem{villages: villages}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.villages.Each(func(v *world.State) {
		v.FlushRemovals()
	})
}
