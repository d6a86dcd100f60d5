package system

import (
	"time"

	coresys "github.com/ashiaomair/06-final-game-charity-water/internal/core/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// SpawnSystem drops a fresh collectible into each village every interval,
// up to limit live ones. Phase 2 (PostUpdate).
type SpawnSystem struct {
	villages *world.Villages
	interval time.Duration
	limit    int
	elapsed  time.Duration
}

// NewSpawnSystem returns nil when interval is not positive; the caller
// skips registering it.
func NewSpawnSystem(villages *world.Villages, interval time.Duration, limit int) *SpawnSystem {
	if interval <= 0 {
		return nil
	}
	return &SpawnSystem{villages: villages, interval: interval, limit: limit}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SpawnSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed -= s.interval
	s.villages.Each(func(v *world.State) {
		if s.limit > 0 && len(v.Collectibles()) >= s.limit {
			return
		}
		v.SpawnRandomCollectible()
	})
}
