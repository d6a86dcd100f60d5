package world

import (
	"time"

	"github.com/ashiaomair/06-final-game-charity-water/internal/core/ecs"
)

// Cooldowns records the last yield time per well. Entries follow the well
// itself, so moving it keeps its cooldown and a new well on a vacated cell
// starts fresh.
type Cooldowns struct {
	interval time.Duration
	last     map[ecs.EntityID]time.Time
}

func NewCooldowns(interval time.Duration) *Cooldowns {
	return &Cooldowns{interval: interval, last: make(map[ecs.EntityID]time.Time)}
}

// Ready reports whether key may yield at now. A key that never yielded is ready.
func (c *Cooldowns) Ready(key ecs.EntityID, now time.Time) bool {
	last, ok := c.last[key]
	return !ok || now.Sub(last) >= c.interval
}

// Remaining returns how long key still has to wait at now.
func (c *Cooldowns) Remaining(key ecs.EntityID, now time.Time) time.Duration {
	last, ok := c.last[key]
	if !ok {
		return 0
	}
	if d := c.interval - now.Sub(last); d > 0 {
		return d
	}
	return 0
}

func (c *Cooldowns) Mark(key ecs.EntityID, now time.Time) {
	c.last[key] = now
}

func (c *Cooldowns) Clear() {
	clear(c.last)
}
