package world

import "github.com/ashiaomair/06-final-game-charity-water/internal/geom"

const spawnMargin = 64

// SpawnCollectible drops a collectible at p.
func (s *State) SpawnCollectible(p geom.Point) *Collectible {
	id := s.ecs.CreateEntity()
	c := &Collectible{ID: id, Pos: p, Bounds: geom.RectAt(p, s.settings.PickupSize)}
	s.collectibles.Set(id, c)
	return c
}

// SpawnRandomCollectible drops a collectible uniformly inside the village,
// keeping a margin from the right and bottom edges.
func (s *State) SpawnRandomCollectible() *Collectible {
	b := s.layout.Bounds
	return s.SpawnCollectible(geom.Point{
		X: b.X + randSpan(s, b.W-spawnMargin),
		Y: b.Y + randSpan(s, b.H-spawnMargin),
	})
}

func randSpan(s *State, n int32) int32 {
	if n <= 0 {
		return 0
	}
	return s.rng.Int31n(n)
}
