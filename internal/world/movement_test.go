package world

import (
	"math/rand"
	"testing"

	"github.com/ashiaomair/06-final-game-charity-water/internal/data"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
)

func tick(s *State, n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

func TestMoveRightThreeTicks(t *testing.T) {
	f := newFixture(t)
	s := f.s
	if !s.Press(DirRight) {
		t.Fatal("press ignored")
	}
	tick(s, 3)
	if got := s.Controllable().Pos; got != (geom.Point{X: 118, Y: 100}) {
		t.Fatalf("pos = %+v, want (118,100)", got)
	}
	if s.Mover().LastTick() != f.clock.Now() {
		t.Fatal("last tick not recorded")
	}
}

func TestFirstPressWins(t *testing.T) {
	f := newFixture(t)
	s := f.s
	s.Press(DirDown)
	if s.Press(DirRight) {
		t.Fatal("second direction accepted while moving")
	}
	if s.Release(DirRight) {
		t.Fatal("released a direction that was not held")
	}
	tick(s, 2)
	if got := s.Controllable().Pos; got != (geom.Point{X: 100, Y: 112}) {
		t.Fatalf("pos = %+v", got)
	}
	if !s.Release(DirDown) {
		t.Fatal("release of held direction ignored")
	}
	if s.Tick() {
		t.Fatal("tick moved after release")
	}
	if got := s.Controllable().Pos; got != (geom.Point{X: 100, Y: 112}) {
		t.Fatalf("pos after release = %+v", got)
	}
	if s.Mover().Direction() != DirNone || s.Mover().Armed() {
		t.Fatal("mover not idle after release")
	}
}

func TestStopsAtVillageEdge(t *testing.T) {
	f := newFixture(t)
	f.s.Press(DirUp)
	tick(f.s, 40)
	if got := f.s.Controllable().Pos; got != (geom.Point{X: 100, Y: 4}) {
		t.Fatalf("pos = %+v, want (100,4)", got)
	}
	if !f.s.Mover().Armed() {
		t.Fatal("blocked step released the direction")
	}
}

func TestTreeBlocksWithoutTouching(t *testing.T) {
	f := newFixture(t, withLayout(func(l *data.Layout) {
		l.Trees = []geom.Point{{X: 170, Y: 100}}
	}))
	f.s.Press(DirRight)
	if !f.s.Tick() {
		t.Fatal("edge-touching step was blocked")
	}
	if f.s.Tick() {
		t.Fatal("step into the tree was allowed")
	}
	if got := f.s.Controllable().Pos; got != (geom.Point{X: 106, Y: 100}) {
		t.Fatalf("pos = %+v", got)
	}
}

func TestRiverBlocksAwayFromBridge(t *testing.T) {
	f := newFixture(t, withLayout(func(l *data.Layout) {
		l.Trees = nil
		l.Structures = nil
		l.Villagers = []geom.Point{{X: 560, Y: 400}}
	}))
	f.s.Press(DirRight)
	tick(f.s, 20)
	if got := f.s.Controllable().Pos.X; got != 572 {
		t.Fatalf("x = %d, want 572", got)
	}
}

func TestBridgeCrossesRiver(t *testing.T) {
	f := newFixture(t, withLayout(func(l *data.Layout) {
		l.Trees = nil
		l.Structures = nil
		l.Villagers = []geom.Point{{X: 560, Y: 230}}
	}))
	f.s.Press(DirRight)
	tick(f.s, 50)
	if got := f.s.Controllable().Pos.X; got != 860 {
		t.Fatalf("x = %d, want 860", got)
	}
}

func TestStepsNeverEndBlocked(t *testing.T) {
	f := newFixture(t)
	s := f.s
	rng := rand.New(rand.NewSource(42))
	dirs := []Direction{DirUp, DirDown, DirLeft, DirRight}
	for i := 0; i < 2000; i++ {
		if i%25 == 0 {
			s.Release(s.Mover().Direction())
			s.Press(dirs[rng.Intn(len(dirs))])
		}
		if !s.Tick() {
			continue
		}
		r := s.Controllable().Bounds
		if s.IsBlocked(r) && !geom.Overlaps(r, s.Layout().Bridge) {
			t.Fatalf("tick %d ended blocked at %+v", i, r)
		}
		if !r.Within(s.Layout().Bounds) {
			t.Fatalf("tick %d left the village at %+v", i, r)
		}
	}
}

func TestPickupOnMove(t *testing.T) {
	f := newFixture(t, withLayout(func(l *data.Layout) {
		l.Structures = nil
	}), withSettings(func(s *Settings) { s.WinThreshold = 1010 }))
	s := f.s
	c := s.SpawnCollectible(geom.Point{X: 124, Y: 100})
	s.Press(DirRight)
	s.Tick()

	if _, ok := s.Collectible(c.ID); ok {
		t.Fatal("collectible still registered")
	}
	if len(s.Collectibles()) != 0 {
		t.Fatal("collectible still listed")
	}
	if s.Balance() != 1010 {
		t.Fatalf("balance = %d, want 1010", s.Balance())
	}
	if got := f.rec.last(t); got != "+10 Water Drops!" {
		t.Fatalf("feedback = %q", got)
	}
	if f.rec.wins != 1 || !s.HasWon() {
		t.Fatal("pickup did not re-evaluate the win condition")
	}
}

func TestPickupIgnoresDistantCollectibles(t *testing.T) {
	f := newFixture(t)
	f.s.SpawnCollectible(geom.Point{X: 1000, Y: 600})
	f.s.Press(DirRight)
	f.s.Tick()
	if len(f.s.Collectibles()) != 1 || f.s.Balance() != 1000 {
		t.Fatal("distant collectible consumed")
	}
}
