package world

import (
	"errors"
	"testing"
	"time"

	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
)

func TestLedgerCreditDebit(t *testing.T) {
	var entries []LedgerEntry
	l := NewLedger(100, func(e LedgerEntry) { entries = append(entries, e) })

	l.Credit(RulePickup, 10)
	l.Credit(RulePickup, 0)
	l.Credit(RulePickup, -5)
	if l.Balance() != 110 {
		t.Fatalf("balance = %d, want 110", l.Balance())
	}
	if err := l.Debit(RuleConstruction, 111); !errors.Is(err, ErrNotEnoughDrops) {
		t.Fatalf("overdraw err = %v", err)
	}
	if l.Balance() != 110 {
		t.Fatalf("failed debit changed balance to %d", l.Balance())
	}
	if err := l.Debit(RuleConstruction, 110); err != nil {
		t.Fatal(err)
	}
	if l.Balance() != 0 {
		t.Fatalf("balance = %d, want 0", l.Balance())
	}

	want := []LedgerEntry{
		{Rule: RulePickup, Delta: 10, Balance: 110},
		{Rule: RuleConstruction, Delta: -110, Balance: 0},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v", entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestNegativeStartClamped(t *testing.T) {
	if got := NewLedger(-5, nil).Balance(); got != 0 {
		t.Fatalf("balance = %d", got)
	}
}

func TestRejectionMatchesSentinel(t *testing.T) {
	err := rejectf(ErrNotEnoughDrops, "Not enough water drops to upgrade the %s!", "house")
	if !errors.Is(err, ErrNotEnoughDrops) {
		t.Fatal("derived rejection does not match its sentinel")
	}
	if errors.Is(err, ErrOccupied) {
		t.Fatal("derived rejection matches an unrelated sentinel")
	}
	if err.Error() != "Not enough water drops to upgrade the house!" {
		t.Fatalf("text = %q", err.Error())
	}
}

func TestWellCooldown(t *testing.T) {
	f := newFixture(t)
	well := structuresOf(f.s, KindWell)[0]

	if err := f.s.Interact(well.ID); err != nil {
		t.Fatal(err)
	}
	if f.s.Balance() != 1005 {
		t.Fatalf("balance = %d, want 1005", f.s.Balance())
	}
	if got := f.rec.last(t); got != "+5 Water Drops!" {
		t.Fatalf("feedback = %q", got)
	}

	f.clock.Advance(119999 * time.Millisecond)
	if err := f.s.Interact(well.ID); !errors.Is(err, ErrWellCooldown) {
		t.Fatalf("err = %v, want cooldown", err)
	}
	if f.s.Balance() != 1005 {
		t.Fatalf("rejected pump changed balance to %d", f.s.Balance())
	}
	if got := f.rec.last(t); got != "Water can only be pumped every 2 minutes!" {
		t.Fatalf("feedback = %q", got)
	}

	f.clock.Advance(time.Millisecond)
	if err := f.s.Interact(well.ID); err != nil {
		t.Fatal(err)
	}
	if f.s.Balance() != 1010 {
		t.Fatalf("balance = %d, want 1010", f.s.Balance())
	}
}

func TestUpgradedWellYieldsMore(t *testing.T) {
	f := newFixture(t)
	well := structuresOf(f.s, KindWell)[0]
	if err := f.s.Upgrade(KindWell); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Interact(well.ID); err != nil {
		t.Fatal(err)
	}
	if f.s.Balance() != 1000-60+10 {
		t.Fatalf("balance = %d", f.s.Balance())
	}
}

func TestCooldownFollowsWellAfterMove(t *testing.T) {
	f := newFixture(t)
	well, err := f.s.Place(KindWell, geom.Point{X: 480, Y: 416})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.s.Interact(well.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Reposition(well.ID, geom.Point{X: 576, Y: 512}); err != nil {
		t.Fatal(err)
	}
	if well.Origin != (geom.Point{X: 448, Y: 384}) || well.Pos != (geom.Point{X: 512, Y: 448}) {
		t.Fatalf("origin %+v pos %+v", well.Origin, well.Pos)
	}
	if err := f.s.Interact(well.ID); !errors.Is(err, ErrWellCooldown) {
		t.Fatalf("moved well escaped its cooldown: %v", err)
	}
}

func TestWellsCoolDownIndependently(t *testing.T) {
	f := newFixture(t)
	first := structuresOf(f.s, KindWell)[0]
	second, err := f.s.Place(KindWell, geom.Point{X: 480, Y: 416})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.s.Interact(first.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Interact(second.ID); err != nil {
		t.Fatalf("second well blocked by first well's cooldown: %v", err)
	}
	if got := f.s.Cooldowns().Remaining(first.ID, f.clock.Now()); got != 120*time.Second {
		t.Fatalf("remaining = %v", got)
	}
}

func TestNewWellOnVacatedCellStartsFresh(t *testing.T) {
	f := newFixture(t)
	moved, err := f.s.Place(KindWell, geom.Point{X: 480, Y: 416})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.s.Interact(moved.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Reposition(moved.ID, geom.Point{X: 576, Y: 512}); err != nil {
		t.Fatal(err)
	}
	fresh, err := f.s.Place(KindWell, geom.Point{X: 480, Y: 416})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Origin != moved.Origin {
		t.Fatalf("origins %+v and %+v differ", fresh.Origin, moved.Origin)
	}
	before := f.s.Balance()
	if err := f.s.Interact(fresh.ID); err != nil {
		t.Fatalf("new well blocked by the moved well's cooldown: %v", err)
	}
	if f.s.Balance() != before+5 {
		t.Fatalf("balance = %d, want %d", f.s.Balance(), before+5)
	}
	if err := f.s.Interact(moved.ID); !errors.Is(err, ErrWellCooldown) {
		t.Fatalf("moved well lost its cooldown: %v", err)
	}
}
