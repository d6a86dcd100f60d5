package world

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	cat := testCatalog(t)
	tests := []struct {
		in   string
		want Kind
	}{
		{"hut", KindHut},
		{"House", KindHut},
		{"  WALL ", KindWall},
		{"walls", KindWall},
		{"well", KindWell},
	}
	for _, tt := range tests {
		got, err := ParseKind(cat, tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"", "castle", "hutt"} {
		if _, err := ParseKind(cat, bad); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("ParseKind(%q) err = %v", bad, err)
		}
	}
}

func TestLookupKindReportsMiss(t *testing.T) {
	f := newFixture(t)
	if _, err := f.s.LookupKind("tower"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v", err)
	}
	if got := f.rec.last(t); got != "Please enter 'wall' or 'house'." {
		t.Fatalf("feedback = %q", got)
	}
}

func TestVillagesRegistry(t *testing.T) {
	vs := NewVillages()
	a := newFixture(t, withID(7)).s
	b := newFixture(t, withID(9)).s
	vs.Add(a)
	vs.Add(b)
	vs.Add(a)
	if vs.Len() != 2 || vs.Get(7) != a || vs.Get(9) != b {
		t.Fatal("lookup failed")
	}
	var ids []uint64
	vs.Each(func(s *State) { ids = append(ids, s.ID()) })
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 9 {
		t.Fatalf("order = %v", ids)
	}
	if vs.Remove(7) != a || vs.Remove(7) != nil || vs.Len() != 1 {
		t.Fatal("remove")
	}
}
