package ecs

import "testing"

type tag struct{ name string }

func TestStoreKeepsInsertionOrder(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[tag]()
	w.Registry().Register(store)

	var ids []EntityID
	for _, n := range []string{"a", "b", "c", "d"} {
		id := w.CreateEntity()
		store.Set(id, &tag{name: n})
		ids = append(ids, id)
	}
	store.Remove(ids[1])
	store.Set(ids[0], &tag{name: "a2"})

	var got []string
	store.Each(func(_ EntityID, c *tag) { got = append(got, c.name) })
	want := []string{"a2", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDeferredDestroy(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[tag]()
	w.Registry().Register(store)

	id := w.CreateEntity()
	store.Set(id, &tag{name: "tree"})
	w.MarkForDestruction(id)
	w.MarkForDestruction(id)

	if w.Alive(id) {
		t.Fatal("entity queued for destruction still reported alive")
	}
	if !store.Has(id) {
		t.Fatal("component removed before flush")
	}
	if n := w.FlushDestroyQueue(); n != 1 {
		t.Fatalf("flushed %d entities, want 1", n)
	}
	if store.Has(id) {
		t.Fatal("component survived flush")
	}

	reused := w.CreateEntity()
	if reused.Index() != id.Index() || reused.Generation() == id.Generation() {
		t.Fatalf("slot reuse: got %v after destroying %v", reused, id)
	}
	if w.Alive(id) {
		t.Fatal("stale id reported alive after slot reuse")
	}
}

func TestZeroIDNeverIssued(t *testing.T) {
	p := NewEntityPool()
	for i := 0; i < 10; i++ {
		if id := p.Create(); id.IsZero() {
			t.Fatal("pool issued the zero id")
		}
	}
	if p.Live() != 10 {
		t.Fatalf("live = %d, want 10", p.Live())
	}
}

func TestResetInvalidatesOldIDs(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[tag]()
	w.Registry().Register(store)

	a := w.CreateEntity()
	b := w.CreateEntity()
	w.Destroy(b)
	store.Set(a, &tag{name: "hut"})

	w.Reset()
	if w.Alive(a) || store.Len() != 0 || w.Pool().Live() != 0 {
		t.Fatal("reset left entities behind")
	}
	seen := map[uint32]bool{a.Wire(): true, b.Wire(): true}
	for i := 0; i < 4; i++ {
		id := w.CreateEntity()
		if seen[id.Wire()] {
			t.Fatalf("reset reissued wire id %d", id.Wire())
		}
		seen[id.Wire()] = true
	}
	if w.Pool().Live() != 4 {
		t.Fatalf("live = %d, want 4", w.Pool().Live())
	}
}
