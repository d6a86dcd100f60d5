package system

import (
	"time"

	coresys "github.com/ashiaomair/06-final-game-charity-water/internal/core/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/handler"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// ViewSyncSystem keeps each client's picture of its village current. It
// diffs the projected view against what the client last received and
// sends only the difference. Phase 2 (PostUpdate).
type ViewSyncSystem struct {
	store    *net.SessionStore
	villages *world.Villages
	known    map[uint64]*world.View
}

func NewViewSyncSystem(store *net.SessionStore, villages *world.Villages) *ViewSyncSystem {
	return &ViewSyncSystem{
		store:    store,
		villages: villages,
		known:    make(map[uint64]*world.View),
	}
}

func (s *ViewSyncSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Forget drops what a session was sent; the next sync is a full one.
func (s *ViewSyncSystem) Forget(sessionID uint64) {
	delete(s.known, sessionID)
}

func (s *ViewSyncSystem) Update(_ time.Duration) {
	s.villages.Each(func(v *world.State) {
		sess := s.store.Get(v.ID())
		if sess == nil {
			return
		}
		next := v.Project()
		prev, seen := s.known[v.ID()]
		if !seen {
			prev = &world.View{}
		}
		s.sync(sess, prev, &next, !seen)
		s.known[v.ID()] = &next
	})
}

func (s *ViewSyncSystem) sync(sess *net.Session, prev, next *world.View, full bool) {
	if full || !samePlacements(prev.Trees, next.Trees) {
		handler.SendTrees(sess, next.Trees)
	}
	if full || !samePlacements(prev.Collectibles, next.Collectibles) {
		handler.SendCollectibles(sess, next.Collectibles)
	}

	d := world.Diff(world.View{Entities: prev.Entities}, world.View{Entities: next.Entities})
	if d.Empty() {
		return
	}
	old := make(map[uint32]world.ViewEntry, len(prev.Entities))
	for _, e := range prev.Entities {
		old[e.ID] = e
	}
	changed := d.Changed[:0:0]
	for _, e := range d.Changed {
		if o, ok := old[e.ID]; ok && onlyMoved(o, e) {
			handler.SendActorPos(sess, e.ID, e.Bounds.Origin())
			continue
		}
		changed = append(changed, e)
	}
	d.Changed = changed
	if !d.Empty() {
		handler.SendViewDelta(sess, d)
	}
}

// onlyMoved reports whether an actor entry differs only by position.
func onlyMoved(a, b world.ViewEntry) bool {
	if a.Class != world.ClassActor {
		return false
	}
	a.Bounds.X, a.Bounds.Y = b.Bounds.X, b.Bounds.Y
	return a == b
}

func samePlacements(a, b []world.ViewEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Bounds != b[i].Bounds {
			return false
		}
	}
	return true
}
