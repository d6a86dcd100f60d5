package world

import (
	"github.com/ashiaomair/06-final-game-charity-water/internal/core/ecs"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
)

// Class tells the presentation which layer a view entry belongs to.
type Class uint8

const (
	ClassStructure Class = iota + 1
	ClassActor
	ClassCollectible
	ClassTree
)

// ViewEntry is the render model of one entity.
type ViewEntry struct {
	ID           uint32
	Class        Class
	Kind         string
	Sprite       string
	Bounds       geom.Rect
	Upgraded     bool
	Controllable bool
	Movable      bool // still draggable
	Selectable   bool // candidate of the open upgrade selection
	Selected     bool
}

// View is a full render model of a village, recomputed from state.
type View struct {
	Entities     []ViewEntry // structures, then actors
	Collectibles []ViewEntry
	Trees        []ViewEntry
	Balance      int
	WallUpgraded bool
	Won          bool
}

// Len counts every entry of the view.
func (v View) Len() int {
	return len(v.Entities) + len(v.Collectibles) + len(v.Trees)
}

func (v View) each(fn func(ViewEntry)) {
	for _, list := range [][]ViewEntry{v.Entities, v.Collectibles, v.Trees} {
		for _, e := range list {
			fn(e)
		}
	}
}

// ViewDelta is what changed between two views, in the order entries appear
// in the newer view.
type ViewDelta struct {
	Added   []ViewEntry
	Changed []ViewEntry
	Removed []uint32
}

func (d ViewDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// Project builds the current view of the village.
func (s *State) Project() View {
	v := View{
		Balance:      s.ledger.Balance(),
		WallUpgraded: s.wallUpgraded,
		Won:          s.won,
	}
	structures := s.structures.List()
	actors := s.actors.List()
	v.Entities = make([]ViewEntry, 0, len(structures)+len(actors))
	for _, st := range structures {
		v.Entities = append(v.Entities, ViewEntry{
			ID:         st.ID.Wire(),
			Class:      ClassStructure,
			Kind:       string(st.Kind),
			Sprite:     sprite(string(st.Kind), st.Upgraded),
			Bounds:     st.Bounds,
			Upgraded:   st.Upgraded,
			Movable:    st.Movable,
			Selectable: s.selection != nil && s.selection.has(st.ID),
			Selected:   st.ID == s.selected,
		})
	}
	for _, a := range actors {
		v.Entities = append(v.Entities, ViewEntry{
			ID:           a.ID.Wire(),
			Class:        ClassActor,
			Kind:         "villager",
			Sprite:       "villager",
			Bounds:       a.Bounds,
			Controllable: a.Controllable,
		})
	}
	for _, c := range s.collectibles.List() {
		v.Collectibles = append(v.Collectibles, plainEntry(c.ID, ClassCollectible, "drop", c.Bounds))
	}
	for _, t := range s.Trees() {
		v.Trees = append(v.Trees, plainEntry(t.ID, ClassTree, "tree", t.Bounds))
	}
	return v
}

func plainEntry(id ecs.EntityID, class Class, kind string, r geom.Rect) ViewEntry {
	return ViewEntry{ID: id.Wire(), Class: class, Kind: kind, Sprite: kind, Bounds: r}
}

func sprite(kind string, upgraded bool) string {
	if upgraded {
		return kind + "-upgraded"
	}
	return kind
}

// Diff compares two views by entry id.
func Diff(prev, next View) ViewDelta {
	old := make(map[uint32]ViewEntry, prev.Len())
	prev.each(func(e ViewEntry) { old[e.ID] = e })

	var d ViewDelta
	next.each(func(e ViewEntry) {
		was, ok := old[e.ID]
		switch {
		case !ok:
			d.Added = append(d.Added, e)
		case was != e:
			d.Changed = append(d.Changed, e)
		}
		delete(old, e.ID)
	})
	prev.each(func(e ViewEntry) {
		if _, gone := old[e.ID]; gone {
			d.Removed = append(d.Removed, e.ID)
		}
	})
	return d
}
