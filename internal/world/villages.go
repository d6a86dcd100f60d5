package world

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ashiaomair/06-final-game-charity-water/internal/data"
)

// Villages maps a session ID to the village it plays. Game loop only.
type Villages struct {
	byID  map[uint64]*State
	order []uint64
}

func NewVillages() *Villages {
	return &Villages{byID: make(map[uint64]*State)}
}

// Add registers v under its ID, replacing any previous village.
func (vs *Villages) Add(v *State) {
	if _, ok := vs.byID[v.ID()]; !ok {
		vs.order = append(vs.order, v.ID())
	}
	vs.byID[v.ID()] = v
}

func (vs *Villages) Get(id uint64) *State {
	return vs.byID[id]
}

// Remove drops the village of a session and returns it, or nil.
func (vs *Villages) Remove(id uint64) *State {
	v, ok := vs.byID[id]
	if !ok {
		return nil
	}
	delete(vs.byID, id)
	for i, o := range vs.order {
		if o == id {
			vs.order = append(vs.order[:i], vs.order[i+1:]...)
			break
		}
	}
	return v
}

// Each visits villages in creation order.
func (vs *Villages) Each(fn func(*State)) {
	for _, id := range vs.order {
		fn(vs.byID[id])
	}
}

func (vs *Villages) Len() int { return len(vs.byID) }

// ParseKind resolves a typed building name against the catalog. Both the
// kind and its player-facing label are accepted, case-insensitively.
func ParseKind(cat *data.Catalog, name string) (Kind, error) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))
	if want == "" {
		return "", ErrUnknownKind
	}
	for _, k := range cat.Kinds() {
		def := cat.Get(k)
		if fold.String(def.Kind) == want || fold.String(def.Label) == want {
			return Kind(def.Kind), nil
		}
	}
	return "", ErrUnknownKind
}

// LookupKind is ParseKind against the village catalog; a miss is reported
// to the player.
func (s *State) LookupKind(name string) (Kind, error) {
	k, err := ParseKind(s.catalog, name)
	if err != nil {
		return "", s.fail(err)
	}
	return k, nil
}
