package main

import (
	"fmt"
	"time"

	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
)

// entry mirrors one view entry as the server last described it.
type entry struct {
	ID     uint32
	Class  byte
	Kind   string
	Sprite string
	Bounds geom.Rect
	Flags  byte
}

type placement struct {
	ID     uint32
	Bounds geom.Rect
}

type buildingKind struct {
	Kind, Label string
	BuildCost   int32
	UpgradeCost int32
}

// model is the client's picture of its village, rebuilt from packets.
type model struct {
	canvas     geom.Rect
	river      geom.Rect
	bridge     geom.Rect
	kinds      []buildingKind
	difficulty string

	entities     map[uint32]*entry
	order        []uint32
	trees        []placement
	collectibles []placement
	selection    map[uint32]bool

	balance  int32
	won      bool
	feedback string
	expires  time.Time
}

func newModel() *model {
	return &model{
		entities:  make(map[uint32]*entry),
		selection: make(map[uint32]bool),
	}
}

func readRect(r *packet.Reader) geom.Rect {
	x, y := r.ReadD(), r.ReadD()
	w, h := r.ReadH(), r.ReadH()
	return geom.Rect{X: x, Y: y, W: int32(w), H: int32(h)}
}

func readEntry(r *packet.Reader) entry {
	return entry{
		ID:     r.ReadDU(),
		Class:  r.ReadC(),
		Kind:   r.ReadS(),
		Sprite: r.ReadS(),
		Bounds: readRect(r),
		Flags:  r.ReadC(),
	}
}

func readPlacements(r *packet.Reader) []placement {
	n := int(r.ReadH())
	out := make([]placement, 0, n)
	for i := 0; i < n; i++ {
		id := r.ReadDU()
		x, y := r.ReadD(), r.ReadD()
		size := int32(r.ReadH())
		out = append(out, placement{ID: id, Bounds: geom.Rect{X: x, Y: y, W: size, H: size}})
	}
	return out
}

// apply folds one server packet into the model.
func (m *model) apply(data []byte, now time.Time) error {
	if len(data) == 0 {
		return fmt.Errorf("empty packet")
	}
	r := packet.NewReader(data)
	switch r.Opcode() {
	case packet.S_OPCODE_WELCOME:
		w, h := r.ReadH(), r.ReadH()
		m.canvas = geom.Rect{W: int32(w), H: int32(h)}
		m.river = readRect(r)
		m.bridge = readRect(r)
		readRect(r) // wall zone
		r.ReadH()   // cell
		r.ReadH()   // actor
		r.ReadH()   // step
		n := int(r.ReadC())
		m.kinds = m.kinds[:0]
		for i := 0; i < n; i++ {
			k := buildingKind{Kind: r.ReadS(), Label: r.ReadS()}
			k.BuildCost, k.UpgradeCost = r.ReadD(), r.ReadD()
			r.ReadC()
			r.ReadH()
			r.ReadH()
			r.ReadC()
			m.kinds = append(m.kinds, k)
		}
	case packet.S_OPCODE_STARTED:
		m.difficulty = r.ReadS()
		m.won = false
		m.selection = make(map[uint32]bool)
	case packet.S_OPCODE_FEEDBACK:
		m.feedback = r.ReadS()
		m.expires = now.Add(time.Duration(r.ReadH()) * time.Millisecond)
	case packet.S_OPCODE_BALANCE:
		m.balance = r.ReadD()
	case packet.S_OPCODE_WIN:
		m.balance = r.ReadD()
		m.won = true
	case packet.S_OPCODE_TREES:
		m.trees = readPlacements(r)
	case packet.S_OPCODE_COLLECTIBLES:
		m.collectibles = readPlacements(r)
	case packet.S_OPCODE_SELECTION:
		m.selection = make(map[uint32]bool)
		for n := int(r.ReadH()); n > 0; n-- {
			m.selection[r.ReadDU()] = true
		}
	case packet.S_OPCODE_ACTOR_POS:
		id := r.ReadDU()
		x, y := r.ReadD(), r.ReadD()
		if e := m.entities[id]; e != nil {
			e.Bounds.X, e.Bounds.Y = x, y
		}
	case packet.S_OPCODE_VIEW_DELTA:
		for n := int(r.ReadH()); n > 0; n-- {
			e := readEntry(r)
			if _, ok := m.entities[e.ID]; !ok {
				m.order = append(m.order, e.ID)
			}
			m.entities[e.ID] = &e
		}
		for n := int(r.ReadH()); n > 0; n-- {
			e := readEntry(r)
			m.entities[e.ID] = &e
		}
		for n := int(r.ReadH()); n > 0; n-- {
			m.remove(r.ReadDU())
		}
	default:
		return fmt.Errorf("unknown opcode %d", r.Opcode())
	}
	return nil
}

func (m *model) remove(id uint32) {
	delete(m.entities, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

// notice returns the live feedback text, or "" once it has expired.
func (m *model) notice(now time.Time) string {
	if now.After(m.expires) {
		return ""
	}
	return m.feedback
}

// hit returns the topmost entity or collectible under p.
func (m *model) hit(p geom.Point) (uint32, bool) {
	probe := geom.Rect{X: p.X, Y: p.Y, W: 1, H: 1}
	for i := len(m.order) - 1; i >= 0; i-- {
		if e := m.entities[m.order[i]]; geom.Overlaps(probe, e.Bounds) {
			return e.ID, true
		}
	}
	for _, c := range m.collectibles {
		if geom.Overlaps(probe, c.Bounds) {
			return c.ID, true
		}
	}
	return 0, false
}
