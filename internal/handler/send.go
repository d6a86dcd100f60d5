package handler

import (
	"time"

	"github.com/ashiaomair/06-final-game-charity-water/internal/data"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// View entry flag bits.
const (
	FlagUpgraded byte = 1 << iota
	FlagControllable
	FlagMovable
	FlagSelectable
	FlagSelected
)

// SendFeedback sends S_FEEDBACK: a notice the client shows for ttl.
func SendFeedback(sess *net.Session, text string, ttl time.Duration) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_FEEDBACK)
	w.WriteS(text)
	w.WriteH(clampH(ttl.Milliseconds()))
	sess.Send(w.Bytes())
}

// SendBalance sends S_BALANCE.
func SendBalance(sess *net.Session, balance int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_BALANCE)
	w.WriteD(balance)
	sess.Send(w.Bytes())
}

// SendWin sends S_WIN with the balance that completed the village.
func SendWin(sess *net.Session, balance int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_WIN)
	w.WriteD(balance)
	sess.Send(w.Bytes())
}

// SendStarted sends S_STARTED after a village is (re)seeded.
func SendStarted(sess *net.Session, d world.Difficulty) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_STARTED)
	w.WriteS(string(d))
	sess.Send(w.Bytes())
}

// SendViewDelta sends S_VIEW_DELTA.
func SendViewDelta(sess *net.Session, d world.ViewDelta) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_VIEW_DELTA)
	w.WriteH(uint16(len(d.Added)))
	for i := range d.Added {
		writeEntry(w, &d.Added[i])
	}
	w.WriteH(uint16(len(d.Changed)))
	for i := range d.Changed {
		writeEntry(w, &d.Changed[i])
	}
	w.WriteH(uint16(len(d.Removed)))
	for _, id := range d.Removed {
		w.WriteDU(id)
	}
	sess.Send(w.Bytes())
}

// SendActorPos sends S_ACTOR_POS, the cheap form of a villager step.
func SendActorPos(sess *net.Session, id uint32, p geom.Point) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ACTOR_POS)
	w.WriteDU(id)
	w.WriteD(p.X)
	w.WriteD(p.Y)
	sess.Send(w.Bytes())
}

// SendTrees sends S_TREES, the full tree list.
func SendTrees(sess *net.Session, trees []world.ViewEntry) {
	sendPlacements(sess, packet.S_OPCODE_TREES, trees)
}

// SendCollectibles sends S_COLLECTIBLES, the full drop list.
func SendCollectibles(sess *net.Session, drops []world.ViewEntry) {
	sendPlacements(sess, packet.S_OPCODE_COLLECTIBLES, drops)
}

func sendPlacements(sess *net.Session, opcode byte, entries []world.ViewEntry) {
	w := packet.NewWriterWithOpcode(opcode)
	w.WriteH(uint16(len(entries)))
	for _, e := range entries {
		w.WriteDU(e.ID)
		w.WriteD(e.Bounds.X)
		w.WriteD(e.Bounds.Y)
		w.WriteH(uint16(e.Bounds.W))
	}
	sess.Send(w.Bytes())
}

// SendSelection sends S_SELECTION; an empty list closes the chooser.
func SendSelection(sess *net.Session, candidates []uint32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SELECTION)
	w.WriteH(uint16(len(candidates)))
	for _, id := range candidates {
		w.WriteDU(id)
	}
	sess.Send(w.Bytes())
}

// SendWelcome sends S_WELCOME: the static map and the building catalog.
func SendWelcome(sess *net.Session, v *world.State) {
	l := v.Layout()
	st := v.Settings()
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_WELCOME)
	w.WriteH(uint16(l.Bounds.W))
	w.WriteH(uint16(l.Bounds.H))
	writeRect(w, l.River)
	writeRect(w, l.Bridge)
	writeRect(w, l.WallZone)
	w.WriteH(uint16(st.CellSize))
	w.WriteH(uint16(st.ActorSize))
	w.WriteH(uint16(st.Step))

	cat := v.Catalog()
	w.WriteC(byte(cat.Count()))
	for _, k := range cat.Kinds() {
		def := cat.Get(k)
		w.WriteS(def.Kind)
		w.WriteS(def.Label)
		w.WriteD(int32(def.BuildCost))
		w.WriteD(int32(def.UpgradeCost))
		w.WriteBool(def.UpgradeMode == data.UpgradeAll)
		w.WriteH(uint16(def.Size))
		w.WriteH(uint16(def.UpgradedSize))
		w.WriteBool(def.Movable)
	}
	sess.Send(w.Bytes())
}

func writeRect(w *packet.Writer, r geom.Rect) {
	w.WriteD(r.X)
	w.WriteD(r.Y)
	w.WriteH(uint16(r.W))
	w.WriteH(uint16(r.H))
}

func writeEntry(w *packet.Writer, e *world.ViewEntry) {
	w.WriteDU(e.ID)
	w.WriteC(byte(e.Class))
	w.WriteS(e.Kind)
	w.WriteS(e.Sprite)
	writeRect(w, e.Bounds)
	w.WriteC(EntryFlags(e))
}

// EntryFlags packs the boolean fields of a view entry.
func EntryFlags(e *world.ViewEntry) byte {
	var f byte
	if e.Upgraded {
		f |= FlagUpgraded
	}
	if e.Controllable {
		f |= FlagControllable
	}
	if e.Movable {
		f |= FlagMovable
	}
	if e.Selectable {
		f |= FlagSelectable
	}
	if e.Selected {
		f |= FlagSelected
	}
	return f
}

func clampH(v int64) uint16 {
	switch {
	case v < 0:
		return 0
	case v > 0xFFFF:
		return 0xFFFF
	}
	return uint16(v)
}
