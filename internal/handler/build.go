package handler

import (
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
)

// Rejections from the village are reported to the player through its
// Feedback events, so the handlers below drop the returned errors.

// HandleBuild processes C_BUILD: arm a construction; the next C_PLACE
// decides where it goes.
func HandleBuild(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := r.ReadS()
	v := deps.village(sess)
	if v == nil {
		return
	}
	kind, err := v.LookupKind(name)
	if err != nil {
		return
	}
	_ = v.BeginBuild(kind)
}

// HandlePlace processes C_PLACE with the clicked canvas point.
func HandlePlace(sess *net.Session, r *packet.Reader, deps *Deps) {
	p := geom.Point{X: r.ReadD(), Y: r.ReadD()}
	if v := deps.village(sess); v != nil {
		_ = v.PlaceAt(p)
	}
}

// HandleCancelBuild processes C_CANCEL_BUILD.
func HandleCancelBuild(sess *net.Session, _ *packet.Reader, deps *Deps) {
	if v := deps.village(sess); v != nil {
		v.CancelBuild()
	}
}

// HandleReposition processes C_REPOSITION: drop a dragged structure at a
// new point.
func HandleReposition(sess *net.Session, r *packet.Reader, deps *Deps) {
	wire := r.ReadDU()
	p := geom.Point{X: r.ReadD(), Y: r.ReadD()}
	v := deps.village(sess)
	if v == nil {
		return
	}
	id, _ := v.Resolve(wire)
	_ = v.Reposition(id, p)
}

// HandleUpgrade processes C_UPGRADE.
func HandleUpgrade(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := r.ReadS()
	v := deps.village(sess)
	if v == nil {
		return
	}
	kind, err := v.LookupKind(name)
	if err != nil {
		return
	}
	_ = v.Upgrade(kind)
}

// HandleInteract processes C_INTERACT, a click on an entity.
func HandleInteract(sess *net.Session, r *packet.Reader, deps *Deps) {
	wire := r.ReadDU()
	v := deps.village(sess)
	if v == nil {
		return
	}
	id, _ := v.Resolve(wire)
	_ = v.Interact(id)
}

// HandleCancelSelection processes C_CANCEL_SELECTION.
func HandleCancelSelection(sess *net.Session, _ *packet.Reader, deps *Deps) {
	if v := deps.village(sess); v != nil {
		v.CancelSelection()
	}
}
