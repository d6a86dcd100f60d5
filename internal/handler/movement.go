package handler

import (
	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// HandleKeyDown processes C_KEY_DOWN. Movement itself happens in the
// movement system, one step per tick while the key is held.
func HandleKeyDown(sess *net.Session, r *packet.Reader, deps *Deps) {
	dir := world.Direction(r.ReadC())
	if v := deps.village(sess); v != nil {
		v.Press(dir)
	}
}

// HandleKeyUp processes C_KEY_UP.
func HandleKeyUp(sess *net.Session, r *packet.Reader, deps *Deps) {
	dir := world.Direction(r.ReadC())
	if v := deps.village(sess); v != nil {
		v.Release(dir)
	}
}
