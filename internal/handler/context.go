package handler

import (
	"go.uber.org/zap"

	"github.com/ashiaomair/06-final-game-charity-water/internal/config"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Villages *world.Villages
	// NewVillage builds the village of a session that has just picked its
	// difficulty.
	NewVillage func(id uint64, d world.Difficulty) (*world.State, error)
}

// village returns the session's village, or nil before START.
func (d *Deps) village(sess *net.Session) *world.State {
	return d.Villages.Get(sess.ID)
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// START is also how a running village switches difficulty.
	reg.Register(packet.C_OPCODE_START,
		[]packet.SessionState{packet.StateConnected, packet.StatePlaying},
		func(sess any, r *packet.Reader) {
			HandleStart(sess.(*net.Session), r, deps)
		},
	)

	playing := []packet.SessionState{packet.StatePlaying}

	reg.Register(packet.C_OPCODE_KEY_DOWN, playing,
		func(sess any, r *packet.Reader) {
			HandleKeyDown(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_KEY_UP, playing,
		func(sess any, r *packet.Reader) {
			HandleKeyUp(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_BUILD, playing,
		func(sess any, r *packet.Reader) {
			HandleBuild(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_PLACE, playing,
		func(sess any, r *packet.Reader) {
			HandlePlace(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CANCEL_BUILD, playing,
		func(sess any, r *packet.Reader) {
			HandleCancelBuild(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_UPGRADE, playing,
		func(sess any, r *packet.Reader) {
			HandleUpgrade(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_INTERACT, playing,
		func(sess any, r *packet.Reader) {
			HandleInteract(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_REPOSITION, playing,
		func(sess any, r *packet.Reader) {
			HandleReposition(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_RESET, playing,
		func(sess any, r *packet.Reader) {
			HandleReset(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CANCEL_SELECTION, playing,
		func(sess any, r *packet.Reader) {
			HandleCancelSelection(sess.(*net.Session), r, deps)
		},
	)
}
