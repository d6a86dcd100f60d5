package handler

import (
	"go.uber.org/zap"

	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// HandleStart processes C_START: the difficulty answer of the onboarding
// prompt. The first valid answer builds the session's village; later ones
// restart it with the new difficulty.
func HandleStart(sess *net.Session, r *packet.Reader, deps *Deps) {
	answer := r.ReadS()

	if v := deps.village(sess); v != nil {
		// Re-seeds the village; rejections are reported through its feedback.
		_ = v.Start(answer)
		return
	}

	d, err := world.ParseDifficulty(answer)
	if err != nil {
		SendFeedback(sess, err.Error(), deps.Config.Village.FeedbackTTL)
		return
	}
	v, err := deps.NewVillage(sess.ID, d)
	if err != nil {
		deps.Log.Error("build village", zap.Uint64("session", sess.ID), zap.Error(err))
		sess.Close()
		return
	}
	deps.Villages.Add(v)
	sess.SetState(packet.StatePlaying)

	SendWelcome(sess, v)
	SendStarted(sess, d)
	deps.Log.Info("village started",
		zap.Uint64("session", sess.ID),
		zap.String("ip", sess.IP),
		zap.String("difficulty", string(d)),
	)
}

// HandleReset processes C_RESET.
func HandleReset(sess *net.Session, _ *packet.Reader, deps *Deps) {
	v := deps.village(sess)
	if v == nil {
		return
	}
	if err := v.Reset(); err != nil {
		deps.Log.Error("reset village", zap.Uint64("session", sess.ID), zap.Error(err))
	}
}
