package system

import (
	"time"

	"github.com/ashiaomair/06-final-game-charity-water/internal/core/event"
	coresys "github.com/ashiaomair/06-final-game-charity-water/internal/core/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/handler"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// OutputSystem delivers this tick's village events as packets to the
// owning sessions, then flushes every session's output buffer.
// Phase 3 (Output).
type OutputSystem struct {
	bus         *event.Bus
	store       *net.SessionStore
	feedbackTTL time.Duration
}

func NewOutputSystem(bus *event.Bus, store *net.SessionStore, feedbackTTL time.Duration) *OutputSystem {
	s := &OutputSystem{bus: bus, store: store, feedbackTTL: feedbackTTL}

	event.Subscribe(bus, func(e event.Feedback) {
		if sess := s.store.Get(e.Village); sess != nil {
			handler.SendFeedback(sess, e.Text, s.feedbackTTL)
		}
	})
	event.Subscribe(bus, func(e event.BalanceChanged) {
		if sess := s.store.Get(e.Village); sess != nil {
			handler.SendBalance(sess, e.Balance)
		}
	})
	event.Subscribe(bus, func(e event.SelectionChanged) {
		if sess := s.store.Get(e.Village); sess != nil {
			handler.SendSelection(sess, e.Candidates)
		}
	})
	event.Subscribe(bus, func(e event.WinAchieved) {
		if sess := s.store.Get(e.Village); sess != nil {
			handler.SendWin(sess, e.Balance)
		}
	})
	event.Subscribe(bus, func(e event.VillageReset) {
		if sess := s.store.Get(e.Village); sess != nil {
			handler.SendStarted(sess, world.Difficulty(e.Difficulty))
		}
	})
	return s
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}
