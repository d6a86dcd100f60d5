package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/ashiaomair/06-final-game-charity-water/internal/core/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// SessionSource hands connections to the game loop. *net.Server is one.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
}

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	source     SessionSource
	registry   *packet.Registry
	store      *net.SessionStore
	villages   *world.Villages
	maxPerTick int
	onLeave    []func(sessionID uint64)
	log        *zap.Logger
}

func NewInputSystem(
	source SessionSource,
	registry *packet.Registry,
	store *net.SessionStore,
	villages *world.Villages,
	maxPerTick int,
	log *zap.Logger,
) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 16
	}
	return &InputSystem{
		source:     source,
		registry:   registry,
		store:      store,
		villages:   villages,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

// OnLeave registers a callback run after a session's village is dropped.
func (s *InputSystem) OnLeave(fn func(sessionID uint64)) {
	s.onLeave = append(s.onLeave, fn)
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.source.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.source.DeadSessions():
			if sess := s.store.Get(id); sess != nil {
				s.drain(sess)
			}
			s.handleDisconnect(id)
		default:
			goto doneDead
		}
	}
doneDead:

	for _, sess := range s.store.Snapshot() {
		if sess.IsClosed() {
			s.drain(sess)
			s.handleDisconnect(sess.ID)
			continue
		}
		s.drain(sess)
	}
}

// drain dispatches up to maxPerTick queued packets of one session.
func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("packet dispatch failed",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

// handleDisconnect drops a session and its village. Villages are not
// saved: a reconnecting client starts over.
func (s *InputSystem) handleDisconnect(id uint64) {
	if s.store.Get(id) == nil && s.villages.Get(id) == nil {
		return
	}
	s.store.Remove(id)
	if v := s.villages.Remove(id); v != nil {
		s.log.Info("village closed",
			zap.Uint64("session", id),
			zap.Int("balance", v.Balance()),
			zap.Bool("won", v.HasWon()),
		)
	}
	for _, fn := range s.onLeave {
		fn(id)
	}
}

// SessionCount returns the current number of active sessions.
func (s *InputSystem) SessionCount() int {
	return s.store.Count()
}
