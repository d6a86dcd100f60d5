package world

import "github.com/ashiaomair/06-final-game-charity-water/internal/core/event"

// Won reports whether the balance has reached the threshold and every
// structure is upgraded. It has no side effects.
func (s *State) Won() bool {
	if s.ledger.Balance() < s.settings.WinThreshold {
		return false
	}
	_, pending := s.structures.First(func(st *Structure) bool { return !st.Upgraded })
	return !pending
}

// HasWon is the latched result of the last evaluation.
func (s *State) HasWon() bool { return s.won }

// evaluate re-runs the win predicate and announces a false→true flip.
func (s *State) evaluate() {
	won := s.Won()
	if won && !s.won {
		event.Emit(s.bus, event.WinAchieved{Village: s.id, Balance: int32(s.ledger.Balance())})
		s.log.Info("village won")
	}
	s.won = won
}
