package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ashiaomair/06-final-game-charity-water/internal/core/event"
	coresys "github.com/ashiaomair/06-final-game-charity-water/internal/core/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/persist"
)

// JournalSink stores ledger postings. *persist.JournalRepo is one.
type JournalSink interface {
	Append(ctx context.Context, entries []persist.JournalEntry) error
}

// JournalSystem buffers ledger postings and writes them out every
// interval. While the sink fails the buffer holds at most backlog entries,
// dropping the oldest. Phase 4 (Persist).
type JournalSystem struct {
	sink     JournalSink
	buf      []persist.JournalEntry
	backlog  int
	dropped  int
	interval time.Duration
	elapsed  time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewJournalSystem(bus *event.Bus, sink JournalSink, interval time.Duration, backlog int, log *zap.Logger) *JournalSystem {
	s := &JournalSystem{sink: sink, interval: interval, backlog: backlog, now: time.Now, log: log}
	event.Subscribe(bus, func(e event.LedgerPosted) {
		s.trim()
		s.buf = append(s.buf, persist.JournalEntry{
			Village: e.Village,
			Rule:    e.Rule,
			Delta:   e.Delta,
			Balance: e.Balance,
			At:      s.now(),
		})
	})
	return s
}

// trim makes room for one more entry when the backlog is full.
func (s *JournalSystem) trim() {
	if s.backlog <= 0 || len(s.buf) < s.backlog {
		return
	}
	n := len(s.buf) - s.backlog + 1
	if s.dropped == 0 {
		s.log.Warn("journal backlog full, dropping oldest entries", zap.Int("backlog", s.backlog))
	}
	s.dropped += n
	s.buf = append(s.buf[:0], s.buf[n:]...)
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	s.Flush(ctx)
}

// Flush writes everything buffered. Also called at shutdown. A failed
// batch is kept and retried on the next flush.
func (s *JournalSystem) Flush(ctx context.Context) {
	if len(s.buf) == 0 {
		return
	}
	if err := s.sink.Append(ctx, s.buf); err != nil {
		s.log.Error("journal flush failed", zap.Int("entries", len(s.buf)), zap.Error(err))
		return
	}
	s.log.Debug("journal flushed", zap.Int("entries", len(s.buf)))
	if s.dropped > 0 {
		s.log.Warn("journal recovered after dropping entries", zap.Int("dropped", s.dropped))
		s.dropped = 0
	}
	s.buf = nil
}

// Dropped returns how many entries were discarded since the last
// successful flush.
func (s *JournalSystem) Dropped() int { return s.dropped }

// Pending returns the number of buffered entries.
func (s *JournalSystem) Pending() int { return len(s.buf) }
