package system

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ashiaomair/06-final-game-charity-water/internal/config"
	"github.com/ashiaomair/06-final-game-charity-water/internal/core/event"
	coresys "github.com/ashiaomair/06-final-game-charity-water/internal/core/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/data"
	"github.com/ashiaomair/06-final-game-charity-water/internal/handler"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
	"github.com/ashiaomair/06-final-game-charity-water/internal/persist"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

const tick = 16 * time.Millisecond

type fakeSource struct {
	newCh  chan *net.Session
	deadCh chan uint64
}

func (f *fakeSource) NewSessions() <-chan *net.Session { return f.newCh }
func (f *fakeSource) DeadSessions() <-chan uint64      { return f.deadCh }

type fakeSink struct {
	fail    bool
	batches [][]persist.JournalEntry
}

func (f *fakeSink) Append(_ context.Context, entries []persist.JournalEntry) error {
	if f.fail {
		return errors.New("disk full")
	}
	f.batches = append(f.batches, append([]persist.JournalEntry(nil), entries...))
	return nil
}

type loop struct {
	runner   *coresys.Runner
	source   *fakeSource
	villages *world.Villages
	store    *net.SessionStore
	journal  *JournalSystem
	sink     *fakeSink
}

func newLoop(t *testing.T) *loop {
	t.Helper()
	root := filepath.Join("..", "..", "data", "yaml")
	layout, err := data.LoadLayout(filepath.Join(root, "village_layout.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := data.LoadCatalog(filepath.Join(root, "building_list.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	log := zap.NewNop()
	cfg := config.Defaults()
	bus := event.NewBus()
	villages := world.NewVillages()
	store := net.NewSessionStore()
	settings := world.DefaultSettings()
	settings.InitialCollectibles = 0

	deps := &handler.Deps{
		Config:   cfg,
		Log:      log,
		Villages: villages,
		NewVillage: func(id uint64, d world.Difficulty) (*world.State, error) {
			return world.New(world.Options{
				ID:         id,
				Layout:     layout,
				Catalog:    catalog,
				Bus:        bus,
				Log:        log,
				Rand:       rand.New(rand.NewSource(int64(id))),
				Settings:   settings,
				Difficulty: d,
			})
		},
	}
	reg := packet.NewRegistry(log)
	handler.RegisterAll(reg, deps)

	src := &fakeSource{newCh: make(chan *net.Session, 4), deadCh: make(chan uint64, 4)}
	sink := &fakeSink{}
	input := NewInputSystem(src, reg, store, villages, cfg.Network.MaxPacketsPerTick, log)
	view := NewViewSyncSystem(store, villages)
	input.OnLeave(view.Forget)
	journal := NewJournalSystem(bus, sink, 10*tick, 3, log)

	r := coresys.NewRunner()
	r.Register(NewCleanupSystem(villages))
	r.Register(journal)
	r.Register(NewOutputSystem(bus, store, cfg.Village.FeedbackTTL))
	r.Register(view)
	r.Register(NewMovementSystem(villages))
	r.Register(input)
	return &loop{runner: r, source: src, villages: villages, store: store, journal: journal, sink: sink}
}

func (l *loop) connect(id uint64) *net.Session {
	sess := net.NewSession(nil, id, net.SessionOptions{InQueueSize: 16, OutQueueSize: 256}, zap.NewNop())
	l.source.newCh <- sess
	return sess
}

func (l *loop) tick(n int) {
	for i := 0; i < n; i++ {
		l.runner.Tick(tick)
	}
}

func push(sess *net.Session, w *packet.Writer) {
	sess.InQueue <- w.Bytes()
}

func startPacket(answer string) *packet.Writer {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_START)
	w.WriteS(answer)
	return w
}

// received drains the packets the writer goroutine would have sent.
func received(sess *net.Session) [][]byte {
	var out [][]byte
	for {
		select {
		case p := <-sess.OutQueue:
			out = append(out, p)
		default:
			return out
		}
	}
}

func opcodes(pkts [][]byte) []byte {
	out := make([]byte, len(pkts))
	for i, p := range pkts {
		out[i] = p[0]
	}
	return out
}

func find(pkts [][]byte, opcode byte) []byte {
	for _, p := range pkts {
		if p[0] == opcode {
			return p
		}
	}
	return nil
}

func TestStartSendsFullPicture(t *testing.T) {
	l := newLoop(t)
	sess := l.connect(1)
	push(sess, startPacket("normal"))
	l.tick(1)

	got := opcodes(received(sess))
	want := []byte{
		packet.S_OPCODE_WELCOME,
		packet.S_OPCODE_STARTED,
		packet.S_OPCODE_TREES,
		packet.S_OPCODE_COLLECTIBLES,
		packet.S_OPCODE_VIEW_DELTA,
		packet.S_OPCODE_BALANCE,
	}
	if string(got) != string(want) {
		t.Fatalf("opcodes = %v, want %v", got, want)
	}

	l.tick(1)
	if pkts := received(sess); len(pkts) != 0 {
		t.Fatalf("idle tick sent %v", opcodes(pkts))
	}
}

func TestHeldKeySendsActorPositions(t *testing.T) {
	l := newLoop(t)
	sess := l.connect(1)
	push(sess, startPacket("normal"))
	l.tick(1)
	received(sess)

	down := packet.NewWriterWithOpcode(packet.C_OPCODE_KEY_DOWN)
	down.WriteC(byte(world.DirDown))
	push(sess, down)
	l.tick(3)

	pkts := received(sess)
	if len(pkts) != 3 {
		t.Fatalf("opcodes = %v", opcodes(pkts))
	}
	for _, p := range pkts {
		if p[0] != packet.S_OPCODE_ACTOR_POS {
			t.Fatalf("opcodes = %v", opcodes(pkts))
		}
	}
	r := packet.NewReader(pkts[2])
	r.ReadDU()
	if x, y := r.ReadD(), r.ReadD(); x != 345 || y != 168 {
		t.Fatalf("pos = (%d,%d), want (345,168)", x, y)
	}
}

func TestRejectionBecomesFeedback(t *testing.T) {
	l := newLoop(t)
	sess := l.connect(1)
	push(sess, startPacket("easy"))
	l.tick(1)
	received(sess)

	place := packet.NewWriterWithOpcode(packet.C_OPCODE_PLACE)
	place.WriteD(1100)
	place.WriteD(600)
	push(sess, place)
	l.tick(1)

	p := find(received(sess), packet.S_OPCODE_FEEDBACK)
	if p == nil {
		t.Fatal("no feedback")
	}
	if got := packet.NewReader(p).ReadS(); got != "Choose something to build first!" {
		t.Fatalf("feedback = %q", got)
	}
}

func TestBuildProducesDeltaAndJournal(t *testing.T) {
	l := newLoop(t)
	sess := l.connect(1)
	push(sess, startPacket("normal"))
	l.tick(1)
	received(sess)

	build := packet.NewWriterWithOpcode(packet.C_OPCODE_BUILD)
	build.WriteS("hut")
	place := packet.NewWriterWithOpcode(packet.C_OPCODE_PLACE)
	place.WriteD(1100)
	place.WriteD(600)
	push(sess, build)
	push(sess, place)
	l.tick(1)

	pkts := received(sess)
	delta := find(pkts, packet.S_OPCODE_VIEW_DELTA)
	if delta == nil {
		t.Fatalf("opcodes = %v", opcodes(pkts))
	}
	r := packet.NewReader(delta)
	if added := r.ReadH(); added != 1 {
		t.Fatalf("added = %d", added)
	}
	bal := find(pkts, packet.S_OPCODE_BALANCE)
	if bal == nil || packet.NewReader(bal).ReadD() != 970 {
		t.Fatal("balance packet missing or wrong")
	}

	if l.journal.Pending() != 1 {
		t.Fatalf("pending = %d", l.journal.Pending())
	}
	l.tick(10)
	if len(l.sink.batches) != 1 || l.sink.batches[0][0].Rule != string(world.RuleConstruction) || l.sink.batches[0][0].Village != 1 {
		t.Fatalf("batches = %+v", l.sink.batches)
	}
	if l.journal.Pending() != 0 {
		t.Fatal("journal not drained")
	}
}

func TestJournalKeepsFailedBatch(t *testing.T) {
	l := newLoop(t)
	l.sink.fail = true
	sess := l.connect(1)
	push(sess, startPacket("normal"))
	l.tick(1)
	if err := l.villages.Get(1).Upgrade(world.KindWell); err != nil {
		t.Fatal(err)
	}
	l.tick(10)
	if l.journal.Pending() != 1 {
		t.Fatalf("pending = %d", l.journal.Pending())
	}
	l.sink.fail = false
	l.journal.Flush(context.Background())
	if l.journal.Pending() != 0 || len(l.sink.batches) != 1 {
		t.Fatal("retry failed")
	}
}

func TestJournalBacklogDropsOldest(t *testing.T) {
	l := newLoop(t)
	l.sink.fail = true
	sess := l.connect(1)
	push(sess, startPacket("normal"))
	l.tick(1)
	v := l.villages.Get(1)
	if err := v.Upgrade(world.KindWell); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if err := v.Interact(v.Controllable().ID); err != nil {
			t.Fatal(err)
		}
	}
	l.tick(10)
	if l.journal.Pending() != 3 || l.journal.Dropped() != 2 {
		t.Fatalf("pending %d dropped %d", l.journal.Pending(), l.journal.Dropped())
	}

	l.sink.fail = false
	l.journal.Flush(context.Background())
	if len(l.sink.batches) != 1 || l.journal.Dropped() != 0 {
		t.Fatalf("batches %d dropped %d", len(l.sink.batches), l.journal.Dropped())
	}
	batch := l.sink.batches[0]
	want := []int32{960, 970, 980}
	for i, e := range batch {
		if e.Balance != want[i] {
			t.Fatalf("batch balances %+v, want %v", batch, want)
		}
	}
}

func TestDeadSessionDropsVillage(t *testing.T) {
	l := newLoop(t)
	a := l.connect(1)
	b := l.connect(2)
	push(a, startPacket("normal"))
	push(b, startPacket("hard"))
	l.tick(1)
	if l.villages.Len() != 2 {
		t.Fatalf("villages = %d", l.villages.Len())
	}

	// Villages are independent.
	if err := l.villages.Get(1).Upgrade(world.KindWell); err != nil {
		t.Fatal(err)
	}
	if l.villages.Get(2).Balance() != 1000 {
		t.Fatal("villages share a ledger")
	}

	l.source.deadCh <- 1
	l.tick(1)
	if l.villages.Len() != 1 || l.villages.Get(1) != nil || l.store.Count() != 1 {
		t.Fatal("dead session not dropped")
	}

	b.Close()
	l.tick(1)
	if l.villages.Len() != 0 || l.store.Count() != 0 {
		t.Fatal("closed session not dropped")
	}
}

func TestSpawnSystemRespectsLimit(t *testing.T) {
	if NewSpawnSystem(world.NewVillages(), 0, 4) != nil {
		t.Fatal("zero interval should disable spawning")
	}
	l := newLoop(t)
	sess := l.connect(1)
	push(sess, startPacket("normal"))
	l.tick(1)
	v := l.villages.Get(1)

	spawn := NewSpawnSystem(l.villages, 2*tick, 3)
	for i := 0; i < 20; i++ {
		spawn.Update(tick)
	}
	if n := len(v.Collectibles()); n != 3 {
		t.Fatalf("collectibles = %d, want 3", n)
	}
}
