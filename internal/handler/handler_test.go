package handler

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ashiaomair/06-final-game-charity-water/internal/config"
	"github.com/ashiaomair/06-final-game-charity-water/internal/data"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

type harness struct {
	reg  *packet.Registry
	deps *Deps
	sess *net.Session
}

func newHarness(t *testing.T) *harness {
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
	settings := world.DefaultSettings()
	settings.InitialCollectibles = 0

	deps := &Deps{
		Config:   config.Defaults(),
		Log:      log,
		Villages: world.NewVillages(),
		NewVillage: func(id uint64, d world.Difficulty) (*world.State, error) {
			return world.New(world.Options{
				ID:         id,
				Layout:     layout,
				Catalog:    catalog,
				Log:        log,
				Rand:       rand.New(rand.NewSource(1)),
				Settings:   settings,
				Difficulty: d,
			})
		},
	}
	reg := packet.NewRegistry(log)
	RegisterAll(reg, deps)
	sess := net.NewSession(nil, 1, net.SessionOptions{InQueueSize: 8, OutQueueSize: 64}, log)
	return &harness{reg: reg, deps: deps, sess: sess}
}

func (h *harness) send(t *testing.T, w *packet.Writer) error {
	t.Helper()
	return h.reg.Dispatch(h.sess, h.sess.State(), w.Bytes())
}

// sent returns every packet buffered since the last call.
func (h *harness) sent() [][]byte {
	h.sess.FlushOutput()
	var out [][]byte
	for {
		select {
		case p := <-h.sess.OutQueue:
			out = append(out, p)
		default:
			return out
		}
	}
}

func start(answer string) *packet.Writer {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_START)
	w.WriteS(answer)
	return w
}

func (h *harness) village(t *testing.T) *world.State {
	t.Helper()
	v := h.deps.Villages.Get(h.sess.ID)
	if v == nil {
		t.Fatal("no village")
	}
	return v
}

func TestStartRejectsUnknownDifficulty(t *testing.T) {
	h := newHarness(t)
	if err := h.send(t, start("medium")); err != nil {
		t.Fatal(err)
	}
	out := h.sent()
	if len(out) != 1 || out[0][0] != packet.S_OPCODE_FEEDBACK {
		t.Fatalf("out = %v", out)
	}
	r := packet.NewReader(out[0])
	if got := r.ReadS(); got != "Please type 'Easy', 'Normal', or 'Hard' to begin." {
		t.Fatalf("feedback = %q", got)
	}
	if ttl := r.ReadH(); ttl != 1500 {
		t.Fatalf("ttl = %d", ttl)
	}
	if h.sess.State() != packet.StateConnected || h.deps.Villages.Len() != 0 {
		t.Fatal("bad answer started a village")
	}
}

func TestPlayingOpcodesGatedBeforeStart(t *testing.T) {
	h := newHarness(t)
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_KEY_DOWN)
	w.WriteC(byte(world.DirRight))
	if err := h.send(t, w); err == nil {
		t.Fatal("KEY_DOWN accepted before START")
	}
}

func TestStartBuildsVillage(t *testing.T) {
	h := newHarness(t)
	if err := h.send(t, start(" HARD ")); err != nil {
		t.Fatal(err)
	}
	if h.sess.State() != packet.StatePlaying {
		t.Fatalf("state = %s", h.sess.State())
	}
	v := h.village(t)
	if v.Difficulty() != world.Hard || v.Balance() != 1000 {
		t.Fatalf("difficulty %s balance %d", v.Difficulty(), v.Balance())
	}

	out := h.sent()
	if len(out) != 2 || out[0][0] != packet.S_OPCODE_WELCOME || out[1][0] != packet.S_OPCODE_STARTED {
		t.Fatalf("out = %v", out)
	}
	r := packet.NewReader(out[0])
	if w, hgt := r.ReadH(), r.ReadH(); w != 1400 || hgt != 700 {
		t.Fatalf("canvas %dx%d", w, hgt)
	}
	if got := packet.NewReader(out[1]).ReadS(); got != "hard" {
		t.Fatalf("started = %q", got)
	}

	// A second START restarts the same village with the new difficulty.
	if err := h.send(t, start("easy")); err != nil {
		t.Fatal(err)
	}
	if h.village(t) != v || v.Difficulty() != world.Easy {
		t.Fatal("restart did not reuse the village")
	}
}

func TestSecondStartRebuildsVillage(t *testing.T) {
	h := newHarness(t)
	if err := h.send(t, start("normal")); err != nil {
		t.Fatal(err)
	}
	v := h.village(t)
	hut, err := v.Place(world.KindHut, geom.Point{X: 1100, Y: 600})
	if err != nil {
		t.Fatal(err)
	}
	seeded := len(v.Structures()) - 1

	if err := h.send(t, start("hard")); err != nil {
		t.Fatal(err)
	}
	if h.village(t) != v {
		t.Fatal("restart replaced the village")
	}
	if v.Difficulty() != world.Hard || v.Balance() != 1000 || len(v.Structures()) != seeded {
		t.Fatalf("difficulty %s balance %d structures %d", v.Difficulty(), v.Balance(), len(v.Structures()))
	}
	if _, ok := v.Resolve(hut.ID.Wire()); ok {
		t.Fatal("hut from before the restart still resolves")
	}

	if _, err := v.Place(world.KindHut, geom.Point{X: 1100, Y: 600}); err != nil {
		t.Fatal(err)
	}
	if err := h.send(t, start("medium")); err != nil {
		t.Fatal(err)
	}
	if v.Difficulty() != world.Hard || v.Balance() != 970 || len(v.Structures()) != seeded+1 {
		t.Fatalf("rejected answer changed the village: %s %d %d", v.Difficulty(), v.Balance(), len(v.Structures()))
	}
}

func TestBuildPlaceAndUpgrade(t *testing.T) {
	h := newHarness(t)
	if err := h.send(t, start("normal")); err != nil {
		t.Fatal(err)
	}
	v := h.village(t)

	b := packet.NewWriterWithOpcode(packet.C_OPCODE_BUILD)
	b.WriteS("House")
	if err := h.send(t, b); err != nil {
		t.Fatal(err)
	}
	if kind, armed := v.PendingBuild(); !armed || kind != world.KindHut {
		t.Fatal("build not armed")
	}

	p := packet.NewWriterWithOpcode(packet.C_OPCODE_PLACE)
	p.WriteD(1100)
	p.WriteD(600)
	if err := h.send(t, p); err != nil {
		t.Fatal(err)
	}
	if v.Balance() != 970 || len(v.Structures()) != 3 {
		t.Fatalf("balance %d structures %d", v.Balance(), len(v.Structures()))
	}

	u := packet.NewWriterWithOpcode(packet.C_OPCODE_UPGRADE)
	u.WriteS("house")
	if err := h.send(t, u); err != nil {
		t.Fatal(err)
	}
	sel, open := v.Selection()
	if !open || len(sel.Candidates) != 2 {
		t.Fatalf("selection %+v %v", sel, open)
	}
	if err := h.send(t, packet.NewWriterWithOpcode(packet.C_OPCODE_CANCEL_SELECTION)); err != nil {
		t.Fatal(err)
	}
	if _, open := v.Selection(); open {
		t.Fatal("selection still open")
	}

	u = packet.NewWriterWithOpcode(packet.C_OPCODE_UPGRADE)
	u.WriteS("castle")
	if err := h.send(t, u); err != nil {
		t.Fatal(err)
	}
	if v.Balance() != 970 {
		t.Fatalf("unknown kind charged: %d", v.Balance())
	}
}

func TestInteractAndReposition(t *testing.T) {
	h := newHarness(t)
	if err := h.send(t, start("easy")); err != nil {
		t.Fatal(err)
	}
	v := h.village(t)

	i := packet.NewWriterWithOpcode(packet.C_OPCODE_INTERACT)
	i.WriteDU(v.Controllable().ID.Wire())
	if err := h.send(t, i); err != nil {
		t.Fatal(err)
	}
	if v.Balance() != 1020 {
		t.Fatalf("balance = %d", v.Balance())
	}

	st, err := v.Place(world.KindWell, geom.Point{X: 1100, Y: 600})
	if err != nil {
		t.Fatal(err)
	}
	m := packet.NewWriterWithOpcode(packet.C_OPCODE_REPOSITION)
	m.WriteDU(st.ID.Wire())
	m.WriteD(1000)
	m.WriteD(640)
	if err := h.send(t, m); err != nil {
		t.Fatal(err)
	}
	if st.Movable || st.Pos.X != 960 || st.Pos.Y != 576 {
		t.Fatalf("well after move = %+v", st)
	}

	// Stale ids are harmless.
	i = packet.NewWriterWithOpcode(packet.C_OPCODE_INTERACT)
	i.WriteDU(0xFFFFFF)
	if err := h.send(t, i); err != nil {
		t.Fatal(err)
	}
}

func TestKeysDriveMover(t *testing.T) {
	h := newHarness(t)
	if err := h.send(t, start("normal")); err != nil {
		t.Fatal(err)
	}
	v := h.village(t)
	down := packet.NewWriterWithOpcode(packet.C_OPCODE_KEY_DOWN)
	down.WriteC(byte(world.DirLeft))
	if err := h.send(t, down); err != nil {
		t.Fatal(err)
	}
	if v.Mover().Direction() != world.DirLeft {
		t.Fatal("key down ignored")
	}
	up := packet.NewWriterWithOpcode(packet.C_OPCODE_KEY_UP)
	up.WriteC(byte(world.DirLeft))
	if err := h.send(t, up); err != nil {
		t.Fatal(err)
	}
	if v.Mover().Direction() != world.DirNone {
		t.Fatal("key up ignored")
	}
}

func TestResetRestoresBalance(t *testing.T) {
	h := newHarness(t)
	if err := h.send(t, start("normal")); err != nil {
		t.Fatal(err)
	}
	v := h.village(t)
	if err := v.Upgrade(world.KindWell); err != nil {
		t.Fatal(err)
	}
	if err := h.send(t, packet.NewWriterWithOpcode(packet.C_OPCODE_RESET)); err != nil {
		t.Fatal(err)
	}
	if v.Balance() != 1000 {
		t.Fatalf("balance = %d", v.Balance())
	}
}

func TestFeedbackTTLClamped(t *testing.T) {
	if clampH((2*time.Minute).Milliseconds()) != 0xFFFF || clampH(-1) != 0 {
		t.Fatal("clamp")
	}
}
