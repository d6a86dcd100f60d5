package world

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ashiaomair/06-final-game-charity-water/internal/core/ecs"
	"github.com/ashiaomair/06-final-game-charity-water/internal/core/event"
	"github.com/ashiaomair/06-final-game-charity-water/internal/data"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
)

// Rules computes the scripted reward amounts.
type Rules interface {
	VillagerReward(difficulty string) int
	WellYield(upgraded bool) int
	PickupReward() int
}

// Settings are the numeric tunables of a village.
type Settings struct {
	StartingDrops       int
	WinThreshold        int
	Step                int32
	ActorSize           int32
	CellSize            int32
	PickupSize          int32
	WellCooldown        time.Duration
	InitialCollectibles int
}

func DefaultSettings() Settings {
	return Settings{
		StartingDrops:       1000,
		WinThreshold:        1000,
		Step:                6,
		ActorSize:           64,
		CellSize:            64,
		PickupSize:          48,
		WellCooldown:        120 * time.Second,
		InitialCollectibles: 3,
	}
}

// Options wires a State to its data tables and collaborators. Layout and
// Catalog are required; everything else has a usable default.
type Options struct {
	ID         uint64 // routes emitted events back to the owning session
	Layout     *data.Layout
	Catalog    *data.Catalog
	Rules      Rules
	Bus        *event.Bus
	Log        *zap.Logger
	Clock      func() time.Time
	Rand       *rand.Rand
	Settings   Settings
	Difficulty Difficulty
}

// State is one village: the entity registry plus the ledger, cooldowns,
// movement controller and build/upgrade state. It is owned by the game loop
// goroutine and is not safe for concurrent use.
type State struct {
	id       uint64
	settings Settings
	layout   *data.Layout
	catalog  *data.Catalog
	rules    Rules
	bus      *event.Bus
	log      *zap.Logger
	now      func() time.Time
	rng      *rand.Rand

	ecs          *ecs.World
	structures   *ecs.PtrComponentStore[Structure]
	actors       *ecs.PtrComponentStore[Actor]
	collectibles *ecs.PtrComponentStore[Collectible]
	trees        *ecs.PtrComponentStore[Tree]

	ledger     *Ledger
	cooldowns  *Cooldowns
	mover      Mover
	difficulty Difficulty

	pending      Kind // armed build, "" when none
	selection    *Selection
	selected     ecs.EntityID
	wallUpgraded bool // the village perimeter wall
	wallCleared  bool
	won          bool
}

// New builds a village and seeds it from the layout.
func New(opts Options) (*State, error) {
	if opts.Layout == nil {
		return nil, errors.New("world: layout is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("world: catalog is required")
	}
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}
	if opts.Settings.Step <= 0 || opts.Settings.ActorSize <= 0 || opts.Settings.CellSize <= 0 {
		return nil, fmt.Errorf("world: step, actor size and cell size must be positive")
	}
	if opts.Settings.PickupSize <= 0 {
		opts.Settings.PickupSize = 48
	}
	if opts.Rules == nil {
		opts.Rules = fixedRules{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Difficulty == "" {
		opts.Difficulty = Normal
	}

	s := &State{
		id:           opts.ID,
		settings:     opts.Settings,
		layout:       opts.Layout,
		catalog:      opts.Catalog,
		rules:        opts.Rules,
		bus:          opts.Bus,
		log:          opts.Log.With(zap.Uint64("village", opts.ID)),
		now:          opts.Clock,
		rng:          opts.Rand,
		ecs:          ecs.NewWorld(),
		structures:   ecs.NewPtrComponentStore[Structure](),
		actors:       ecs.NewPtrComponentStore[Actor](),
		collectibles: ecs.NewPtrComponentStore[Collectible](),
		trees:        ecs.NewPtrComponentStore[Tree](),
		cooldowns:    NewCooldowns(opts.Settings.WellCooldown),
		difficulty:   opts.Difficulty,
	}
	reg := s.ecs.Registry()
	reg.Register(s.structures)
	reg.Register(s.actors)
	reg.Register(s.collectibles)
	reg.Register(s.trees)
	s.ledger = NewLedger(opts.Settings.StartingDrops, s.posted)

	if err := s.seed(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *State) ID() uint64             { return s.id }
func (s *State) Balance() int           { return s.ledger.Balance() }
func (s *State) Difficulty() Difficulty { return s.difficulty }
func (s *State) Layout() *data.Layout   { return s.layout }
func (s *State) Settings() Settings     { return s.settings }
func (s *State) Ledger() *Ledger        { return s.ledger }
func (s *State) Cooldowns() *Cooldowns  { return s.cooldowns }
func (s *State) Mover() Mover           { return s.mover }
func (s *State) WallUpgraded() bool     { return s.wallUpgraded }
func (s *State) Selected() ecs.EntityID { return s.selected }
func (s *State) Catalog() *data.Catalog { return s.catalog }

// seed clears the registry and rebuilds the village from the layout.
func (s *State) seed() error {
	s.ecs.Reset()
	s.cooldowns.Clear()
	s.mover = Mover{}
	s.pending = ""
	s.CancelSelection()
	s.selected = 0
	s.wallUpgraded = false
	s.wallCleared = false
	s.won = false

	for _, p := range s.layout.Trees {
		s.AddTree(p)
	}
	for _, sd := range s.layout.Structures {
		def := s.catalog.Get(sd.Kind)
		if def == nil {
			return fmt.Errorf("world: layout structure kind %q not in catalog", sd.Kind)
		}
		s.addStructure(def, geom.Point{X: sd.X, Y: sd.Y}, false)
	}
	for _, p := range s.layout.Villagers {
		s.AddActor(p)
	}
	for i := 0; i < s.settings.InitialCollectibles; i++ {
		s.SpawnRandomCollectible()
	}

	s.ledger.reset(s.settings.StartingDrops)
	event.Emit(s.bus, event.BalanceChanged{Village: s.id, Balance: int32(s.ledger.Balance())})
	s.evaluate()
	return nil
}

// Reset reinitialises the whole village for the current difficulty.
func (s *State) Reset() error {
	if err := s.seed(); err != nil {
		return err
	}
	event.Emit(s.bus, event.VillageReset{Village: s.id, Difficulty: string(s.difficulty)})
	s.notify("Village reset!")
	s.log.Info("village reset", zap.String("difficulty", string(s.difficulty)))
	return nil
}

// Start parses a difficulty answer and begins a fresh village with it.
func (s *State) Start(answer string) error {
	d, err := ParseDifficulty(answer)
	if err != nil {
		return s.fail(err)
	}
	s.difficulty = d
	if err := s.seed(); err != nil {
		return err
	}
	event.Emit(s.bus, event.VillageReset{Village: s.id, Difficulty: string(d)})
	s.log.Info("village started", zap.String("difficulty", string(d)))
	return nil
}

// FlushRemovals destroys entities queued for removal this tick.
func (s *State) FlushRemovals() int {
	return s.ecs.FlushDestroyQueue()
}

// --- registry ---

func (s *State) addStructure(def *data.BuildingDef, p geom.Point, movable bool) *Structure {
	id := s.ecs.CreateEntity()
	st := &Structure{ID: id, Kind: Kind(def.Kind), Origin: p, Size: def.Size, Movable: movable}
	st.setPos(p)
	s.structures.Set(id, st)
	return st
}

// AddStructure registers a structure of kind at p without charging for it.
func (s *State) AddStructure(kind Kind, p geom.Point) (*Structure, error) {
	def := s.catalog.Get(string(kind))
	if def == nil {
		return nil, ErrUnknownKind
	}
	st := s.addStructure(def, p, def.Movable)
	s.evaluate()
	return st, nil
}

// AddActor registers a villager at p. The first actor of a village becomes
// the controllable one.
func (s *State) AddActor(p geom.Point) *Actor {
	id := s.ecs.CreateEntity()
	_, hasLeader := s.actors.First(func(a *Actor) bool { return a.Controllable })
	a := &Actor{
		ID:           id,
		Pos:          p,
		Bounds:       geom.RectAt(p, s.settings.ActorSize),
		Controllable: !hasLeader,
	}
	s.actors.Set(id, a)
	return a
}

// AddTree registers a tree obstacle at p.
func (s *State) AddTree(p geom.Point) *Tree {
	id := s.ecs.CreateEntity()
	t := &Tree{ID: id, Pos: p, Bounds: geom.RectAt(p, s.layout.TreeSize)}
	s.trees.Set(id, t)
	return t
}

func (s *State) Structure(id ecs.EntityID) (*Structure, bool) {
	if !s.ecs.Alive(id) {
		return nil, false
	}
	return s.structures.Get(id)
}

func (s *State) Actor(id ecs.EntityID) (*Actor, bool) {
	if !s.ecs.Alive(id) {
		return nil, false
	}
	return s.actors.Get(id)
}

func (s *State) Collectible(id ecs.EntityID) (*Collectible, bool) {
	if !s.ecs.Alive(id) {
		return nil, false
	}
	return s.collectibles.Get(id)
}

// Structures lists structures in placement order.
func (s *State) Structures() []*Structure { return s.structures.List() }

// Actors lists villagers in creation order.
func (s *State) Actors() []*Actor { return s.actors.List() }

// Collectibles lists live collectibles in spawn order.
func (s *State) Collectibles() []*Collectible { return s.collectibles.List() }

// Trees lists standing trees. Pruned trees drop out immediately even though
// their removal is flushed at the end of the tick.
func (s *State) Trees() []*Tree {
	all := s.trees.List()
	out := all[:0:0]
	for _, t := range all {
		if s.ecs.Alive(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// Controllable returns the player-steered villager, or nil.
func (s *State) Controllable() *Actor {
	a, _ := s.actors.First(func(a *Actor) bool { return a.Controllable })
	return a
}

// Resolve maps a wire id back to a live entity.
func (s *State) Resolve(wire uint32) (ecs.EntityID, bool) {
	var found ecs.EntityID
	match := func(id ecs.EntityID) {
		if found.IsZero() && id.Wire() == wire && s.ecs.Alive(id) {
			found = id
		}
	}
	s.structures.Each(func(id ecs.EntityID, _ *Structure) { match(id) })
	s.actors.Each(func(id ecs.EntityID, _ *Actor) { match(id) })
	s.collectibles.Each(func(id ecs.EntityID, _ *Collectible) { match(id) })
	s.trees.Each(func(id ecs.EntityID, _ *Tree) { match(id) })
	return found, !found.IsZero()
}

// --- notices ---

func (s *State) notify(text string) {
	event.Emit(s.bus, event.Feedback{Village: s.id, Text: text})
}

// fail surfaces a rejection to the player and returns it.
func (s *State) fail(err error) error {
	var r *Rejection
	if errors.As(err, &r) {
		s.notify(r.Error())
		s.log.Debug("action rejected", zap.String("reason", r.Error()))
	}
	return err
}

func (s *State) posted(e LedgerEntry) {
	event.Emit(s.bus, event.BalanceChanged{Village: s.id, Balance: int32(e.Balance)})
	event.Emit(s.bus, event.LedgerPosted{
		Village: s.id,
		Rule:    string(e.Rule),
		Delta:   int32(e.Delta),
		Balance: int32(e.Balance),
	})
	s.evaluate()
}

func (s *State) credit(rule Rule, amount int) {
	s.ledger.Credit(rule, amount)
	if amount > 0 {
		s.notify(fmt.Sprintf("+%d Water Drops!", amount))
	}
}

type fixedRules struct{}

func (fixedRules) VillagerReward(difficulty string) int {
	switch Difficulty(difficulty) {
	case Easy:
		return 20
	case Hard:
		return 5
	}
	return 10
}

func (fixedRules) WellYield(upgraded bool) int {
	if upgraded {
		return 10
	}
	return 5
}

func (fixedRules) PickupReward() int { return 10 }
