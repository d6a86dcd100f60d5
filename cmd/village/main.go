package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/width"

	"github.com/ashiaomair/06-final-game-charity-water/internal/config"
	"github.com/ashiaomair/06-final-game-charity-water/internal/core/event"
	coresys "github.com/ashiaomair/06-final-game-charity-water/internal/core/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/data"
	"github.com/ashiaomair/06-final-game-charity-water/internal/handler"
	gonet "github.com/ashiaomair/06-final-game-charity-water/internal/net"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
	"github.com/ashiaomair/06-final-game-charity-water/internal/persist"
	"github.com/ashiaomair/06-final-game-charity-water/internal/scripting"
	"github.com/ashiaomair/06-final-game-charity-water/internal/system"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          Water Village  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     one drop, one village at a time       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

// displayWidth counts terminal columns; wide and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/village.toml"
	if p := os.Getenv("WATER_VILLAGE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Load village data
	printSection("data")

	layout, err := data.LoadLayout(cfg.Village.LayoutPath)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}
	printStat("layout entities", layout.Count())

	catalog, err := data.LoadCatalog(cfg.Village.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("building kinds", catalog.Count())

	luaEngine, err := scripting.NewEngine(cfg.Village.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("reward scripts loaded")
	fmt.Println()

	// 4. Ledger journal (optional)
	var journal system.JournalSink
	if cfg.Journal.Driver != "" {
		printSection("journal")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.Open(ctx, cfg.Journal, log)
		if err != nil {
			cancel()
			return fmt.Errorf("journal: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		journal = persist.NewJournalRepo(db)
		printOK(fmt.Sprintf("%s journal ready", db.Dialect))
		fmt.Println()
	}

	// 5. Village factory and packet handlers
	bus := event.NewBus()
	villages := world.NewVillages()
	settings := villageSettings(cfg.Village)

	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Config:   cfg,
		Log:      log,
		Villages: villages,
		NewVillage: func(id uint64, d world.Difficulty) (*world.State, error) {
			return world.New(world.Options{
				ID:         id,
				Layout:     layout,
				Catalog:    catalog,
				Rules:      luaEngine,
				Bus:        bus,
				Log:        log,
				Rand:       rand.New(rand.NewSource(villageSeed(cfg.Village.Seed, id))),
				Settings:   settings,
				Difficulty: d,
			})
		},
	}
	handler.RegisterAll(pktReg, deps)

	// 6. Create network server
	netServer, err := gonet.NewServer(cfg.Network, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go func() {
		if err := netServer.Serve(); err != nil {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	// 7. Create systems and register with runner
	store := gonet.NewSessionStore()
	runner := coresys.NewRunner()
	register := func(name string, s coresys.System) {
		runner.Register(s)
		log.Debug("system registered", zap.String("system", name), zap.String("phase", s.Phase().String()))
	}

	inputSys := system.NewInputSystem(netServer, pktReg, store, villages, cfg.Network.MaxPacketsPerTick, log)
	viewSys := system.NewViewSyncSystem(store, villages)
	inputSys.OnLeave(viewSys.Forget)
	register("input", inputSys)
	register("movement", system.NewMovementSystem(villages))
	if spawnSys := system.NewSpawnSystem(villages, cfg.Village.SpawnInterval, cfg.Village.MaxCollectibles); spawnSys != nil {
		register("spawn", spawnSys)
	}
	register("viewsync", viewSys)
	register("output", system.NewOutputSystem(bus, store, cfg.Village.FeedbackTTL))
	var journalSys *system.JournalSystem
	if journal != nil {
		journalSys = system.NewJournalSystem(bus, journal, cfg.Journal.FlushInterval, cfg.Journal.MaxBacklog, log)
		register("journal", journalSys)
	}
	register("cleanup", system.NewCleanupSystem(villages))

	// 8. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("listening on ws://%s%s", netServer.Addr().String(), cfg.Network.WSPath))
	printReady(fmt.Sprintf("game loop running (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			// Deliver what is queued before the sockets go away.
			runner.TickPhase(coresys.PhaseOutput, 0)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if journalSys != nil {
				journalSys.Flush(ctx)
			}
			if err := netServer.Shutdown(ctx); err != nil {
				log.Warn("http shutdown", zap.Error(err))
			}
			cancel()
			log.Info("server stopped", zap.Int("villages", villages.Len()))
			return nil
		}
	}
}

func villageSettings(c config.VillageConfig) world.Settings {
	s := world.DefaultSettings()
	s.StartingDrops = c.StartingDrops
	s.WinThreshold = c.WinThreshold
	s.Step = c.Step
	s.ActorSize = c.ActorSize
	s.CellSize = c.CellSize
	s.WellCooldown = c.WellCooldown
	s.InitialCollectibles = c.InitialCollectibles
	return s
}

// villageSeed derives a per-village seed; zero means unseeded.
func villageSeed(base int64, id uint64) int64 {
	if base == 0 {
		return time.Now().UnixNano() + int64(id)
	}
	return base + int64(id)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
