package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Network NetworkConfig `toml:"network"`
	Village VillageConfig `toml:"village"`
	Journal JournalConfig `toml:"journal"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress       string        `toml:"bind_address"`
	WSPath            string        `toml:"ws_path"`
	TickRate          time.Duration `toml:"tick_rate"`
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	MaxPacketsPerTick int           `toml:"max_packets_per_tick"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
	PacketsPerSecond  int           `toml:"packets_per_second"` // 0 = unlimited
}

// VillageConfig holds the tunables of a single village session. Building
// costs and the map itself live in the YAML data files.
type VillageConfig struct {
	LayoutPath          string        `toml:"layout_path"`
	CatalogPath         string        `toml:"catalog_path"`
	ScriptsDir          string        `toml:"scripts_dir"`
	StartingDrops       int           `toml:"starting_drops"`
	WinThreshold        int           `toml:"win_threshold"`
	Step                int32         `toml:"step"`       // movement per tick
	ActorSize           int32         `toml:"actor_size"` // villager footprint
	CellSize            int32         `toml:"cell_size"`  // placement grid
	WellCooldown        time.Duration `toml:"well_cooldown"`
	FeedbackTTL         time.Duration `toml:"feedback_ttl"`
	InitialCollectibles int           `toml:"initial_collectibles"`
	SpawnInterval       time.Duration `toml:"spawn_interval"` // 0 = no sporadic spawns
	MaxCollectibles     int           `toml:"max_collectibles"`
	Seed                int64         `toml:"seed"` // 0 = seeded from the clock
	DefaultDifficulty   string        `toml:"default_difficulty"`
}

// JournalConfig selects the ledger audit backend. An empty driver disables it.
type JournalConfig struct {
	Driver          string        `toml:"driver"` // "", "sqlite" or "postgres"
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushInterval   time.Duration `toml:"flush_interval"`
	MaxBacklog      int           `toml:"max_backlog"` // entries kept while the database is down
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	v := c.Village
	switch {
	case c.Network.TickRate <= 0:
		return fmt.Errorf("network.tick_rate must be positive")
	case v.Step <= 0:
		return fmt.Errorf("village.step must be positive")
	case v.ActorSize <= 0 || v.CellSize <= 0:
		return fmt.Errorf("village.actor_size and village.cell_size must be positive")
	case v.StartingDrops < 0 || v.WinThreshold < 0:
		return fmt.Errorf("village drop amounts must not be negative")
	}
	switch c.Journal.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("journal.driver %q: want sqlite, postgres or empty", c.Journal.Driver)
	}
	return nil
}

// Defaults returns the built-in configuration used when a key is absent.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Water Village",
		},
		Network: NetworkConfig{
			BindAddress:       "127.0.0.1:7010",
			WSPath:            "/ws",
			TickRate:          16 * time.Millisecond,
			InQueueSize:       64,
			OutQueueSize:      256,
			MaxPacketsPerTick: 16,
			WriteTimeout:      10 * time.Second,
			ReadTimeout:       60 * time.Second,
			PacketsPerSecond:  120,
		},
		Village: VillageConfig{
			LayoutPath:          "data/yaml/village_layout.yaml",
			CatalogPath:         "data/yaml/building_list.yaml",
			ScriptsDir:          "scripts",
			StartingDrops:       1000,
			WinThreshold:        1000,
			Step:                6,
			ActorSize:           64,
			CellSize:            64,
			WellCooldown:        120 * time.Second,
			FeedbackTTL:         1500 * time.Millisecond,
			InitialCollectibles: 3,
			MaxCollectibles:     8,
			DefaultDifficulty:   "normal",
		},
		Journal: JournalConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushInterval:   5 * time.Second,
			MaxBacklog:      10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
