package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Fallback amounts used when a script is missing or misbehaves. They match
// the shipped scripts so a broken script degrades to the stock rules.
const (
	fallbackVillagerReward = 10
	fallbackWellYield      = 5
	fallbackUpgradedYield  = 10
	fallbackPickupReward   = 10
)

// Engine wraps a single gopher-lua VM holding the reward rules.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)

	// Core rules first so feature scripts can override individual functions.
	for _, sub := range []string{"core", "rewards", "events"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// NewEngineFromSource builds an engine from inline Lua. Used by tools and tests.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load inline script: %w", err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log}
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// callInt calls a global Lua function expected to return one number.
// Non-numeric or negative results fall back to def.
func (e *Engine) callInt(name string, def int, args ...lua.LValue) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("fn", name))
		return def
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua call error", zap.String("fn", name), zap.Error(err))
		return def
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok || n < 0 {
		e.log.Error("lua function returned invalid amount",
			zap.String("fn", name),
			zap.String("value", ret.String()),
		)
		return def
	}
	return int(n)
}

// VillagerReward returns the drops granted for tapping a villager at the
// given difficulty (easy/normal/hard).
func (e *Engine) VillagerReward(difficulty string) int {
	return e.callInt("villager_reward", fallbackVillagerReward, lua.LString(difficulty))
}

// WellYield returns the drops pumped from a well.
func (e *Engine) WellYield(upgraded bool) int {
	def := fallbackWellYield
	if upgraded {
		def = fallbackUpgradedYield
	}
	return e.callInt("well_yield", def, lua.LBool(upgraded))
}

// PickupReward returns the drops granted by a collectible.
func (e *Engine) PickupReward() int {
	return e.callInt("pickup_reward", fallbackPickupReward)
}
