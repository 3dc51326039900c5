package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/hexforge/hexgrid/internal/terrain"
)

// Engine wraps a single gopher-lua VM for world generation hooks.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script in dir. A missing
// directory yields an engine with no hooks.
func NewEngine(dir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("GRASS", lua.LString(terrain.Grass.String()))
	vm.SetGlobal("WATER", lua.LString(terrain.Water.String()))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(dir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load world scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	if dir == "" {
		return nil
	}
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

// Has reports whether a global function named name is defined.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

func (e *Engine) Close() {
	e.vm.Close()
}

// HeightPolicy returns the height policy for generation. Height is always
// noise * strength; water tiles are damped first by a factor. The factor
// comes from fallback (terrain.WaterDamping, otherwise 1) unless the Lua
// function water_damping(noise, strength, configured) is defined, in which
// case its result is used. A failing or out-of-range hook falls back to the
// configured factor and the first failure is logged.
func (e *Engine) HeightPolicy(fallback terrain.HeightPolicy) terrain.HeightPolicy {
	if fallback == nil {
		fallback = terrain.Linear{}
	}
	if !e.Has("water_damping") {
		return fallback
	}
	factor := 1.0
	if wd, ok := fallback.(terrain.WaterDamping); ok {
		factor = wd.Factor
	}
	return &luaDamping{e: e, configured: factor}
}

type luaDamping struct {
	e          *Engine
	configured float64
	failed     bool
}

func (h *luaDamping) Height(b terrain.Biome, noise, strength float64) float64 {
	if b == terrain.Water {
		noise *= h.factor(noise, strength)
	}
	return noise * strength
}

func (h *luaDamping) factor(noise, strength float64) float64 {
	vm := h.e.vm
	fn := vm.GetGlobal("water_damping")
	if fn == lua.LNil {
		h.fail(fmt.Errorf("lua function water_damping not found"))
		return h.configured
	}
	if err := vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(noise), lua.LNumber(strength), lua.LNumber(h.configured)); err != nil {
		h.fail(err)
		return h.configured
	}

	result := vm.Get(-1)
	vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		h.fail(fmt.Errorf("water_damping returned %s", result.Type()))
		return h.configured
	}
	if n < 0 || n > 1 {
		h.fail(fmt.Errorf("water_damping returned %v, want [0, 1]", float64(n)))
		return h.configured
	}
	return float64(n)
}

func (h *luaDamping) fail(err error) {
	if h.failed {
		return
	}
	h.failed = true
	h.e.log.Error("lua water_damping error, using configured factor", zap.Error(err))
}
