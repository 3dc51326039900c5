package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hexforge/hexgrid/internal/terrain"
)

func engineWith(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		if err := os.WriteFile(filepath.Join(dir, "height.lua"), []byte(script), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	e, err := NewEngine(dir, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestHeightPolicyCallsLua(t *testing.T) {
	e := engineWith(t, `
function water_damping(noise, strength, configured)
  return configured / 2
end
`)
	p := e.HeightPolicy(terrain.WaterDamping{Factor: 0.5})
	if got := p.Height(terrain.Grass, 0.5, 10); got != 5 {
		t.Fatalf("grass height = %v, want 5", got)
	}
	if got := p.Height(terrain.Water, -0.5, 10); got != -1.25 {
		t.Fatalf("water height = %v, want -1.25", got)
	}
}

func TestHeightPolicyWithoutHook(t *testing.T) {
	e := engineWith(t, "")
	fallback := terrain.WaterDamping{Factor: 0.5}
	if p := e.HeightPolicy(fallback); p != terrain.HeightPolicy(fallback) {
		t.Fatalf("policy = %T, want the fallback", p)
	}
}

func TestHeightPolicyFallsBackOnError(t *testing.T) {
	e := engineWith(t, `
function water_damping(noise, strength, configured)
  if noise < -0.5 then
    error("boom")
  end
  if noise < 0 then
    return 3
  end
  return "low"
end
`)
	p := e.HeightPolicy(terrain.WaterDamping{Factor: 0.5})
	if got := p.Height(terrain.Water, -1, 4); got != -2 {
		t.Fatalf("height after error = %v, want -2", got)
	}
	if got := p.Height(terrain.Water, -0.25, 4); got != -0.5 {
		t.Fatalf("height after out of range factor = %v, want -0.5", got)
	}
	if got := p.Height(terrain.Water, 0.25, 4); got != 0.5 {
		t.Fatalf("height after bad return = %v, want 0.5", got)
	}
}

func TestHeightPolicyLinearFallbackFactor(t *testing.T) {
	e := engineWith(t, `
function water_damping(noise, strength, configured)
  return configured
end
`)
	p := e.HeightPolicy(terrain.Linear{})
	if got := p.Height(terrain.Water, -0.5, 8); got != -4 {
		t.Fatalf("water height = %v, want -4", got)
	}
}

func TestShippedScriptsKeepHeightRule(t *testing.T) {
	e, err := NewEngine(filepath.Join("..", "..", "scripts", "world"), nil)
	if err != nil {
		t.Fatalf("load shipped scripts: %v", err)
	}
	defer e.Close()
	if !e.Has("water_damping") {
		t.Fatal("shipped scripts define no water_damping")
	}

	p := e.HeightPolicy(terrain.WaterDamping{Factor: 0.25})
	if got := p.Height(terrain.Grass, 0.5, 40); got != 20 {
		t.Fatalf("grass height = %v, want 20", got)
	}
	if got := p.Height(terrain.Water, -0.5, 40); got != -5 {
		t.Fatalf("water height = %v, want -5", got)
	}
}

func TestNewEngineMissingDir(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "none"), nil)
	if err != nil {
		t.Fatalf("missing dir: %v", err)
	}
	defer e.Close()
	if e.Has("water_damping") {
		t.Fatal("hook defined without scripts")
	}
}

func TestNewEngineBadScript(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, nil); err == nil {
		t.Fatal("syntax error accepted")
	}
}
