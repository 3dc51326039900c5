package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hexforge/hexgrid/internal/config"
	"github.com/hexforge/hexgrid/internal/core/event"
	coresys "github.com/hexforge/hexgrid/internal/core/system"
	"github.com/hexforge/hexgrid/internal/data"
	"github.com/hexforge/hexgrid/internal/gate"
	"github.com/hexforge/hexgrid/internal/grid"
	"github.com/hexforge/hexgrid/internal/noise"
	"github.com/hexforge/hexgrid/internal/observer"
	"github.com/hexforge/hexgrid/internal/persist"
	"github.com/hexforge/hexgrid/internal/scripting"
	"github.com/hexforge/hexgrid/internal/system"
	"github.com/hexforge/hexgrid/internal/terrain"
	"github.com/hexforge/hexgrid/internal/world"
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
	fmt.Println("\033[36;1m  │\033[0m              hexgrid  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     procedural hex world generation       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mServer:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
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

func run() error {
	// 1. Load config
	cfgPath := "config/hexgrid.toml"
	if p := os.Getenv("HEXGRID_CONFIG"); p != "" {
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

	// 3. Spawn table
	printSection("Data")
	table, err := data.LoadSpawnTable(cfg.Spawning.Table)
	if err != nil {
		return fmt.Errorf("load spawn table: %w", err)
	}
	printStat("Spawn definitions", table.Count())
	printStat("Spawn classes", len(table.Classes()))
	printOK(fmt.Sprintf("Allocation policy: %s", cfg.Spawning.Policy))
	fmt.Println()

	// 4. Lua hooks
	printSection("Scripting")
	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	heights := engine.HeightPolicy(cfg.Grid.HeightPolicy())
	if engine.Has("water_damping") {
		printOK("Lua water_damping hook loaded")
	} else {
		printOK("Default height policy")
	}
	fmt.Println()

	// 5. Cycle journal
	printSection("Journal")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	journal, err := persist.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	var recorder *persist.Recorder
	if journal != nil {
		recorder = persist.NewRecorder(journal, 64, log)
		defer recorder.Close()
		printOK(fmt.Sprintf("Journal driver: %s", cfg.Database.Driver))
	} else {
		printOK("Journal disabled")
	}
	fmt.Println()

	// 6. World collaborators and grid manager
	clock := world.NewClock(cfg.Server.TickRate)
	nav := world.NewNavMesh(cfg.Nav.BuildTicksPer100Tiles)
	entities := world.NewEntities(table.Classes(), log)
	bus := event.NewBus()

	g := gate.New(nav, clock, cfg.Gate, log)
	gen := terrain.NewGenerator(noise.Factory{}, heights, log)
	mgr := grid.NewManager(gen, g, entities, bus, log)
	if recorder != nil {
		mgr.AddObserver(recorder)
	}

	event.Subscribe(bus, func(e grid.TerrainGenerated) {
		log.Debug("terrain ready",
			zap.Uint64("cycle", e.Cycle),
			zap.Int("grass", e.Grass),
			zap.Int("water", e.Water))
	})
	event.Subscribe(bus, func(e grid.CycleAbandoned) {
		log.Warn("cycle abandoned", zap.Uint64("cycle", e.Cycle), zap.String("reason", e.Reason))
	})

	// 7. Observer
	var (
		obs     *observer.Server
		httpSrv *http.Server
		obsAddr string
	)
	if cfg.Observer.Enabled {
		obs = observer.NewServer(observer.Options{
			Name:        cfg.Server.Name,
			AllowRemote: cfg.Observer.AllowRemote,
			Tiles:       mgr.Tiles,
			History:     journal,
		}, log)
		mgr.AddObserver(obs)

		ln, err := net.Listen("tcp", cfg.Observer.BindAddress)
		if err != nil {
			return fmt.Errorf("observer listen: %w", err)
		}
		obsAddr = ln.Addr().String()
		httpSrv = &http.Server{Handler: obs.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("observer server stopped", zap.Error(err))
			}
		}()
	}

	// 8. Create systems and register with runner
	buildRequest := func() grid.Request {
		return grid.Request{
			Layout:      cfg.Grid.Layout,
			Noise:       cfg.Noise,
			Policy:      cfg.Spawning.Policy,
			Definitions: table.Definitions(),
			Rolls:       table.RollTable(),
			Seed:        cfg.Spawning.Seed,
		}
	}
	regen := system.NewRegenSystem(mgr, nav, buildRequest, cfg.Regen.AutoInterval, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewTimerSystem(clock))
	runner.Register(regen)
	runner.Register(system.NewNavBuildSystem(nav))
	runner.Register(system.NewEventDispatchSystem(bus))

	if cfg.Regen.OnStart {
		regen.RequestDefault()
	}

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	regenCh := make(chan os.Signal, 1)
	signal.Notify(regenCh, syscall.SIGHUP)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	printStat("Grid tiles", cfg.Grid.Width*cfg.Grid.Height)
	if obsAddr != "" {
		printReady(fmt.Sprintf("Observer on %s", obsAddr))
	}
	printReady(fmt.Sprintf("Game loop started (tick: %s)", cfg.Server.TickRate))
	printReady("SIGHUP regenerates the grid")
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
		case <-regenCh:
			if !regen.RequestDefault() {
				log.Warn("regenerate queue full, request ignored")
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			mgr.Teardown()
			if obs != nil {
				obs.Close()
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = httpSrv.Shutdown(sctx)
				scancel()
			}
			if recorder != nil {
				if err := recorder.Close(); err != nil {
					log.Warn("journal close", zap.Error(err))
				}
				written, dropped, failed := recorder.Stats()
				log.Info("journal flushed",
					zap.Uint64("written", written),
					zap.Uint64("dropped", dropped),
					zap.Uint64("failed", failed))
			}
			log.Info("server stopped",
				zap.Uint64("ticks", runner.Ticks()),
				zap.Int("live_entities", entities.Count()),
				zap.Duration("uptime", time.Since(time.Unix(cfg.Server.StartTime, 0)).Truncate(time.Second)))
			return nil
		}
	}
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
