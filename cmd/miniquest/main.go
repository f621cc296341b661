// Miniquest is a small text adventure: walk the rooms, solve the riddle,
// fight the goblin, open the chest.
// Usage: miniquest [--version] [--plain] [--script <file>] [--config <file>] [--trace] [content_directory]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/nathoo/miniquest/cli"
	"github.com/nathoo/miniquest/config"
	"github.com/nathoo/miniquest/content"
	"github.com/nathoo/miniquest/engine"
	"github.com/nathoo/miniquest/engine/events"
	"github.com/nathoo/miniquest/engine/save"
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/loader"
	"github.com/nathoo/miniquest/logger"
	"github.com/nathoo/miniquest/tui"
	"github.com/nathoo/miniquest/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: miniquest [--version] [--plain] [--script <file>] [--config <file>] [--trace] [content_directory]"

func main() {
	plain := false
	trace := false
	var contentDir, scriptFile, configFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("miniquest %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script", "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a file path\n", args[i])
				os.Exit(1)
			}
			if args[i] == "--script" {
				scriptFile = args[i+1]
			} else {
				configFile = args[i+1]
			}
			i++
		case "-h", "--help":
			fmt.Println(usage)
			return
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if contentDir != "" {
		cfg.ContentDir = contentDir
	}

	log, closer, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Version: version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	// Runs append to the same file; the session id tells them apart.
	log = log.With("session", uuid.New().String())

	defs, err := loadContent(cfg.ContentDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		os.Exit(1)
	}

	bus := events.NewBus()
	if trace {
		bus.OnAll(func(ev types.Event) {
			log.Info("trace", "event", ev.Type, "data", ev.Data)
		})
	}

	opts := []engine.Option{
		engine.WithStore(save.NewFileStore(cfg.SaveFile)),
		engine.WithBus(bus),
		engine.WithLogger(log),
		engine.WithHazardOdds(cfg.HazardOdds),
	}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithSeed(cfg.Seed))
	}
	eng := engine.New(defs, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := newConsole(eng, cfg, trace)
		c.In = f
		c.EchoInput = true
		runConsole(ctx, c, log)
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		runConsole(ctx, newConsole(eng, cfg, trace), log)
		return
	}

	if err := tui.Run(eng, trace); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadContent reads the world from dir, or the built-in world when dir
// is empty.
func loadContent(dir string, log *slog.Logger) (*state.Defs, error) {
	if dir != "" {
		return loader.Load(dir, log)
	}
	return loader.LoadFS(content.FS(), log)
}

func newConsole(eng *engine.Engine, cfg *config.Config, trace bool) *cli.CLI {
	c := cli.New(eng)
	c.Delay = cfg.DelayDuration()
	c.Width = cfg.Width
	c.Trace = trace
	return c
}

func runConsole(ctx context.Context, c *cli.CLI, log *slog.Logger) {
	outcome, err := c.Run(ctx)
	log.Info("session ended", "outcome", outcome.String(), "turns", c.Engine.State.TurnCount)
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
