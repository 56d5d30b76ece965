// Parley plays authored, branching NPC conversations in the terminal.
// Usage: parley [--version] [--config <file>] [--plain] [--script <file>] [--trace] <game_directory>
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nathoo/parley/cli"
	"github.com/nathoo/parley/config"
	"github.com/nathoo/parley/engine"
	"github.com/nathoo/parley/engine/schedule"
	"github.com/nathoo/parley/loader"
	"github.com/nathoo/parley/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: parley [--version] [--config <file>] [--plain] [--script <file>] [--trace] <game_directory>"

func main() {
	plain := false
	trace := false
	var gameDir, scriptFile, configFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("parley %s (commit %s, built %s)\n", version, commit, date)
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
		default:
			if gameDir == "" {
				gameDir = args[i]
			}
		}
	}

	if gameDir == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	trace = trace || cfg.Trace

	// Engine warnings go to stderr only with --trace; they would tear the TUI.
	logger := log.New(io.Discard, "", 0)
	if trace {
		logger = log.New(os.Stderr, "", log.Ltime)
	}

	g, err := loader.Load(gameDir, log.New(os.Stderr, "", 0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		os.Exit(1)
	}

	useTUI := scriptFile == "" && !plain && isTerminal()

	// The TUI runs on wall-clock time by default. The plain CLI lets "wait"
	// move a virtual clock, and scripts always do so they replay identically.
	fallback := config.ClockVirtual
	if useTUI {
		fallback = config.ClockRealtime
	}
	mode := cfg.ClockMode(fallback)
	if scriptFile != "" {
		mode = config.ClockVirtual
	}

	opts := engine.Options{
		PlayAudioFromManager: cfg.Audio.PlayFromManager,
		PlayerTag:            cfg.Interaction.PlayerTag,
		Logger:               logger,
	}
	var rt *schedule.Realtime
	if mode == config.ClockRealtime {
		rt = schedule.NewRealtime(64)
		defer rt.Close()
		opts.Scheduler = rt
	}

	eng, err := engine.New(g, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var tasks <-chan func()
	if rt != nil {
		tasks = rt.C()
	}

	if useTUI {
		err := tui.Run(eng, tui.Options{Tick: cfg.Clock.Tick, Tasks: tasks, Trace: trace})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("%s v%s by %s\n\n", g.Game.Title, g.Game.Version, g.Game.Author)
	c := cli.New(eng)
	c.Trace = trace
	c.Tasks = tasks

	// Script mode: read commands from a file and echo them.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}
	c.Run()
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
