package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diisilva/deadlock-simulation/pkg/events"
	"github.com/diisilva/deadlock-simulation/pkg/logging"
	"github.com/diisilva/deadlock-simulation/pkg/sim"
	"github.com/diisilva/deadlock-simulation/pkg/ui"
)

type Configuration struct {
	Transactions  int
	Seed          int64
	MinDelay      float64
	MaxDelay      float64
	ForceDeadlock bool
	TUI           bool
	LogPath       string
	Verbose       bool
}

func main() {
	config := parseArguments()

	simCfg := sim.Config{
		Transactions:    config.Transactions,
		Seed:            config.Seed,
		MinDelay:        config.MinDelay,
		MaxDelay:        config.MaxDelay,
		ForceContention: config.ForceDeadlock,
	}
	if err := simCfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := setupLogging(config); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logging.Close()

	tracker := events.NewTracker()
	bus := events.NewBus()

	scheduler, err := sim.New(simCfg, events.Combine(tracker, bus))
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	if config.TUI {
		err = runTUI(scheduler, tracker, bus)
	} else {
		err = runHeadless(scheduler, tracker, bus)
	}
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}

// parseArguments processes command-line flags
func parseArguments() Configuration {
	var config Configuration

	flag.IntVar(&config.Transactions, "n", 4, "Number of transactions")
	flag.Int64Var(&config.Seed, "seed", 42, "Random seed for the delay generators")
	flag.Float64Var(&config.MinDelay, "min-delay", 0.1, "Minimum inter-operation delay (s)")
	flag.Float64Var(&config.MaxDelay, "max-delay", 0.5, "Maximum inter-operation delay (s)")
	flag.BoolVar(&config.ForceDeadlock, "force-deadlock", false,
		"Invert lock order for even transactions to force circular waits")
	flag.BoolVar(&config.TUI, "tui", false, "Run the interactive dashboard")
	flag.StringVar(&config.LogPath, "log", "", "Log file path (default stderr, or sim.log with -tui)")
	flag.BoolVar(&config.Verbose, "v", false, "Enable debug logging")

	flag.Parse()

	return config
}

// setupLogging routes engine logs away from the terminal when the TUI owns it.
func setupLogging(config Configuration) error {
	path := config.LogPath
	if config.TUI && path == "" {
		path = "sim.log"
	}

	level := slog.LevelInfo
	if config.Verbose {
		level = slog.LevelDebug
	}

	return logging.Init(logging.Config{
		Level:      level,
		OutputPath: path,
	})
}

// showSplashScreen displays the welcome banner before a headless run.
func showSplashScreen() {
	splash := `
╦ ╦╔═╗╦╔╦╗  ╔╦╗╦╔═╗
║║║╠═╣║ ║    ║║║║╣
╚╩╝╩ ╩╩ ╩   ═╩╝╩╚═╝
 transaction contention simulator
`
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true)

	fmt.Println(style.Render(splash))
}

// runHeadless prints the event stream to stdout and a summary once every
// transaction has committed.
func runHeadless(scheduler *sim.Scheduler, tracker *events.Tracker, bus *events.Bus) error {
	showSplashScreen()

	stream := bus.Subscribe(4096)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for e := range stream {
			fmt.Printf("[%s] %s\n", e.Wall.Format("15:04:05.000"), e.Message)
		}
	}()

	err := scheduler.Run(context.Background())
	bus.Close()
	<-printed
	if err != nil {
		return err
	}

	printSummary(tracker)
	return nil
}

func printSummary(tracker *events.Tracker) {
	fmt.Println("\nRequirements:")
	flags := tracker.Flags()
	for r := events.Requirement(0); r < events.NumRequirements; r++ {
		mark := "✗"
		if flags[r] {
			mark = "✔"
		}
		fmt.Printf("  %s %s\n", mark, r)
	}

	metrics := tracker.Snapshot()
	fmt.Printf("\nMetrics: aborts=%d commits=%d waits=%d avg-wait=%s\n",
		metrics.Aborts, metrics.Commits, metrics.Waits, metrics.AvgWait)
}

// runTUI launches the Bubble Tea dashboard with the scheduler running
// underneath it.
func runTUI(scheduler *sim.Scheduler, tracker *events.Tracker, bus *events.Bus) error {
	stream := bus.Subscribe(8192)
	model := ui.NewModel(scheduler, tracker, stream)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		if err := scheduler.Run(context.Background()); err != nil {
			logging.Error("simulation failed", "error", err)
		}
		bus.Close()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %v", err)
	}
	return nil
}
