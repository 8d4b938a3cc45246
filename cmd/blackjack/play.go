package main

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/autoplay"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/storage"
	"github.com/lox/blackjack/internal/tui"
)

type PlayCmd struct {
	Snapshot string `help:"Session file to resume from and save to" type:"path"`
	Fresh    bool   `help:"Discard any saved session"`
	LogFile  string `help:"Write logs to this file" default:"blackjack.log" type:"path"`
	Seed     int64  `help:"Shuffle seed (0 for a cryptographic shuffle)"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	// The screen belongs to the table, so logs go to a file.
	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()
	logger, err := newLogger(logFile, cfg.Log.Level)
	if err != nil {
		return err
	}
	if g.NoColor {
		tui.NoColor()
	}

	clock := quartz.NewReal()
	initial, err := cfg.InitialState(clock.Now())
	if err != nil {
		return err
	}

	path := cmp.Or(c.Snapshot, cfg.Session.SnapshotPath, defaultSnapshotPath())
	store := storage.NewStore(path, storage.WithClock(clock), storage.WithLogger(logger))
	if c.Fresh {
		if err := store.Clear(); err != nil {
			return err
		}
	} else {
		initial = store.Restore(initial)
	}

	rng := randutil.NewCrypto()
	if seed := cmp.Or(c.Seed, cfg.Session.Seed); seed != 0 {
		rng = randutil.New(seed)
	}
	table := game.NewTable(rng, initial, game.WithClock(clock), game.WithLogger(logger))

	gs := table.State()
	player, err := ai.ForTable(gs.Rules, gs.CountingSystem)
	if err != nil {
		return err
	}
	aiConfig, speed := cfg.Autoplay()
	bridge := tui.NewBridge()
	runner := autoplay.NewRunner(table, autoplay.NewLoop(player, aiConfig),
		autoplay.WithClock(clock),
		autoplay.WithLogger(logger),
		autoplay.WithObserver(bridge.Observe),
	)
	runner.SetSpeed(speed)

	model := tui.New(tui.Options{
		Table:  table,
		Runner: runner,
		Store:  store,
		MinBet: cfg.Session.MinBet,
		MaxBet: cfg.Session.MaxBet,
		Logger: logger,
	})

	logger.Info("Starting session",
		"preset", gs.PresetID,
		"system", gs.CountingSystem,
		"balance", gs.Balance,
		"snapshot", path,
		"session", store.SessionID())

	ctx := setupSignalHandler(logger)
	if err := tui.Run(ctx, model, bridge); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	logger.Info("Session ended", "balance", model.State().Balance)
	return nil
}

// defaultSnapshotPath keeps the session next to the user's other
// configuration, falling back to the working directory.
func defaultSnapshotPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "blackjack-session.json"
	}
	return filepath.Join(dir, "blackjack", "session.json")
}
