package autoplay

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/game"
)

// RunnerOption configures a Runner during creation.
type RunnerOption func(*runnerConfig)

type runnerConfig struct {
	clock    quartz.Clock
	logger   *log.Logger
	observer func(State, game.State)
}

// WithClock sets the clock that paces ticks.
func WithClock(clock quartz.Clock) RunnerOption {
	return func(c *runnerConfig) { c.clock = clock }
}

// WithLogger sets the runner logger.
func WithLogger(logger *log.Logger) RunnerOption {
	return func(c *runnerConfig) { c.logger = logger }
}

// WithObserver registers a callback invoked after every tick with the new
// AI and game states. It runs outside the runner lock.
func WithObserver(fn func(State, game.State)) RunnerOption {
	return func(c *runnerConfig) { c.observer = fn }
}

// Runner ticks a Loop on a timer and carries out its effects on a table.
// It is safe for concurrent use.
type Runner struct {
	mu       sync.Mutex
	table    *game.Table
	loop     *Loop
	state    State
	timer    *quartz.Timer
	clock    quartz.Clock
	logger   *log.Logger
	observer func(State, game.State)
}

// NewRunner creates a stopped runner for the table.
func NewRunner(table *game.Table, loop *Loop, opts ...RunnerOption) *Runner {
	if table == nil || loop == nil {
		panic("table and loop are required")
	}

	cfg := &runnerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.clock == nil {
		cfg.clock = quartz.NewReal()
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}

	return &Runner{
		table:    table,
		loop:     loop,
		state:    NewState(),
		clock:    cfg.clock,
		logger:   cfg.logger.WithPrefix("autoplay"),
		observer: cfg.observer,
	}
}

// State returns the current AI state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start enables the AI. The first tick fires after one interval.
func (r *Runner) Start() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, effects := r.loop.Start(r.state, r.table.State(), r.clock.Now())
	r.state = st
	r.execute(effects)
	if r.state.Active() {
		r.logger.Info("AI started", "phase", r.state.Phase, "speed", r.state.Speed)
		r.schedule()
	} else {
		r.logger.Warn("AI refused to start", "reason", r.state.Err)
	}
	return r.state
}

// Pause keeps the AI enabled but stops it acting.
func (r *Runner) Pause() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = Pause(r.state)
	r.cancel()
	return r.state
}

// Resume continues a paused AI.
func (r *Runner) Resume() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = Resume(r.state, r.clock.Now())
	if r.state.Active() {
		r.schedule()
	}
	return r.state
}

// Stop disables the AI.
func (r *Runner) Stop() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = Stop(r.state)
	r.cancel()
	r.logger.Info("AI stopped", "reason", "user")
	return r.state
}

// SetSpeed changes the tick interval from the next tick on.
func (r *Runner) SetSpeed(d time.Duration) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = SetSpeed(r.state, d)
	return r.state
}

// ResetStatistics clears the AI counters.
func (r *Runner) ResetStatistics() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = ResetStatistics(r.state)
	return r.state
}

// RulesChanged rebinds the loop to a player built for the new rules or
// counting system and pauses the AI if it was playing.
func (r *Runner) RulesChanged(player *ai.Player) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if player != nil {
		r.loop = NewLoop(player, r.loop.Config())
	}
	st, effects := RulesChanged(r.state)
	r.state = st
	r.execute(effects)
	if !r.state.Playing {
		r.cancel()
	}
	return r.state
}

func (r *Runner) schedule() {
	if r.timer != nil {
		return
	}
	r.timer = r.clock.AfterFunc(r.state.Speed, r.fire)
}

func (r *Runner) cancel() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Runner) fire() {
	r.mu.Lock()
	r.timer = nil
	if !r.state.Active() {
		r.mu.Unlock()
		return
	}

	prev := r.state
	st, effects := r.loop.Tick(r.state, r.table.State(), r.clock.Now())
	r.state = st
	r.execute(effects)

	if r.state.Phase != prev.Phase {
		r.logger.Debug("Phase changed", "from", prev.Phase, "to", r.state.Phase)
	}
	if r.state.Stuck && !prev.Stuck {
		r.logger.Warn("Recovered from stuck phase", "reason", r.state.Err)
	}
	if !r.state.Enabled && prev.Enabled {
		r.logger.Info("AI stopped", "reason", r.state.Err)
	}
	if r.state.Active() {
		r.schedule()
	}

	st = r.state
	observer := r.observer
	r.mu.Unlock()

	if observer != nil {
		observer(st, r.table.State())
	}
}

// execute carries out effects in order. A table error stops the AI.
func (r *Runner) execute(effects []Effect) {
	for _, e := range effects {
		if err := r.apply(e); err != nil {
			r.logger.Error("Table rejected effect", "effect", fmt.Sprintf("%T", e), "error", err)
			r.state, _ = stopWith(r.state, ReasonTableError)
			r.table.Dispatch(game.SetMessage{Message: game.Message(KeyStopped)})
			r.cancel()
			return
		}
	}
}

func (r *Runner) apply(e Effect) error {
	var err error
	switch e := e.(type) {
	case PlaceBet:
		r.table.PlaceBet(e.Amount)
	case Deal:
		_, err = r.table.Deal()
	case Insurance:
		if e.Take {
			r.table.TakeInsurance()
		} else {
			r.table.DeclineInsurance()
		}
	case Play:
		err = r.play(e.Action)
	case DealerStep:
		_, _, err = r.table.DealerStep()
	case NewRound:
		r.table.NewRound()
	case Notify:
		r.table.Dispatch(game.SetMessage{Message: e.Message})
	default:
		panic(fmt.Sprintf("unknown effect %T", e))
	}
	return err
}

func (r *Runner) play(a ai.Action) error {
	var err error
	switch a {
	case ai.ActionHit:
		_, err = r.table.Hit()
	case ai.ActionStand:
		r.table.Stand()
	case ai.ActionDoubleDown:
		_, err = r.table.DoubleDown()
	case ai.ActionSplit:
		_, err = r.table.Split()
	case ai.ActionSurrender:
		r.table.Surrender()
	default:
		return fmt.Errorf("unsupported play %q", a)
	}
	return err
}
