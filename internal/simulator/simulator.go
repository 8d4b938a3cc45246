// Package simulator plays the AI player through many shoes to measure its
// results under a set of rules and a counting system.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/payout"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/rules"
	"github.com/lox/blackjack/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// ErrRoundStuck is returned when a round does not finish within a bounded
// number of actions.
var ErrRoundStuck = errors.New("round did not finish")

// maxActions bounds the player and dealer actions of one round.
const maxActions = 64

// Config holds the parameters of a simulation.
type Config struct {
	Rules  rules.Rules
	System counting.SystemID
	// Shoes is the number of shoes to play. Each shoe is dealt to the cut
	// card from its own seed.
	Shoes   int
	Seed    int64
	MinBet  int
	MaxBet  int
	Counted bool
	Workers int
	Timeout time.Duration
	Logger  *log.Logger
	Clock   quartz.Clock
}

// DefaultConfig simulates a thousand Vegas Strip shoes with Hi-Lo.
func DefaultConfig() Config {
	return Config{
		Rules:   rules.Default(),
		System:  counting.Default().ID,
		Shoes:   1000,
		Seed:    1,
		MinBet:  10,
		MaxBet:  120,
		Counted: true,
		Timeout: time.Minute,
	}
}

// Report is the outcome of a simulation.
type Report struct {
	ID       uuid.UUID
	Config   Config
	Stats    *statistics.Statistics
	Duration time.Duration
}

// Simulator runs simulations.
type Simulator struct {
	config Config
	logger *log.Logger
	clock  quartz.Clock
}

// New creates a simulator with the given configuration.
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	return &Simulator{
		config: config,
		logger: config.Logger.WithPrefix("simulator"),
		clock:  config.Clock,
	}
}

// Run plays every shoe and merges the results in seed order, so a run is
// reproducible regardless of the number of workers.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	cfg := s.config
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if _, err := counting.Lookup(cfg.System); err != nil {
		return nil, err
	}
	if cfg.Shoes <= 0 {
		return nil, fmt.Errorf("shoes must be positive, got %d", cfg.Shoes)
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := s.clock.Now()
	id := uuid.New()
	s.logger.Info("Starting simulation", "id", id, "shoes", cfg.Shoes, "system", cfg.System, "workers", cfg.Workers)

	perShoe := make([]*statistics.Statistics, cfg.Shoes)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range cfg.Shoes {
		seed := cfg.Seed + int64(i)
		g.Go(func() error {
			stats, err := s.playShoe(ctx, seed)
			if err != nil {
				return fmt.Errorf("shoe %d (seed %d): %w", i+1, seed, err)
			}
			perShoe[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, st := range perShoe {
		total.Merge(st)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	report := &Report{ID: id, Config: cfg, Stats: total, Duration: s.clock.Since(start)}
	s.logger.Info("Simulation finished", "rounds", total.Rounds, "edge", fmt.Sprintf("%.3f%%", total.Edge()), "duration", report.Duration)
	return report, nil
}

// playShoe deals one shoe to the cut card.
func (s *Simulator) playShoe(ctx context.Context, seed int64) (*statistics.Statistics, error) {
	cfg := s.config
	player, err := ai.ForTable(cfg.Rules, cfg.System)
	if err != nil {
		return nil, err
	}

	initial := game.InitialState(s.clock.Now())
	initial.Rules = cfg.Rules
	initial.CountingSystem = cfg.System
	// Deep enough that the bankroll never limits a bet.
	initial.Balance = cfg.MaxBet * 1_000_000

	table := game.NewTable(randutil.New(seed), initial, game.WithClock(s.clock))
	stats := &statistics.Statistics{}

	for !table.State().PenetrationReached {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := playRound(table, player, cfg)
		if err != nil {
			return nil, err
		}
		result.Seed = uint64(seed)
		stats.Add(result)
	}
	return stats, nil
}

func playRound(table *game.Table, player *ai.Player, cfg Config) (statistics.RoundResult, error) {
	gs := table.State()
	tc := gs.EffectiveCount()
	bet := ai.CalculateBet(gs.Balance, tc, cfg.MinBet, cfg.MaxBet)

	gs = table.PlaceBet(bet.Amount)
	balance := gs.Balance
	wagered := gs.Statistics.TotalWagered

	gs, err := table.Deal()
	if err != nil {
		return statistics.RoundResult{}, err
	}
	if gs.Phase == game.PhaseBetting {
		return statistics.RoundResult{}, fmt.Errorf("deal refused: %s", gs.Message)
	}

	if game.InsuranceOffered(gs) {
		d := player.Insurance(gs.EffectiveCount(), payout.InsuranceCost(gs.CurrentBet), gs.Balance)
		if d.Action == ai.ActionTakeInsurance {
			gs = table.TakeInsurance()
		} else {
			gs = table.DeclineInsurance()
		}
	}

	for n := 0; gs.Phase == game.PhasePlayerTurn; n++ {
		if n >= maxActions {
			return statistics.RoundResult{}, ErrRoundStuck
		}
		sit, ok := ai.SituationFor(gs, cfg.Counted)
		if !ok {
			return statistics.RoundResult{}, fmt.Errorf("%w: no active hand", ErrRoundStuck)
		}
		if gs, err = play(table, player.DecideAction(sit).Action); err != nil {
			return statistics.RoundResult{}, err
		}
	}

	if gs, err = table.PlayDealer(); err != nil {
		return statistics.RoundResult{}, err
	}
	if gs.Phase != game.PhaseResolution {
		return statistics.RoundResult{}, fmt.Errorf("%w: ended in %s", ErrRoundStuck, gs.Phase)
	}

	result := statistics.RoundResult{
		Net:       gs.Balance - balance,
		Wagered:   gs.Statistics.TotalWagered - wagered,
		Bet:       bet.Amount,
		TrueCount: tc,
		Hands:     len(gs.Hands),
		Insured:   gs.InsuranceBet > 0,
	}
	for _, h := range gs.Hands {
		result.Doubled = result.Doubled || h.Doubled
	}
	result.Blackjack = len(gs.Hands) == 1 && gs.Hands[0].Status == hand.StatusBlackjack

	table.NewRound()
	return result, nil
}

func play(table *game.Table, a ai.Action) (game.State, error) {
	switch a {
	case ai.ActionHit:
		return table.Hit()
	case ai.ActionStand:
		return table.Stand(), nil
	case ai.ActionDoubleDown:
		return table.DoubleDown()
	case ai.ActionSplit:
		return table.Split()
	case ai.ActionSurrender:
		return table.Surrender(), nil
	default:
		return game.State{}, fmt.Errorf("unsupported play %q", a)
	}
}
