package autoplay

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/payout"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func stackedRunner(t *testing.T, order string, opts ...RunnerOption) (*Runner, *game.Table, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	shoe := deck.NewStackedShoe(randutil.New(1), 0.75, deck.MustParseCards(order))
	table := game.NewTable(randutil.New(1), game.InitialState(t0),
		game.WithShoe(shoe), game.WithClock(clock), game.WithLogger(quietLogger()))

	opts = append([]RunnerOption{WithClock(clock), WithLogger(quietLogger())}, opts...)
	return NewRunner(table, newLoop(t), opts...), table, clock
}

func tick(ctx context.Context, clock *quartz.Mock, st State) {
	clock.Advance(st.Speed).MustWait(ctx)
}

func TestRunnerPlaysRound(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, table, clock := stackedRunner(t, "Ts 9s 8d 8h")
	st := r.Start()
	require.True(t, st.Active())

	for range 20 {
		if table.State().Phase == game.PhaseResolution {
			break
		}
		tick(ctx, clock, st)
	}

	gs := table.State()
	require.Equal(t, game.PhaseResolution, gs.Phase)
	assert.Equal(t, payout.ResultWin, gs.Hands[0].Result, "18 beats 17")
	assert.Equal(t, 25010, gs.Balance)

	st = r.State()
	assert.Equal(t, 1, st.Statistics.RoundsPlayed)
	assert.Equal(t, 1, st.Statistics.DecisionsMade)
	assert.InDelta(t, 10.0, st.Statistics.AvgBet, 1e-9)

	r.Stop()
}

func TestRunnerStartsNextRound(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, table, clock := stackedRunner(t, "Ts 9s 8d 8h 5s 6s 7s 8s")
	st := r.Start()

	sawResolution := false
	for range 40 {
		gs := table.State()
		if gs.Phase == game.PhaseResolution {
			sawResolution = true
		}
		if sawResolution && gs.Phase == game.PhaseBetting {
			break
		}
		tick(ctx, clock, st)
	}

	gs := table.State()
	assert.True(t, sawResolution)
	assert.Equal(t, game.PhaseBetting, gs.Phase)
	assert.Equal(t, 1, gs.Statistics.HandsPlayed)
	r.Stop()
}

func TestRunnerPauseHoldsTheTable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, table, clock := stackedRunner(t, "Ts 9s 8d 8h")
	st := r.Start()
	tick(ctx, clock, st)
	tick(ctx, clock, st)
	require.Equal(t, 10, table.State().CurrentBet)

	paused := r.Pause()
	assert.True(t, paused.Enabled)
	before := table.State()

	clock.Advance(time.Minute).MustWait(ctx)
	assert.Equal(t, before, table.State())
	assert.Equal(t, paused.Phase, r.State().Phase)

	resumed := r.Resume()
	assert.True(t, resumed.Active())
	tick(ctx, clock, resumed)
	assert.Equal(t, game.PhasePlayerTurn, table.State().Phase)
	r.Stop()
}

func TestRunnerStopsOnTableError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, table, clock := stackedRunner(t, "Ts 9s 8d")
	st := r.Start()
	for range 3 {
		tick(ctx, clock, st)
	}

	st = r.State()
	assert.False(t, st.Enabled)
	assert.Equal(t, ReasonTableError, st.Err)
	assert.Equal(t, game.Message(KeyStopped), table.State().Message)
}

func TestRunnerRefusesToStartWhenBroke(t *testing.T) {
	clock := quartz.NewMock(t)
	gs := game.InitialState(t0)
	gs.Balance = 5
	table := game.NewTable(randutil.New(1), gs, game.WithClock(clock), game.WithLogger(quietLogger()))
	r := NewRunner(table, newLoop(t), WithClock(clock), WithLogger(quietLogger()))

	st := r.Start()
	assert.False(t, st.Enabled)
	assert.Equal(t, ReasonInsufficientBalance, st.Err)
	assert.Equal(t, game.Message(ReasonInsufficientBalance), table.State().Message)
}

func TestRunnerRulesChangedPauses(t *testing.T) {
	r, table, _ := stackedRunner(t, "Ts 9s 8d 8h")
	r.Start()

	player, err := ai.ForTable(rules.SingleDeck(), counting.KO)
	require.NoError(t, err)

	st := r.RulesChanged(player)
	assert.Same(t, player, r.loop.player)
	assert.True(t, st.Enabled)
	assert.False(t, st.Playing)
	assert.Equal(t, game.Message(KeyPausedRuleChange), table.State().Message)
}

func TestRunnerObserverAndSpeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var calls atomic.Int32
	r, _, clock := stackedRunner(t, "Ts 9s 8d 8h", WithObserver(func(State, game.State) {
		calls.Add(1)
	}))

	st := r.SetSpeed(time.Second)
	assert.Equal(t, time.Second, st.Speed)
	r.Start()

	clock.Advance(500 * time.Millisecond).MustWait(ctx)
	assert.Zero(t, calls.Load())
	clock.Advance(500 * time.Millisecond).MustWait(ctx)
	assert.Equal(t, int32(1), calls.Load())
	r.Stop()
}
