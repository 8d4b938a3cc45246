package simulator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(shoes int) Config {
	cfg := DefaultConfig()
	cfg.Shoes = shoes
	cfg.Seed = 12345
	cfg.Timeout = 30 * time.Second
	cfg.Logger = log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
	return cfg
}

func TestNew(t *testing.T) {
	sim := New(testConfig(10))
	require.NotNil(t, sim)
	assert.Equal(t, 10, sim.config.Shoes)
	assert.Positive(t, sim.config.Workers)
	assert.NotNil(t, sim.clock)
}

func TestRunPlaysShoesToTheCutCard(t *testing.T) {
	report, err := New(testConfig(4)).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Stats.Validate())

	// Six decks cut at 75% is 234 cards: dozens of rounds per shoe.
	assert.Greater(t, report.Stats.Rounds, 4*30)
	assert.Less(t, report.Stats.Rounds, 4*120)
	assert.Equal(t, report.Stats.Rounds, report.Stats.Wins+report.Stats.Losses+report.Stats.Pushes)
	assert.NotZero(t, report.ID)
	assert.GreaterOrEqual(t, report.Stats.Wagered, report.Stats.Rounds*10)
}

func TestRunIsReproducible(t *testing.T) {
	one := testConfig(6)
	one.Workers = 1
	many := testConfig(6)
	many.Workers = 4

	a, err := New(one).Run(context.Background())
	require.NoError(t, err)
	b, err := New(many).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Stats.Rounds, b.Stats.Rounds)
	assert.Equal(t, a.Stats.AllNet, b.Stats.AllNet)
	assert.Equal(t, a.Stats.Values, b.Stats.Values)
	assert.Equal(t, a.Stats.Buckets, b.Stats.Buckets)
}

func TestRunFlatBetsWithoutCounting(t *testing.T) {
	cfg := testConfig(2)
	cfg.Counted = false
	cfg.MaxBet = cfg.MinBet

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	for _, b := range report.Stats.Buckets {
		if b.Rounds > 0 {
			assert.Equal(t, b.Rounds*cfg.MinBet, b.SumBet)
		}
	}
}

func TestRunOtherRulesAndSystems(t *testing.T) {
	tests := []struct {
		name   string
		rules  rules.Rules
		system counting.SystemID
	}{
		{"single deck ko", rules.SingleDeck(), counting.KO},
		{"atlantic city omega", rules.AtlanticCity(), counting.OmegaII},
		{"vegas zen", rules.VegasStrip(), counting.Zen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(2)
			cfg.Rules = tt.rules
			cfg.System = tt.system

			report, err := New(cfg).Run(context.Background())
			require.NoError(t, err)
			assert.Positive(t, report.Stats.Rounds)
		})
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := testConfig(0)
	_, err := New(cfg).Run(context.Background())
	assert.ErrorContains(t, err, "shoes must be positive")

	cfg = testConfig(1)
	cfg.System = "red-7"
	_, err = New(cfg).Run(context.Background())
	assert.ErrorIs(t, err, counting.ErrUnknownSystem)

	cfg = testConfig(1)
	cfg.Rules.DeckCount = 0
	_, err = New(cfg).Run(context.Background())
	assert.ErrorIs(t, err, rules.ErrInvalidRules)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(50)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
