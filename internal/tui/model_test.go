package tui

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/autoplay"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/payout"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/rules"
	"github.com/lox/blackjack/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	NoColor()
	m.Run()
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// stackedTable deals the given cards first, in player, dealer, player,
// dealer order.
func stackedTable(t *testing.T, order string) *game.Table {
	t.Helper()
	shoe := deck.NewStackedShoe(randutil.New(1), 0.75, deck.MustParseCards(order))
	return game.NewTable(randutil.New(1), game.InitialState(t0),
		game.WithShoe(shoe), game.WithLogger(quietLogger()))
}

func newModel(t *testing.T, table *game.Table, opts ...func(*Options)) *Model {
	t.Helper()
	o := Options{Table: table, MinBet: 25, MaxBet: 500, Logger: quietLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return New(o)
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "ctrl+n":
			msg = tea.KeyMsg{Type: tea.KeyCtrlN}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

// finishDealer delivers dealer steps until the round resolves.
func finishDealer(t *testing.T, m *Model) {
	t.Helper()
	for range 10 {
		if m.State().Phase != game.PhaseDealerTurn {
			return
		}
		m.Update(dealerStepMsg{})
	}
	t.Fatalf("dealer did not finish, phase %s", m.State().Phase)
}

func logContains(m *Model, text string) bool {
	for _, e := range m.Entries() {
		if strings.Contains(e, text) {
			return true
		}
	}
	return false
}

func TestManualRound(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))

	press(m, "100", "enter")
	gs := m.State()
	require.Equal(t, game.PhasePlayerTurn, gs.Phase)
	assert.Equal(t, 100, gs.CurrentBet)
	assert.True(t, logContains(m, "Bet $100"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.Equal(t, game.PhaseDealerTurn, m.State().Phase)
	assert.NotNil(t, cmd, "dealer step is scheduled")

	finishDealer(t, m)
	gs = m.State()
	require.Equal(t, game.PhaseResolution, gs.Phase)
	assert.Equal(t, payout.ResultWin, gs.Hands[0].Result, "18 beats 17")
	assert.Equal(t, 25100, gs.Balance)
	assert.Equal(t, 1, gs.Statistics.CorrectPlays, "standing on 18 is basic strategy")
	assert.True(t, logContains(m, "win +100"))

	press(m, "enter")
	gs = m.State()
	assert.Equal(t, game.PhaseBetting, gs.Phase)
	assert.Equal(t, 100, gs.CurrentBet, "the bet stands for the next round")
}

func TestIncorrectPlayIsRecorded(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h 2c"))

	press(m, "enter", "h")
	gs := m.State()
	assert.Equal(t, 25, gs.CurrentBet, "an empty bet uses the table minimum")
	assert.Equal(t, 1, gs.Statistics.IncorrectPlays, "hitting 18 against 9")
	assert.Len(t, gs.Hands[0].Cards, 3)
}

func TestBetLimits(t *testing.T) {
	tests := []struct {
		name string
		bet  string
	}{
		{"below minimum", "10"},
		{"above maximum", "900"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))
			press(m, tt.bet, "enter")
			assert.Equal(t, game.PhaseBetting, m.State().Phase)
			assert.True(t, logContains(m, "bet must be between $25 and $500"))
		})
	}
}

func TestBetInputAcceptsDigitsOnly(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))
	press(m, "5", "0")
	// Letters are commands, not bet input.
	press(m, "t")
	assert.Equal(t, "50", m.betInput.Value())
	assert.False(t, m.State().Display.StrategyHint)
}

func TestInsuranceMustBeAnswered(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts As 9d 7h"))

	press(m, "enter")
	require.True(t, game.InsuranceOffered(m.State()))

	press(m, "h")
	assert.Len(t, m.State().Hands[0].Cards, 2)
	assert.True(t, logContains(m, "Answer the insurance offer first"))

	press(m, "n")
	gs := m.State()
	assert.False(t, game.InsuranceOffered(gs))
	assert.Equal(t, -1, gs.InsuranceBet)
	assert.Equal(t, 1, gs.Statistics.CorrectPlays, "declining insurance at a neutral count")
}

func TestTakeInsurance(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts As 9d 7h"))

	press(m, "enter", "y")
	gs := m.State()
	assert.Equal(t, payout.InsuranceCost(25), gs.InsuranceBet)
	assert.Equal(t, 1, gs.Statistics.IncorrectPlays)
}

func TestAIKeysWithoutRunner(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))
	press(m, "a", " ", "+")
	assert.True(t, logContains(m, "AI player not available"))
	assert.False(t, m.ai.Enabled)
}

func TestAIToggle(t *testing.T) {
	table := stackedTable(t, "Ts 9s 8d 8h")
	player, err := ai.ForTable(rules.VegasStrip(), counting.HiLo)
	require.NoError(t, err)
	runner := autoplay.NewRunner(table, autoplay.NewLoop(player, autoplay.DefaultConfig()),
		autoplay.WithClock(quartz.NewMock(t)), autoplay.WithLogger(quietLogger()))
	m := newModel(t, table, func(o *Options) { o.Runner = runner })

	press(m, "a")
	require.True(t, m.ai.Active())
	assert.True(t, logContains(m, "AI player started"))

	press(m, "50", "enter")
	assert.Equal(t, game.PhaseBetting, m.State().Phase, "manual keys are ignored while the AI plays")

	press(m, " ")
	assert.True(t, m.ai.Enabled)
	assert.False(t, m.ai.Playing)

	press(m, "-")
	assert.Equal(t, 2*autoplay.DefaultSpeed, m.ai.Speed)

	press(m, "a")
	assert.False(t, m.ai.Enabled)
	assert.True(t, logContains(m, "AI stopped"))
}

func TestRunnerUpdatesAreLogged(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))
	st := autoplay.NewState()
	st.Enabled, st.Playing = true, true
	st.Decision = &autoplay.Decision{
		Action: ai.ActionBet,
		Reasoning: ai.Reasoning{Key: ai.KeyBetTemplate, Params: map[string]any{
			"trueCount": "2.0",
			"countDesc": ai.KeyBetFavorable,
			"units":     4,
			"betAmount": 40,
		}},
	}

	m.Update(stateMsg{ai: st, game: m.table.PlaceBet(40)})
	assert.Equal(t, 40, m.State().CurrentBet)
	assert.True(t, logContains(m, "True count 2.0 is favorable, betting 4 units (40)"))
	assert.True(t, logContains(m, "Bet placed"))

	// The same decision is logged once.
	n := len(m.Entries())
	m.Update(stateMsg{ai: st, game: m.State()})
	assert.Len(t, m.Entries(), n)
}

func TestDisplayToggles(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))
	press(m, "t", "c", "i")
	d := m.State().Display
	assert.False(t, d.StrategyHint)
	assert.False(t, d.CountDisplay)
	assert.True(t, d.StatsPanel)

	press(m, "t")
	assert.True(t, m.State().Display.StrategyHint)
}

func TestCycleSystemAndPreset(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))

	press(m, "x")
	systems := counting.Systems()
	assert.Equal(t, systems[1].ID, m.State().CountingSystem)

	press(m, "g")
	gs := m.State()
	assert.Equal(t, rules.PresetSingleDeck, gs.PresetID)
	assert.Equal(t, 1, gs.Rules.DeckCount)

	advisor, err := m.advisorFor(gs)
	require.NoError(t, err)
	assert.Equal(t, systems[1].ID, advisor.System().ID)
}

func TestRulesLockedDuringRound(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))
	press(m, "enter", "g", "x")
	gs := m.State()
	assert.Equal(t, rules.PresetVegasStrip, gs.PresetID)
	assert.Equal(t, counting.HiLo, gs.CountingSystem)
	assert.True(t, logContains(m, "only change between rounds"))
}

func TestNewSession(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))
	press(m, "enter", "s")
	finishDealer(t, m)
	require.NotEqual(t, rules.DefaultStartingBalance, m.State().Balance)

	press(m, "ctrl+n")
	gs := m.State()
	assert.Equal(t, game.PhaseBetting, gs.Phase)
	assert.Equal(t, rules.DefaultStartingBalance, gs.Balance)
	assert.True(t, logContains(m, "New session"))
}

func TestSessionSavedAfterRound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := storage.NewStore(path, storage.WithLogger(quietLogger()))
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"), func(o *Options) { o.Store = store })

	press(m, "100", "enter", "s")
	assert.False(t, store.Exists())
	finishDealer(t, m)
	require.True(t, store.Exists())

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 25100, *snap.Balance)
}

func TestQuitSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := storage.NewStore(path, storage.WithLogger(quietLogger()))
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"), func(o *Options) { o.Store = store })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, store.Exists())
	assert.Empty(t, m.View())
}

func TestView(t *testing.T) {
	m := newModel(t, stackedTable(t, "Ts 9s 8d 8h"))
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	press(m, "i", "enter")
	view := m.View()
	assert.Contains(t, view, "Blackjack")
	assert.Contains(t, view, "Vegas Strip")
	assert.Contains(t, view, "Balance")
	assert.Contains(t, view, "Count")
	assert.Contains(t, view, "[h]it")
	assert.Contains(t, view, "??", "the hole card is hidden")
}

func TestRenderCountShowsDecksRemaining(t *testing.T) {
	gs := game.InitialState(t0)
	assert.Contains(t, renderCount(gs), "312/312 (6.0 decks)")

	gs.Shoe.CardsRemaining = 130
	assert.Contains(t, renderCount(gs), "130/312 (2.5 decks)")
}

func TestHintShowsChartCell(t *testing.T) {
	tests := []struct {
		name  string
		order string
		hint  string
		chart string
	}{
		{"soft 18 against 4", "As 4h 7d 9c", "Hint: double down", "(chart DS)"},
		{"eights against ten", "8s Th 8d 7c", "Hint: split", "(chart SP)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t, stackedTable(t, tt.order))
			press(m, "enter")
			require.Equal(t, game.PhasePlayerTurn, m.State().Phase)

			hint := m.renderHint()
			assert.Contains(t, hint, tt.hint)
			assert.Contains(t, hint, tt.chart)
		})
	}
}

func TestBridgeDropsUpdatesUntilAttached(t *testing.T) {
	b := NewBridge()
	assert.NotPanics(t, func() {
		b.Observe(autoplay.NewState(), game.InitialState(t0))
	})
}
