// Package tui is the interactive terminal front end. It renders the game
// state of a table, maps keys to table operations and shows what the AI
// player would do or is doing.
package tui

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/autoplay"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/payout"
	"github.com/lox/blackjack/internal/rules"
	"github.com/lox/blackjack/internal/storage"
	"github.com/lox/blackjack/internal/strategy"
)

// maxEntries caps the event log.
const maxEntries = 500

// Options configure the play screen.
type Options struct {
	Table *game.Table
	// Runner drives the AI player. Without one the AI keys do nothing.
	Runner *autoplay.Runner
	// Store saves the session after every round and on quit.
	Store *storage.Store

	MinBet int
	MaxBet int
	// DealerDelay paces dealer actions during manual play.
	DealerDelay time.Duration
	Logger      *log.Logger
}

type advisorKey struct {
	rules  rules.Rules
	system counting.SystemID
}

// Model is the bubbletea model of the play screen.
type Model struct {
	table  *game.Table
	runner *autoplay.Runner
	store  *storage.Store
	logger *log.Logger

	minBet        int
	maxBet        int
	dealerDelay   time.Duration
	dealerPending bool

	advisor   *ai.Player
	adviceKey advisorKey

	state game.State
	ai    autoplay.State

	keys     keyMap
	help     help.Model
	logView  viewport.Model
	betInput textinput.Model
	entries  []string

	width    int
	height   int
	quitting bool
}

// New creates the play screen for a table.
func New(opts Options) *Model {
	if opts.Table == nil {
		panic("table is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.DealerDelay <= 0 {
		opts.DealerDelay = 500 * time.Millisecond
	}
	if opts.MinBet <= 0 {
		opts.MinBet = 1
	}
	if opts.MaxBet < opts.MinBet {
		opts.MaxBet = math.MaxInt
	}

	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(opts.MinBet)
	ti.Prompt = "Bet $"
	ti.PromptStyle = PromptStyle
	ti.CharLimit = 9
	ti.Width = 12
	ti.Focus()

	m := &Model{
		table:       opts.Table,
		runner:      opts.Runner,
		store:       opts.Store,
		logger:      opts.Logger.WithPrefix("tui"),
		minBet:      opts.MinBet,
		maxBet:      opts.MaxBet,
		dealerDelay: opts.DealerDelay,
		keys:        defaultKeyMap(),
		help:        help.New(),
		logView:     viewport.New(40, 5),
		betInput:    ti,
		ai:          autoplay.NewState(),
	}
	if m.runner != nil {
		m.ai = m.runner.State()
	}
	m.state = m.table.State()
	if line := m.statusLine(m.state); line != "" {
		m.addEntry(line)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case stateMsg:
		m.observeAI(msg.ai)
		m.observe(msg.game)
		return m, m.scheduleDealer()

	case dealerStepMsg:
		m.dealerPending = false
		return m, m.dealerStep()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.Shutdown()
		return tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.ScrollUp):
		m.logView.HalfPageUp()
	case key.Matches(msg, k.ScrollDown):
		m.logView.HalfPageDown()

	case key.Matches(msg, k.AutoPlay):
		return m.toggleAI()
	case key.Matches(msg, k.Pause):
		m.pauseAI()
	case key.Matches(msg, k.Faster):
		m.setSpeed(m.ai.Speed / 2)
	case key.Matches(msg, k.Slower):
		m.setSpeed(m.ai.Speed * 2)

	case key.Matches(msg, k.Hint):
		m.observe(m.table.Dispatch(game.ToggleStrategyHint{}))
	case key.Matches(msg, k.Count):
		m.observe(m.table.Dispatch(game.ToggleCountDisplay{}))
	case key.Matches(msg, k.Stats):
		m.observe(m.table.Dispatch(game.ToggleStatsPanel{}))
	case key.Matches(msg, k.System):
		m.cycleSystem()
	case key.Matches(msg, k.Preset):
		m.cyclePreset()
	case key.Matches(msg, k.NewGame):
		m.newGame()

	case m.ai.Enabled:
		// The AI owns the table until it is switched off.
	case key.Matches(msg, k.Deal):
		return m.advance()
	case key.Matches(msg, k.Hit):
		return m.play(ai.ActionHit)
	case key.Matches(msg, k.Stand):
		return m.play(ai.ActionStand)
	case key.Matches(msg, k.Double):
		return m.play(ai.ActionDoubleDown)
	case key.Matches(msg, k.Split):
		return m.play(ai.ActionSplit)
	case key.Matches(msg, k.Surrender):
		return m.play(ai.ActionSurrender)
	case key.Matches(msg, k.Insure):
		return m.insurance(true)
	case key.Matches(msg, k.NoInsure):
		return m.insurance(false)

	case m.state.Phase == game.PhaseBetting && isBetKey(msg):
		var cmd tea.Cmd
		m.betInput, cmd = m.betInput.Update(msg)
		return cmd
	}
	return nil
}

func isBetKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete, tea.KeyLeft, tea.KeyRight:
		return true
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}

// advance moves a manual game forward: bet and deal, clear a resolved
// round, or start over after going broke.
func (m *Model) advance() tea.Cmd {
	switch m.state.Phase {
	case game.PhaseBetting:
		return m.deal()
	case game.PhaseResolution:
		m.observe(m.table.NewRound())
	case game.PhaseGameOver:
		m.newGame()
	}
	return nil
}

func (m *Model) deal() tea.Cmd {
	amount, err := m.betAmount()
	if err != nil {
		m.addEntry(WarningStyle.Render(err.Error()))
		return nil
	}

	gs := m.table.PlaceBet(amount)
	if gs.Message == game.MsgInsufficientBalance {
		m.observe(gs)
		return nil
	}
	m.addEntry(fmt.Sprintf("Bet $%d", amount))

	gs, err = m.table.Deal()
	if err != nil {
		m.fail(err)
		return nil
	}
	m.betInput.SetValue("")
	m.observe(gs)
	return m.scheduleDealer()
}

// betAmount reads the bet input. An empty input repeats the standing bet.
func (m *Model) betAmount() (int, error) {
	text := strings.TrimSpace(m.betInput.Value())
	if text == "" {
		switch {
		case m.state.CurrentBet > 0:
			return m.state.CurrentBet, nil
		case m.state.LastBet > 0:
			return m.state.LastBet, nil
		default:
			return m.minBet, nil
		}
	}
	amount, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid bet %q", text)
	}
	if amount < m.minBet || amount > m.maxBet {
		return 0, fmt.Errorf("bet must be between $%d and $%d", m.minBet, m.maxBet)
	}
	return amount, nil
}

func (m *Model) play(a ai.Action) tea.Cmd {
	gs := m.table.State()
	if game.InsuranceOffered(gs) {
		m.addEntry(WarningStyle.Render("Answer the insurance offer first (y/n)"))
		return nil
	}
	if !allowed(gs, a) {
		return nil
	}
	if d, ok := m.recommend(gs); ok {
		m.table.Dispatch(game.RecordDecision{Correct: d.Action == a})
	}

	var err error
	switch a {
	case ai.ActionHit:
		gs, err = m.table.Hit()
	case ai.ActionStand:
		gs = m.table.Stand()
	case ai.ActionDoubleDown:
		gs, err = m.table.DoubleDown()
	case ai.ActionSplit:
		gs, err = m.table.Split()
	case ai.ActionSurrender:
		gs = m.table.Surrender()
	}
	if err != nil {
		m.fail(err)
		return nil
	}
	m.addEntry("You " + Text(string(a), nil))
	m.observe(gs)
	return m.scheduleDealer()
}

func allowed(gs game.State, a ai.Action) bool {
	switch a {
	case ai.ActionHit:
		return game.CanHit(gs)
	case ai.ActionStand:
		return game.CanStand(gs)
	case ai.ActionDoubleDown:
		return game.CanDouble(gs)
	case ai.ActionSplit:
		return game.CanSplit(gs)
	case ai.ActionSurrender:
		return game.CanSurrender(gs)
	default:
		return false
	}
}

func (m *Model) insurance(take bool) tea.Cmd {
	gs := m.table.State()
	if !game.InsuranceOffered(gs) {
		return nil
	}
	if take && !game.CanAffordInsurance(gs) {
		m.addEntry(WarningStyle.Render(Text(string(game.MsgInsufficientBalance), nil)))
		return nil
	}
	if advisor, err := m.advisorFor(gs); err == nil {
		d := advisor.Insurance(gs.EffectiveCount(), payout.InsuranceCost(gs.CurrentBet), gs.Balance)
		m.table.Dispatch(game.RecordDecision{Correct: (d.Action == ai.ActionTakeInsurance) == take})
	}

	if take {
		gs = m.table.TakeInsurance()
	} else {
		gs = m.table.DeclineInsurance()
	}
	m.observe(gs)
	return m.scheduleDealer()
}

// scheduleDealer queues the next dealer step of a manual round.
func (m *Model) scheduleDealer() tea.Cmd {
	if m.state.Phase != game.PhaseDealerTurn || m.dealerPending || m.ai.Enabled {
		return nil
	}
	if game.InsuranceOffered(m.state) {
		return nil
	}
	m.dealerPending = true
	return tea.Tick(m.dealerDelay, func(time.Time) tea.Msg {
		return dealerStepMsg{}
	})
}

func (m *Model) dealerStep() tea.Cmd {
	if m.ai.Enabled {
		return nil
	}
	gs, done, err := m.table.DealerStep()
	if err != nil {
		m.fail(err)
		return nil
	}
	m.observe(gs)
	if done {
		return nil
	}
	return m.scheduleDealer()
}

func (m *Model) toggleAI() tea.Cmd {
	if m.runner == nil {
		m.addEntry(InfoStyle.Render("AI player not available"))
		return nil
	}
	if m.ai.Enabled {
		m.ai = m.runner.Stop()
		m.addEntry(Text(autoplay.KeyStopped, nil))
	} else {
		m.ai = m.runner.Start()
		if m.ai.Enabled {
			m.addEntry(SuccessStyle.Render("AI player started"))
		}
	}
	m.observe(m.table.State())
	// A round the AI left in the dealer's hands is finished manually.
	return m.scheduleDealer()
}

func (m *Model) pauseAI() {
	if m.runner == nil || !m.ai.Enabled {
		return
	}
	if m.ai.Playing {
		m.ai = m.runner.Pause()
		m.addEntry(InfoStyle.Render("AI paused"))
	} else {
		m.ai = m.runner.Resume()
		m.addEntry(InfoStyle.Render("AI resumed"))
	}
}

func (m *Model) setSpeed(d time.Duration) {
	if m.runner == nil {
		return
	}
	m.ai = m.runner.SetSpeed(d)
}

func (m *Model) cycleSystem() {
	if !betweenRounds(m.state) {
		m.addEntry(WarningStyle.Render("The counting system can only change between rounds"))
		return
	}
	systems := counting.Systems()
	next := systems[0]
	for i, s := range systems {
		if s.ID == m.state.CountingSystem {
			next = systems[(i+1)%len(systems)]
		}
	}
	if err := m.table.SetCountingSystem(next.ID); err != nil {
		m.fail(err)
		return
	}
	m.addEntry(InfoStyle.Render("Counting system: " + next.Name))
	m.rulesChanged()
}

func (m *Model) cyclePreset() {
	presets := rules.Presets()
	next := presets[0]
	for i, p := range presets {
		if p.ID == m.state.PresetID {
			next = presets[(i+1)%len(presets)]
		}
	}
	err := m.table.SetRules(next.Rules, next.ID)
	switch {
	case errors.Is(err, game.ErrRoundInProgress):
		m.addEntry(WarningStyle.Render("The rules can only change between rounds"))
		return
	case err != nil:
		m.fail(err)
		return
	}
	m.addEntry(InfoStyle.Render(fmt.Sprintf("Rules: %s (house edge %s)", next.Name, rules.FormatEdge(rules.HouseEdge(next.Rules)))))
	m.rulesChanged()
}

// rulesChanged rebinds the AI to the table's new rules and counting system.
func (m *Model) rulesChanged() {
	gs := m.table.State()
	if m.runner != nil {
		player, err := ai.ForTable(gs.Rules, gs.CountingSystem)
		if err != nil {
			m.fail(err)
			return
		}
		m.ai = m.runner.RulesChanged(player)
	}
	m.observe(m.table.State())
}

func (m *Model) newGame() {
	if m.runner != nil {
		m.runner.Stop()
		m.ai = m.runner.ResetStatistics()
	}
	gs := m.table.Reset()
	m.entries = nil
	m.addEntry(HandInfoStyle.Render(fmt.Sprintf("New session with $%d", gs.Balance)))
	m.observe(gs)
	m.save()
}

func betweenRounds(gs game.State) bool {
	return gs.Phase == game.PhaseBetting || gs.Phase == game.PhaseGameOver
}

// observe adopts a new game state and logs what changed.
func (m *Model) observe(gs game.State) {
	prev := m.state
	m.state = gs

	if line := m.statusLine(gs); line != "" && (gs.Message != prev.Message || gs.Phase != prev.Phase) {
		m.addEntry(line)
	}
	if gs.Phase == game.PhaseResolution && prev.Phase != game.PhaseResolution {
		for i, h := range gs.Hands {
			m.addEntry(resultLine(i, len(gs.Hands), h))
		}
		m.addEntry(InfoStyle.Render(fmt.Sprintf("Balance $%d", gs.Balance)))
		m.save()
	}
	if gs.Phase == game.PhaseGameOver && prev.Phase != game.PhaseGameOver {
		m.addEntry(ErrorStyle.Render("Out of chips. Press enter for a new session."))
		m.save()
	}
}

// observeAI adopts a new AI state and logs its decisions.
func (m *Model) observeAI(st autoplay.State) {
	prev := m.ai.Decision
	m.ai = st
	d := st.Decision
	if d == nil || d == prev || d.Action == "" || d.Reasoning.Key == autoplay.KeyStartingNextRound {
		return
	}
	m.addEntry(ActionsStyle.Render("AI "+Text(string(d.Action), nil)) + " " + InfoStyle.Render(Reasoning(d.Reasoning)))
}

// recommend is the AI's play for the active hand.
func (m *Model) recommend(gs game.State) (ai.ActionDecision, bool) {
	advisor, err := m.advisorFor(gs)
	if err != nil {
		return ai.ActionDecision{}, false
	}
	sit, ok := ai.SituationFor(gs, true)
	if !ok {
		return ai.ActionDecision{}, false
	}
	return advisor.DecideAction(sit), true
}

// chartCell is the basic-strategy chart cell for the active hand, before
// double and split availability are applied.
func (m *Model) chartCell(gs game.State) (strategy.Code, bool) {
	advisor, err := m.advisorFor(gs)
	if err != nil {
		return "", false
	}
	sit, ok := ai.SituationFor(gs, true)
	if !ok {
		return "", false
	}
	return advisor.Engine().TableCode(sit.Cards, sit.DealerUp), true
}

// advisorFor returns a player for the state's rules and counting system,
// rebuilding it when either changed.
func (m *Model) advisorFor(gs game.State) (*ai.Player, error) {
	k := advisorKey{rules: gs.Rules, system: gs.CountingSystem}
	if m.advisor != nil && m.adviceKey == k {
		return m.advisor, nil
	}
	p, err := ai.ForTable(gs.Rules, gs.CountingSystem)
	if err != nil {
		return nil, err
	}
	m.advisor, m.adviceKey = p, k
	return p, nil
}

// Shutdown stops the AI and saves the session. It is safe to call more
// than once.
func (m *Model) Shutdown() {
	m.quitting = true
	if m.runner != nil {
		m.ai = m.runner.Stop()
	}
	m.save()
}

func (m *Model) save() {
	if m.store == nil {
		return
	}
	if err := m.store.Save(m.table.State()); err != nil {
		m.logger.Error("Failed to save session", "path", m.store.Path(), "error", err)
		return
	}
	m.logger.Debug("Session saved", "path", m.store.Path())
}

func (m *Model) fail(err error) {
	m.logger.Error("Table error", "error", err)
	m.addEntry(ErrorStyle.Render(err.Error()))
}

// addEntry appends to the event log and scrolls to it.
func (m *Model) addEntry(entry string) {
	m.entries = append(m.entries, entry)
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
	m.logView.SetContent(strings.Join(m.entries, "\n"))
	m.logView.GotoBottom()
}

// State returns the game state last rendered.
func (m *Model) State() game.State {
	return m.state
}

// Entries returns a copy of the event log.
func (m *Model) Entries() []string {
	return append([]string(nil), m.entries...)
}
