package game

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/rules"
)

// ErrRoundInProgress is returned when a change is only allowed between rounds.
var ErrRoundInProgress = errors.New("round in progress")

// TableOption configures a Table during creation.
type TableOption func(*tableConfig)

type tableConfig struct {
	clock  quartz.Clock
	logger *log.Logger
	shoe   *deck.Shoe
}

// WithClock sets the clock used to timestamp resolved rounds.
func WithClock(clock quartz.Clock) TableOption {
	return func(c *tableConfig) { c.clock = clock }
}

// WithLogger sets the table logger.
func WithLogger(logger *log.Logger) TableOption {
	return func(c *tableConfig) { c.logger = logger }
}

// WithShoe replaces the shoe built from the rules, typically with a
// stacked shoe in tests.
func WithShoe(shoe *deck.Shoe) TableOption {
	return func(c *tableConfig) { c.shoe = shoe }
}

// Table owns the physical shoe and the game state. Every change to the
// state goes through Reduce; Table only draws cards and sequences actions.
// It is safe for concurrent use.
type Table struct {
	mu     sync.Mutex
	rng    *rand.Rand
	shoe   *deck.Shoe
	state  State
	clock  quartz.Clock
	logger *log.Logger
}

// NewTable seats a player with the given state. The RNG is required and
// drives every shuffle.
func NewTable(rng *rand.Rand, initial State, opts ...TableOption) *Table {
	if rng == nil {
		panic("rng is required for table creation")
	}

	cfg := &tableConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.clock == nil {
		cfg.clock = quartz.NewReal()
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}

	t := &Table{
		rng:    rng,
		state:  initial.clone(),
		clock:  cfg.clock,
		logger: cfg.logger.WithPrefix("table"),
	}
	t.shoe = cfg.shoe
	if t.shoe == nil {
		t.shoe = deck.NewShoe(rng, initial.Rules.DeckCount, initial.Rules.Penetration)
	}
	t.state = Reduce(t.state, UpdateShoeState{Shoe: t.counters()})
	return t
}

// State returns the current state. The returned value shares no memory
// with the table.
func (t *Table) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

// Dispatch applies an action that needs no cards from the shoe.
func (t *Table) Dispatch(a Action) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.apply(a)
}

func (t *Table) apply(a Action) State {
	prev := t.state.Phase
	t.state = Reduce(t.state, a)
	if t.state.Phase != prev {
		t.logger.Debug("Phase changed", "from", prev, "to", t.state.Phase, "action", fmt.Sprintf("%T", a))
	}
	return t.state.clone()
}

func (t *Table) counters() ShoeCounters {
	return ShoeCounters{CardsRemaining: t.shoe.CardsRemaining(), TotalCards: t.shoe.TotalCards()}
}

func (t *Table) draw(n int) ([]deck.Card, error) {
	cards := make([]deck.Card, n)
	for i := range cards {
		c, err := t.shoe.Deal()
		if err != nil {
			return nil, fmt.Errorf("failed to draw card %d of %d: %w", i+1, n, err)
		}
		cards[i] = c
	}
	return cards, nil
}

// PlaceBet sets the wager for the next deal.
func (t *Table) PlaceBet(amount int) State {
	return t.Dispatch(PlaceBet{Amount: amount})
}

// Deal reshuffles when the cut card has been reached, then deals player,
// dealer, player, dealer.
func (t *Table) Deal() (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !CanDeal(t.state) {
		return t.apply(DealInitialCards{}), nil
	}

	if t.shoe.ShouldReshuffle() {
		t.logger.Info("Reshuffling shoe", "dealt", t.shoe.CardsDealt(), "total", t.shoe.TotalCards())
		t.shoe.Reset()
		t.apply(UpdateShoeState{Shoe: t.counters()})
		t.apply(ShuffleShoe{})
	}

	cards, err := t.draw(4)
	if err != nil {
		return t.state.clone(), err
	}
	return t.apply(DealInitialCards{
		Player: [2]deck.Card{cards[0], cards[2]},
		Dealer: [2]deck.Card{cards[1], cards[3]},
		Shoe:   t.counters(),
	}), nil
}

// Hit draws a card for the active hand.
func (t *Table) Hit() (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !CanHit(t.state) {
		return t.state.clone(), nil
	}
	cards, err := t.draw(1)
	if err != nil {
		return t.state.clone(), err
	}
	return t.apply(HitCard{Card: cards[0], Shoe: t.counters()}), nil
}

// Stand ends the active hand.
func (t *Table) Stand() State {
	return t.Dispatch(Stand{})
}

// DoubleDown doubles the active bet and draws one card.
func (t *Table) DoubleDown() (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !CanDouble(t.state) {
		if h, ok := t.state.ActiveHand(); ok && t.state.Balance < h.Bet {
			return t.apply(SetMessage{Message: MsgInsufficientToDouble}), nil
		}
		return t.state.clone(), nil
	}
	cards, err := t.draw(1)
	if err != nil {
		return t.state.clone(), err
	}
	return t.apply(DoubleDownCard{Card: cards[0], Shoe: t.counters()}), nil
}

// Split splits the active pair, drawing one card for each half.
func (t *Table) Split() (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !CanSplit(t.state) {
		if h, ok := t.state.ActiveHand(); ok && t.state.Balance < h.Bet {
			return t.apply(SetMessage{Message: MsgInsufficientToSplit}), nil
		}
		return t.state.clone(), nil
	}
	cards, err := t.draw(2)
	if err != nil {
		return t.state.clone(), err
	}
	return t.apply(SplitCards{Cards: [2]deck.Card{cards[0], cards[1]}, Shoe: t.counters()}), nil
}

// Surrender forfeits half the bet.
func (t *Table) Surrender() State {
	return t.Dispatch(Surrender{})
}

// TakeInsurance buys insurance at half the bet.
func (t *Table) TakeInsurance() State {
	return t.Dispatch(TakeInsurance{})
}

// DeclineInsurance refuses insurance.
func (t *Table) DeclineInsurance() State {
	return t.Dispatch(DeclineInsurance{})
}

// DealerStep advances the dealer by exactly one action: reveal, draw,
// stand, or resolve. It reports done once the round is resolved. Callers
// pace the dealer by sleeping between steps.
func (t *Table) DealerStep() (State, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state
	switch {
	case s.Phase == PhaseResolution:
		return s.clone(), true, nil
	case s.Phase != PhaseDealerTurn:
		return s.clone(), false, nil
	case s.Dealer.HoleCardHidden:
		return t.apply(DealerRevealHoleCard{}), false, nil
	case DealerNeedsCards(s):
		cards, err := t.draw(1)
		if err != nil {
			return s.clone(), false, err
		}
		return t.apply(DealerHitCard{Card: cards[0], Shoe: t.counters()}), false, nil
	case s.Dealer.Value <= 21 && !s.Dealer.Stood:
		return t.apply(DealerStand{}), false, nil
	}

	next := t.apply(ResolveHands{At: t.clock.Now()})
	t.logger.Debug("Round resolved",
		"hand", next.Statistics.HandsPlayed,
		"dealer", next.Dealer.Value,
		"balance", next.Balance)
	return next, true, nil
}

// PlayDealer runs DealerStep until the round is resolved.
func (t *Table) PlayDealer() (State, error) {
	for {
		s, done, err := t.DealerStep()
		if err != nil || done {
			return s, err
		}
		if s.Phase != PhaseDealerTurn {
			return s, nil
		}
	}
}

// NewRound clears a resolved round.
func (t *Table) NewRound() State {
	return t.Dispatch(CompleteRound{})
}

// SetRules replaces the rules between rounds and starts a fresh shoe.
func (t *Table) SetRules(r rules.Rules, presetID string) error {
	if err := r.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Phase != PhaseBetting && t.state.Phase != PhaseGameOver {
		return ErrRoundInProgress
	}
	t.shoe = deck.NewShoe(t.rng, r.DeckCount, r.Penetration)
	t.apply(SetRules{Rules: r, PresetID: presetID})
	t.apply(ResetCount{})
	t.logger.Info("Rules changed", "preset", presetID, "decks", r.DeckCount, "h17", r.DealerHitsSoft17)
	return nil
}

// SetCountingSystem switches the counting system.
func (t *Table) SetCountingSystem(id counting.SystemID) error {
	if _, err := counting.Lookup(id); err != nil {
		return err
	}
	t.Dispatch(SetCountingSystem{System: id})
	return nil
}

// Reset starts a new session with a fresh shoe.
func (t *Table) Reset() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.shoe = deck.NewShoe(t.rng, t.state.Rules.DeckCount, t.state.Rules.Penetration)
	t.apply(ResetGame{At: t.clock.Now()})
	return t.apply(UpdateShoeState{Shoe: t.counters()})
}

// Restore replaces the state, as when resuming a saved session, and
// starts a fresh shoe for its rules.
func (t *Table) Restore(s State) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.shoe = deck.NewShoe(t.rng, s.Rules.DeckCount, s.Rules.Penetration)
	t.apply(Restore{State: s})
	t.apply(ResetCount{})
	return t.apply(UpdateShoeState{Shoe: t.counters()})
}
