// Package autoplay drives an AI player around a game table.
//
// Tick is a pure transition: it reads the AI state and a game state
// snapshot and returns the next AI state plus the effects to carry out.
// Runner owns the timer and executes effects against a game.Table.
package autoplay

import (
	"time"

	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/game"
)

// Phase is the position of the AI in its own round cycle.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseWaitingBet          Phase = "waiting_bet"
	PhasePlacingBet          Phase = "placing_bet"
	PhaseDealingCards        Phase = "dealing_cards"
	PhaseWaitingDealComplete Phase = "waiting_deal_complete"
	PhaseInsuranceDecision   Phase = "insurance_decision"
	PhaseDecidingAction      Phase = "deciding_action"
	PhaseWaitingDealer       Phase = "waiting_dealer"
	PhaseWaitingResolution   Phase = "waiting_resolution"
	PhaseStartingNextRound   Phase = "starting_next_round"
)

// Stop reasons and status keys surfaced to the player.
const (
	ReasonInsufficientBalance = "ai.status.insufficientBalance"
	ReasonUnrecoverable       = "ai.status.unrecoverable"
	ReasonGameOver            = "ai.status.gameOver"
	ReasonTableError          = "ai.status.tableError"

	KeyStopped           = "ai.status.aiStopped"
	KeyPausedRuleChange  = "ai.status.aiPausedRuleChange"
	KeyDealerPlaying     = "ai.status.dealerPlaying"
	KeyWaitingNextRound  = "ai.status.waitingNextRound"
	KeyStartingNextRound = "ai.status.startingNextRound"
)

// Speed limits for the tick interval.
const (
	MinSpeed     = 50 * time.Millisecond
	MaxSpeed     = 5 * time.Second
	DefaultSpeed = 500 * time.Millisecond
)

// Config holds the fixed parameters of the control loop.
type Config struct {
	MinBet int
	MaxBet int
	// MinBalance is the balance below which the AI will not start a round.
	// A balance under MinBet stops the AI as well.
	MinBalance int
	// PhaseTimeout is how long the AI may go without the game moving
	// before it is declared stuck. Slow speeds stretch it to four ticks.
	PhaseTimeout time.Duration
	// MaxIterations caps ticks spent in one phase.
	MaxIterations int
	// Counted enables deviations from basic strategy.
	Counted bool
}

// DefaultConfig returns the standard loop parameters.
func DefaultConfig() Config {
	return Config{
		MinBet:        10,
		MaxBet:        500,
		MinBalance:    10,
		PhaseTimeout:  10 * time.Second,
		MaxIterations: 50,
		Counted:       true,
	}
}

// Statistics summarize the AI's own activity.
type Statistics struct {
	RoundsPlayed  int
	DecisionsMade int
	AvgBet        float64
}

// withBet counts a dealt round at the given opening bet.
func (s Statistics) withBet(amount int) Statistics {
	total := s.AvgBet * float64(s.RoundsPlayed)
	s.RoundsPlayed++
	s.AvgBet = (total + float64(amount)) / float64(s.RoundsPlayed)
	return s
}

// progress is the part of the game state that changes with every action
// taken at the table.
type progress struct {
	cards       int
	hands       int
	activeHand  int
	holeHidden  bool
	dealerStood bool
	balance     int
	message     game.Message
}

func progressOf(gs game.State) progress {
	p := progress{
		cards:       len(gs.Dealer.Cards),
		hands:       len(gs.Hands),
		activeHand:  gs.ActiveHandIndex,
		holeHidden:  gs.Dealer.HoleCardHidden,
		dealerStood: gs.Dealer.Stood,
		balance:     gs.Balance,
		message:     gs.Message,
	}
	for _, h := range gs.Hands {
		p.cards += len(h.Cards)
	}
	return p
}

// Decision is the last thing the AI decided, for display.
type Decision struct {
	Action    ai.Action
	Reasoning ai.Reasoning
}

// State is the AI control loop state. It is owned by the loop; the game
// state is only ever read.
type State struct {
	Enabled bool
	Playing bool
	Speed   time.Duration

	Phase          Phase
	PhaseEnteredAt time.Time
	// ProgressAt is when the game last moved on. The stuck timeout runs
	// from it.
	ProgressAt    time.Time
	Iterations    int
	LastGamePhase game.Phase
	progress      progress

	Decision   *Decision
	Statistics Statistics

	Stuck bool
	// Err is the reason the AI last stopped or recovered.
	Err string
}

// NewState returns a disabled AI at the default speed.
func NewState() State {
	return State{Speed: DefaultSpeed, Phase: PhaseIdle}
}

// Active reports whether ticks should act.
func (s State) Active() bool {
	return s.Enabled && s.Playing
}

// Effect is a request to change the game. Runner executes effects in order.
type Effect interface {
	isEffect()
}

// PlaceBet places the wager for the next round.
type PlaceBet struct{ Amount int }

// Deal deals a new round.
type Deal struct{}

// Insurance answers an insurance offer.
type Insurance struct{ Take bool }

// Play executes a player action on the active hand.
type Play struct{ Action ai.Action }

// DealerStep advances the dealer by one action.
type DealerStep struct{}

// NewRound clears a resolved round.
type NewRound struct{}

// Notify sets the game status message.
type Notify struct{ Message game.Message }

func (PlaceBet) isEffect()   {}
func (Deal) isEffect()       {}
func (Insurance) isEffect()  {}
func (Play) isEffect()       {}
func (DealerStep) isEffect() {}
func (NewRound) isEffect()   {}
func (Notify) isEffect()     {}
