package game

import (
	"time"

	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/rules"
)

// Action is a closed set of state transitions. Only types in this package
// implement it.
type Action interface {
	isAction()
}

// PlaceBet sets the wager for the next deal.
type PlaceBet struct{ Amount int }

// ClearBet removes the pending wager.
type ClearBet struct{}

// DealInitialCards deals two cards each. Player cards and the dealer up card
// are counted; the hole card is counted when revealed.
type DealInitialCards struct {
	Player [2]deck.Card
	Dealer [2]deck.Card
	Shoe   ShoeCounters
}

// TakeInsurance stakes half the bet, rounded up.
type TakeInsurance struct{}

// DeclineInsurance records that insurance was offered and refused.
type DeclineInsurance struct{}

// HitCard adds a card to the active hand.
type HitCard struct {
	Card deck.Card
	Shoe ShoeCounters
}

// Stand ends the active hand.
type Stand struct{}

// DoubleDownCard doubles the active bet and deals its only card.
type DoubleDownCard struct {
	Card deck.Card
	Shoe ShoeCounters
}

// SplitCards splits the active pair, each half taking one new card.
type SplitCards struct {
	Cards [2]deck.Card
	Shoe  ShoeCounters
}

// Surrender forfeits half the bet of the first hand.
type Surrender struct{}

// DealerRevealHoleCard turns the hole card and counts it.
type DealerRevealHoleCard struct{}

// DealerHitCard draws one dealer card.
type DealerHitCard struct {
	Card deck.Card
	Shoe ShoeCounters
}

// DealerStand ends the dealer's draw.
type DealerStand struct{}

// ResolveHands settles every player hand against the dealer.
type ResolveHands struct{ At time.Time }

// CompleteRound clears the table and returns to betting.
type CompleteRound struct{}

// UpdateCount counts a card seen outside a compound action.
type UpdateCount struct{ Card deck.Card }

// ResetCount zeroes the running count.
type ResetCount struct{}

// SetCountingSystem switches systems and zeroes the count.
type SetCountingSystem struct{ System counting.SystemID }

// SetRules replaces the table rules and resets the shoe counters.
type SetRules struct {
	Rules    rules.Rules
	PresetID string
}

// UpdateShoeState copies the shoe counters.
type UpdateShoeState struct{ Shoe ShoeCounters }

// ShuffleShoe marks a fresh shoe.
type ShuffleShoe struct{}

// RecordDecision scores a player decision against the strategy hint.
type RecordDecision struct{ Correct bool }

// ToggleStrategyHint flips the hint display.
type ToggleStrategyHint struct{}

// ToggleCountDisplay flips the count display.
type ToggleCountDisplay struct{}

// ToggleStatsPanel flips the statistics panel.
type ToggleStatsPanel struct{}

// SetMessage overrides the status message.
type SetMessage struct{ Message Message }

// ResetGame starts a new session, keeping the rules, preset and system.
type ResetGame struct{ At time.Time }

// Restore replaces the state wholesale, as when loading a snapshot.
type Restore struct{ State State }

func (PlaceBet) isAction()             {}
func (ClearBet) isAction()             {}
func (DealInitialCards) isAction()     {}
func (TakeInsurance) isAction()        {}
func (DeclineInsurance) isAction()     {}
func (HitCard) isAction()              {}
func (Stand) isAction()                {}
func (DoubleDownCard) isAction()       {}
func (SplitCards) isAction()           {}
func (Surrender) isAction()            {}
func (DealerRevealHoleCard) isAction() {}
func (DealerHitCard) isAction()        {}
func (DealerStand) isAction()          {}
func (ResolveHands) isAction()         {}
func (CompleteRound) isAction()        {}
func (UpdateCount) isAction()          {}
func (ResetCount) isAction()           {}
func (SetCountingSystem) isAction()    {}
func (SetRules) isAction()             {}
func (UpdateShoeState) isAction()      {}
func (ShuffleShoe) isAction()          {}
func (RecordDecision) isAction()       {}
func (ToggleStrategyHint) isAction()   {}
func (ToggleCountDisplay) isAction()   {}
func (ToggleStatsPanel) isAction()     {}
func (SetMessage) isAction()           {}
func (ResetGame) isAction()            {}
func (Restore) isAction()              {}
