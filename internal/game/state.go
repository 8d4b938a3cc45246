package game

import (
	"time"

	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/payout"
	"github.com/lox/blackjack/internal/rules"
)

// Phase is the round state machine position.
type Phase string

const (
	PhaseBetting    Phase = "betting"
	PhaseDealing    Phase = "dealing"
	PhasePlayerTurn Phase = "player_turn"
	PhaseDealerTurn Phase = "dealer_turn"
	PhaseResolution Phase = "resolution"
	PhaseGameOver   Phase = "game_over"
)

// Message is a localization key describing the latest transition.
type Message string

const (
	MsgPlaceBet              Message = "placeBet"
	MsgPlaceBetFirst         Message = "placeBetFirst"
	MsgBetPlaced             Message = "betPlaced"
	MsgInsufficientBalance   Message = "insufficientBalance"
	MsgBlackjack             Message = "blackjack"
	MsgYourTurn              Message = "yourTurn"
	MsgInsuranceTaken        Message = "insuranceTaken"
	MsgInsuranceDeclined     Message = "insuranceDeclined"
	MsgBust                  Message = "bust"
	MsgDealerTurn            Message = "dealerTurn"
	MsgInsufficientToDouble  Message = "insufficientToDouble"
	MsgInsufficientToSplit   Message = "insufficientToSplit"
	MsgSplitPlayFirstHand    Message = "splitPlayFirstHand"
	MsgSurrendered           Message = "surrendered"
	MsgDealerRevealsHoleCard Message = "dealerRevealsHoleCard"
	MsgDealerHits            Message = "dealerHits"
	MsgDealerBusts           Message = "dealerBusts"
	MsgDealerStands          Message = "dealerStands"
	MsgRoundComplete         Message = "roundComplete"
	MsgPlaceNextBet          Message = "placeNextBet"
	MsgShoeShuffled          Message = "shoeShuffled"
)

const (
	// BalanceHistorySize caps the balance snapshot ring.
	BalanceHistorySize = 1000
	// HandHistorySize caps the completed hand log.
	HandHistorySize = 100
)

// PlayerHand is one of the player's hands in the current round.
type PlayerHand struct {
	ID         string        `json:"id"`
	Cards      []deck.Card   `json:"cards"`
	Value      int           `json:"value"`
	Bet        int           `json:"bet"`
	Status     hand.Status   `json:"status"`
	Doubled    bool          `json:"doubled"`
	Split      bool          `json:"split"`
	SplitCount int           `json:"splitCount"`
	Result     payout.Result `json:"result,omitempty"`
	Payout     int           `json:"payout,omitempty"`
}

// Settled reports whether resolution has assigned a result.
func (h PlayerHand) Settled() bool {
	return h.Result != ""
}

func (h PlayerHand) clone() PlayerHand {
	h.Cards = append([]deck.Card(nil), h.Cards...)
	return h
}

// DealerHand holds the dealer's cards. Value covers only the up card while
// the hole card is hidden.
type DealerHand struct {
	Cards          []deck.Card `json:"cards"`
	Value          int         `json:"value"`
	HoleCardHidden bool        `json:"holeCardHidden"`
	Stood          bool        `json:"stood,omitempty"`
}

// UpCard returns the dealer's first card.
func (d DealerHand) UpCard() (deck.Card, bool) {
	if len(d.Cards) == 0 {
		return deck.Card{}, false
	}
	return d.Cards[0], true
}

// ShoeCounters mirror the physical shoe after a deal.
type ShoeCounters struct {
	CardsRemaining int `json:"cardsRemaining"`
	TotalCards     int `json:"totalCards"`
}

// DecksRemaining is the undealt cards expressed in decks.
func (c ShoeCounters) DecksRemaining() float64 {
	return float64(c.CardsRemaining) / deck.CardsPerDeck
}

// Statistics accumulate over a session.
type Statistics struct {
	SessionStart time.Time `json:"sessionStart"`
	HandsPlayed  int       `json:"handsPlayed"`

	HandsWon    int `json:"handsWon"`
	HandsLost   int `json:"handsLost"`
	HandsPushed int `json:"handsPushed"`
	Blackjacks  int `json:"blackjacks"`
	Busts       int `json:"busts"`
	Surrenders  int `json:"surrenders"`

	StartingBalance int `json:"startingBalance"`
	CurrentBalance  int `json:"currentBalance"`
	TotalWagered    int `json:"totalWagered"`
	TotalWon        int `json:"totalWon"`
	NetProfit       int `json:"netProfit"`

	SplitsMade     int `json:"splitsMade"`
	DoubleDowns    int `json:"doubleDowns"`
	InsuranceTaken int `json:"insuranceTaken"`

	HardHands int `json:"hardHands"`
	SoftHands int `json:"softHands"`
	Pairs     int `json:"pairs"`

	CorrectPlays   int `json:"correctPlays"`
	IncorrectPlays int `json:"incorrectPlays"`
}

// NewStatistics starts a session at the given balance.
func NewStatistics(startingBalance int, sessionStart time.Time) Statistics {
	return Statistics{
		SessionStart:    sessionStart,
		StartingBalance: startingBalance,
		CurrentBalance:  startingBalance,
	}
}

// BalanceSnapshot records the balance after a resolved round.
type BalanceSnapshot struct {
	Balance    int       `json:"balance"`
	Timestamp  time.Time `json:"timestamp"`
	HandNumber int       `json:"handNumber"`
}

// CompletedHand is a one-line record of a settled player hand.
type CompletedHand struct {
	PlayerCards string        `json:"playerCards"`
	DealerCards string        `json:"dealerCards"`
	Result      payout.Result `json:"result"`
	Payout      int           `json:"payout"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Display holds the front-end toggles.
type Display struct {
	StrategyHint bool `json:"showStrategyHint"`
	CountDisplay bool `json:"showCountDisplay"`
	StatsPanel   bool `json:"showStatsPanel"`
}

// State is the whole game. It is only ever replaced through Reduce.
type State struct {
	Phase    Phase       `json:"phase"`
	Rules    rules.Rules `json:"rules"`
	PresetID string      `json:"selectedPresetId"`

	Shoe               ShoeCounters `json:"shoe"`
	PenetrationReached bool         `json:"penetrationReached"`

	Balance         int          `json:"balance"`
	CurrentBet      int          `json:"currentBet"`
	LastBet         int          `json:"lastBet"`
	Hands           []PlayerHand `json:"hands"`
	ActiveHandIndex int          `json:"activeHandIndex"`
	// InsuranceBet is 0 when not yet offered and -1 once declined.
	InsuranceBet int `json:"insuranceBet"`

	Dealer DealerHand `json:"dealer"`

	Statistics     Statistics        `json:"statistics"`
	BalanceHistory []BalanceSnapshot `json:"balanceHistory"`
	HandHistory    []CompletedHand   `json:"handHistory"`

	RunningCount   int               `json:"runningCount"`
	CountingSystem counting.SystemID `json:"countingSystem"`

	Display Display `json:"display"`
	Message Message `json:"message"`
}

// InitialState is a fresh session on the Vegas Strip preset.
func InitialState(sessionStart time.Time) State {
	r := rules.Default()
	return State{
		Phase:    PhaseBetting,
		Rules:    r,
		PresetID: rules.PresetVegasStrip,
		Shoe: ShoeCounters{
			CardsRemaining: r.DeckCount * deck.CardsPerDeck,
			TotalCards:     r.DeckCount * deck.CardsPerDeck,
		},
		Balance:        rules.DefaultStartingBalance,
		Statistics:     NewStatistics(rules.DefaultStartingBalance, sessionStart),
		CountingSystem: counting.Default().ID,
		Display: Display{
			StrategyHint: true,
			CountDisplay: true,
		},
		Message: MsgPlaceBet,
	}
}

// System returns the active counting system. The reducer only stores
// registered ids, so the default is reached only by a zero State.
func (s State) System() counting.System {
	if sys, err := counting.Lookup(s.CountingSystem); err == nil {
		return sys
	}
	return counting.Default()
}

// EffectiveCount is the count the active system decides on.
func (s State) EffectiveCount() float64 {
	return s.System().EffectiveCount(s.RunningCount, s.Shoe.CardsRemaining)
}

// TrueCount is the running count per remaining deck.
func (s State) TrueCount() float64 {
	return counting.TrueCount(s.RunningCount, s.Shoe.CardsRemaining)
}

// ActiveHand returns the hand currently being played.
func (s State) ActiveHand() (PlayerHand, bool) {
	if s.ActiveHandIndex < 0 || s.ActiveHandIndex >= len(s.Hands) {
		return PlayerHand{}, false
	}
	return s.Hands[s.ActiveHandIndex], true
}

func (s State) clone() State {
	hands := make([]PlayerHand, len(s.Hands))
	for i, h := range s.Hands {
		hands[i] = h.clone()
	}
	s.Hands = hands
	s.Dealer.Cards = append([]deck.Card(nil), s.Dealer.Cards...)
	s.BalanceHistory = append([]BalanceSnapshot(nil), s.BalanceHistory...)
	s.HandHistory = append([]CompletedHand(nil), s.HandHistory...)
	return s
}
