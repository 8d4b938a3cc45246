// Package counting defines the card-counting systems, the deviation sets
// each system is locked to, and the resolver that decides when a count
// overrides basic strategy.
//
// # Systems and pairing
//
// Every System names exactly one StrategySet through StrategySetID. The
// pairing is part of the registry data and cannot be overridden: asking
// for a system's deviations always goes through ResolverFor.
//
// # Effective count
//
// Balanced systems convert the running count into a true count by dividing
// by the decks remaining. Unbalanced systems (KO) use the running count
// unconverted. EffectiveCount applies the right rule for a system.
package counting

import (
	"errors"
	"fmt"
	"math"

	"github.com/lox/blackjack/internal/deck"
)

var (
	// ErrUnknownSystem is returned for a counting system id not in the registry.
	ErrUnknownSystem = errors.New("unknown counting system")
	// ErrNoStrategySet means a system has no registered deviation set.
	// The registry is closed, so this is a data bug rather than user error.
	ErrNoStrategySet = errors.New("no strategy set for counting system")
)

// SystemID identifies a counting system.
type SystemID string

const (
	HiLo    SystemID = "hi-lo"
	KO      SystemID = "ko"
	OmegaII SystemID = "omega-ii"
	Zen     SystemID = "zen"
	CAC2    SystemID = "cac2"
)

// System is one card-counting tag system.
type System struct {
	ID                 SystemID
	Name               string
	Values             map[deck.Rank]int
	Balanced           bool
	InsuranceIndex     float64
	StrategySetID      StrategySetID
	BettingCorrelation float64
	PlayingEfficiency  float64
}

// Tag returns the count weight of a card. J, Q and K use the Ten weight.
func (s System) Tag(c deck.Card) int {
	return s.Values[c.Rank.Normalize()]
}

// Delta sums the tags of the given cards.
func (s System) Delta(cards ...deck.Card) int {
	delta := 0
	for _, c := range cards {
		delta += s.Tag(c)
	}
	return delta
}

// EffectiveCount returns the count this system makes decisions on: the
// true count when balanced, otherwise the running count.
func (s System) EffectiveCount(runningCount, cardsRemaining int) float64 {
	if s.Balanced {
		return TrueCount(runningCount, cardsRemaining)
	}
	return float64(runningCount)
}

// TrueCount divides the running count by decks remaining and rounds to one
// decimal, halves rounding up. It is 0 when the shoe is exhausted.
func TrueCount(runningCount, cardsRemaining int) float64 {
	if cardsRemaining <= 0 {
		return 0
	}
	decks := float64(cardsRemaining) / deck.CardsPerDeck
	return math.Floor(float64(runningCount)/decks*10+0.5) / 10
}

func tags(two, three, four, five, six, seven, eight, nine, ten, ace int) map[deck.Rank]int {
	return map[deck.Rank]int{
		deck.Two: two, deck.Three: three, deck.Four: four, deck.Five: five,
		deck.Six: six, deck.Seven: seven, deck.Eight: eight, deck.Nine: nine,
		deck.Ten: ten, deck.Ace: ace,
	}
}

var registry = []System{
	{
		ID:                 HiLo,
		Name:               "Hi-Lo",
		Values:             tags(1, 1, 1, 1, 1, 0, 0, 0, -1, -1),
		Balanced:           true,
		InsuranceIndex:     3,
		StrategySetID:      Illustrious18,
		BettingCorrelation: 0.97,
		PlayingEfficiency:  0.51,
	},
	{
		ID:                 KO,
		Name:               "KO",
		Values:             tags(1, 1, 1, 1, 1, 1, 0, 0, -1, -1),
		Balanced:           false,
		InsuranceIndex:     3,
		StrategySetID:      KOPreferred,
		BettingCorrelation: 0.98,
		PlayingEfficiency:  0.55,
	},
	{
		ID:                 OmegaII,
		Name:               "Omega II",
		Values:             tags(1, 1, 2, 2, 2, 1, 0, 0, -2, 0),
		Balanced:           true,
		InsuranceIndex:     6,
		StrategySetID:      OmegaMatrix,
		BettingCorrelation: 0.99,
		PlayingEfficiency:  0.67,
	},
	{
		ID:                 Zen,
		Name:               "Zen Count",
		Values:             tags(1, 1, 2, 2, 2, 1, 0, 0, -2, -1),
		Balanced:           true,
		InsuranceIndex:     3,
		StrategySetID:      ZenIndices,
		BettingCorrelation: 0.96,
		PlayingEfficiency:  0.63,
	},
	{
		ID:                 CAC2,
		Name:               "CAC2",
		Values:             tags(1, 2, 2, 2, 1, 1, 0, 0, -2, -1),
		Balanced:           true,
		InsuranceIndex:     3,
		StrategySetID:      Catch22,
		BettingCorrelation: 0.98,
		PlayingEfficiency:  0.60,
	},
}

// Systems returns every registered system in display order.
func Systems() []System {
	out := make([]System, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the system with the given id.
func Lookup(id SystemID) (System, error) {
	for _, s := range registry {
		if s.ID == id {
			return s, nil
		}
	}
	return System{}, fmt.Errorf("%w: %q", ErrUnknownSystem, id)
}

// MustLookup is Lookup for ids known at compile time.
func MustLookup(id SystemID) System {
	s, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return s
}

// Default is the system a new session starts with.
func Default() System {
	return MustLookup(HiLo)
}
