package counting

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/strategy"
)

// StrategySetID identifies a deviation set.
type StrategySetID string

const (
	Illustrious18 StrategySetID = "illustrious18"
	KOPreferred   StrategySetID = "ko_preferred"
	OmegaMatrix   StrategySetID = "omega_matrix"
	ZenIndices    StrategySetID = "zen_indices"
	Catch22       StrategySetID = "catch22"
)

// InsuranceHand is the hand key of the insurance entry in a set. It never
// matches a playing query; insurance is decided by ShouldTakeInsurance.
const InsuranceHand = "any"

// Insurance pseudo-actions used by the insurance entry.
const (
	DeclineInsurance strategy.Code = "decline"
	TakeInsurance    strategy.Code = "take_insurance"
)

// Deviation is one count-triggered override of basic strategy.
//
// Hand is a hard total ("16"), a soft key ("A8") or a pair key ("10,10").
// A negative Threshold applies at or below it; zero or positive applies at
// or above it.
type Deviation struct {
	Hand      string
	Dealer    deck.Rank
	Basic     strategy.Code
	Action    strategy.Code
	Threshold float64
	Note      string
}

// DescriptionKey returns a semantic description of the deviation.
func (d Deviation) DescriptionKey() (string, map[string]any) {
	params := map[string]any{
		"hand":      d.Hand,
		"dealer":    d.Dealer.String(),
		"action":    d.Action.DescriptionKey(),
		"threshold": d.Threshold,
	}
	if d.Note != "" {
		params["note"] = d.Note
	}
	if d.Hand == InsuranceHand {
		return "deviation.insurance", params
	}
	if d.Threshold < 0 {
		return "deviation.atOrBelow", params
	}
	return "deviation.atOrAbove", params
}

// StrategySet is the deviation table paired with one counting system.
type StrategySet struct {
	ID            StrategySetID
	Name          string
	System        SystemID
	UsesTrueCount bool
	Deviations    []Deviation
}

func dev(hand string, dealer deck.Rank, basic, action strategy.Code, threshold float64) Deviation {
	return Deviation{Hand: hand, Dealer: dealer, Basic: basic, Action: action, Threshold: threshold}
}

func insurance(threshold float64) Deviation {
	return dev(InsuranceHand, deck.Ace, DeclineInsurance, TakeInsurance, threshold)
}

const (
	h  = strategy.Hit
	st = strategy.Stand
	dh = strategy.DoubleOrHit
	sp = strategy.Split
	su = strategy.Surrender
)

var strategySets = []StrategySet{
	{
		ID:            Illustrious18,
		Name:          "Illustrious 18",
		System:        HiLo,
		UsesTrueCount: true,
		Deviations: []Deviation{
			insurance(3),
			dev("16", deck.Ten, h, su, 0),
			dev("15", deck.Ten, h, su, 4),
			dev("10,10", deck.Five, st, sp, 5),
			dev("10,10", deck.Six, st, sp, 4),
			dev("10", deck.Ten, h, dh, 4),
			dev("12", deck.Three, h, st, 2),
			dev("12", deck.Two, h, st, 3),
			dev("11", deck.Ace, h, dh, 1),
			dev("9", deck.Two, h, dh, 1),
			dev("10", deck.Ace, h, dh, 4),
			dev("9", deck.Seven, h, dh, 3),
			dev("16", deck.Nine, h, st, 5),
			dev("13", deck.Two, st, h, -1),
			dev("12", deck.Four, st, h, 0),
			dev("12", deck.Five, st, h, -2),
			dev("12", deck.Six, st, h, -1),
			dev("13", deck.Three, st, h, -2),
		},
	},
	{
		ID:            KOPreferred,
		Name:          "KO Preferred",
		System:        KO,
		UsesTrueCount: false,
		Deviations: []Deviation{
			insurance(3),
			{Hand: "16", Dealer: deck.Ten, Basic: h, Action: st, Threshold: -4, Note: "key count"},
			dev("12", deck.Four, st, h, -20),
			dev("12", deck.Five, st, h, -20),
			dev("12", deck.Six, st, h, -20),
			dev("13", deck.Two, st, h, -20),
			dev("13", deck.Three, st, h, -20),
			{Hand: "11", Dealer: deck.Ace, Basic: h, Action: dh, Threshold: 4, Note: "pivot"},
			dev("10", deck.Ten, h, dh, 4),
			dev("10", deck.Ace, h, dh, 4),
			dev("9", deck.Two, h, dh, 4),
			dev("9", deck.Seven, h, dh, 4),
			dev("10,10", deck.Five, st, sp, 4),
			dev("10,10", deck.Six, st, sp, 4),
		},
	},
	{
		ID:            OmegaMatrix,
		Name:          "Omega II Matrix",
		System:        OmegaII,
		UsesTrueCount: true,
		Deviations: []Deviation{
			insurance(6),
			dev("16", deck.Ten, h, st, 0),
			dev("16", deck.Nine, h, st, 7),
			dev("15", deck.Ten, h, st, 6),
			dev("13", deck.Two, st, h, -1),
			dev("13", deck.Three, st, h, -3),
			dev("12", deck.Two, h, st, 5),
			dev("12", deck.Three, h, st, 2),
			dev("12", deck.Four, st, h, 0),
			dev("12", deck.Five, st, h, -2),
			dev("12", deck.Six, st, h, -5),
			dev("10", deck.Ten, h, dh, 9),
			dev("10", deck.Ace, h, dh, 8),
			dev("9", deck.Two, h, dh, 4),
			dev("9", deck.Seven, h, dh, 7),
			dev("10,10", deck.Five, st, sp, 9),
			dev("10,10", deck.Six, st, sp, 8),
		},
	},
	{
		ID:            ZenIndices,
		Name:          "Zen Count Indices",
		System:        Zen,
		UsesTrueCount: true,
		Deviations: []Deviation{
			insurance(3),
			dev("16", deck.Ten, h, st, 0),
			dev("15", deck.Ten, h, st, 4),
			dev("16", deck.Nine, h, st, 5),
			dev("13", deck.Two, st, h, -1),
			dev("13", deck.Three, st, h, -2),
			dev("12", deck.Two, h, st, 3),
			dev("12", deck.Three, h, st, 2),
			dev("12", deck.Four, st, h, 0),
			dev("12", deck.Five, st, h, -2),
			dev("12", deck.Six, st, h, -1),
			dev("11", deck.Ace, h, dh, 1),
			dev("10", deck.Ten, h, dh, 4),
			dev("10", deck.Ace, h, dh, 4),
			dev("9", deck.Two, h, dh, 1),
			dev("9", deck.Seven, h, dh, 3),
			dev("10,10", deck.Five, st, sp, 5),
			dev("10,10", deck.Six, st, sp, 4),
			dev("15", deck.Nine, h, su, 2),
			dev("15", deck.Ace, h, su, 1),
		},
	},
	{
		ID:            Catch22,
		Name:          "Catch 22",
		System:        CAC2,
		UsesTrueCount: true,
		Deviations: []Deviation{
			insurance(3),
			dev("16", deck.Ten, h, st, 0),
			dev("15", deck.Ten, h, st, 4),
			dev("15", deck.Nine, h, st, 3),
			dev("16", deck.Nine, h, st, 5),
			dev("10", deck.Ten, h, dh, 5),
			dev("10", deck.Ace, h, dh, 5),
			dev("11", deck.Ace, h, dh, 1),
			dev("9", deck.Two, h, dh, 2),
			dev("9", deck.Seven, h, dh, 4),
			dev("8", deck.Five, h, dh, 3),
			dev("8", deck.Six, h, dh, 3),
			dev("A8", deck.Five, st, dh, 2),
			dev("A8", deck.Six, st, dh, 1),
			dev("12", deck.Two, h, st, 4),
			dev("12", deck.Three, h, st, 2),
			dev("12", deck.Four, st, h, 0),
			dev("12", deck.Five, st, h, -2),
			dev("12", deck.Six, st, h, -2),
			dev("13", deck.Two, st, h, -1),
			dev("13", deck.Three, st, h, -2),
			dev("10,10", deck.Five, st, sp, 6),
			dev("10,10", deck.Six, st, sp, 5),
		},
	},
}

// StrategySets returns every registered deviation set.
func StrategySets() []StrategySet {
	out := make([]StrategySet, len(strategySets))
	copy(out, strategySets)
	return out
}

// StrategySetByID returns the set with the given id.
func StrategySetByID(id StrategySetID) (StrategySet, bool) {
	for _, s := range strategySets {
		if s.ID == id {
			return s, true
		}
	}
	return StrategySet{}, false
}

// StrategySetFor returns the deviation set locked to a counting system.
func StrategySetFor(id SystemID) (StrategySet, error) {
	system, err := Lookup(id)
	if err != nil {
		return StrategySet{}, err
	}
	set, ok := StrategySetByID(system.StrategySetID)
	if !ok || set.System != id {
		return StrategySet{}, fmt.Errorf("%w: %s", ErrNoStrategySet, id)
	}
	return set, nil
}

// ValidatePairing reports whether strategySetID is the set locked to the
// system.
func ValidatePairing(id SystemID, strategySetID StrategySetID) bool {
	set, err := StrategySetFor(id)
	return err == nil && set.ID == strategySetID
}

// ValidateRegistry checks that every system resolves to exactly one set,
// that no two systems share a set, and that no set has two deviations for
// the same hand and dealer card.
func ValidateRegistry() error {
	seen := make(map[StrategySetID]SystemID)
	for _, system := range registry {
		set, err := StrategySetFor(system.ID)
		if err != nil {
			return err
		}
		if other, dup := seen[set.ID]; dup {
			return fmt.Errorf("strategy set %s shared by %s and %s", set.ID, other, system.ID)
		}
		seen[set.ID] = system.ID

		keys := make(map[deviationKey]bool)
		for _, d := range set.Deviations {
			k := deviationKey{hand: d.Hand, dealer: d.Dealer}
			if keys[k] {
				return fmt.Errorf("strategy set %s has duplicate deviation %s vs %s", set.ID, d.Hand, d.Dealer)
			}
			keys[k] = true
		}
	}
	return nil
}
