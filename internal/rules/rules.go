// Package rules holds the table rule configuration and everything derived
// from it: named presets, validation and the theoretical house edge.
package rules

import (
	"errors"
	"fmt"
)

// ErrInvalidRules wraps every validation failure.
var ErrInvalidRules = errors.New("invalid rules")

// DoubleOn restricts which hard totals may be doubled.
type DoubleOn string

const (
	DoubleAny          DoubleOn = "any"
	DoubleNineToEleven DoubleOn = "9-11"
	DoubleTenToEleven  DoubleOn = "10-11"
)

// Allows reports whether a hand totalling value may be doubled.
func (d DoubleOn) Allows(value int) bool {
	switch d {
	case DoubleNineToEleven:
		return value >= 9 && value <= 11
	case DoubleTenToEleven:
		return value >= 10 && value <= 11
	default:
		return true
	}
}

// Rules is the immutable table configuration. The strategy tables, the
// payout calculator and the house-edge calculator all read from one value.
type Rules struct {
	DeckCount        int      `json:"deckCount"`
	Penetration      float64  `json:"penetration"`
	DealerHitsSoft17 bool     `json:"dealerHitsSoft17"`
	BlackjackPayout  float64  `json:"blackjackPayout"`
	DoubleAfterSplit bool     `json:"doubleAfterSplit"`
	LateSurrender    bool     `json:"lateSurrender"`
	MaxSplits        int      `json:"maxSplits"`
	ResplitAces      bool     `json:"canResplitAces"`
	HitSplitAces     bool     `json:"canHitSplitAces"`
	InsuranceAllowed bool     `json:"insuranceAllowed"`
	DoubleOn         DoubleOn `json:"doubleOn"`
}

// Validate checks every field against its allowed range.
func (r Rules) Validate() error {
	if r.DeckCount < 1 || r.DeckCount > 8 {
		return fmt.Errorf("%w: deck count must be between 1 and 8, got %d", ErrInvalidRules, r.DeckCount)
	}
	if r.Penetration < 0.5 || r.Penetration > 0.9 {
		return fmt.Errorf("%w: penetration must be between 0.5 and 0.9, got %.2f", ErrInvalidRules, r.Penetration)
	}
	if r.BlackjackPayout != 1.5 && r.BlackjackPayout != 1.2 {
		return fmt.Errorf("%w: blackjack payout must be 1.5 or 1.2, got %.2f", ErrInvalidRules, r.BlackjackPayout)
	}
	if r.MaxSplits < 0 || r.MaxSplits > 3 {
		return fmt.Errorf("%w: max splits must be between 0 and 3, got %d", ErrInvalidRules, r.MaxSplits)
	}

	validDoubleOn := map[DoubleOn]bool{
		DoubleAny:          true,
		DoubleNineToEleven: true,
		DoubleTenToEleven:  true,
	}
	if !validDoubleOn[r.DoubleOn] {
		return fmt.Errorf("%w: double on must be any, 9-11 or 10-11, got %q", ErrInvalidRules, r.DoubleOn)
	}

	return nil
}

// MaxHands is the number of hands a player may hold after splitting.
func (r Rules) MaxHands() int {
	return r.MaxSplits + 1
}

// PayoutLabel renders the blackjack payout as odds ("3:2", "6:5").
func (r Rules) PayoutLabel() string {
	switch r.BlackjackPayout {
	case 1.5:
		return "3:2"
	case 1.2:
		return "6:5"
	case 2.0:
		return "2:1"
	default:
		return fmt.Sprintf("%g:1", r.BlackjackPayout)
	}
}
