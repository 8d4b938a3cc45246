// Package strategy implements rule-conditioned blackjack basic strategy.
//
// An Engine is built from a rules.Rules value and selects the H17 or S17
// chart, adjusting the pair table when doubling after a split is not
// allowed. OptimalAction resolves "double or X" codes against what the
// player can actually do, so its result is always a playable code.
package strategy

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/rules"
)

// Engine looks up basic strategy for one rule set.
type Engine struct {
	rules  rules.Rules
	tables tables
}

// New builds an Engine for the given rules.
func New(r rules.Rules) *Engine {
	var t tables
	if r.DealerHitsSoft17 {
		t = h17DAS.clone()
	} else {
		t = s17DAS.clone()
	}

	if !r.DoubleAfterSplit {
		for _, adj := range noDASPairs {
			pairRow := t.pairs[adj.pair]
			pairRow[column(adj.dealer)] = Hit
			t.pairs[adj.pair] = pairRow
		}
	}

	return &Engine{rules: r, tables: t}
}

// Rules returns the rules the engine was built from.
func (e *Engine) Rules() rules.Rules {
	return e.rules
}

// OptimalAction returns the basic-strategy play. The result is one of Hit,
// Stand, Double, Split or Surrender.
func (e *Engine) OptimalAction(cards []deck.Card, dealerUp deck.Card, canDouble, canSplit, canSurrender bool) Code {
	col := column(dealerUp.Rank)

	if canSplit && hand.CanSplit(cards) {
		if e.tables.pairs[hand.PairRank(cards)][col] == Split {
			return Split
		}
	}

	var code Code
	if hand.IsSoft(cards) {
		code = e.softCode(cards, col)
	} else {
		code = e.hardCode(hand.Value(cards), col)
		if code == Surrender && !canSurrender {
			code = Hit
		}
	}

	return resolveDouble(code, canDouble)
}

// TableCode returns the raw chart cell for the hand, before "double or X"
// resolution. Pairs report their pair-table cell.
func (e *Engine) TableCode(cards []deck.Card, dealerUp deck.Card) Code {
	col := column(dealerUp.Rank)
	switch {
	case hand.CanSplit(cards):
		return e.tables.pairs[hand.PairRank(cards)][col]
	case hand.IsSoft(cards):
		return e.softCode(cards, col)
	default:
		return e.hardCode(hand.Value(cards), col)
	}
}

func (e *Engine) softCode(cards []deck.Card, col int) Code {
	n := hand.SoftRemainder(cards)
	// Soft 12 only arises from unsplit Aces and always hits.
	if n < 2 {
		return Hit
	}
	return e.tables.soft[n][col]
}

func (e *Engine) hardCode(total, col int) Code {
	// Hard 4 is an unsplit pair of twos and plays like hard 5.
	if total < 5 {
		total = 5
	}
	r, ok := e.tables.hard[total]
	if !ok {
		return Stand
	}
	return r[col]
}

func resolveDouble(code Code, canDouble bool) Code {
	switch code {
	case Double, DoubleOrHit:
		if canDouble {
			return Double
		}
		return Hit
	case DoubleOrStand:
		if canDouble {
			return Double
		}
		return Stand
	default:
		return code
	}
}
