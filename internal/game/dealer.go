package game

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/rules"
)

// DealerShouldHit applies the house drawing rule: hit below 17, and on
// soft 17 when the table is H17.
func DealerShouldHit(cards []deck.Card, r rules.Rules) bool {
	value := hand.Value(cards)
	if value < 17 {
		return true
	}
	return value == 17 && r.DealerHitsSoft17 && hand.IsSoft(cards)
}
