// Package hand evaluates blackjack hands. Every function is pure and works
// on a plain card slice, so the reducer, the strategy engine and the AI all
// share one definition of a hand's value.
package hand

import "github.com/lox/blackjack/internal/deck"

// Outcome is the result of comparing a finished player total to the dealer's.
type Outcome string

const (
	Win  Outcome = "win"
	Lose Outcome = "lose"
	Push Outcome = "push"
)

// evaluate sums the cards with every Ace at 11, then demotes Aces to 1 one
// at a time while the total is over 21. It returns the total and how many
// Aces still count as 11.
func evaluate(cards []deck.Card) (total, highAces int) {
	for _, c := range cards {
		total += c.Points()
		if c.IsAce() {
			highAces++
		}
	}
	for total > 21 && highAces > 0 {
		total -= 10
		highAces--
	}
	return total, highAces
}

// Value returns the best total for the cards.
func Value(cards []deck.Card) int {
	total, _ := evaluate(cards)
	return total
}

// IsSoft reports whether an Ace is still counted as 11 without busting.
func IsSoft(cards []deck.Card) bool {
	total, highAces := evaluate(cards)
	return highAces > 0 && total <= 21
}

// IsBlackjack reports a two-card 21.
func IsBlackjack(cards []deck.Card) bool {
	return len(cards) == 2 && Value(cards) == 21
}

// IsBust reports a total over 21.
func IsBust(cards []deck.Card) bool {
	return Value(cards) > 21
}

// CanSplit reports whether the cards are a splittable pair. Ten-value
// ranks pair with each other.
func CanSplit(cards []deck.Card) bool {
	if len(cards) != 2 {
		return false
	}
	return cards[0].Rank.Normalize() == cards[1].Rank.Normalize()
}

// PairRank returns the normalized rank of a pair. Only meaningful when
// CanSplit is true.
func PairRank(cards []deck.Card) deck.Rank {
	if len(cards) == 0 {
		return 0
	}
	return cards[0].Rank.Normalize()
}

// SoftRemainder returns the total of a soft hand minus the Ace counted as
// 11, the "n" in the A{n} soft-table key. Extra Aces count one each, so
// A,A,5 keys as A6. The result is clamped to [1, 9].
func SoftRemainder(cards []deck.Card) int {
	n := Value(cards) - 11
	if n > 9 {
		return 9
	}
	if n < 1 {
		return 1
	}
	return n
}

// Compare decides a hand from final totals alone: a dealer bust wins, then
// a player bust loses, otherwise the higher total wins.
func Compare(playerValue, dealerValue int) Outcome {
	switch {
	case dealerValue > 21:
		return Win
	case playerValue > 21:
		return Lose
	case playerValue > dealerValue:
		return Win
	case playerValue < dealerValue:
		return Lose
	default:
		return Push
	}
}

// Description is a semantic (key, params) rendering of a hand for display.
type Description struct {
	Key    string         `json:"key"`
	Params map[string]any `json:"params,omitempty"`
}

// Describe names the hand: blackjack, bust, soft or plain value.
func Describe(cards []deck.Card) Description {
	value := Value(cards)
	switch {
	case IsBlackjack(cards):
		return Description{Key: "hand.blackjack"}
	case value > 21:
		return Description{Key: "hand.bust", Params: map[string]any{"value": value}}
	case IsSoft(cards):
		return Description{Key: "hand.soft", Params: map[string]any{"value": value}}
	default:
		return Description{Key: "hand.value", Params: map[string]any{"value": value}}
	}
}
