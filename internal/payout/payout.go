// Package payout settles finished hands. Every half-unit that cannot be paid
// exactly resolves against the player: payouts round down, costs round up.
package payout

import (
	"math"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/rules"
)

// Result is the settlement category of a hand.
type Result string

const (
	ResultWin       Result = "win"
	ResultLose      Result = "lose"
	ResultPush      Result = "push"
	ResultBlackjack Result = "blackjack"
	ResultBust      Result = "bust"
	ResultSurrender Result = "surrender"
)

// Hand is what the calculator needs to know about a finished player hand.
type Hand struct {
	Cards  []deck.Card
	Bet    int
	Status hand.Status
}

// Settlement is the outcome of one hand: its category and the total amount
// returned to the player, stake included.
type Settlement struct {
	Result Result
	Payout int
}

// Calculate settles a hand against the dealer's final total, applying the
// rules in strict priority order.
func Calculate(h Hand, dealerValue int, dealerBlackjack bool, r rules.Rules) Settlement {
	value := hand.Value(h.Cards)

	switch {
	case h.Status == hand.StatusSurrender:
		return Settlement{Result: ResultSurrender, Payout: floorHalf(h.Bet)}
	case h.Status == hand.StatusBust || value > 21:
		return Settlement{Result: ResultBust, Payout: 0}
	// Blackjack status is only assigned to the two dealt cards, so a
	// two-card 21 after a split settles as an ordinary 21.
	case h.Status == hand.StatusBlackjack:
		if dealerBlackjack {
			return Settlement{Result: ResultPush, Payout: h.Bet}
		}
		return Settlement{
			Result: ResultBlackjack,
			Payout: int(math.Floor(float64(h.Bet) * (1 + r.BlackjackPayout))),
		}
	case dealerBlackjack:
		return Settlement{Result: ResultLose, Payout: 0}
	case dealerValue > 21:
		return Settlement{Result: ResultWin, Payout: h.Bet * 2}
	case value > dealerValue:
		return Settlement{Result: ResultWin, Payout: h.Bet * 2}
	case value == dealerValue:
		return Settlement{Result: ResultPush, Payout: h.Bet}
	default:
		return Settlement{Result: ResultLose, Payout: 0}
	}
}

// InsurancePayout returns the amount paid on an insurance bet. Zero and the
// declined sentinel (-1) pay nothing. A win pays 2:1 plus the stake,
// rounded down.
func InsurancePayout(insuranceBet int, dealerBlackjack bool) int {
	if insuranceBet <= 0 || !dealerBlackjack {
		return 0
	}
	return int(math.Floor(float64(insuranceBet) * 3))
}

// InsuranceCost is half the main bet rounded up.
func InsuranceCost(bet int) int {
	return (bet + 1) / 2
}

func floorHalf(v int) int {
	return v / 2
}
