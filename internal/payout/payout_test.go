package payout

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/rules"
	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	vegas := rules.VegasStrip()
	sixFive := rules.SingleDeck()

	tests := []struct {
		name            string
		cards           string
		bet             int
		status          hand.Status
		dealerValue     int
		dealerBlackjack bool
		rules           rules.Rules
		want            Settlement
	}{
		{"surrender rounds down", "Ts6d", 27, hand.StatusSurrender, 20, false, vegas, Settlement{ResultSurrender, 13}},
		{"surrender even bet", "Ts6d", 100, hand.StatusSurrender, 20, false, vegas, Settlement{ResultSurrender, 50}},
		{"bust by status", "TsTd5h", 100, hand.StatusBust, 25, false, vegas, Settlement{ResultBust, 0}},
		{"bust beats dealer bust", "TsTd5h", 100, hand.StatusStand, 25, false, vegas, Settlement{ResultBust, 0}},
		{"blackjack 3:2", "AsKd", 100, hand.StatusBlackjack, 19, false, vegas, Settlement{ResultBlackjack, 250}},
		{"blackjack odd bet rounds down", "AsKd", 27, hand.StatusBlackjack, 19, false, vegas, Settlement{ResultBlackjack, 67}},
		{"blackjack 6:5", "AsKd", 25, hand.StatusBlackjack, 19, false, sixFive, Settlement{ResultBlackjack, 55}},
		{"blackjack vs blackjack pushes", "AsKd", 100, hand.StatusBlackjack, 21, true, vegas, Settlement{ResultPush, 100}},
		{"split 21 is not blackjack", "AsKd", 100, hand.StatusStand, 20, false, vegas, Settlement{ResultWin, 200}},
		{"dealer blackjack beats 21", "7s7d7h", 100, hand.StatusStand, 21, true, vegas, Settlement{ResultLose, 0}},
		{"dealer bust", "Ts2d", 100, hand.StatusStand, 23, false, vegas, Settlement{ResultWin, 200}},
		{"higher total wins", "TsQd", 100, hand.StatusStand, 19, false, vegas, Settlement{ResultWin, 200}},
		{"equal totals push", "Ts8d", 100, hand.StatusStand, 18, false, vegas, Settlement{ResultPush, 100}},
		{"lower total loses", "Ts7d", 100, hand.StatusStand, 18, false, vegas, Settlement{ResultLose, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Hand{Cards: deck.MustParseCards(tt.cards), Bet: tt.bet, Status: tt.status}
			assert.Equal(t, tt.want, Calculate(h, tt.dealerValue, tt.dealerBlackjack, tt.rules))
		})
	}
}

func TestInsurancePayout(t *testing.T) {
	assert.Equal(t, 0, InsurancePayout(0, true))
	assert.Equal(t, 0, InsurancePayout(-1, true), "declined sentinel pays nothing")
	assert.Equal(t, 0, InsurancePayout(50, false))
	assert.Equal(t, 150, InsurancePayout(50, true))
	assert.Equal(t, 39, InsurancePayout(13, true))
}

func TestInsuranceCostRoundsUp(t *testing.T) {
	assert.Equal(t, 13, InsuranceCost(25))
	assert.Equal(t, 50, InsuranceCost(100))
	assert.Equal(t, 14, InsuranceCost(27))
	assert.Equal(t, 1, InsuranceCost(1))
}

func TestRoundingDirection(t *testing.T) {
	for bet := 1; bet < 200; bet += 2 {
		surrender := Calculate(Hand{Cards: deck.MustParseCards("Ts6d"), Bet: bet, Status: hand.StatusSurrender}, 20, false, rules.VegasStrip())
		cost := InsuranceCost(bet)
		assert.Less(t, surrender.Payout, cost, "bet %d", bet)
		assert.Equal(t, bet/2, surrender.Payout)
		assert.Equal(t, bet/2+1, cost)
	}
}
