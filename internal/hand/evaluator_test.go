package hand

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/stretchr/testify/assert"
)

func cards(s string) []deck.Card {
	return deck.MustParseCards(s)
}

func TestValue(t *testing.T) {
	tests := []struct {
		name  string
		cards string
		want  int
	}{
		{"empty", "", 0},
		{"two tens", "TsKh", 20},
		{"ace ten five", "AsTd5h", 16},
		{"three aces and eight", "AsAhAd8c", 21},
		{"four aces", "AsAhAdAc", 14},
		{"ace six", "As6d", 17},
		{"ace six ten", "As6dTh", 17},
		{"bust", "TsTh5d", 25},
		{"ace ace nine", "AsAh9d", 21},
		{"all aces demoted", "AsAhTdTc", 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(cards(tt.cards)))
		})
	}
}

func TestIsSoft(t *testing.T) {
	tests := []struct {
		cards string
		want  bool
	}{
		{"As6d", true},
		{"As6dTh", false},
		{"AsAh9d", true},
		{"Ts7d", false},
		{"AsAhAd8c", true},
		{"AsAhTdTc", false},
	}

	for _, tt := range tests {
		t.Run(tt.cards, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSoft(cards(tt.cards)))
		})
	}
}

func TestIsBlackjack(t *testing.T) {
	assert.True(t, IsBlackjack(cards("AsKd")))
	assert.True(t, IsBlackjack(cards("TsAd")))
	assert.False(t, IsBlackjack(cards("7s7d7h")), "three-card 21 is never blackjack")
	assert.False(t, IsBlackjack(cards("AsAd")))
}

func TestIsBust(t *testing.T) {
	assert.True(t, IsBust(cards("TsTh2d")))
	assert.False(t, IsBust(cards("TsAhAd")))
}

func TestCanSplit(t *testing.T) {
	tests := []struct {
		cards string
		want  bool
	}{
		{"8s8d", true},
		{"TsKd", true},
		{"JsQd", true},
		{"AsAd", true},
		{"8s9d", false},
		{"8s8d8h", false},
		{"As", false},
	}

	for _, tt := range tests {
		t.Run(tt.cards, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSplit(cards(tt.cards)))
		})
	}
}

func TestSoftRemainder(t *testing.T) {
	assert.Equal(t, 6, SoftRemainder(cards("As6d")))
	assert.Equal(t, 6, SoftRemainder(cards("AsAh5d")))
	assert.Equal(t, 9, SoftRemainder(cards("AsTd")))
	assert.Equal(t, 1, SoftRemainder(cards("AsAd")))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name           string
		player, dealer int
		want           Outcome
	}{
		{"dealer bust", 18, 23, Win},
		{"both bust dealer first", 23, 24, Win},
		{"player bust", 22, 18, Lose},
		{"player higher", 20, 18, Win},
		{"dealer higher", 17, 19, Lose},
		{"equal", 18, 18, Push},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.player, tt.dealer))
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "hand.blackjack", Describe(cards("AsKd")).Key)

	bust := Describe(cards("TsTd5h"))
	assert.Equal(t, "hand.bust", bust.Key)
	assert.Equal(t, 25, bust.Params["value"])

	soft := Describe(cards("As7d"))
	assert.Equal(t, "hand.soft", soft.Key)
	assert.Equal(t, 18, soft.Params["value"])

	assert.Equal(t, "hand.value", Describe(cards("Ts8d")).Key)
}
