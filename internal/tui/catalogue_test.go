package tui

import (
	"testing"

	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		params map[string]any
		want   string
	}{
		{"plain", "dealerStands", nil, "Dealer stands"},
		{"int param", "ai.status.waitingNextRound", map[string]any{"seconds": 3}, "Next round in 3s"},
		{"float param", "deviation.insurance", map[string]any{"threshold": 1.4}, "insurance at 1.4 or higher"},
		{"unknown key", "no.such.key", nil, "no.such.key"},
		{"missing param left in place", "hand.soft", nil, "Soft {value}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.key, tt.params))
		})
	}
}

func TestReasoningNested(t *testing.T) {
	r := ai.Reasoning{
		Key: ai.KeyActionDeviation,
		Params: map[string]any{
			"baseReasoning": ai.Reasoning{Key: ai.KeyActionTemplate, Params: map[string]any{
				"handType":    ai.KeyHandHard,
				"handValue":   16,
				"dealerValue": "10",
				"action":      string(ai.ActionStand),
			}},
			"trueCount": "0.0",
			"deviationDescription": ai.Reasoning{Key: "deviation.atOrAbove", Params: map[string]any{
				"hand":      "16",
				"dealer":    "10",
				"action":    "strategy.stand",
				"threshold": 0.0,
			}},
		},
	}
	assert.Equal(t,
		"Hard 16 against 10: stand (deviation at 0.0: 16 vs 10, stand at 0 or higher)",
		Reasoning(r))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		cards string
		want  string
	}{
		{"As Kd", "Blackjack"},
		{"As 6d", "Soft 17"},
		{"Ts 6d", "16"},
		{"Ts 6d 9c", "Bust (25)"},
	}
	for _, tt := range tests {
		t.Run(tt.cards, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(hand.Describe(deck.MustParseCards(tt.cards))))
		})
	}
}

func TestEveryActionHasText(t *testing.T) {
	for _, a := range []ai.Action{
		ai.ActionHit, ai.ActionStand, ai.ActionDoubleDown, ai.ActionSplit,
		ai.ActionSurrender, ai.ActionTakeInsurance, ai.ActionDeclineInsurance,
	} {
		_, ok := catalogue[string(a)]
		assert.True(t, ok, "no text for %s", a)
	}
}
