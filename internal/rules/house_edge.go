package rules

import (
	"fmt"
	"math"
)

// baseEdge is the house edge in percent for six decks, S17, DAS, no
// surrender, 3:2 blackjack and basic strategy.
const baseEdge = 0.43

// EdgeComponent is one line of the house-edge breakdown. Key and Params
// are semantic so a front end can render its own label.
type EdgeComponent struct {
	Key    string         `json:"key"`
	Params map[string]any `json:"params,omitempty"`
	Value  float64        `json:"value"`
}

// HouseEdge returns the theoretical house edge in percent, rounded to two
// decimals. Positive favours the house.
func HouseEdge(r Rules) float64 {
	edge := baseEdge
	for _, c := range adjustments(r) {
		edge += c.Value
	}
	return round2(edge)
}

// PlayerAdvantage is the house edge negated.
func PlayerAdvantage(r Rules) float64 {
	return -HouseEdge(r)
}

// CountAdvantage estimates the player's edge at a given true count, using
// the usual half a percent per point of true count.
func CountAdvantage(r Rules, trueCount float64) float64 {
	return round2(PlayerAdvantage(r) + 0.5*trueCount)
}

// Breakdown lists the base edge followed by every rule adjustment. Rules
// already folded into the base edge (S17, DAS) appear with a zero value.
func Breakdown(r Rules) []EdgeComponent {
	components := []EdgeComponent{{Key: "edge.base", Value: baseEdge}}

	for _, c := range adjustments(r) {
		if c.Value == 0 && c.Key != "edge.s17" && c.Key != "edge.das" {
			continue
		}
		components = append(components, c)
	}
	return components
}

func adjustments(r Rules) []EdgeComponent {
	var out []EdgeComponent

	out = append(out, EdgeComponent{
		Key:    "edge.decks",
		Params: map[string]any{"decks": r.DeckCount},
		Value:  round2(float64(r.DeckCount-6) * 0.05),
	})

	if r.DealerHitsSoft17 {
		out = append(out, EdgeComponent{Key: "edge.h17", Value: 0.22})
	} else {
		out = append(out, EdgeComponent{Key: "edge.s17", Value: 0})
	}

	out = append(out, EdgeComponent{
		Key:    "edge.blackjackPayout",
		Params: map[string]any{"payout": r.PayoutLabel()},
		Value:  blackjackPayoutAdjustment(r.BlackjackPayout),
	})

	if r.DoubleAfterSplit {
		out = append(out, EdgeComponent{Key: "edge.das", Value: 0})
	} else {
		out = append(out, EdgeComponent{Key: "edge.noDas", Value: 0.14})
	}
	if r.LateSurrender {
		out = append(out, EdgeComponent{Key: "edge.lateSurrender", Value: -0.08})
	}
	if r.ResplitAces {
		out = append(out, EdgeComponent{Key: "edge.resplitAces", Value: -0.08})
	}
	if r.HitSplitAces {
		out = append(out, EdgeComponent{Key: "edge.hitSplitAces", Value: -0.14})
	}

	out = append(out, EdgeComponent{
		Key:    "edge.doubleOn",
		Params: map[string]any{"doubleOn": string(r.DoubleOn)},
		Value:  doubleRestrictionAdjustment(r.DoubleOn),
	})

	out = append(out, EdgeComponent{
		Key:    "edge.maxHands",
		Params: map[string]any{"hands": r.MaxHands()},
		Value:  maxHandsAdjustment(r.MaxHands()),
	})

	return out
}

func blackjackPayoutAdjustment(payout float64) float64 {
	switch {
	case payout == 1.5:
		return 0
	case payout == 1.2:
		return 1.39
	case payout == 2.0:
		return -2.27
	case payout < 1.5:
		return (1.5 - payout) / (1.5 - 1.2) * 1.39
	default:
		return -(payout - 1.5) / (2.0 - 1.5) * 2.27
	}
}

func doubleRestrictionAdjustment(d DoubleOn) float64 {
	switch d {
	case DoubleNineToEleven:
		return 0.09
	case DoubleTenToEleven:
		return 0.18
	default:
		return 0
	}
}

// maxHandsAdjustment is relative to four hands (three splits).
func maxHandsAdjustment(hands int) float64 {
	switch hands {
	case 2:
		return 0.05
	case 3:
		return 0.02
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatEdge renders an edge percentage with its sign, e.g. "+0.43%".
func FormatEdge(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
