package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/hand"
)

// catalogue holds the English text for every message key the engine emits.
// Placeholders are written as {name}.
var catalogue = map[string]string{
	// game status
	"placeBet":              "Place your bet",
	"placeBetFirst":         "Place a bet before dealing",
	"betPlaced":             "Bet placed",
	"insufficientBalance":   "Insufficient balance",
	"blackjack":             "Blackjack!",
	"yourTurn":              "Your turn",
	"insuranceTaken":        "Insurance taken",
	"insuranceDeclined":     "Insurance declined",
	"bust":                  "Bust!",
	"dealerTurn":            "Dealer's turn",
	"insufficientToDouble":  "Not enough chips to double down",
	"insufficientToSplit":   "Not enough chips to split",
	"splitPlayFirstHand":    "Hand split, play the first hand",
	"surrendered":           "Surrendered, half the bet returned",
	"dealerRevealsHoleCard": "Dealer reveals the hole card",
	"dealerHits":            "Dealer hits",
	"dealerBusts":           "Dealer busts!",
	"dealerStands":          "Dealer stands",
	"roundComplete":         "Round complete",
	"placeNextBet":          "Place your next bet",
	"shoeShuffled":          "Shoe shuffled, count reset",

	// autoplay status
	"ai.status.insufficientBalance": "AI stopped: balance below the minimum",
	"ai.status.unrecoverable":       "AI stopped: the game could not recover",
	"ai.status.gameOver":            "AI stopped: game over",
	"ai.status.tableError":          "AI stopped: table error",
	"ai.status.aiStopped":           "AI stopped",
	"ai.status.aiPausedRuleChange":  "AI paused, the rules changed",
	"ai.status.dealerPlaying":       "Dealer is playing",
	"ai.status.waitingNextRound":    "Next round in {seconds}s",
	"ai.status.startingNextRound":   "Starting the next round",

	// AI reasoning
	"ai.reasoning.bet.template":                  "True count {trueCount} is {countDesc}, betting {units} units ({betAmount})",
	"ai.reasoning.bet.favorable":                 "favorable",
	"ai.reasoning.bet.neutral":                   "neutral",
	"ai.reasoning.bet.unfavorable":               "unfavorable",
	"ai.reasoning.insurance.takeInsurance":       "True count {trueCount} reaches the insurance index, take insurance",
	"ai.reasoning.insurance.declineInsurance":    "True count {trueCount} is below the insurance index, decline",
	"ai.reasoning.insurance.insufficientBalance": "Insurance is favorable at {trueCount} but the balance cannot cover it",
	"ai.reasoning.action.template":               "{handType} {handValue} against {dealerValue}: {action}",
	"ai.reasoning.action.deviationTemplate":      "{baseReasoning} (deviation at {trueCount}: {deviationDescription})",
	"ai.reasoning.action.soft":                   "Soft",
	"ai.reasoning.action.hard":                   "Hard",

	"deviation.atOrAbove": "{hand} vs {dealer}, {action} at {threshold} or higher",
	"deviation.atOrBelow": "{hand} vs {dealer}, {action} at {threshold} or lower",
	"deviation.insurance": "insurance at {threshold} or higher",

	"strategy.hit":           "hit",
	"strategy.stand":         "stand",
	"strategy.doubleDown":    "double down",
	"strategy.split":         "split",
	"strategy.surrender":     "surrender",
	"strategy.doubleOrHit":   "double, otherwise hit",
	"strategy.doubleOrStand": "double, otherwise stand",
	"strategy.unknown":       "unknown",

	// ai.Action values
	"hit":               "hit",
	"stand":             "stand",
	"doubleDown":        "double down",
	"split":             "split",
	"surrender":         "surrender",
	"take_insurance":    "take insurance",
	"decline_insurance": "decline insurance",

	"hand.blackjack": "Blackjack",
	"hand.bust":      "Bust ({value})",
	"hand.soft":      "Soft {value}",
	"hand.value":     "{value}",

	"hint.chart": "(chart {code})",

	// house edge breakdown
	"edge.base":            "Base (6 decks, S17, DAS, 3:2)",
	"edge.decks":           "{decks} decks",
	"edge.h17":             "Dealer hits soft 17",
	"edge.s17":             "Dealer stands on soft 17",
	"edge.blackjackPayout": "Blackjack pays {payout}",
	"edge.das":             "Double after split",
	"edge.noDas":           "No double after split",
	"edge.lateSurrender":   "Late surrender",
	"edge.resplitAces":     "Resplit aces",
	"edge.hitSplitAces":    "Hit split aces",
	"edge.doubleOn":        "Double on {doubleOn}",
	"edge.maxHands":        "Up to {hands} hands",
}

// Text renders a message key with its parameters. Unknown keys render as
// themselves. String parameters that are keys are rendered too, so a
// parameter may name another message.
func Text(key string, params map[string]any) string {
	tmpl, ok := catalogue[key]
	if !ok {
		return key
	}
	for name, value := range params {
		tmpl = strings.ReplaceAll(tmpl, "{"+name+"}", param(value))
	}
	return tmpl
}

// Reasoning renders an AI explanation.
func Reasoning(r ai.Reasoning) string {
	return Text(r.Key, r.Params)
}

// Describe renders a hand description.
func Describe(d hand.Description) string {
	return Text(d.Key, d.Params)
}

func param(v any) string {
	switch v := v.(type) {
	case ai.Reasoning:
		return Reasoning(v)
	case hand.Description:
		return Describe(v)
	case string:
		if text, ok := catalogue[v]; ok {
			return text
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
