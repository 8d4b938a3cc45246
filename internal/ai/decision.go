// Package ai decides bets, insurance and plays for a counting player.
//
// Decisions carry a Reasoning made of a message key and parameters. The
// package never renders prose; a front end looks the key up in its own
// message catalogue.
package ai

import (
	"fmt"

	"github.com/lox/blackjack/internal/strategy"
)

// Action is a concrete move the player can execute.
type Action string

const (
	ActionHit              Action = "hit"
	ActionStand            Action = "stand"
	ActionDoubleDown       Action = "doubleDown"
	ActionSplit            Action = "split"
	ActionSurrender        Action = "surrender"
	ActionBet              Action = "bet"
	ActionTakeInsurance    Action = "take_insurance"
	ActionDeclineInsurance Action = "decline_insurance"
)

// Reasoning explains a decision as a message key with parameters. A
// parameter may itself be a Reasoning.
type Reasoning struct {
	Key    string
	Params map[string]any
}

// Reasoning keys.
const (
	KeyBetTemplate      = "ai.reasoning.bet.template"
	KeyBetFavorable     = "ai.reasoning.bet.favorable"
	KeyBetNeutral       = "ai.reasoning.bet.neutral"
	KeyBetUnfavorable   = "ai.reasoning.bet.unfavorable"
	KeyInsuranceTake    = "ai.reasoning.insurance.takeInsurance"
	KeyInsuranceDecline = "ai.reasoning.insurance.declineInsurance"
	KeyInsuranceNoFunds = "ai.reasoning.insurance.insufficientBalance"
	KeyActionTemplate   = "ai.reasoning.action.template"
	KeyActionDeviation  = "ai.reasoning.action.deviationTemplate"
	KeyHandSoft         = "ai.reasoning.action.soft"
	KeyHandHard         = "ai.reasoning.action.hard"
)

// BetDecision is the wager for the next round.
type BetDecision struct {
	Amount    int
	Units     int
	Reasoning Reasoning
}

// InsuranceDecision is the answer to an insurance offer. Amount is set only
// when insurance is taken.
type InsuranceDecision struct {
	Action    Action
	Amount    int
	Reasoning Reasoning
}

// ActionDecision is the play for the active hand.
type ActionDecision struct {
	Action Action
	// Code is the strategy code the action was mapped from.
	Code strategy.Code
	// Basic is the basic-strategy code before any deviation.
	Basic     strategy.Code
	Deviated  bool
	Reasoning Reasoning
}

func formatCount(c float64) string {
	return fmt.Sprintf("%.1f", c)
}
