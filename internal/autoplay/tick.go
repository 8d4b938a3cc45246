package autoplay

import (
	"fmt"
	"time"

	"github.com/lox/blackjack/internal/ai"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/payout"
)

// Loop binds the pure transition to a player and its configuration.
type Loop struct {
	player *ai.Player
	cfg    Config
}

// NewLoop returns a control loop for the player.
func NewLoop(player *ai.Player, cfg Config) *Loop {
	if player == nil {
		panic("player is required")
	}
	return &Loop{player: player, cfg: cfg}
}

// Config returns the loop parameters.
func (l *Loop) Config() Config {
	return l.cfg
}

// Tick advances the AI by one step. It never acts while the AI is disabled
// or paused. Each call performs at most one game-changing decision.
func (l *Loop) Tick(st State, gs game.State, now time.Time) (State, []Effect) {
	if !st.Active() {
		return st, nil
	}

	if gs.Phase != st.LastGamePhase {
		return l.resync(st, gs, now)
	}

	if p := progressOf(gs); p != st.progress {
		st.progress = p
		st.ProgressAt = now
	}

	if now.Sub(st.ProgressAt) > l.timeout(st) {
		return l.recoverStuck(st, gs, now)
	}

	if st.Iterations > l.cfg.MaxIterations {
		return l.recoverLoop(st, gs, now)
	}

	if (gs.Phase == game.PhaseBetting || gs.Phase == game.PhaseGameOver) && gs.Balance < l.minBalance() {
		return stopWith(st, ReasonInsufficientBalance)
	}

	var effects []Effect
	switch st.Phase {
	case PhaseWaitingBet:
		st = l.waitingBet(st, gs, now)
	case PhasePlacingBet:
		st, effects = l.placingBet(st, gs, now)
	case PhaseDealingCards:
		st, effects = l.dealingCards(st, gs, now)
	case PhaseWaitingDealComplete:
		st = transition(st, l.phaseFor(gs), gs, now)
	case PhaseInsuranceDecision:
		st, effects = l.insuranceDecision(st, gs, now)
	case PhaseDecidingAction:
		st, effects = l.decidingAction(st, gs)
	case PhaseWaitingDealer:
		st, effects = l.waitingDealer(st, gs, now)
	case PhaseWaitingResolution:
		st = l.waitingResolution(st, now)
	case PhaseStartingNextRound:
		st.Decision = &Decision{Action: ai.ActionBet, Reasoning: ai.Reasoning{Key: KeyStartingNextRound}}
		effects = []Effect{NewRound{}}
	case PhaseIdle:
	}

	st.Iterations++
	return st, effects
}

// timeout is how long the game may stand still before the AI is stuck.
// At slow speeds a single dealer step or the pause between rounds can take
// longer than PhaseTimeout.
func (l *Loop) timeout(st State) time.Duration {
	return max(l.cfg.PhaseTimeout, 4*st.Speed)
}

// minBalance is the balance the AI needs to start a round. Below MinBet
// no bet it could place would be accepted.
func (l *Loop) minBalance() int {
	return max(l.cfg.MinBalance, l.cfg.MinBet)
}

// phaseFor maps a game phase to the AI phase that handles it.
func (l *Loop) phaseFor(gs game.State) Phase {
	switch gs.Phase {
	case game.PhaseBetting:
		return PhaseWaitingBet
	case game.PhaseDealing:
		return PhaseWaitingDealComplete
	case game.PhasePlayerTurn:
		if game.InsuranceOffered(gs) {
			return PhaseInsuranceDecision
		}
		return PhaseDecidingAction
	case game.PhaseDealerTurn:
		if game.InsuranceOffered(gs) {
			return PhaseInsuranceDecision
		}
		return PhaseWaitingDealer
	case game.PhaseResolution:
		return PhaseWaitingResolution
	default:
		return PhaseIdle
	}
}

func (l *Loop) resync(st State, gs game.State, now time.Time) (State, []Effect) {
	next := l.phaseFor(gs)
	if next == PhaseIdle {
		return stopWith(st, ReasonGameOver)
	}
	// A round counts once the table has dealt it.
	if st.Phase == PhaseWaitingDealComplete && gs.Phase != game.PhaseBetting && gs.Phase != game.PhaseDealing {
		st.Statistics = st.Statistics.withBet(gs.CurrentBet)
	}
	return transition(st, next, gs, now), nil
}

func (l *Loop) recoverStuck(st State, gs game.State, now time.Time) (State, []Effect) {
	reason := fmt.Sprintf("stuck in %s for more than %s", st.Phase, l.timeout(st))

	var effects []Effect
	next := l.phaseFor(gs)
	switch next {
	case PhaseIdle:
		return stopWith(st, ReasonUnrecoverable)
	case PhaseWaitingResolution:
		effects = []Effect{NewRound{}}
		next = PhaseWaitingBet
	}

	st = transition(st, next, gs, now)
	st.Stuck = true
	st.Err = reason
	return st, effects
}

func (l *Loop) recoverLoop(st State, gs game.State, now time.Time) (State, []Effect) {
	reason := fmt.Sprintf("%d iterations in %s", st.Iterations, st.Phase)

	var effects []Effect
	var next Phase
	switch gs.Phase {
	case game.PhaseBetting:
		next = PhaseWaitingBet
	case game.PhasePlayerTurn:
		next = PhaseDecidingAction
		if game.AllHandsDone(gs) {
			effects = []Effect{DealerStep{}}
			next = PhaseWaitingDealer
		}
	case game.PhaseDealerTurn:
		effects = []Effect{DealerStep{}}
		next = PhaseWaitingDealer
	case game.PhaseResolution:
		effects = []Effect{NewRound{}}
		next = PhaseWaitingBet
	default:
		return stopWith(st, ReasonUnrecoverable)
	}

	st = transition(st, next, gs, now)
	st.Stuck = true
	st.Err = reason
	return st, effects
}

func (l *Loop) waitingBet(st State, gs game.State, now time.Time) State {
	if gs.Phase != game.PhaseBetting {
		return transition(st, l.phaseFor(gs), gs, now)
	}
	return transition(st, PhasePlacingBet, gs, now)
}

func (l *Loop) placingBet(st State, gs game.State, now time.Time) (State, []Effect) {
	bet := ai.CalculateBet(gs.Balance, gs.EffectiveCount(), l.cfg.MinBet, l.cfg.MaxBet)
	st.Decision = &Decision{Action: ai.ActionBet, Reasoning: bet.Reasoning}
	return transition(st, PhaseDealingCards, gs, now), []Effect{PlaceBet{Amount: bet.Amount}}
}

func (l *Loop) dealingCards(st State, gs game.State, now time.Time) (State, []Effect) {
	if !game.CanDeal(gs) {
		return transition(st, PhaseWaitingBet, gs, now), nil
	}
	return transition(st, PhaseWaitingDealComplete, gs, now), []Effect{Deal{}}
}

func (l *Loop) insuranceDecision(st State, gs game.State, now time.Time) (State, []Effect) {
	if !game.InsuranceOffered(gs) {
		return transition(st, l.phaseFor(gs), gs, now), nil
	}

	d := l.player.Insurance(gs.EffectiveCount(), payout.InsuranceCost(gs.CurrentBet), gs.Balance)
	st.Decision = &Decision{Action: d.Action, Reasoning: d.Reasoning}

	next := PhaseDecidingAction
	if gs.Phase == game.PhaseDealerTurn {
		next = PhaseWaitingDealer
	}
	return transition(st, next, gs, now), []Effect{Insurance{Take: d.Action == ai.ActionTakeInsurance}}
}

func (l *Loop) decidingAction(st State, gs game.State) (State, []Effect) {
	if gs.Phase != game.PhasePlayerTurn || !game.CanStand(gs) {
		return st, nil
	}
	sit, ok := ai.SituationFor(gs, l.cfg.Counted)
	if !ok {
		return st, nil
	}

	d := l.player.DecideAction(sit)
	st.Decision = &Decision{Action: d.Action, Reasoning: d.Reasoning}
	st.Statistics.DecisionsMade++
	return st, []Effect{Play{Action: d.Action}}
}

func (l *Loop) waitingDealer(st State, gs game.State, now time.Time) (State, []Effect) {
	switch gs.Phase {
	case game.PhaseResolution:
		return transition(st, PhaseWaitingResolution, gs, now), nil
	case game.PhasePlayerTurn:
		if game.AllHandsDone(gs) {
			return st, []Effect{DealerStep{}}
		}
		return transition(st, PhaseDecidingAction, gs, now), nil
	case game.PhaseDealerTurn:
		st.Decision = &Decision{Reasoning: ai.Reasoning{Key: KeyDealerPlaying}}
		return st, []Effect{DealerStep{}}
	}
	return st, nil
}

func (l *Loop) waitingResolution(st State, now time.Time) State {
	wait := max(2*st.Speed, time.Second)
	elapsed := now.Sub(st.PhaseEnteredAt)
	if elapsed < wait {
		remaining := wait - elapsed
		st.Decision = &Decision{Reasoning: ai.Reasoning{
			Key:    KeyWaitingNextRound,
			Params: map[string]any{"seconds": int((remaining + time.Second - 1) / time.Second)},
		}}
		return st
	}
	return transitionKeep(st, PhaseStartingNextRound, now)
}

// transition enters a new phase and re-synchronizes with the game phase.
func transition(st State, p Phase, gs game.State, now time.Time) State {
	st = transitionKeep(st, p, now)
	st.LastGamePhase = gs.Phase
	st.progress = progressOf(gs)
	return st
}

func transitionKeep(st State, p Phase, now time.Time) State {
	st.Phase = p
	st.PhaseEnteredAt = now
	st.ProgressAt = now
	st.Iterations = 0
	st.Stuck = false
	st.Err = ""
	return st
}

func stopWith(st State, reason string) (State, []Effect) {
	st.Enabled = false
	st.Playing = false
	st.Phase = PhaseIdle
	st.Err = reason
	return st, []Effect{Notify{Message: game.Message(KeyStopped)}}
}
