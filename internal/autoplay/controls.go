package autoplay

import (
	"time"

	"github.com/lox/blackjack/internal/game"
)

// Start enables the AI and synchronizes it with the game. It refuses to
// start when the balance cannot cover the minimum bet.
func (l *Loop) Start(st State, gs game.State, now time.Time) (State, []Effect) {
	if gs.Balance < l.minBalance() {
		st.Err = ReasonInsufficientBalance
		return st, []Effect{Notify{Message: game.Message(ReasonInsufficientBalance)}}
	}

	next := l.phaseFor(gs)
	if next == PhaseIdle {
		st.Err = ReasonGameOver
		return st, nil
	}

	st.Enabled = true
	st.Playing = true
	st.Decision = nil
	return transition(st, next, gs, now), nil
}

// Pause stops acting without leaving the current phase.
func Pause(st State) State {
	st.Playing = false
	return st
}

// Resume continues a paused AI. The phase clock restarts so the pause does
// not count against the phase timeout.
func Resume(st State, now time.Time) State {
	if !st.Enabled {
		return st
	}
	st.Playing = true
	st.PhaseEnteredAt = now
	st.ProgressAt = now
	st.Iterations = 0
	return st
}

// Stop disables the AI. Statistics survive a stop.
func Stop(st State) State {
	st.Enabled = false
	st.Playing = false
	st.Phase = PhaseIdle
	st.Decision = nil
	st.Iterations = 0
	return st
}

// SetSpeed sets the tick interval, clamped to MinSpeed..MaxSpeed.
func SetSpeed(st State, d time.Duration) State {
	st.Speed = min(max(d, MinSpeed), MaxSpeed)
	return st
}

// ResetStatistics clears the AI's own counters.
func ResetStatistics(st State) State {
	st.Statistics = Statistics{}
	return st
}

// RulesChanged pauses a playing AI and tells the player why.
func RulesChanged(st State) (State, []Effect) {
	if !st.Active() {
		return st, nil
	}
	return Pause(st), []Effect{Notify{Message: game.Message(KeyPausedRuleChange)}}
}
