// Package storage persists the parts of a session that outlive a round:
// rules, balance, statistics, the counting system and the balance history.
package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/rules"
)

// Version is written into every snapshot.
const Version = "1.0.0"

var (
	// ErrNoSnapshot is returned when nothing has been saved yet.
	ErrNoSnapshot = errors.New("no saved session")
	// ErrInvalidSnapshot is returned when a saved file cannot be used.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Snapshot is the persisted form of a session. Required fields are
// pointers so a partial file can be told apart from zero values. Fields
// added after 1.0.0 are optional.
type Snapshot struct {
	Version   string    `json:"version"`
	SessionID uuid.UUID `json:"sessionId,omitzero"`
	LastSaved time.Time `json:"lastSaved"`

	Rules      *rules.Rules      `json:"rules"`
	Balance    *int              `json:"balance"`
	Statistics *game.Statistics  `json:"statistics"`
	System     counting.SystemID `json:"countingSystem"`

	BalanceHistory   []game.BalanceSnapshot `json:"balanceHistory,omitempty"`
	SelectedPresetID string                 `json:"selectedPresetId,omitempty"`
}

// FromState captures the persistent part of a game state.
func FromState(s game.State, session uuid.UUID, at time.Time) Snapshot {
	r := s.Rules
	balance := s.Balance
	stats := s.Statistics
	return Snapshot{
		Version:          Version,
		SessionID:        session,
		LastSaved:        at,
		Rules:            &r,
		Balance:          &balance,
		Statistics:       &stats,
		System:           s.CountingSystem,
		BalanceHistory:   append([]game.BalanceSnapshot(nil), s.BalanceHistory...),
		SelectedPresetID: s.PresetID,
	}
}

// Validate reports whether the required fields are present.
func (s Snapshot) Validate() error {
	var errs []error
	if s.Rules == nil {
		errs = append(errs, errors.New("missing rules"))
	}
	if s.Balance == nil {
		errs = append(errs, errors.New("missing balance"))
	}
	if s.Statistics == nil {
		errs = append(errs, errors.New("missing statistics"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidSnapshot}, errs...)...)
	}
	return nil
}

// Apply restores the snapshot onto a fresh state. Anything unusable in the
// snapshot keeps the value from base.
func (s Snapshot) Apply(base game.State) game.State {
	if s.Validate() != nil {
		return base
	}
	out := base

	if err := s.Rules.Validate(); err == nil {
		out.Rules = *s.Rules
		out.PresetID = s.SelectedPresetID
		if _, ok := rules.PresetByID(out.PresetID); !ok && out.PresetID != rules.PresetCustom {
			out.PresetID = rules.MatchPreset(out.Rules)
		}
	}

	out.Balance = *s.Balance
	out.Statistics = *s.Statistics
	if out.Statistics.SessionStart.IsZero() {
		out.Statistics.SessionStart = base.Statistics.SessionStart
	}
	out.Statistics.CurrentBalance = out.Balance

	if _, err := counting.Lookup(s.System); err == nil {
		out.CountingSystem = s.System
	}

	history := s.BalanceHistory
	if len(history) > game.BalanceHistorySize {
		history = history[len(history)-game.BalanceHistorySize:]
	}
	out.BalanceHistory = append([]game.BalanceSnapshot(nil), history...)

	if out.Balance <= 0 {
		out.Phase = game.PhaseGameOver
	}
	return out
}
