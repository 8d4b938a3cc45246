package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*Store, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(t0.Add(time.Hour))
	path := filepath.Join(t.TempDir(), "session", "blackjack.json")
	return NewStore(path, WithClock(clock)), clock
}

func playedState() game.State {
	s := game.InitialState(t0)
	s.Rules = rules.SingleDeck()
	s.PresetID = rules.PresetSingleDeck
	s.Balance = 24350
	s.CountingSystem = counting.KO
	s.Statistics.HandsPlayed = 42
	s.Statistics.TotalWagered = 4200
	s.BalanceHistory = []game.BalanceSnapshot{
		{Balance: 24900, Timestamp: t0.Add(time.Minute), HandNumber: 1},
		{Balance: 24350, Timestamp: t0.Add(2 * time.Minute), HandNumber: 2},
	}
	return s
}

func TestSaveAndRestore(t *testing.T) {
	store, clock := newStore(t)
	require.NoError(t, store.Save(playedState()))
	assert.True(t, store.Exists())

	saved, ok := store.LastSaved()
	require.True(t, ok)
	assert.True(t, saved.Equal(clock.Now()))

	got := store.Restore(game.InitialState(t0.Add(24 * time.Hour)))
	assert.Equal(t, rules.SingleDeck(), got.Rules)
	assert.Equal(t, rules.PresetSingleDeck, got.PresetID)
	assert.Equal(t, 24350, got.Balance)
	assert.Equal(t, counting.KO, got.CountingSystem)
	assert.Equal(t, 42, got.Statistics.HandsPlayed)
	assert.Equal(t, 24350, got.Statistics.CurrentBalance)
	assert.True(t, got.Statistics.SessionStart.Equal(t0))
	assert.Len(t, got.BalanceHistory, 2)
	assert.Equal(t, game.PhaseBetting, got.Phase)
}

func TestSaveStampsVersionAndSession(t *testing.T) {
	id := uuid.MustParse("6f1c1b8e-2a43-4d6a-9d4e-0b8f2f0d1c55")
	clock := quartz.NewMock(t)
	store := NewStore(filepath.Join(t.TempDir(), "s.json"), WithClock(clock), WithSessionID(id))
	require.NoError(t, store.Save(playedState()))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, Version, raw["version"])
	assert.Equal(t, id.String(), raw["sessionId"])
	assert.Equal(t, "ko", raw["countingSystem"])
	assert.Equal(t, "single_deck", raw["selectedPresetId"])

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, id, snap.SessionID)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Save(playedState()))
	require.NoError(t, store.Save(game.InitialState(t0)))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "blackjack.json", entries[0].Name())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLoadMissing(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	base := game.InitialState(t0)
	assert.Equal(t, base, store.Restore(base))
	_, ok := store.LastSaved()
	assert.False(t, ok)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{balance"},
		{"missing balance", `{"version":"1.0.0","rules":{"deckCount":6},"statistics":{}}`},
		{"missing rules", `{"version":"1.0.0","balance":100,"statistics":{}}`},
		{"missing statistics", `{"version":"1.0.0","balance":100,"rules":{"deckCount":6}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.data), 0o644))

			_, err := store.Load()
			assert.ErrorIs(t, err, ErrInvalidSnapshot)

			base := game.InitialState(t0)
			assert.Equal(t, base, store.Restore(base), "unusable snapshots fall back to defaults")
		})
	}
}

func TestApplyOlderSnapshot(t *testing.T) {
	// Written before the balance history, preset and session id existed.
	data := `{
		"version": "1.0.0",
		"lastSaved": "2025-03-14T21:00:00Z",
		"rules": {"deckCount":6,"penetration":0.75,"blackjackPayout":1.5,"doubleAfterSplit":true,
			"lateSurrender":true,"maxSplits":3,"insuranceAllowed":true,"doubleOn":"any"},
		"balance": 26000,
		"statistics": {"handsPlayed": 10},
		"countingSystem": "hi-lo"
	}`
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	require.NoError(t, snap.Validate())

	base := game.InitialState(t0)
	got := snap.Apply(base)
	assert.Equal(t, 26000, got.Balance)
	assert.Equal(t, rules.VegasStrip(), got.Rules)
	assert.Equal(t, rules.PresetVegasStrip, got.PresetID, "preset recovered from the rules")
	assert.Equal(t, 10, got.Statistics.HandsPlayed)
	assert.True(t, got.Statistics.SessionStart.Equal(t0))
	assert.Empty(t, got.BalanceHistory)
}

func TestApplyKeepsDefaultsForBadFields(t *testing.T) {
	s := playedState()
	s.Rules.DeckCount = 11
	s.CountingSystem = "mystery"
	s.BalanceHistory = make([]game.BalanceSnapshot, game.BalanceHistorySize+5)
	snap := FromState(s, uuid.Nil, t0)

	base := game.InitialState(t0)
	got := snap.Apply(base)
	assert.Equal(t, base.Rules, got.Rules)
	assert.Equal(t, base.PresetID, got.PresetID)
	assert.Equal(t, base.CountingSystem, got.CountingSystem)
	assert.Len(t, got.BalanceHistory, game.BalanceHistorySize)
	assert.Equal(t, 24350, got.Balance)
}

func TestApplyBrokeSessionIsGameOver(t *testing.T) {
	s := playedState()
	s.Balance = 0
	got := FromState(s, uuid.New(), t0).Apply(game.InitialState(t0))
	assert.Equal(t, game.PhaseGameOver, got.Phase)
}

func TestClear(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Clear(), "clearing nothing is fine")

	require.NoError(t, store.Save(playedState()))
	require.NoError(t, store.Clear())
	assert.False(t, store.Exists())
}
