package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/game"
)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp saves.
func WithClock(clock quartz.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger sets the store logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id uuid.UUID) Option {
	return func(s *Store) { s.session = id }
}

// Store saves snapshots to a single JSON file.
type Store struct {
	path    string
	session uuid.UUID
	clock   quartz.Clock
	logger  *log.Logger
}

// NewStore returns a store writing to path. A new session id is generated
// unless one is given.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	if s.session == uuid.Nil {
		s.session = uuid.New()
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.logger = s.logger.WithPrefix("storage")
	return s
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// SessionID identifies the session stamped into saves.
func (s *Store) SessionID() uuid.UUID {
	return s.session
}

// Save writes the persistent part of the state.
func (s *Store) Save(gs game.State) error {
	snap := FromState(gs, s.session, s.clock.Now())
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return err
	}
	s.logger.Debug("Saved session", "path", s.path, "balance", gs.Balance, "hands", gs.Statistics.HandsPlayed)
	return nil
}

// Load reads the saved snapshot. It returns ErrNoSnapshot when the file
// does not exist and an error wrapping ErrInvalidSnapshot when it cannot be
// used.
func (s *Store) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Restore loads the snapshot onto base. A missing or unusable snapshot is
// logged and base is returned unchanged.
func (s *Store) Restore(base game.State) game.State {
	snap, err := s.Load()
	switch {
	case errors.Is(err, ErrNoSnapshot):
		return base
	case err != nil:
		s.logger.Warn("Ignoring saved session", "path", s.path, "error", err)
		return base
	}
	if snap.Version != Version {
		s.logger.Info("Restoring session from another version", "version", snap.Version)
	}
	s.logger.Info("Restored session", "balance", *snap.Balance, "saved", snap.LastSaved.Format(time.RFC3339))
	return snap.Apply(base)
}

// LastSaved returns when the snapshot was written.
func (s *Store) LastSaved() (time.Time, bool) {
	snap, err := s.Load()
	if err != nil {
		return time.Time{}, false
	}
	return snap.LastSaved, true
}

// Exists reports whether a snapshot file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Clear removes the snapshot. Clearing a missing snapshot is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	s.logger.Info("Cleared saved session", "path", s.path)
	return nil
}
