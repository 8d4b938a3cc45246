// Package config loads session settings from an HCL file.
//
//	rules {
//	  preset              = "vegas_strip"
//	  dealer_hits_soft_17 = true
//	}
//
//	session {
//	  starting_balance = 10000
//	  counting_system  = "omega-ii"
//	}
//
//	ai {
//	  speed_ms = 250
//	}
//
//	log {
//	  level = "debug"
//	}
//
// Every block and attribute is optional. Overriding any rule on top of a
// preset puts the table in custom mode unless the result equals a preset.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/autoplay"
	"github.com/lox/blackjack/internal/counting"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/rules"
)

// Config is the complete session configuration.
type Config struct {
	Rules   *RulesConfig   `hcl:"rules,block"`
	Session *SessionConfig `hcl:"session,block"`
	AI      *AIConfig      `hcl:"ai,block"`
	Log     *LogConfig     `hcl:"log,block"`
}

// RulesConfig picks a preset and optionally overrides single rules.
type RulesConfig struct {
	Preset string `hcl:"preset,optional"`

	Decks            *int     `hcl:"decks,optional"`
	Penetration      *float64 `hcl:"penetration,optional"`
	DealerHitsSoft17 *bool    `hcl:"dealer_hits_soft_17,optional"`
	BlackjackPayout  *float64 `hcl:"blackjack_payout,optional"`
	DoubleAfterSplit *bool    `hcl:"double_after_split,optional"`
	LateSurrender    *bool    `hcl:"late_surrender,optional"`
	MaxSplits        *int     `hcl:"max_splits,optional"`
	ResplitAces      *bool    `hcl:"resplit_aces,optional"`
	HitSplitAces     *bool    `hcl:"hit_split_aces,optional"`
	Insurance        *bool    `hcl:"insurance,optional"`
	DoubleOn         *string  `hcl:"double_on,optional"`
}

// SessionConfig holds bankroll and table limits.
type SessionConfig struct {
	StartingBalance int    `hcl:"starting_balance,optional"`
	MinBet          int    `hcl:"min_bet,optional"`
	MaxBet          int    `hcl:"max_bet,optional"`
	CountingSystem  string `hcl:"counting_system,optional"`
	SnapshotPath    string `hcl:"snapshot_path,optional"`
	Seed            int64  `hcl:"seed,optional"`
}

// AIConfig tunes the autoplay loop.
type AIConfig struct {
	SpeedMS       int   `hcl:"speed_ms,optional"`
	MinBet        int   `hcl:"min_bet,optional"`
	MaxBet        int   `hcl:"max_bet,optional"`
	MinBalance    int   `hcl:"min_balance,optional"`
	TimeoutMS     int   `hcl:"timeout_ms,optional"`
	MaxIterations int   `hcl:"max_iterations,optional"`
	Counted       *bool `hcl:"counted,optional"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `hcl:"level,optional"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads an HCL configuration file. A missing file yields Default.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Rules == nil {
		c.Rules = &RulesConfig{}
	}
	if c.Rules.Preset == "" {
		c.Rules.Preset = rules.PresetVegasStrip
	}

	if c.Session == nil {
		c.Session = &SessionConfig{}
	}
	if c.Session.StartingBalance == 0 {
		c.Session.StartingBalance = rules.DefaultStartingBalance
	}
	if c.Session.MinBet == 0 {
		c.Session.MinBet = rules.MinBet
	}
	if c.Session.MaxBet == 0 {
		c.Session.MaxBet = rules.MaxBet
	}
	if c.Session.CountingSystem == "" {
		c.Session.CountingSystem = string(counting.Default().ID)
	}

	def := autoplay.DefaultConfig()
	if c.AI == nil {
		c.AI = &AIConfig{}
	}
	if c.AI.SpeedMS == 0 {
		c.AI.SpeedMS = int(autoplay.DefaultSpeed / time.Millisecond)
	}
	if c.AI.MinBet == 0 {
		c.AI.MinBet = def.MinBet
	}
	if c.AI.MaxBet == 0 {
		c.AI.MaxBet = def.MaxBet
	}
	if c.AI.MinBalance == 0 {
		c.AI.MinBalance = def.MinBalance
	}
	if c.AI.TimeoutMS == 0 {
		c.AI.TimeoutMS = int(def.PhaseTimeout / time.Millisecond)
	}
	if c.AI.MaxIterations == 0 {
		c.AI.MaxIterations = def.MaxIterations
	}
	if c.AI.Counted == nil {
		counted := def.Counted
		c.AI.Counted = &counted
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if _, ok := rules.PresetByID(c.Rules.Preset); !ok {
		return fmt.Errorf("invalid rules preset: %s", c.Rules.Preset)
	}
	if _, _, err := c.GameRules(); err != nil {
		return err
	}

	if c.Session.StartingBalance <= 0 {
		return errors.New("session: starting balance must be positive")
	}
	if c.Session.MinBet <= 0 || c.Session.MaxBet < c.Session.MinBet {
		return fmt.Errorf("session: invalid bet limits %d-%d", c.Session.MinBet, c.Session.MaxBet)
	}
	if _, err := counting.Lookup(counting.SystemID(c.Session.CountingSystem)); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	speed := time.Duration(c.AI.SpeedMS) * time.Millisecond
	if speed < autoplay.MinSpeed || speed > autoplay.MaxSpeed {
		return fmt.Errorf("ai: speed must be between %s and %s", autoplay.MinSpeed, autoplay.MaxSpeed)
	}
	if c.AI.MinBet <= 0 || c.AI.MaxBet < c.AI.MinBet {
		return fmt.Errorf("ai: invalid bet limits %d-%d", c.AI.MinBet, c.AI.MaxBet)
	}
	if c.AI.MinBalance < c.AI.MinBet {
		return fmt.Errorf("ai: min_balance %d is below min_bet %d", c.AI.MinBalance, c.AI.MinBet)
	}
	if c.AI.TimeoutMS <= 0 || c.AI.MaxIterations <= 0 {
		return errors.New("ai: timeout and max iterations must be positive")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

// GameRules returns the preset with any overrides applied and the preset
// id the result corresponds to.
func (c *Config) GameRules() (rules.Rules, string, error) {
	p, ok := rules.PresetByID(c.Rules.Preset)
	if !ok {
		return rules.Rules{}, "", fmt.Errorf("invalid rules preset: %s", c.Rules.Preset)
	}

	r := p.Rules
	rc := c.Rules
	overridden := false
	set := func(apply func()) {
		apply()
		overridden = true
	}
	if rc.Decks != nil {
		set(func() { r.DeckCount = *rc.Decks })
	}
	if rc.Penetration != nil {
		set(func() { r.Penetration = *rc.Penetration })
	}
	if rc.DealerHitsSoft17 != nil {
		set(func() { r.DealerHitsSoft17 = *rc.DealerHitsSoft17 })
	}
	if rc.BlackjackPayout != nil {
		set(func() { r.BlackjackPayout = *rc.BlackjackPayout })
	}
	if rc.DoubleAfterSplit != nil {
		set(func() { r.DoubleAfterSplit = *rc.DoubleAfterSplit })
	}
	if rc.LateSurrender != nil {
		set(func() { r.LateSurrender = *rc.LateSurrender })
	}
	if rc.MaxSplits != nil {
		set(func() { r.MaxSplits = *rc.MaxSplits })
	}
	if rc.ResplitAces != nil {
		set(func() { r.ResplitAces = *rc.ResplitAces })
	}
	if rc.HitSplitAces != nil {
		set(func() { r.HitSplitAces = *rc.HitSplitAces })
	}
	if rc.Insurance != nil {
		set(func() { r.InsuranceAllowed = *rc.Insurance })
	}
	if rc.DoubleOn != nil {
		set(func() { r.DoubleOn = rules.DoubleOn(*rc.DoubleOn) })
	}

	if err := r.Validate(); err != nil {
		return rules.Rules{}, "", fmt.Errorf("rules: %w", err)
	}

	id := p.ID
	if overridden {
		id = rules.MatchPreset(r)
	}
	return r, id, nil
}

// InitialState builds the state a new session starts from.
func (c *Config) InitialState(at time.Time) (game.State, error) {
	r, presetID, err := c.GameRules()
	if err != nil {
		return game.State{}, err
	}

	s := game.InitialState(at)
	s.Rules = r
	s.PresetID = presetID
	s.Balance = c.Session.StartingBalance
	s.Statistics = game.NewStatistics(c.Session.StartingBalance, at)
	s.CountingSystem = counting.SystemID(c.Session.CountingSystem)
	return s, nil
}

// Autoplay returns the control loop parameters and the tick interval.
func (c *Config) Autoplay() (autoplay.Config, time.Duration) {
	return autoplay.Config{
		MinBet:        c.AI.MinBet,
		MaxBet:        c.AI.MaxBet,
		MinBalance:    c.AI.MinBalance,
		PhaseTimeout:  time.Duration(c.AI.TimeoutMS) * time.Millisecond,
		MaxIterations: c.AI.MaxIterations,
		Counted:       *c.AI.Counted,
	}, time.Duration(c.AI.SpeedMS) * time.Millisecond
}
