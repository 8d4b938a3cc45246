package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjack/internal/autoplay"
	"github.com/lox/blackjack/internal/game"
)

// stateMsg carries the states after an autoplay tick.
type stateMsg struct {
	ai   autoplay.State
	game game.State
}

// dealerStepMsg paces the dealer during manual play.
type dealerStepMsg struct{}

// Bridge forwards autoplay updates into a running program. Updates arrive
// on the runner's timer goroutine and are dropped until a program is
// attached.
type Bridge struct {
	program atomic.Pointer[tea.Program]
}

// NewBridge creates an unattached bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes future updates to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.program.Store(p)
}

// Observe is an autoplay.WithObserver callback.
func (b *Bridge) Observe(st autoplay.State, gs game.State) {
	if p := b.program.Load(); p != nil {
		p.Send(stateMsg{ai: st, game: gs})
	}
}
