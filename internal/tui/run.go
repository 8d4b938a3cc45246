package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// NoColor renders everything without colour or text attributes.
func NoColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Run shows the play screen until the player quits or ctx is cancelled.
// Autoplay updates reach the screen through bridge, which may be nil when
// there is no AI runner.
func Run(ctx context.Context, m *Model, bridge *Bridge, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(m, opts...)
	if bridge != nil {
		bridge.Attach(p)
		defer bridge.Attach(nil)
	}

	_, err := p.Run()
	m.Shutdown()
	if ctx.Err() != nil {
		// Interrupted by a signal; the session is saved.
		return nil
	}
	return err
}
