package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// TUI manages the terminal screen using tcell.
type TUI struct {
	screen tcell.Screen
}

// New creates and initializes a new TUI instance.
func New() (*TUI, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create tcell screen: %w", err)
	}
	return NewFromScreen(s)
}

// NewFromScreen wraps an already created screen, such as a simulation
// screen, and initializes it.
func NewFromScreen(s tcell.Screen) (*TUI, error) {
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize tcell screen: %w", err)
	}

	s.SetStyle(tcell.StyleDefault)

	return &TUI{screen: s}, nil
}

// Close finalizes the tcell screen.
func (t *TUI) Close() {
	if t.screen != nil {
		t.screen.Fini()
	}
}

// PollEvent retrieves the next event.
func (t *TUI) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// Clear clears the entire screen.
func (t *TUI) Clear() {
	t.screen.Clear()
}

// Show makes the changes visible.
func (t *TUI) Show() {
	t.screen.Show()
}

// Size returns the width and height of the terminal screen.
func (t *TUI) Size() (int, int) {
	return t.screen.Size()
}

// GetScreen provides direct access (use with caution).
func (t *TUI) GetScreen() tcell.Screen {
	return t.screen
}
