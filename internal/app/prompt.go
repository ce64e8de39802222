package app

import "github.com/gdamore/tcell/v2"

// promptState is a minimal single-line input collected through the
// status bar, used by the find and replace commands.
type promptState struct {
	label string
	input []rune
	done  func(string)
}

// startPrompt switches key handling into prompt mode until the user
// confirms with Enter or cancels with Escape.
func (a *App) startPrompt(label string, done func(string)) {
	a.prompt = &promptState{label: label, done: done}
	a.statusBar.SetTemporaryMessage("%s", label)
}

func (a *App) handlePromptKey(ev *tcell.EventKey) bool {
	p := a.prompt

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlQ:
		a.prompt = nil
		a.statusBar.ResetTemporaryMessage()
		return true

	case tcell.KeyEnter:
		a.prompt = nil
		a.statusBar.ResetTemporaryMessage()
		p.done(string(p.input))
		return true

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(p.input) > 0 {
			p.input = p.input[:len(p.input)-1]
		}

	case tcell.KeyRune:
		p.input = append(p.input, ev.Rune())
	}

	a.statusBar.SetTemporaryMessage("%s%s", p.label, string(p.input))
	return true
}
