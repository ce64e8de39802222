package app

import (
	"unicode/utf8"

	"github.com/Akuli/porcupine-sub000/internal/logger"
	"github.com/Akuli/porcupine-sub000/internal/types"
	"github.com/gdamore/tcell/v2"
)

// handleKeyEvent routes a key press. Every text mutation goes through
// the view so history and change tracking stay correct. Returns true
// when a redraw is needed.
func (a *App) handleKeyEvent(ev *tcell.EventKey) bool {
	if a.prompt != nil {
		return a.handlePromptKey(ev)
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyEscape:
		close(a.quit)
		return false

	case tcell.KeyCtrlS:
		a.saveFile()
		return true

	case tcell.KeyCtrlZ:
		if _, err := a.view.Undo(); err != nil {
			logger.Debugf("undo failed: %v", err)
		}
		return true

	case tcell.KeyCtrlY:
		if _, err := a.view.Redo(); err != nil {
			logger.Debugf("redo failed: %v", err)
		}
		return true

	case tcell.KeyCtrlC:
		a.copyLine()
		return true

	case tcell.KeyCtrlX:
		a.cutLine()
		return true

	case tcell.KeyCtrlV:
		a.paste()
		return true

	case tcell.KeyCtrlR:
		a.reloadFromDisk()
		return true

	case tcell.KeyCtrlF:
		a.startPrompt("Find: ", a.findCommand)
		return true

	case tcell.KeyCtrlH:
		a.startPrompt("Replace (old/new): ", a.replaceAllCommand)
		return true

	case tcell.KeyUp:
		a.moveCursorVertical(-1)
		return true
	case tcell.KeyDown:
		a.moveCursorVertical(1)
		return true
	case tcell.KeyLeft:
		a.moveCursorHorizontal(-1)
		return true
	case tcell.KeyRight:
		a.moveCursorHorizontal(1)
		return true
	case tcell.KeyHome:
		pos := a.buf.NormalizeEnd(a.view.Cursor())
		a.view.SetCursor(types.Position{Line: pos.Line, Col: 0})
		return true
	case tcell.KeyEnd:
		pos := a.buf.NormalizeEnd(a.view.Cursor())
		a.view.SetCursor(types.Position{Line: pos.Line, Col: a.lineRuneCount(pos.Line)})
		return true
	case tcell.KeyPgUp:
		a.moveCursorVertical(-a.pageSize())
		return true
	case tcell.KeyPgDn:
		a.moveCursorVertical(a.pageSize())
		return true

	case tcell.KeyEnter:
		a.insertText("\n")
		return true
	case tcell.KeyTab:
		a.insertText("\t")
		return true

	case tcell.KeyBackspace2:
		a.deleteBackward()
		return true
	case tcell.KeyDelete:
		a.deleteForward()
		return true

	case tcell.KeyRune:
		a.insertText(string(ev.Rune()))
		return true
	}

	return false
}

func (a *App) insertText(text string) {
	if _, err := a.view.Insert(a.view.Cursor(), text); err != nil {
		logger.Warnf("insert failed: %v", err)
	}
}

func (a *App) deleteBackward() {
	pos := a.buf.NormalizeEnd(a.view.Cursor())
	if pos.Line == 1 && pos.Col == 0 {
		return
	}
	if _, err := a.view.Delete(a.prevChar(pos), pos); err != nil {
		logger.Warnf("backspace failed: %v", err)
	}
}

func (a *App) deleteForward() {
	pos := a.buf.NormalizeEnd(a.view.Cursor())
	if pos == a.buf.LastPos() {
		return
	}
	if _, err := a.view.Delete(pos, a.nextChar(pos)); err != nil {
		logger.Warnf("delete failed: %v", err)
	}
}

func (a *App) moveCursorVertical(delta int) {
	pos := a.buf.NormalizeEnd(a.view.Cursor())
	a.view.SetCursor(types.Position{Line: pos.Line + delta, Col: pos.Col})
}

func (a *App) moveCursorHorizontal(delta int) {
	pos := a.buf.NormalizeEnd(a.view.Cursor())
	for ; delta > 0; delta-- {
		if pos == a.buf.LastPos() {
			break
		}
		pos = a.nextChar(pos)
	}
	for ; delta < 0; delta++ {
		if pos.Line == 1 && pos.Col == 0 {
			break
		}
		pos = a.prevChar(pos)
	}
	a.view.SetCursor(pos)
}

// nextChar steps one character forward, wrapping to the next line.
func (a *App) nextChar(pos types.Position) types.Position {
	if pos.Col < a.lineRuneCount(pos.Line) {
		return types.Position{Line: pos.Line, Col: pos.Col + 1}
	}
	return types.Position{Line: pos.Line + 1, Col: 0}
}

// prevChar steps one character backward, wrapping to the previous line.
func (a *App) prevChar(pos types.Position) types.Position {
	if pos.Col > 0 {
		return types.Position{Line: pos.Line, Col: pos.Col - 1}
	}
	return types.Position{Line: pos.Line - 1, Col: a.lineRuneCount(pos.Line - 1)}
}

func (a *App) lineRuneCount(lineNum int) int {
	line, err := a.buf.Line(lineNum)
	if err != nil {
		return 0
	}
	return utf8.RuneCount(line)
}

func (a *App) pageSize() int {
	_, height := a.tuiManager.Size()
	viewHeight := height - a.cfg.Editor.StatusBarHeight
	if viewHeight < 1 {
		return 1
	}
	return viewHeight
}
