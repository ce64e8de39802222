package app

import (
	"os"
	"strings"

	"github.com/Akuli/porcupine-sub000/internal/event"
	"github.com/Akuli/porcupine-sub000/internal/logger"
	"github.com/Akuli/porcupine-sub000/internal/search"
	"github.com/Akuli/porcupine-sub000/internal/types"
)

// saveFile writes the buffer back to its file.
func (a *App) saveFile() {
	if err := a.buf.Save(a.filePath); err != nil {
		logger.Errorf("saving '%s' failed: %v", a.filePath, err)
		a.statusBar.SetTemporaryMessage("Save failed: %v", err)
		return
	}
	a.eventManager.Dispatch(event.TypeBufferSaved, event.BufferSavedData{FilePath: a.filePath})
	a.statusBar.SetTemporaryMessage("Saved %s", a.filePath)
}

// reloadFromDisk replaces the buffer content with the file's current
// content through a tracked edit, so the reload is undoable and all
// consumers see a normal change notification.
func (a *App) reloadFromDisk() {
	content, err := readFile(a.filePath)
	if err != nil {
		logger.Errorf("reloading '%s' failed: %v", a.filePath, err)
		a.statusBar.SetTemporaryMessage("Reload failed: %v", err)
		return
	}

	if string(a.buf.Bytes()) == content {
		a.statusBar.SetTemporaryMessage("Already up to date")
		return
	}

	if _, err := a.view.Replace(types.Position{Line: 1, Col: 0}, a.buf.End(), content); err != nil {
		logger.Errorf("reload replace failed: %v", err)
		return
	}
	a.buf.SetModified(false)
	a.statusBar.SetTemporaryMessage("Reloaded %s", a.filePath)
}

// readFile loads a file the same way Load normalizes it: without the
// final line terminator, so it compares cleanly against Bytes().
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// copyLine yanks the current line, including its terminator, into the
// register.
func (a *App) copyLine() {
	pos := a.buf.NormalizeEnd(a.view.Cursor())
	line, err := a.buf.Line(pos.Line)
	if err != nil {
		return
	}
	if err := a.register.Write(string(line) + "\n"); err != nil {
		logger.Debugf("clipboard write failed: %v", err)
	}
	a.statusBar.SetTemporaryMessage("Copied line %d", pos.Line)
}

// cutLine yanks the current line and removes it from the buffer.
func (a *App) cutLine() {
	pos := a.buf.NormalizeEnd(a.view.Cursor())
	line, err := a.buf.Line(pos.Line)
	if err != nil {
		return
	}
	if err := a.register.Write(string(line) + "\n"); err != nil {
		logger.Debugf("clipboard write failed: %v", err)
	}

	start := types.Position{Line: pos.Line, Col: 0}
	end := types.Position{Line: pos.Line + 1, Col: 0}
	if _, err := a.view.Delete(start, end); err != nil {
		logger.Warnf("cut line failed: %v", err)
	}
}

// paste inserts the register's content at the cursor.
func (a *App) paste() {
	text, err := a.register.Read()
	if err != nil || text == "" {
		return
	}
	a.insertText(text)
}

// findCommand jumps the cursor to the next occurrence of the needle.
func (a *App) findCommand(needle string) {
	if needle == "" {
		return
	}
	from := a.nextChar(a.buf.NormalizeEnd(a.view.Cursor()))
	m, ok := search.FindNext(a.view, needle, from)
	if !ok {
		a.statusBar.SetTemporaryMessage("Not found: %s", needle)
		return
	}
	a.view.SetCursor(m.Start)
}

// replaceAllCommand parses "old/new" input and replaces every
// occurrence in one undo step.
func (a *App) replaceAllCommand(input string) {
	old, new, ok := strings.Cut(input, "/")
	if !ok || old == "" {
		a.statusBar.SetTemporaryMessage("Usage: old/new")
		return
	}
	n, err := search.ReplaceAll(a.view, old, new)
	if err != nil {
		logger.Errorf("replace all failed: %v", err)
		a.statusBar.SetTemporaryMessage("Replace failed: %v", err)
		return
	}
	a.statusBar.SetTemporaryMessage("Replaced %d occurrence(s)", n)
}
