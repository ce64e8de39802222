package app

import (
	"github.com/Akuli/porcupine-sub000/internal/event"
	"github.com/Akuli/porcupine-sub000/internal/logger"
)

// subscribeHandlers wires the app's own reactions to bus events. The
// highlighter subscribes itself separately.
func (a *App) subscribeHandlers() {
	a.eventManager.Subscribe(event.TypeCursorMoved, a.handleCursorMoved)
	a.eventManager.Subscribe(event.TypeContentChanged, a.handleContentChanged)
	a.eventManager.Subscribe(event.TypeBufferSaved, a.handleBufferSaved)
	a.eventManager.Subscribe(event.TypeBufferLoaded, a.handleBufferLoaded)
}

func (a *App) handleCursorMoved(e event.Event) bool {
	if data, ok := e.Data.(event.CursorMovedData); ok {
		a.statusBar.SetCursorInfo(data.NewPosition)
	}
	a.requestRedraw()
	return false
}

func (a *App) handleContentChanged(e event.Event) bool {
	data, ok := e.Data.(event.ContentChangedData)
	if !ok {
		logger.Warnf("app: ContentChanged event with unexpected payload %T", e.Data)
		return false
	}

	// Feed the diff to the language server sync state; a server loop can
	// drain it with Flush.
	a.syncState.Push(data.Changes)

	a.statusBar.SetFileInfo(a.buf.FilePath(), a.buf.IsModified())
	a.requestRedraw()
	return false
}

func (a *App) handleBufferSaved(e event.Event) bool {
	a.statusBar.SetFileInfo(a.buf.FilePath(), a.buf.IsModified())
	a.requestRedraw()
	return false
}

func (a *App) handleBufferLoaded(e event.Event) bool {
	a.syncState.PushFull(string(a.buf.Bytes()))
	a.statusBar.SetFileInfo(a.buf.FilePath(), a.buf.IsModified())
	a.requestRedraw()
	return false
}
