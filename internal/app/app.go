// Package app wires the tracked buffer, the event bus and the terminal
// front end together and runs the main loop. All buffer mutations go
// through the view's tracker so that history, cursor transformation and
// change notifications stay consistent.
package app

import (
	"fmt"

	"github.com/Akuli/porcupine-sub000/internal/buffer"
	"github.com/Akuli/porcupine-sub000/internal/clipboard"
	"github.com/Akuli/porcupine-sub000/internal/config"
	"github.com/Akuli/porcupine-sub000/internal/event"
	"github.com/Akuli/porcupine-sub000/internal/highlight"
	"github.com/Akuli/porcupine-sub000/internal/logger"
	"github.com/Akuli/porcupine-sub000/internal/lsp"
	"github.com/Akuli/porcupine-sub000/internal/statusbar"
	"github.com/Akuli/porcupine-sub000/internal/track"
	"github.com/Akuli/porcupine-sub000/internal/tui"
	"github.com/gdamore/tcell/v2"
)

// App encapsulates the editor's components and main loop.
type App struct {
	tuiManager   *tui.TUI
	buf          *buffer.SliceBuffer
	view         *track.View
	eventManager *event.Manager
	statusBar    *statusbar.StatusBar
	highlighter  *highlight.Manager
	syncState    *lsp.SyncState
	register     *clipboard.Register
	cfg          *config.Config
	filePath     string

	// Viewport scroll state, 1-based first visible line.
	viewLine int
	viewCol  int

	// Active status bar prompt, nil when not prompting.
	prompt *promptState

	quit          chan struct{}
	termEvents    chan tcell.Event
	redrawRequest chan struct{}
}

// NewApp creates and initializes a new application instance.
func NewApp(filePath string, cfg *config.Config) (*App, error) {
	tuiManager, err := tui.New()
	if err != nil {
		return nil, fmt.Errorf("TUI initialization failed: %w", err)
	}
	return newApp(tuiManager, filePath, cfg)
}

func newApp(tuiManager *tui.TUI, filePath string, cfg *config.Config) (*App, error) {
	buf := buffer.NewSliceBuffer()
	if err := buf.Load(filePath); err != nil {
		tuiManager.Close()
		return nil, fmt.Errorf("loading '%s' failed: %w", filePath, err)
	}

	eventManager := event.NewManager()
	view := track.NewView(buf)
	if _, err := view.AttachTracker(eventManager, cfg.Editor.MaxHistory); err != nil {
		tuiManager.Close()
		return nil, fmt.Errorf("attaching tracker failed: %w", err)
	}

	highlighter, err := highlight.NewManager(buf)
	if err != nil {
		tuiManager.Close()
		return nil, fmt.Errorf("highlighter setup failed: %w", err)
	}
	highlighter.Subscribe(eventManager)

	appInstance := &App{
		tuiManager:    tuiManager,
		buf:           buf,
		view:          view,
		eventManager:  eventManager,
		statusBar:     statusbar.New(statusbar.DefaultConfig()),
		highlighter:   highlighter,
		syncState:     lsp.NewSyncState(),
		register:      clipboard.New(cfg.Editor.SystemClipboard),
		cfg:           cfg,
		filePath:      filePath,
		viewLine:      1,
		viewCol:       0,
		quit:          make(chan struct{}),
		termEvents:    make(chan tcell.Event, 8),
		redrawRequest: make(chan struct{}, 1),
	}

	appInstance.subscribeHandlers()

	eventManager.Dispatch(event.TypeBufferLoaded, event.BufferLoadedData{FilePath: filePath})

	return appInstance, nil
}

// Run starts the application's event and drawing loops. It blocks until
// the user quits. Key handling, buffer mutations and drawing all happen
// on this goroutine; eventLoop only forwards terminal events.
func (a *App) Run() error {
	defer a.tuiManager.Close()
	defer a.highlighter.Close()

	go a.eventLoop()

	a.eventManager.Dispatch(event.TypeAppReady, event.AppReadyData{})
	a.statusBar.SetTemporaryMessage("Ctrl+S Save | Ctrl+Z Undo | Ctrl+Q Quit")
	a.requestRedraw()

	for {
		select {
		case <-a.quit:
			a.eventManager.Dispatch(event.TypeAppQuit, event.AppQuitData{})
			if a.buf.IsModified() {
				logger.Warnf("exited with unsaved changes: %s", a.filePath)
			}
			return nil
		case ev := <-a.termEvents:
			if a.handleTerminalEvent(ev) {
				a.draw()
			}
		case <-a.redrawRequest:
			a.draw()
		}
	}
}

// eventLoop polls the terminal and hands events to the main loop.
// Closing the screen unblocks PollEvent with nil.
func (a *App) eventLoop() {
	for {
		ev := a.tuiManager.PollEvent()
		if ev == nil {
			return
		}
		select {
		case a.termEvents <- ev:
		case <-a.quit:
			return
		}
	}
}

// handleTerminalEvent processes one terminal event. Returns true when a
// redraw is needed.
func (a *App) handleTerminalEvent(ev tcell.Event) bool {
	switch eventData := ev.(type) {
	case *tcell.EventResize:
		a.tuiManager.GetScreen().Sync()
		return true

	case *tcell.EventKey:
		a.eventManager.Dispatch(event.TypeKeyPressed, event.KeyPressedData{KeyEvent: eventData})
		return a.handleKeyEvent(eventData)
	}
	return false
}

// draw renders one frame.
func (a *App) draw() {
	a.scrollToCursor()
	a.statusBar.SetFileInfo(a.buf.FilePath(), a.buf.IsModified())

	state := &tui.ViewState{
		Buffer:      a.buf,
		Cursor:      a.view.Cursor(),
		ViewLine:    a.viewLine,
		ViewCol:     a.viewCol,
		TabWidth:    a.cfg.Editor.TabWidth,
		Highlighter: a.highlighter,
	}

	screen := a.tuiManager.GetScreen()
	width, height := a.tuiManager.Size()

	a.tuiManager.Clear()
	tui.DrawBuffer(a.tuiManager, state)
	a.statusBar.Draw(screen, width, height)
	tui.DrawCursor(a.tuiManager, state)
	a.tuiManager.Show()
}

// scrollToCursor adjusts the viewport so the cursor stays visible with
// the configured scroll margin.
func (a *App) scrollToCursor() {
	_, height := a.tuiManager.Size()
	viewHeight := height - a.cfg.Editor.StatusBarHeight
	if viewHeight <= 0 {
		return
	}

	cursor := a.buf.NormalizeEnd(a.view.Cursor())
	scrollOff := a.cfg.Editor.ScrollOff
	if scrollOff > viewHeight/2 {
		scrollOff = viewHeight / 2
	}

	if cursor.Line < a.viewLine+scrollOff {
		a.viewLine = cursor.Line - scrollOff
	}
	if cursor.Line > a.viewLine+viewHeight-1-scrollOff {
		a.viewLine = cursor.Line - viewHeight + 1 + scrollOff
	}
	if a.viewLine < 1 {
		a.viewLine = 1
	}
}

// requestRedraw sends a redraw signal non-blockingly.
func (a *App) requestRedraw() {
	select {
	case a.redrawRequest <- struct{}{}:
	default:
	}
}
