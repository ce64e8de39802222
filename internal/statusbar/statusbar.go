package statusbar

import (
	"fmt"
	"sync"
	"time"

	"github.com/Akuli/porcupine-sub000/internal/types"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Config defines the appearance and behavior of the status bar.
type Config struct {
	StyleDefault   tcell.Style
	StyleMessage   tcell.Style
	MessageTimeout time.Duration
}

// DefaultConfig provides sensible defaults.
func DefaultConfig() Config {
	return Config{
		StyleDefault:   tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorBlue),
		StyleMessage:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue).Bold(true),
		MessageTimeout: 4 * time.Second,
	}
}

// StatusBar renders the bottom status line: file path, modified flag and
// the current cursor position. Updates arrive via the event bus.
type StatusBar struct {
	config Config
	mu     sync.RWMutex

	filePath   string
	cursorPos  types.Position
	isModified bool

	tempMessage     string
	tempMessageTime time.Time
}

// New creates a status bar with the given configuration.
func New(config Config) *StatusBar {
	return &StatusBar{
		config: config,
		// Line numbers start at 1, so this is a real position.
		cursorPos: types.Position{Line: 1, Col: 0},
	}
}

// SetFileInfo updates the file path and modified indicator.
func (sb *StatusBar) SetFileInfo(path string, modified bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.filePath = path
	sb.isModified = modified
}

// SetCursorInfo updates the displayed cursor position.
func (sb *StatusBar) SetCursorInfo(pos types.Position) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.cursorPos = pos
}

// SetTemporaryMessage displays a message for a configured duration.
func (sb *StatusBar) SetTemporaryMessage(format string, args ...interface{}) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = fmt.Sprintf(format, args...)
	sb.tempMessageTime = time.Now()
}

// ResetTemporaryMessage clears any temporary message being displayed.
func (sb *StatusBar) ResetTemporaryMessage() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = ""
	sb.tempMessageTime = time.Time{}
}

// getDefaultDisplayText builds the default status line text. Caller
// holds the lock.
func (sb *StatusBar) getDefaultDisplayText() string {
	fPath := sb.filePath
	if fPath == "" {
		fPath = "[No Name]"
	}
	modifiedIndicator := ""
	if sb.isModified {
		modifiedIndicator = " [Modified]"
	}

	cursor := sb.cursorPos
	return fmt.Sprintf("%s%s -- Line: %d, Col: %d",
		fPath, modifiedIndicator, cursor.Line, cursor.Col+1)
}

// Draw renders the status bar onto the last screen line using visual
// grapheme widths.
func (sb *StatusBar) Draw(screen tcell.Screen, width, height int) {
	if height <= 0 || width <= 0 {
		return
	}
	y := height - 1

	sb.mu.Lock()
	isTempMsgActive := !sb.tempMessageTime.IsZero() && time.Since(sb.tempMessageTime) <= sb.config.MessageTimeout
	if !sb.tempMessageTime.IsZero() && !isTempMsgActive {
		sb.tempMessage = ""
		sb.tempMessageTime = time.Time{}
	}

	var style tcell.Style
	var text string
	if isTempMsgActive {
		text = sb.tempMessage
		style = sb.config.StyleMessage
	} else {
		text = sb.getDefaultDisplayText()
		style = sb.config.StyleDefault
	}
	sb.mu.Unlock()

	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}

	gr := uniseg.NewGraphemes(text)
	currentX := 0
	for gr.Next() {
		clusterWidth := gr.Width()
		if currentX+clusterWidth > width {
			break
		}

		runes := gr.Runes()
		if len(runes) > 0 {
			mainRune := runes[0]
			var combiningRunes []rune
			if len(runes) > 1 {
				combiningRunes = runes[1:]
			}
			screen.SetContent(currentX, y, mainRune, combiningRunes, style)
		}

		currentX += clusterWidth
	}
}
