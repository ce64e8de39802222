// internal/event/event.go
package event

import (
	"github.com/Akuli/porcupine-sub000/internal/types"
	"github.com/gdamore/tcell/v2"
)

// Type identifies the kind of event.
type Type int

// Define specific event types.
const (
	TypeUnknown Type = iota

	// Core editor events
	TypeContentChanged // Fired after buffer content changes, carrying the diff
	TypeCursorMoved    // Fired when the cursor position nets out different
	TypeBufferLoaded   // Fired after a buffer is successfully loaded
	TypeBufferSaved    // Fired after a buffer is successfully saved

	// Input events (useful for subscribers reacting to raw keys)
	TypeKeyPressed

	// Application lifecycle events
	TypeAppReady
	TypeAppQuit
)

// Event is the structure passed through the event bus.
type Event struct {
	Type Type        // The kind of event
	Data interface{} // Payload carrying event-specific data
}

// --- Specific event data structures ---

// ContentChangedData describes what a mutation (or a whole batch) did.
// Changes is the replayable rune-based diff; Edits carries the same edits
// in the byte/point coordinates incremental parsers want.
type ContentChangedData struct {
	Changes types.ChangeSet
	Edits   []types.EditInfo
}

// CursorMovedData contains the new cursor position.
type CursorMovedData struct {
	NewPosition types.Position
}

// BufferLoadedData contains info about the loaded buffer.
type BufferLoadedData struct {
	FilePath string
}

// BufferSavedData contains info about the saved buffer.
type BufferSavedData struct {
	FilePath string
}

// KeyPressedData contains the raw tcell key event.
type KeyPressedData struct {
	KeyEvent *tcell.EventKey
}

// AppReadyData is the payload of TypeAppReady.
type AppReadyData struct{}

// AppQuitData is the payload of TypeAppQuit.
type AppQuitData struct{}
