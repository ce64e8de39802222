// Package history provides undo/redo functionality via a grouped change
// history stack. Each group undoes and redoes as a single step; batched
// edits open a group explicitly, everything else gets a group of its own.
package history

import "github.com/Akuli/porcupine-sub000/internal/types"

// ActionType indicates whether text was inserted or deleted.
type ActionType int

const (
	InsertAction ActionType = iota
	DeleteAction
)

// Entry represents a single, reversible text operation.
type Entry struct {
	Type         ActionType
	Text         string         // Text inserted or text deleted
	Start        types.Position // Where the edit began
	End          types.Position // End of inserted text, or end of the deleted range
	CursorBefore types.Position // Cursor position before this edit was applied
}
