package track

import (
	"unicode/utf8"

	"github.com/Akuli/porcupine-sub000/internal/event"
	"github.com/Akuli/porcupine-sub000/internal/types"
)

// SetCursor moves the cursor to the given position, clamping it into the
// buffer's bounds. A CursorMoved event fires only when the resulting
// position differs from the last one emitted.
func (t *Tracker) SetCursor(pos types.Position) {
	t.cursor = t.clampPos(t.buf.NormalizeEnd(pos))
	t.checkCursor()
}

// Cursor returns the current cursor position.
func (t *Tracker) Cursor() types.Position {
	return t.cursor
}

// CheckCursor re-evaluates the cursor position against the last emitted
// one. Safe to call any number of times: with no net movement it does
// nothing, so polling after several unrelated operations stays quiet.
func (t *Tracker) CheckCursor() {
	t.checkCursor()
}

func (t *Tracker) checkCursor() {
	newPos := t.buf.NormalizeEnd(t.cursor)
	if newPos == t.lastCursor {
		return
	}
	t.lastCursor = newPos
	if t.events != nil {
		t.events.Dispatch(event.TypeCursorMoved, event.CursorMovedData{NewPosition: newPos})
	}
}

// clampPos forces a position into the buffer's content bounds.
func (t *Tracker) clampPos(pos types.Position) types.Position {
	if pos.Line < 1 {
		pos.Line = 1
	}
	if pos.Line > t.buf.LineCount() {
		pos.Line = t.buf.LineCount()
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	line, err := t.buf.Line(pos.Line)
	if err == nil {
		if max := utf8.RuneCount(line); pos.Col > max {
			pos.Col = max
		}
	}
	return pos
}

// transformInsert shifts a position to account for text inserted at `at`.
// A position at the insertion point moves to the end of the inserted text,
// the way a cursor rides along with typing.
func transformInsert(pos, at types.Position, text string) types.Position {
	if pos.Less(at) {
		return pos
	}

	inserted := endOfInsert(at, text)
	if pos.Line == at.Line {
		return types.Position{Line: inserted.Line, Col: inserted.Col + (pos.Col - at.Col)}
	}
	// Below the insertion line: only line breaks in the text shift it.
	return types.Position{Line: pos.Line + (inserted.Line - at.Line), Col: pos.Col}
}

// transformDelete shifts a position to account for a removed range of
// pre-mutation content. A position inside the range collapses to its
// start.
func transformDelete(pos types.Position, r types.Range) types.Position {
	if pos.Less(r.Start) || pos == r.Start {
		return pos
	}
	if pos.Less(r.End) {
		return r.Start
	}
	if pos.Line == r.End.Line {
		return types.Position{Line: r.Start.Line, Col: r.Start.Col + (pos.Col - r.End.Col)}
	}
	return types.Position{Line: pos.Line - (r.End.Line - r.Start.Line), Col: pos.Col}
}
