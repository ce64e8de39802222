// Package track computes a minimal, replayable diff for every buffer
// mutation and delivers the results as ordered notifications.
//
// All content edits go through the three entry points Insert, Delete and
// Replace. Each one computes its Change records against the buffer state
// before the mutation, applies the mutation to storage, and then either
// emits a ChangeSet event or appends to the active batch. Editing the
// buffer behind the tracker's back bypasses diffing and is a caller bug.
package track

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/Akuli/porcupine-sub000/internal/buffer"
	"github.com/Akuli/porcupine-sub000/internal/event"
	"github.com/Akuli/porcupine-sub000/internal/history"
	"github.com/Akuli/porcupine-sub000/internal/logger"
	"github.com/Akuli/porcupine-sub000/internal/types"
)

// Tracker owns the diff pipeline for one shared buffer: the batch
// accumulator, the cursor state and the undo history. There is at most one
// Tracker per buffer, no matter how many views share it.
type Tracker struct {
	buf     buffer.Buffer
	events  *event.Manager // nil for untracked (silent) views
	history *history.Manager

	batchActive bool
	batch       types.ChangeSet
	batchEdits  []types.EditInfo
	batchCursor types.Position

	cursor     types.Position
	lastCursor types.Position
}

func newTracker(buf buffer.Buffer, events *event.Manager, maxHistory int) *Tracker {
	t := &Tracker{
		buf:        buf,
		events:     events,
		cursor:     types.Position{Line: 1, Col: 0},
		lastCursor: types.Position{Line: 1, Col: 0},
	}
	if events != nil {
		t.history = history.NewManager(t, maxHistory)
	}
	return t
}

// Insert adds text at the given position. The sentinel "absolute end"
// position is normalized to the last content position first.
func (t *Tracker) Insert(at types.Position, text string) (types.Change, error) {
	at = t.buf.NormalizeEnd(at)
	if err := t.buf.ValidatePos(at); err != nil {
		return types.Change{}, err
	}

	change := types.Change{Start: at, End: at, NewText: text}
	if change.IsNoop() {
		return change, nil
	}

	cursorBefore := t.cursor
	edit, err := t.buf.Insert(at, text)
	if err != nil {
		return types.Change{}, err
	}
	t.record(history.Entry{
		Type:         history.InsertAction,
		Text:         text,
		Start:        at,
		End:          endOfInsert(at, text),
		CursorBefore: cursorBefore,
	})

	t.commit(types.ChangeSet{change}, []types.EditInfo{edit})
	t.cursor = transformInsert(t.cursor, at, text)
	t.checkCursor()
	return change, nil
}

// Replace substitutes the text between start and end. It fails with
// ErrInvalidRange when start is after end.
func (t *Tracker) Replace(start, end types.Position, text string) (types.Change, error) {
	start = t.buf.NormalizeEnd(start)
	end = t.buf.NormalizeEnd(end)
	if err := t.buf.ValidatePos(start); err != nil {
		return types.Change{}, err
	}
	if err := t.buf.ValidatePos(end); err != nil {
		return types.Change{}, err
	}
	if end.Less(start) {
		return types.Change{}, fmt.Errorf("replace start %v is after end %v: %w", start, end, buffer.ErrInvalidRange)
	}

	oldLen, err := t.buf.CharCount(start, end)
	if err != nil {
		return types.Change{}, err
	}
	change := types.Change{Start: start, End: end, OldLength: oldLen, NewText: text}
	if change.IsNoop() {
		return change, nil
	}

	oldText, err := t.buf.Slice(start, end)
	if err != nil {
		return types.Change{}, err
	}

	cursorBefore := t.cursor
	edit, err := t.buf.Replace(start, end, text)
	if err != nil {
		return types.Change{}, err
	}

	// One undo step, even though the history sees a delete and an insert.
	grouped := !t.batchActive && oldText != "" && text != ""
	if grouped {
		t.beginGroup()
	}
	if oldText != "" {
		t.record(history.Entry{
			Type:         history.DeleteAction,
			Text:         oldText,
			Start:        start,
			End:          end,
			CursorBefore: cursorBefore,
		})
	}
	if text != "" {
		t.record(history.Entry{
			Type:         history.InsertAction,
			Text:         text,
			Start:        start,
			End:          endOfInsert(start, text),
			CursorBefore: cursorBefore,
		})
	}
	if grouped {
		t.endGroup()
	}

	t.commit(types.ChangeSet{change}, []types.EditInfo{edit})
	t.cursor = transformInsert(transformDelete(t.cursor, types.Range{Start: start, End: end}), start, text)
	t.checkCursor()
	return change, nil
}

// Delete removes one or more ranges of text in a single operation. The
// indices are flattened (start, end) pairs; an odd count pairs the last
// index with the position one character later.
//
// Ranges that delete nothing are dropped, the rest are sorted by start and
// merged until no overlapping or adjacent spans remain. One Change is
// computed per merged span against the pre-mutation content, and the spans
// are removed from storage highest start first so earlier indices never
// shift under later deletions. The returned records are in ascending-start
// order.
func (t *Tracker) Delete(indices ...types.Position) (types.ChangeSet, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("delete needs at least one index: %w", buffer.ErrInvalidRange)
	}

	idx := make([]types.Position, len(indices))
	for i, p := range indices {
		p = t.buf.NormalizeEnd(p)
		if err := t.buf.ValidatePos(p); err != nil {
			return nil, err
		}
		idx[i] = p
	}
	if len(idx)%2 == 1 {
		last := idx[len(idx)-1]
		idx = append(idx, t.buf.NormalizeEnd(nextChar(t.buf, last)))
	}

	var pairs []types.Range
	for i := 0; i < len(idx); i += 2 {
		if idx[i].Less(idx[i+1]) {
			pairs = append(pairs, types.Range{Start: idx[i], End: idx[i+1]})
		}
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Start.Less(pairs[j].Start)
	})
	pairs = mergeRanges(pairs)

	changes := make(types.ChangeSet, 0, len(pairs))
	for _, r := range pairs {
		n, err := t.buf.CharCount(r.Start, r.End)
		if err != nil {
			return nil, err
		}
		changes = append(changes, types.Change{Start: r.Start, End: r.End, OldLength: n})
	}

	grouped := !t.batchActive && len(pairs) > 1
	if grouped {
		t.beginGroup()
	}
	cursorBefore := t.cursor
	edits := make([]types.EditInfo, 0, len(pairs))
	for i := len(pairs) - 1; i >= 0; i-- {
		r := pairs[i]
		deleted, err := t.buf.Slice(r.Start, r.End)
		if err != nil {
			return nil, err
		}
		edit, err := t.buf.Delete(r.Start, r.End)
		if err != nil {
			return nil, err
		}
		t.record(history.Entry{
			Type:         history.DeleteAction,
			Text:         deleted,
			Start:        r.Start,
			End:          r.End,
			CursorBefore: cursorBefore,
		})
		edits = append(edits, edit)
		t.cursor = transformDelete(t.cursor, r)
	}
	if grouped {
		t.endGroup()
	}

	t.commit(changes, edits)
	t.checkCursor()
	return changes, nil
}

// Undo reverts the most recent undo step as one emitted ChangeSet.
func (t *Tracker) Undo() (bool, error) {
	if t.history == nil {
		return false, nil
	}
	return t.history.Undo()
}

// Redo reapplies the most recently undone step.
func (t *Tracker) Redo() (bool, error) {
	if t.history == nil {
		return false, nil
	}
	return t.history.Redo()
}

// History exposes the undo stack, e.g. for clearing it on file load.
func (t *Tracker) History() *history.Manager {
	return t.history
}

// --- history.EditorInterface ---

// GetBuffer returns the tracked buffer.
func (t *Tracker) GetBuffer() buffer.Buffer {
	return t.buf
}

// EmitChanges delivers an undo/redo step's diff as one notification.
func (t *Tracker) EmitChanges(changes types.ChangeSet, edits []types.EditInfo) {
	if t.events == nil {
		return
	}
	t.events.Dispatch(event.TypeContentChanged, event.ContentChangedData{Changes: changes, Edits: edits})
}

// --- internals ---

// commit filters no-op records, then emits them or appends to the active
// batch. Changes arrive in chronological order and stay that way.
func (t *Tracker) commit(changes types.ChangeSet, edits []types.EditInfo) {
	filtered := changes[:0]
	for _, c := range changes {
		if !c.IsNoop() {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return
	}

	if t.batchActive {
		t.batch = append(t.batch, filtered...)
		t.batchEdits = append(t.batchEdits, edits...)
		return
	}
	t.EmitChanges(filtered, edits)
}

func (t *Tracker) record(e history.Entry) {
	if t.history == nil {
		return
	}
	t.history.Record(e)
}

func (t *Tracker) beginGroup() {
	if t.history != nil {
		t.history.BeginGroup()
	}
}

func (t *Tracker) endGroup() {
	if t.history != nil {
		t.history.EndGroup()
	}
}

// nextChar returns the position one character after pos, crossing line
// boundaries through the newline.
func nextChar(buf buffer.Buffer, pos types.Position) types.Position {
	line, err := buf.Line(pos.Line)
	if err != nil {
		return pos
	}
	if pos.Col < utf8.RuneCount(line) {
		return types.Position{Line: pos.Line, Col: pos.Col + 1}
	}
	return types.Position{Line: pos.Line + 1, Col: 0}
}

// endOfInsert returns the position just after text inserted at start.
func endOfInsert(start types.Position, text string) types.Position {
	lines := 0
	lastLineStart := 0
	for i, r := range text {
		if r == '\n' {
			lines++
			lastLineStart = i + 1
		}
	}
	if lines == 0 {
		return types.Position{Line: start.Line, Col: start.Col + utf8.RuneCountInString(text)}
	}
	return types.Position{
		Line: start.Line + lines,
		Col:  utf8.RuneCountInString(text[lastLineStart:]),
	}
}

// mergeRanges unions overlapping and adjacent ranges until no merges
// remain. The input must be sorted by start.
func mergeRanges(pairs []types.Range) []types.Range {
	for merged := true; merged; {
		merged = false
		for i := len(pairs) - 2; i >= 0; i-- {
			if pairs[i+1].Start.Less(pairs[i].End) || pairs[i+1].Start == pairs[i].End {
				if pairs[i].End.Less(pairs[i+1].End) {
					pairs[i].End = pairs[i+1].End
				}
				pairs = append(pairs[:i+1], pairs[i+2:]...)
				merged = true
			}
		}
	}
	if len(pairs) > 1 {
		logger.Debugf("track: delete resolved to %d disjoint spans", len(pairs))
	}
	return pairs
}
