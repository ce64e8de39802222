package track

import (
	"fmt"

	"github.com/Akuli/porcupine-sub000/internal/event"
	"github.com/Akuli/porcupine-sub000/internal/logger"
)

// BeginBatch starts grouping mutations: until FinishBatch, every computed
// Change is appended to an accumulator instead of being emitted, and all
// edits join a single undo step. Batches do not nest.
func (t *Tracker) BeginBatch() error {
	if t.batchActive {
		return fmt.Errorf("batch already active: %w", ErrNestedBatch)
	}
	t.batchActive = true
	t.batch = nil
	t.batchEdits = nil
	t.batchCursor = t.cursor
	t.beginGroup()
	return nil
}

// FinishBatch ends the active batch. A non-empty accumulator is emitted
// as one ChangeSet in original order; an empty one emits nothing. The
// cursor is restored to where it was when the batch began, so the edits
// inside the batch have no net cursor effect as seen from outside.
func (t *Tracker) FinishBatch() {
	if !t.batchActive {
		return
	}
	changes, edits := t.batch, t.batchEdits
	t.batchActive = false
	t.batch = nil
	t.batchEdits = nil
	t.endGroup()

	if len(changes) > 0 {
		logger.Debugf("track: batch finished with %d changes", len(changes))
		if t.events != nil {
			t.events.Dispatch(event.TypeContentChanged, event.ContentChangedData{Changes: changes, Edits: edits})
		}
	}
	t.SetCursor(t.batchCursor)
}
