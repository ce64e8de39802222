package track

import (
	"fmt"

	"github.com/Akuli/porcupine-sub000/internal/buffer"
	"github.com/Akuli/porcupine-sub000/internal/event"
	"github.com/Akuli/porcupine-sub000/internal/types"
)

// View is one editable view onto a shared buffer. The first view created
// for a buffer is the primary; peers made with NewPeer display and edit
// the same content. Content mutations performed on any view route through
// the one tracker attached to the primary, so there is exactly one batch
// accumulator and one cursor state per buffer.
type View struct {
	shared *sharedBuffer
}

// sharedBuffer is the per-document state all views point at.
type sharedBuffer struct {
	buf     buffer.Buffer
	tracker *Tracker
	silent  *Tracker // lazily created for views edited without tracking
	peers   int
}

// NewView creates the primary view for a buffer.
func NewView(buf buffer.Buffer) *View {
	return &View{shared: &sharedBuffer{buf: buf}}
}

// AttachTracker installs change tracking on the view's buffer. It must be
// called exactly once, on the primary view, before any peer is created.
func (v *View) AttachTracker(events *event.Manager, maxHistory int) (*Tracker, error) {
	s := v.shared
	if s.tracker != nil {
		return nil, fmt.Errorf("attach tracker: %w", ErrAlreadyTracked)
	}
	if s.peers > 0 {
		return nil, fmt.Errorf("attach tracker: %w", ErrOrder)
	}
	s.tracker = newTracker(s.buf, events, maxHistory)
	return s.tracker, nil
}

// NewPeer creates a peer view sharing the primary's buffer. Edits made
// directly on the peer are intercepted just like edits on the primary and
// routed to the same tracker and emission target.
func NewPeer(primary *View) (*View, error) {
	s := primary.shared
	if s.tracker == nil {
		return nil, fmt.Errorf("create peer: %w", ErrOrder)
	}
	s.peers++
	return &View{shared: s}, nil
}

// Buffer returns the shared buffer.
func (v *View) Buffer() buffer.Buffer {
	return v.shared.buf
}

// Tracker returns the attached tracker, or nil before AttachTracker.
func (v *View) Tracker() *Tracker {
	return v.shared.tracker
}

// tracker returns the shared tracker, falling back to a silent one that
// normalizes and applies edits without emitting events or recording undo
// history. Untracked views stay editable that way.
func (v *View) tracker() *Tracker {
	s := v.shared
	if s.tracker != nil {
		return s.tracker
	}
	if s.silent == nil {
		s.silent = newTracker(s.buf, nil, 0)
	}
	return s.silent
}

// Insert adds text at the given position.
func (v *View) Insert(at types.Position, text string) (types.Change, error) {
	return v.tracker().Insert(at, text)
}

// Delete removes one or more (start, end) ranges in a single operation.
// See Tracker.Delete for the normalization rules.
func (v *View) Delete(indices ...types.Position) (types.ChangeSet, error) {
	return v.tracker().Delete(indices...)
}

// Replace substitutes the text between start and end.
func (v *View) Replace(start, end types.Position, text string) (types.Change, error) {
	return v.tracker().Replace(start, end, text)
}

// SetCursor moves the shared cursor.
func (v *View) SetCursor(pos types.Position) {
	v.tracker().SetCursor(pos)
}

// Cursor returns the shared cursor position.
func (v *View) Cursor() types.Position {
	return v.tracker().Cursor()
}

// BeginBatch starts grouping mutations into one notification and one undo
// step. On an untracked view this is a no-op that always succeeds.
func (v *View) BeginBatch() error {
	if v.shared.tracker == nil {
		return nil
	}
	return v.shared.tracker.BeginBatch()
}

// FinishBatch ends the active batch.
func (v *View) FinishBatch() {
	if v.shared.tracker == nil {
		return
	}
	v.shared.tracker.FinishBatch()
}

// Undo reverts the most recent undo step.
func (v *View) Undo() (bool, error) {
	return v.tracker().Undo()
}

// Redo reapplies the most recently undone step.
func (v *View) Redo() (bool, error) {
	return v.tracker().Redo()
}

// OpKind identifies a mutation operation kind.
type OpKind int

const (
	OpInsert OpKind = iota + 1
	OpDelete
	OpReplace
)

// Operation is a mutation described as data, for call sites that build
// edits programmatically (replace-all, reload-from-disk, replay).
type Operation struct {
	Kind    OpKind
	Start   types.Position   // insert point, or replace start
	End     types.Position   // replace end
	Indices []types.Position // delete index list, flattened pairs
	Text    string
}

// Apply dispatches an Operation to the matching entry point. Unknown
// kinds fail with ErrUnsupportedOperation.
func (v *View) Apply(op Operation) (types.ChangeSet, error) {
	switch op.Kind {
	case OpInsert:
		c, err := v.Insert(op.Start, op.Text)
		if err != nil {
			return nil, err
		}
		return types.ChangeSet{c}, nil
	case OpDelete:
		return v.Delete(op.Indices...)
	case OpReplace:
		c, err := v.Replace(op.Start, op.End, op.Text)
		if err != nil {
			return nil, err
		}
		return types.ChangeSet{c}, nil
	default:
		return nil, fmt.Errorf("operation kind %d: %w", op.Kind, ErrUnsupportedOperation)
	}
}
