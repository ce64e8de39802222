package track

import (
	"errors"
	"testing"

	"github.com/Akuli/porcupine-sub000/internal/buffer"
	"github.com/Akuli/porcupine-sub000/internal/event"
	"github.com/Akuli/porcupine-sub000/internal/types"
)

func pos(line, col int) types.Position {
	return types.Position{Line: line, Col: col}
}

// collector records every content and cursor notification in order.
type collector struct {
	contentEvents []event.ContentChangedData
	cursorEvents  []types.Position
}

func newCollector(events *event.Manager) *collector {
	c := &collector{}
	events.Subscribe(event.TypeContentChanged, func(e event.Event) bool {
		c.contentEvents = append(c.contentEvents, e.Data.(event.ContentChangedData))
		return false
	})
	events.Subscribe(event.TypeCursorMoved, func(e event.Event) bool {
		c.cursorEvents = append(c.cursorEvents, e.Data.(event.CursorMovedData).NewPosition)
		return false
	})
	return c
}

func newTracked(t *testing.T, content string) (*View, *buffer.SliceBuffer, *collector) {
	t.Helper()
	sb := buffer.NewSliceBufferFromString(content)
	events := event.NewManager()
	v := NewView(sb)
	c := newCollector(events)
	if _, err := v.AttachTracker(events, 0); err != nil {
		t.Fatalf("AttachTracker failed: %v", err)
	}
	return v, sb, c
}

func wantChange(t *testing.T, got types.Change, start, end types.Position, oldLen int, newText string) {
	t.Helper()
	want := types.Change{Start: start, End: end, OldLength: oldLen, NewText: newText}
	if got != want {
		t.Errorf("change mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestInsert(t *testing.T) {
	t.Run("emits one change", func(t *testing.T) {
		v, sb, c := newTracked(t, "hello")
		change, err := v.Insert(pos(1, 5), " world")
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		wantChange(t, change, pos(1, 5), pos(1, 5), 0, " world")
		if string(sb.Bytes()) != "hello world" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		if len(c.contentEvents) != 1 || len(c.contentEvents[0].Changes) != 1 {
			t.Fatalf("expected one event with one change, got %+v", c.contentEvents)
		}
		if c.contentEvents[0].Changes[0] != change {
			t.Error("emitted change differs from returned change")
		}
	})

	t.Run("at end sentinel", func(t *testing.T) {
		v, sb, _ := newTracked(t, "foo")
		change, err := v.Insert(pos(2, 0), "!")
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		wantChange(t, change, pos(1, 3), pos(1, 3), 0, "!")
		if string(sb.Bytes()) != "foo!" {
			t.Errorf("content: got %q", sb.Bytes())
		}
	})

	t.Run("empty text emits nothing", func(t *testing.T) {
		v, _, c := newTracked(t, "foo")
		change, err := v.Insert(pos(1, 0), "")
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if !change.IsNoop() {
			t.Errorf("expected no-op change, got %+v", change)
		}
		if len(c.contentEvents) != 0 {
			t.Errorf("expected no events, got %d", len(c.contentEvents))
		}
	})

	t.Run("invalid position", func(t *testing.T) {
		v, _, _ := newTracked(t, "foo")
		if _, err := v.Insert(pos(5, 0), "x"); !errors.Is(err, buffer.ErrOutOfRange) {
			t.Errorf("expected ErrOutOfRange, got %v", err)
		}
	})
}

func TestReplace(t *testing.T) {
	t.Run("emits one change with old length", func(t *testing.T) {
		v, sb, c := newTracked(t, "hello world")
		change, err := v.Replace(pos(1, 0), pos(1, 5), "hi")
		if err != nil {
			t.Fatalf("Replace failed: %v", err)
		}
		wantChange(t, change, pos(1, 0), pos(1, 5), 5, "hi")
		if string(sb.Bytes()) != "hi world" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		if len(c.contentEvents) != 1 {
			t.Errorf("expected one event, got %d", len(c.contentEvents))
		}
	})

	t.Run("old length counts newlines", func(t *testing.T) {
		v, _, _ := newTracked(t, "ab\ncd")
		change, err := v.Replace(pos(1, 1), pos(2, 1), "X")
		if err != nil {
			t.Fatalf("Replace failed: %v", err)
		}
		if change.OldLength != 3 {
			t.Errorf("expected OldLength 3 (b, newline, c), got %d", change.OldLength)
		}
	})

	t.Run("reversed range", func(t *testing.T) {
		v, _, _ := newTracked(t, "hello")
		if _, err := v.Replace(pos(1, 3), pos(1, 1), "x"); !errors.Is(err, buffer.ErrInvalidRange) {
			t.Errorf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("is one undo step", func(t *testing.T) {
		v, sb, _ := newTracked(t, "hello world")
		if _, err := v.Replace(pos(1, 0), pos(1, 5), "goodbye"); err != nil {
			t.Fatal(err)
		}
		if ok, err := v.Undo(); !ok || err != nil {
			t.Fatalf("Undo: ok=%v err=%v", ok, err)
		}
		if string(sb.Bytes()) != "hello world" {
			t.Errorf("after undo: got %q", sb.Bytes())
		}
	})
}

func TestDelete(t *testing.T) {
	t.Run("single range", func(t *testing.T) {
		v, sb, c := newTracked(t, "hello world")
		changes, err := v.Delete(pos(1, 5), pos(1, 11))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if len(changes) != 1 {
			t.Fatalf("expected 1 change, got %d", len(changes))
		}
		wantChange(t, changes[0], pos(1, 5), pos(1, 11), 6, "")
		if string(sb.Bytes()) != "hello" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		if len(c.contentEvents) != 1 {
			t.Errorf("expected one event, got %d", len(c.contentEvents))
		}
	})

	t.Run("two disjoint ranges are one event ascending", func(t *testing.T) {
		v, sb, c := newTracked(t, "foobarbaz")
		changes, err := v.Delete(pos(1, 0), pos(1, 3), pos(1, 6), pos(1, 9))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "bar" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		if len(changes) != 2 {
			t.Fatalf("expected 2 changes, got %d", len(changes))
		}
		wantChange(t, changes[0], pos(1, 0), pos(1, 3), 3, "")
		wantChange(t, changes[1], pos(1, 6), pos(1, 9), 3, "")
		if len(c.contentEvents) != 1 || len(c.contentEvents[0].Changes) != 2 {
			t.Fatalf("expected one event with both changes, got %+v", c.contentEvents)
		}
	})

	t.Run("ranges given in any order", func(t *testing.T) {
		v, sb, _ := newTracked(t, "foobarbaz")
		changes, err := v.Delete(pos(1, 6), pos(1, 9), pos(1, 0), pos(1, 3))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "bar" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		if !changes[0].Start.Less(changes[1].Start) {
			t.Error("changes should be in ascending start order")
		}
	})

	t.Run("unpaired index deletes one character", func(t *testing.T) {
		v, sb, _ := newTracked(t, "hello")
		changes, err := v.Delete(pos(1, 1))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "hllo" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		wantChange(t, changes[0], pos(1, 1), pos(1, 2), 1, "")
	})

	t.Run("unpaired index at line end deletes the newline", func(t *testing.T) {
		v, sb, _ := newTracked(t, "ab\ncd")
		changes, err := v.Delete(pos(1, 2))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "abcd" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		wantChange(t, changes[0], pos(1, 2), pos(2, 0), 1, "")
	})

	t.Run("overlapping ranges merge", func(t *testing.T) {
		v, sb, c := newTracked(t, "hello world")
		changes, err := v.Delete(pos(1, 0), pos(1, 6), pos(1, 4), pos(1, 11))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		if len(changes) != 1 {
			t.Fatalf("expected ranges to merge into 1 change, got %d", len(changes))
		}
		wantChange(t, changes[0], pos(1, 0), pos(1, 11), 11, "")
		if len(c.contentEvents) != 1 {
			t.Errorf("expected one event, got %d", len(c.contentEvents))
		}
	})

	t.Run("overlapping ranges merge regardless of argument order", func(t *testing.T) {
		v, sb, _ := newTracked(t, "hello world")
		changes, err := v.Delete(pos(1, 4), pos(1, 11), pos(1, 0), pos(1, 6))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "" || len(changes) != 1 {
			t.Errorf("got content %q, %d changes", sb.Bytes(), len(changes))
		}
	})

	t.Run("ranges with the same start keep the longest", func(t *testing.T) {
		v, sb, _ := newTracked(t, "hello world")
		changes, err := v.Delete(pos(1, 4), pos(1, 6), pos(1, 4), pos(1, 5))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "hellworld" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		if len(changes) != 1 {
			t.Fatalf("expected 1 merged change, got %d", len(changes))
		}
		wantChange(t, changes[0], pos(1, 4), pos(1, 6), 2, "")
	})

	t.Run("adjacent ranges merge", func(t *testing.T) {
		v, sb, _ := newTracked(t, "abcdef")
		changes, err := v.Delete(pos(1, 0), pos(1, 2), pos(1, 2), pos(1, 4))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "ef" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		if len(changes) != 1 {
			t.Fatalf("expected 1 merged change, got %d", len(changes))
		}
		wantChange(t, changes[0], pos(1, 0), pos(1, 4), 4, "")
	})

	t.Run("chain of overlaps merges to fixpoint", func(t *testing.T) {
		v, sb, _ := newTracked(t, "abcdefghij")
		changes, err := v.Delete(
			pos(1, 0), pos(1, 5),
			pos(1, 2), pos(1, 3),
			pos(1, 4), pos(1, 8),
		)
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "ij" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		if len(changes) != 1 {
			t.Fatalf("expected 1 merged change, got %d", len(changes))
		}
		wantChange(t, changes[0], pos(1, 0), pos(1, 8), 8, "")
	})

	t.Run("empty ranges dropped", func(t *testing.T) {
		v, sb, c := newTracked(t, "hello")
		changes, err := v.Delete(pos(1, 2), pos(1, 2))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if changes != nil {
			t.Errorf("expected nil changes, got %+v", changes)
		}
		if string(sb.Bytes()) != "hello" || len(c.contentEvents) != 0 {
			t.Error("nothing should have happened")
		}
	})

	t.Run("multi-line range", func(t *testing.T) {
		v, sb, _ := newTracked(t, "foo\nbar\nbaz")
		changes, err := v.Delete(pos(1, 2), pos(3, 1))
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "foaz" {
			t.Errorf("content: got %q", sb.Bytes())
		}
		wantChange(t, changes[0], pos(1, 2), pos(3, 1), 7, "")
	})

	t.Run("no indices", func(t *testing.T) {
		v, _, _ := newTracked(t, "hello")
		if _, err := v.Delete(); !errors.Is(err, buffer.ErrInvalidRange) {
			t.Errorf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("end sentinel index", func(t *testing.T) {
		v, sb, _ := newTracked(t, "foo\nbar")
		if _, err := v.Delete(pos(1, 3), pos(3, 0)); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if string(sb.Bytes()) != "foo" {
			t.Errorf("content: got %q", sb.Bytes())
		}
	})
}

func TestUndoRedo(t *testing.T) {
	t.Run("insert round trip", func(t *testing.T) {
		v, sb, _ := newTracked(t, "hello")
		if _, err := v.Insert(pos(1, 5), " world"); err != nil {
			t.Fatal(err)
		}
		if ok, _ := v.Undo(); !ok {
			t.Fatal("Undo reported nothing to undo")
		}
		if string(sb.Bytes()) != "hello" {
			t.Errorf("after undo: got %q", sb.Bytes())
		}
		if ok, _ := v.Redo(); !ok {
			t.Fatal("Redo reported nothing to redo")
		}
		if string(sb.Bytes()) != "hello world" {
			t.Errorf("after redo: got %q", sb.Bytes())
		}
	})

	t.Run("multi-range delete is one undo step", func(t *testing.T) {
		v, sb, _ := newTracked(t, "foobarbaz")
		if _, err := v.Delete(pos(1, 0), pos(1, 3), pos(1, 6), pos(1, 9)); err != nil {
			t.Fatal(err)
		}
		if ok, _ := v.Undo(); !ok {
			t.Fatal("Undo reported nothing to undo")
		}
		if string(sb.Bytes()) != "foobarbaz" {
			t.Errorf("after undo: got %q", sb.Bytes())
		}
		if ok, _ := v.Redo(); !ok {
			t.Fatal("Redo reported nothing to redo")
		}
		if string(sb.Bytes()) != "bar" {
			t.Errorf("after redo: got %q", sb.Bytes())
		}
	})

	t.Run("undo emits one notification", func(t *testing.T) {
		v, _, c := newTracked(t, "foobarbaz")
		if _, err := v.Delete(pos(1, 0), pos(1, 3), pos(1, 6), pos(1, 9)); err != nil {
			t.Fatal(err)
		}
		before := len(c.contentEvents)
		if _, err := v.Undo(); err != nil {
			t.Fatal(err)
		}
		if len(c.contentEvents) != before+1 {
			t.Errorf("expected exactly one event from undo, got %d", len(c.contentEvents)-before)
		}
		// Re-insertions happen ascending, so the emitted set replays forward.
		set := c.contentEvents[len(c.contentEvents)-1].Changes
		if len(set) != 2 || !set[0].Start.Less(set[1].Start) {
			t.Errorf("undo changes should be ascending, got %+v", set)
		}
	})

	t.Run("nothing to undo", func(t *testing.T) {
		v, _, _ := newTracked(t, "x")
		if ok, err := v.Undo(); ok || err != nil {
			t.Errorf("expected ok=false err=nil, got ok=%v err=%v", ok, err)
		}
	})
}

func TestRoundTripReplay(t *testing.T) {
	// Every emitted ChangeSet must be replayable onto a copy of the
	// original content. A multi-change set from one delete call holds
	// changes measured against the same pre-state, so it replays highest
	// start first; everything else replays in order.
	original := "foo\nbar\nbaz"
	v, sb, c := newTracked(t, original)

	if _, err := v.Insert(pos(1, 3), "!!"); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Delete(pos(2, 0), pos(2, 1), pos(3, 1), pos(3, 3)); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Replace(pos(1, 0), pos(1, 3), "quux"); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Delete(pos(1, 4)); err != nil {
		t.Fatal(err)
	}

	replica := buffer.NewSliceBufferFromString(original)
	for _, data := range c.contentEvents {
		allDeletes := len(data.Changes) > 1
		for _, ch := range data.Changes {
			if ch.NewText != "" {
				allDeletes = false
			}
		}
		if allDeletes {
			for i := len(data.Changes) - 1; i >= 0; i-- {
				ch := data.Changes[i]
				if _, err := replica.Replace(ch.Start, ch.End, ch.NewText); err != nil {
					t.Fatalf("replay failed: %v", err)
				}
			}
		} else {
			for _, ch := range data.Changes {
				if _, err := replica.Replace(ch.Start, ch.End, ch.NewText); err != nil {
					t.Fatalf("replay failed: %v", err)
				}
			}
		}
	}

	if string(replica.Bytes()) != string(sb.Bytes()) {
		t.Errorf("replayed content %q differs from tracked content %q", replica.Bytes(), sb.Bytes())
	}
}
