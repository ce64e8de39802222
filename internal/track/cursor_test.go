package track

import (
	"testing"

	"github.com/Akuli/porcupine-sub000/internal/types"
)

func TestSetCursor(t *testing.T) {
	t.Run("emits on change only", func(t *testing.T) {
		v, _, c := newTracked(t, "hello")
		v.SetCursor(pos(1, 3))
		v.SetCursor(pos(1, 3))
		v.SetCursor(pos(1, 3))
		if len(c.cursorEvents) != 1 {
			t.Fatalf("expected one cursor event, got %d", len(c.cursorEvents))
		}
		if c.cursorEvents[0] != pos(1, 3) {
			t.Errorf("expected 1.3, got %v", c.cursorEvents[0])
		}
	})

	t.Run("clamps out of bounds positions", func(t *testing.T) {
		v, _, _ := newTracked(t, "foo\nba")
		v.SetCursor(pos(99, 99))
		if got := v.Cursor(); got != pos(2, 2) {
			t.Errorf("expected clamp to 2.2, got %v", got)
		}
		v.SetCursor(pos(-5, -5))
		if got := v.Cursor(); got != pos(1, 0) {
			t.Errorf("expected clamp to 1.0, got %v", got)
		}
	})

	t.Run("normalizes end sentinel", func(t *testing.T) {
		v, _, _ := newTracked(t, "foo")
		v.SetCursor(pos(2, 0))
		if got := v.Cursor(); got != pos(1, 3) {
			t.Errorf("expected 1.3, got %v", got)
		}
	})

	t.Run("repeated polling stays quiet", func(t *testing.T) {
		v, _, c := newTracked(t, "hello")
		v.SetCursor(pos(1, 2))
		before := len(c.cursorEvents)
		tr := v.Tracker()
		tr.CheckCursor()
		tr.CheckCursor()
		tr.CheckCursor()
		if len(c.cursorEvents) != before {
			t.Errorf("CheckCursor with no movement emitted %d extra events", len(c.cursorEvents)-before)
		}
	})
}

func TestCursorFollowsEdits(t *testing.T) {
	t.Run("insert before cursor shifts it", func(t *testing.T) {
		v, _, _ := newTracked(t, "world")
		v.SetCursor(pos(1, 5))
		if _, err := v.Insert(pos(1, 0), "hello "); err != nil {
			t.Fatal(err)
		}
		if got := v.Cursor(); got != pos(1, 11) {
			t.Errorf("expected 1.11, got %v", got)
		}
	})

	t.Run("insert at cursor rides along", func(t *testing.T) {
		v, _, _ := newTracked(t, "ab")
		v.SetCursor(pos(1, 1))
		if _, err := v.Insert(pos(1, 1), "xyz"); err != nil {
			t.Fatal(err)
		}
		if got := v.Cursor(); got != pos(1, 4) {
			t.Errorf("expected 1.4, got %v", got)
		}
	})

	t.Run("insert after cursor leaves it alone", func(t *testing.T) {
		v, _, c := newTracked(t, "ab")
		v.SetCursor(pos(1, 1))
		events := len(c.cursorEvents)
		if _, err := v.Insert(pos(1, 2), "z"); err != nil {
			t.Fatal(err)
		}
		if got := v.Cursor(); got != pos(1, 1) {
			t.Errorf("expected 1.1, got %v", got)
		}
		if len(c.cursorEvents) != events {
			t.Error("no cursor event expected")
		}
	})

	t.Run("multiline insert shifts lines below", func(t *testing.T) {
		v, _, _ := newTracked(t, "foo\nbar")
		v.SetCursor(pos(2, 2))
		if _, err := v.Insert(pos(1, 0), "x\ny\n"); err != nil {
			t.Fatal(err)
		}
		if got := v.Cursor(); got != pos(4, 2) {
			t.Errorf("expected 4.2, got %v", got)
		}
	})

	t.Run("delete before cursor pulls it back", func(t *testing.T) {
		v, _, _ := newTracked(t, "hello world")
		v.SetCursor(pos(1, 11))
		if _, err := v.Delete(pos(1, 0), pos(1, 6)); err != nil {
			t.Fatal(err)
		}
		if got := v.Cursor(); got != pos(1, 5) {
			t.Errorf("expected 1.5, got %v", got)
		}
	})

	t.Run("cursor inside deleted range collapses to start", func(t *testing.T) {
		v, _, _ := newTracked(t, "hello world")
		v.SetCursor(pos(1, 8))
		if _, err := v.Delete(pos(1, 5), pos(1, 11)); err != nil {
			t.Fatal(err)
		}
		if got := v.Cursor(); got != pos(1, 5) {
			t.Errorf("expected 1.5, got %v", got)
		}
	})

	t.Run("multi-range delete nets one cursor event", func(t *testing.T) {
		v, _, c := newTracked(t, "foobarbaz")
		v.SetCursor(pos(1, 9))
		events := len(c.cursorEvents)
		if _, err := v.Delete(pos(1, 0), pos(1, 3), pos(1, 6), pos(1, 9)); err != nil {
			t.Fatal(err)
		}
		if got := v.Cursor(); got != pos(1, 3) {
			t.Errorf("expected 1.3, got %v", got)
		}
		if len(c.cursorEvents)-events != 1 {
			t.Errorf("expected exactly one cursor event, got %d", len(c.cursorEvents)-events)
		}
	})
}

func TestTransformDelete(t *testing.T) {
	r := types.Range{Start: pos(2, 1), End: pos(4, 2)}

	tests := []struct {
		name string
		in   types.Position
		want types.Position
	}{
		{"before range", pos(1, 5), pos(1, 5)},
		{"at range start", pos(2, 1), pos(2, 1)},
		{"inside range", pos(3, 0), pos(2, 1)},
		{"on end line after range", pos(4, 5), pos(2, 4)},
		{"below range", pos(6, 3), pos(4, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transformDelete(tt.in, r); got != tt.want {
				t.Errorf("transformDelete(%v): expected %v, got %v", tt.in, tt.want, got)
			}
		})
	}
}
