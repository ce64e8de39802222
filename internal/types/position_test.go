package types

import "testing"

func TestPositionCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want int
	}{
		{"equal", Position{1, 5}, Position{1, 5}, 0},
		{"earlier line", Position{1, 9}, Position{2, 0}, -1},
		{"later line", Position{3, 0}, Position{2, 9}, 1},
		{"same line earlier col", Position{2, 1}, Position{2, 4}, -1},
		{"same line later col", Position{2, 4}, Position{2, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v): expected %d, got %d", tt.a, tt.b, tt.want, got)
			}
			if want := tt.want < 0; tt.a.Less(tt.b) != want {
				t.Errorf("Less(%v, %v): expected %v", tt.a, tt.b, want)
			}
		})
	}
}

func TestPositionString(t *testing.T) {
	if got := (Position{Line: 3, Col: 14}).String(); got != "3.14" {
		t.Errorf("expected \"3.14\", got %q", got)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: Position{2, 3}, End: Position{4, 1}}

	inside := []Position{{2, 3}, {2, 9}, {3, 0}, {4, 0}}
	for _, p := range inside {
		if !r.Contains(p) {
			t.Errorf("expected %v inside %v", p, r)
		}
	}
	outside := []Position{{2, 2}, {4, 1}, {5, 0}, {1, 9}}
	for _, p := range outside {
		if r.Contains(p) {
			t.Errorf("expected %v outside %v", p, r)
		}
	}

	if !(Range{Start: Position{1, 1}, End: Position{1, 1}}).IsEmpty() {
		t.Error("zero-width range should be empty")
	}
}

func TestChangeIsNoop(t *testing.T) {
	noop := Change{Start: Position{1, 2}, End: Position{1, 2}}
	if !noop.IsNoop() {
		t.Error("empty change should be a no-op")
	}
	insert := Change{Start: Position{1, 2}, End: Position{1, 2}, NewText: "x"}
	if insert.IsNoop() {
		t.Error("insert is not a no-op")
	}
	del := Change{Start: Position{1, 2}, End: Position{1, 3}, OldLength: 1}
	if del.IsNoop() {
		t.Error("delete is not a no-op")
	}
}
