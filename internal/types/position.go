// internal/types/position.go
package types

import "fmt"

// Position represents a cursor or text position within the buffer.
// Line is the 1-based line number, matching how editors number lines.
// Col is the 0-based column (rune) index within the line.
// Using Rune index is important for Unicode handling.
type Position struct {
	Line int
	Col  int // Rune index
}

// Compare returns -1, 0 or 1 depending on whether p is before, equal to
// or after other. Positions order lexicographically: line first, then column.
func (p Position) Compare(other Position) int {
	if p.Line != other.Line {
		if p.Line < other.Line {
			return -1
		}
		return 1
	}
	if p.Col != other.Col {
		if p.Col < other.Col {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether p is strictly before other.
func (p Position) Less(other Position) bool {
	return p.Compare(other) < 0
}

// String renders the position in "line.column" form, e.g. "1.6".
func (p Position) String() string {
	return fmt.Sprintf("%d.%d", p.Line, p.Col)
}

// Range is a span of buffer content between Start (inclusive) and End
// (exclusive). A well-formed Range has Start <= End.
type Range struct {
	Start Position
	End   Position
}

// IsEmpty reports whether the range covers no content.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains reports whether pos lies inside the range.
func (r Range) Contains(pos Position) bool {
	return !pos.Less(r.Start) && pos.Less(r.End)
}
