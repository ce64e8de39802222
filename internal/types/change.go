package types

// Change is the minimal record describing one content mutation: OldLength
// characters between Start and End get replaced with NewText.
//
// Insertions have OldLength == 0 and Start == End. Deletions have an empty
// NewText. OldLength is measured against the pre-mutation buffer and is not
// derivable from the positions alone: when the removed span covers several
// lines, the column numbers of Start and End say nothing about how much text
// was in between.
type Change struct {
	Start     Position
	End       Position
	OldLength int
	NewText   string
}

// IsNoop reports whether the change neither removes nor adds anything.
func (c Change) IsNoop() bool {
	return c.Start == c.End && c.OldLength == 0 && c.NewText == ""
}

// ChangeSet is one or more Change records delivered as a single
// notification, ordered chronologically (first applied first).
type ChangeSet []Change
