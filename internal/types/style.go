package types

// StyledRange is a span of one line with a named style, produced by the
// syntax highlighter and consumed by the renderer. Columns are rune
// indexes, end exclusive.
type StyledRange struct {
	StartCol int
	EndCol   int
	Style    string // capture name, e.g. "keyword", "string", "comment"
}
