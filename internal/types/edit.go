package types

import sitter "github.com/smacker/go-tree-sitter"

// EditInfo describes one committed edit in the byte/point coordinates that
// tree-sitter's incremental parser consumes. The buffer produces one of
// these per mutation, alongside the rune-based Change record.
type EditInfo struct {
	StartIndex     uint32       // Start byte of the edit
	OldEndIndex    uint32       // End byte of the old text
	NewEndIndex    uint32       // End byte of the new text
	StartPosition  sitter.Point // Start position (row, column)
	OldEndPosition sitter.Point // Old end position
	NewEndPosition sitter.Point // New end position
}

// ToSitter converts the edit to the input shape of (*sitter.Tree).Edit.
func (e EditInfo) ToSitter() sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  e.StartIndex,
		OldEndIndex: e.OldEndIndex,
		NewEndIndex: e.NewEndIndex,
		StartPoint:  e.StartPosition,
		OldEndPoint: e.OldEndPosition,
		NewEndPoint: e.NewEndPosition,
	}
}
