// internal/buffer/buffer.go
package buffer

import "github.com/Akuli/porcupine-sub000/internal/types"

// Buffer defines the interface for text buffer storage.
//
// Positions use 1-based lines and 0-based rune columns. The buffer models
// one implicit trailing terminator after the last line: End() is the
// position just past it, and indexes resolving there must be normalized
// with NormalizeEnd before they mean anything content-wise.
type Buffer interface {
	Load(filePath string) error
	Save(filePath string) error
	Lines() [][]byte
	Line(lineNum int) ([]byte, error)
	LineCount() int
	Bytes() []byte
	FilePath() string
	IsModified() bool
	SetModified(modified bool)

	// End returns the sentinel position past the implicit trailing
	// terminator; LastPos returns the last real content position
	// ("end minus one character").
	End() types.Position
	LastPos() types.Position
	NormalizeEnd(pos types.Position) types.Position

	ValidatePos(pos types.Position) error
	CharCount(start, end types.Position) (int, error)
	Slice(start, end types.Position) (string, error)

	// Mutations return EditInfo for incremental reparsing.
	Insert(pos types.Position, text string) (types.EditInfo, error)
	Delete(start, end types.Position) (types.EditInfo, error)
	Replace(start, end types.Position, text string) (types.EditInfo, error)
}
