// internal/buffer/slice_buffer.go
package buffer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Akuli/porcupine-sub000/internal/types"
	sitter "github.com/smacker/go-tree-sitter"
)

// SliceBuffer stores the document as a slice of lines without their
// terminators. There is always at least one (possibly empty) line.
type SliceBuffer struct {
	lines    [][]byte
	filePath string
	modified bool
}

// NewSliceBuffer creates an empty SliceBuffer.
func NewSliceBuffer() *SliceBuffer {
	return &SliceBuffer{
		lines: [][]byte{[]byte("")},
	}
}

// NewSliceBufferFromString creates a buffer holding the given content.
func NewSliceBufferFromString(content string) *SliceBuffer {
	sb := NewSliceBuffer()
	if content != "" {
		parts := strings.Split(content, "\n")
		sb.lines = make([][]byte, len(parts))
		for i, part := range parts {
			sb.lines[i] = []byte(part)
		}
	}
	return sb
}

// Load reads a file into the buffer. Replaces existing content.
func (sb *SliceBuffer) Load(filePath string) error {
	sb.modified = false

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sb.lines = [][]byte{[]byte("")}
			sb.filePath = filePath
			return nil
		}
		return fmt.Errorf("failed to open file '%s': %w", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	newLines := [][]byte{}
	for scanner.Scan() {
		line := scanner.Bytes()
		lineCopy := make([]byte, len(line))
		copy(lineCopy, line)
		newLines = append(newLines, lineCopy)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file '%s': %w", filePath, err)
	}
	if len(newLines) == 0 {
		newLines = append(newLines, []byte(""))
	}
	sb.lines = newLines
	sb.filePath = filePath
	return nil
}

// Save writes the buffer content to the stored filePath, or to the given
// path if non-empty.
func (sb *SliceBuffer) Save(filePath string) error {
	path := sb.filePath
	if filePath != "" {
		path = filePath
	}
	if path == "" {
		return errors.New("no file path specified for saving")
	}

	if err := os.WriteFile(path, sb.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}

	sb.filePath = path
	sb.modified = false
	return nil
}

// Lines returns the underlying line slices.
func (sb *SliceBuffer) Lines() [][]byte {
	return sb.lines
}

// LineCount returns the number of lines.
func (sb *SliceBuffer) LineCount() int {
	return len(sb.lines)
}

// Line returns the content of the 1-based line number.
func (sb *SliceBuffer) Line(lineNum int) ([]byte, error) {
	if lineNum < 1 || lineNum > len(sb.lines) {
		return nil, fmt.Errorf("line %d out of bounds (1-%d): %w", lineNum, len(sb.lines), ErrOutOfRange)
	}
	return sb.lines[lineNum-1], nil
}

// Bytes returns the whole content joined with newlines. The implicit
// trailing terminator is not part of the content.
func (sb *SliceBuffer) Bytes() []byte {
	var buffer bytes.Buffer
	for i, line := range sb.lines {
		buffer.Write(line)
		if i < len(sb.lines)-1 {
			buffer.WriteByte('\n')
		}
	}
	return buffer.Bytes()
}

// FilePath returns the path the buffer was loaded from or saved to.
func (sb *SliceBuffer) FilePath() string {
	return sb.filePath
}

// IsModified returns true if the buffer has unsaved changes.
func (sb *SliceBuffer) IsModified() bool {
	return sb.modified
}

// SetModified overrides the modified flag.
func (sb *SliceBuffer) SetModified(modified bool) {
	sb.modified = modified
}

// --- Position arithmetic ---

// End returns the sentinel position just past the implicit trailing
// terminator: one line below the last line, column 0.
func (sb *SliceBuffer) End() types.Position {
	return types.Position{Line: len(sb.lines) + 1, Col: 0}
}

// LastPos returns the last real content position, i.e. End minus the
// implicit terminator.
func (sb *SliceBuffer) LastPos() types.Position {
	last := sb.lines[len(sb.lines)-1]
	return types.Position{Line: len(sb.lines), Col: utf8.RuneCount(last)}
}

// NormalizeEnd maps the sentinel position to LastPos and returns every
// other position unchanged.
func (sb *SliceBuffer) NormalizeEnd(pos types.Position) types.Position {
	if pos == sb.End() {
		return sb.LastPos()
	}
	return pos
}

// ValidatePos checks that pos denotes real content (or the sentinel).
func (sb *SliceBuffer) ValidatePos(pos types.Position) error {
	if pos == sb.End() {
		return nil
	}
	if pos.Line < 1 || pos.Line > len(sb.lines) {
		return fmt.Errorf("line %d out of bounds (1-%d): %w", pos.Line, len(sb.lines), ErrOutOfRange)
	}
	if pos.Col < 0 || pos.Col > utf8.RuneCount(sb.lines[pos.Line-1]) {
		return fmt.Errorf("column %d out of bounds on line %d: %w", pos.Col, pos.Line, ErrOutOfRange)
	}
	return nil
}

// CharCount counts the characters between start and end, newlines
// included. Both positions must be valid and start must not be after end.
func (sb *SliceBuffer) CharCount(start, end types.Position) (int, error) {
	start = sb.NormalizeEnd(start)
	end = sb.NormalizeEnd(end)
	if err := sb.ValidatePos(start); err != nil {
		return 0, err
	}
	if err := sb.ValidatePos(end); err != nil {
		return 0, err
	}
	if end.Less(start) {
		return 0, fmt.Errorf("start %v is after end %v: %w", start, end, ErrInvalidRange)
	}

	if start.Line == end.Line {
		return end.Col - start.Col, nil
	}
	// Rest of the start line plus its newline...
	count := utf8.RuneCount(sb.lines[start.Line-1]) - start.Col + 1
	// ...whole lines in between...
	for line := start.Line + 1; line < end.Line; line++ {
		count += utf8.RuneCount(sb.lines[line-1]) + 1
	}
	// ...and the head of the end line.
	count += end.Col
	return count, nil
}

// Slice returns the text between start and end.
func (sb *SliceBuffer) Slice(start, end types.Position) (string, error) {
	start = sb.NormalizeEnd(start)
	end = sb.NormalizeEnd(end)
	if err := sb.ValidatePos(start); err != nil {
		return "", err
	}
	if err := sb.ValidatePos(end); err != nil {
		return "", err
	}
	if end.Less(start) {
		return "", fmt.Errorf("start %v is after end %v: %w", start, end, ErrInvalidRange)
	}

	if start.Line == end.Line {
		line := sb.lines[start.Line-1]
		return string(line[byteOffsetForCol(line, start.Col):byteOffsetForCol(line, end.Col)]), nil
	}

	var out strings.Builder
	startLine := sb.lines[start.Line-1]
	out.Write(startLine[byteOffsetForCol(startLine, start.Col):])
	for line := start.Line + 1; line < end.Line; line++ {
		out.WriteByte('\n')
		out.Write(sb.lines[line-1])
	}
	out.WriteByte('\n')
	endLine := sb.lines[end.Line-1]
	out.Write(endLine[:byteOffsetForCol(endLine, end.Col)])
	return out.String(), nil
}

// --- Mutations ---

// Insert inserts text at a given position. Handles single and multiple
// lines. The sentinel position is accepted and means "append at the end".
func (sb *SliceBuffer) Insert(pos types.Position, text string) (types.EditInfo, error) {
	pos = sb.NormalizeEnd(pos)
	if err := sb.ValidatePos(pos); err != nil {
		return types.EditInfo{}, fmt.Errorf("invalid insert position: %w", err)
	}
	if text == "" {
		return types.EditInfo{}, nil
	}

	startByte := sb.absByteOffset(pos)
	startPoint := sb.point(pos)

	sb.spliceInsert(pos, text)
	sb.modified = true

	edit := types.EditInfo{
		StartIndex:     startByte,
		OldEndIndex:    startByte,
		NewEndIndex:    startByte + uint32(len(text)),
		StartPosition:  startPoint,
		OldEndPosition: startPoint,
		NewEndPosition: newEndPoint(startPoint, text),
	}
	return edit, nil
}

// Delete removes the text between start (inclusive) and end (exclusive).
func (sb *SliceBuffer) Delete(start, end types.Position) (types.EditInfo, error) {
	start = sb.NormalizeEnd(start)
	end = sb.NormalizeEnd(end)
	if err := sb.ValidatePos(start); err != nil {
		return types.EditInfo{}, fmt.Errorf("invalid delete range: %w", err)
	}
	if err := sb.ValidatePos(end); err != nil {
		return types.EditInfo{}, fmt.Errorf("invalid delete range: %w", err)
	}
	if end.Less(start) {
		return types.EditInfo{}, fmt.Errorf("delete start %v is after end %v: %w", start, end, ErrInvalidRange)
	}
	if start == end {
		return types.EditInfo{}, nil
	}

	startByte := sb.absByteOffset(start)
	startPoint := sb.point(start)
	oldEndByte := sb.absByteOffset(end)
	oldEndPoint := sb.point(end)

	sb.spliceDelete(start, end)
	sb.modified = true

	edit := types.EditInfo{
		StartIndex:     startByte,
		OldEndIndex:    oldEndByte,
		NewEndIndex:    startByte,
		StartPosition:  startPoint,
		OldEndPosition: oldEndPoint,
		NewEndPosition: startPoint,
	}
	return edit, nil
}

// Replace substitutes the text between start and end with the given text,
// as one edit.
func (sb *SliceBuffer) Replace(start, end types.Position, text string) (types.EditInfo, error) {
	start = sb.NormalizeEnd(start)
	end = sb.NormalizeEnd(end)
	if err := sb.ValidatePos(start); err != nil {
		return types.EditInfo{}, fmt.Errorf("invalid replace range: %w", err)
	}
	if err := sb.ValidatePos(end); err != nil {
		return types.EditInfo{}, fmt.Errorf("invalid replace range: %w", err)
	}
	if end.Less(start) {
		return types.EditInfo{}, fmt.Errorf("replace start %v is after end %v: %w", start, end, ErrInvalidRange)
	}

	startByte := sb.absByteOffset(start)
	startPoint := sb.point(start)
	oldEndByte := sb.absByteOffset(end)
	oldEndPoint := sb.point(end)

	if start != end {
		sb.spliceDelete(start, end)
	}
	if text != "" {
		sb.spliceInsert(start, text)
	}
	sb.modified = true

	edit := types.EditInfo{
		StartIndex:     startByte,
		OldEndIndex:    oldEndByte,
		NewEndIndex:    startByte + uint32(len(text)),
		StartPosition:  startPoint,
		OldEndPosition: oldEndPoint,
		NewEndPosition: newEndPoint(startPoint, text),
	}
	return edit, nil
}

// spliceInsert splices text into the line slice. pos must be validated
// and sentinel-normalized.
func (sb *SliceBuffer) spliceInsert(pos types.Position, text string) {
	lineIdx := pos.Line - 1
	currentLine := sb.lines[lineIdx]
	byteOffset := byteOffsetForCol(currentLine, pos.Col)
	insertLines := strings.Split(text, "\n")

	tail := make([]byte, len(currentLine[byteOffset:]))
	copy(tail, currentLine[byteOffset:])

	head := append([]byte{}, currentLine[:byteOffset]...)
	sb.lines[lineIdx] = append(head, insertLines[0]...)

	if len(insertLines) > 1 {
		newLines := make([][]byte, len(insertLines)-1)
		for i := 1; i < len(insertLines); i++ {
			newLines[i-1] = []byte(insertLines[i])
		}
		newLines[len(newLines)-1] = append(newLines[len(newLines)-1], tail...)
		rest := append([][]byte{}, sb.lines[lineIdx+1:]...)
		sb.lines = append(sb.lines[:lineIdx+1], append(newLines, rest...)...)
	} else {
		sb.lines[lineIdx] = append(sb.lines[lineIdx], tail...)
	}
}

// spliceDelete splices the given range out of the line slice. Both
// positions must be validated, sentinel-normalized and ordered.
func (sb *SliceBuffer) spliceDelete(start, end types.Position) {
	startIdx := start.Line - 1
	endIdx := end.Line - 1
	startLine := sb.lines[startIdx]
	startOffset := byteOffsetForCol(startLine, start.Col)

	if startIdx == endIdx {
		endOffset := byteOffsetForCol(startLine, end.Col)
		merged := append([]byte{}, startLine[:startOffset]...)
		sb.lines[startIdx] = append(merged, startLine[endOffset:]...)
		return
	}

	endLine := sb.lines[endIdx]
	endOffset := byteOffsetForCol(endLine, end.Col)
	merged := append([]byte{}, startLine[:startOffset]...)
	sb.lines[startIdx] = append(merged, endLine[endOffset:]...)
	sb.lines = append(sb.lines[:startIdx+1], sb.lines[endIdx+1:]...)
}

// absByteOffset returns the byte offset of a validated, normalized
// position from the start of the content.
func (sb *SliceBuffer) absByteOffset(pos types.Position) uint32 {
	offset := 0
	for i := 0; i < pos.Line-1; i++ {
		offset += len(sb.lines[i]) + 1 // line plus its newline
	}
	offset += byteOffsetForCol(sb.lines[pos.Line-1], pos.Col)
	return uint32(offset)
}

// point converts a validated, normalized position to a tree-sitter point
// (0-based row, byte column).
func (sb *SliceBuffer) point(pos types.Position) sitter.Point {
	return sitter.Point{
		Row:    uint32(pos.Line - 1),
		Column: uint32(byteOffsetForCol(sb.lines[pos.Line-1], pos.Col)),
	}
}

// newEndPoint computes where inserted text ends, given its start point.
func newEndPoint(start sitter.Point, text string) sitter.Point {
	lastNewline := strings.LastIndexByte(text, '\n')
	if lastNewline < 0 {
		return sitter.Point{Row: start.Row, Column: start.Column + uint32(len(text))}
	}
	return sitter.Point{
		Row:    start.Row + uint32(strings.Count(text, "\n")),
		Column: uint32(len(text) - lastNewline - 1),
	}
}

// byteOffsetForCol returns the byte offset of a rune column within a line.
// Columns past the end of the line map to the end of the line.
func byteOffsetForCol(line []byte, col int) int {
	offset := 0
	for i := 0; i < col && offset < len(line); i++ {
		_, size := utf8.DecodeRune(line[offset:])
		offset += size
	}
	return offset
}

// Ensure SliceBuffer satisfies the Buffer interface.
var _ Buffer = (*SliceBuffer)(nil)
