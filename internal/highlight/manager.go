// Package highlight keeps an incrementally reparsed syntax tree in sync
// with the tracked buffer and exposes per-line styled ranges for drawing.
// It is a pure consumer: it reacts to ContentChanged notifications and
// never touches the buffer's content.
package highlight

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/Akuli/porcupine-sub000/internal/buffer"
	"github.com/Akuli/porcupine-sub000/internal/event"
	"github.com/Akuli/porcupine-sub000/internal/logger"
	"github.com/Akuli/porcupine-sub000/internal/types"
	sitter "github.com/smacker/go-tree-sitter"
	golang "github.com/smacker/go-tree-sitter/golang"
)

//go:embed queries/go/highlights.scm
var goHighlightsQuery []byte

// Manager owns the parser, the current syntax tree and the computed
// per-line styles for one buffer.
type Manager struct {
	buf    buffer.Buffer
	parser *sitter.Parser
	query  *sitter.Query

	mutex      sync.RWMutex
	tree       *sitter.Tree
	lineStyles map[int][]types.StyledRange
}

// NewManager creates a highlight manager for the buffer. Only the Go
// grammar is wired up for now; language detection by file name can come
// later.
func NewManager(buf buffer.Buffer) (*Manager, error) {
	lang := golang.GetLanguage()
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	query, err := sitter.NewQuery(goHighlightsQuery, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to parse highlight query: %w", err)
	}

	return &Manager{
		buf:        buf,
		parser:     parser,
		query:      query,
		lineStyles: make(map[int][]types.StyledRange),
	}, nil
}

// Subscribe hooks the manager to the event bus: edits feed the
// incremental parser, a buffer load triggers a full rehighlight.
func (m *Manager) Subscribe(events *event.Manager) {
	events.Subscribe(event.TypeContentChanged, func(e event.Event) bool {
		if data, ok := e.Data.(event.ContentChangedData); ok {
			if err := m.ApplyEdits(data.Edits); err != nil {
				logger.Warnf("highlight: reparse after edit failed: %v", err)
			}
		}
		return false
	})
	events.Subscribe(event.TypeBufferLoaded, func(e event.Event) bool {
		if err := m.Rehighlight(); err != nil {
			logger.Warnf("highlight: full highlight failed: %v", err)
		}
		return false
	})
}

// ApplyEdits advances the syntax tree past the given edits and reparses
// incrementally.
func (m *Manager) ApplyEdits(edits []types.EditInfo) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.tree != nil {
		for _, e := range edits {
			m.tree.Edit(e.ToSitter())
		}
	}
	return m.reparseLocked()
}

// Rehighlight throws the old tree away and parses from scratch.
func (m *Manager) Rehighlight() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.tree != nil {
		m.tree.Close()
		m.tree = nil
	}
	return m.reparseLocked()
}

// HighlightsForLine returns the styled ranges computed for a 1-based
// line number.
func (m *Manager) HighlightsForLine(lineNum int) []types.StyledRange {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.lineStyles[lineNum]
}

// Close releases the parser's tree.
func (m *Manager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.tree != nil {
		m.tree.Close()
		m.tree = nil
	}
	m.query.Close()
}

func (m *Manager) reparseLocked() error {
	source := m.buf.Bytes()
	tree, err := m.parser.ParseCtx(context.Background(), m.tree, source)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	if m.tree != nil {
		m.tree.Close()
	}
	m.tree = tree
	m.computeStylesLocked()
	return nil
}

// computeStylesLocked runs the highlight query over the current tree and
// rebuilds the per-line style table.
func (m *Manager) computeStylesLocked() {
	styles := make(map[int][]types.StyledRange)

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(m.query, m.tree.RootNode())

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			name := m.query.CaptureNameForId(capture.Index)
			sp := capture.Node.StartPoint()
			ep := capture.Node.EndPoint()

			for row := sp.Row; row <= ep.Row; row++ {
				lineNum := int(row) + 1
				line, err := m.buf.Line(lineNum)
				if err != nil {
					continue
				}
				startCol := 0
				endCol := utf8.RuneCount(line)
				if row == sp.Row {
					startCol = byteColToRuneCol(line, int(sp.Column))
				}
				if row == ep.Row {
					endCol = byteColToRuneCol(line, int(ep.Column))
				}
				if startCol >= endCol {
					continue
				}
				styles[lineNum] = append(styles[lineNum], types.StyledRange{
					StartCol: startCol,
					EndCol:   endCol,
					Style:    name,
				})
			}
		}
	}

	m.lineStyles = styles
}

// byteColToRuneCol converts a byte offset within a line to a rune index.
func byteColToRuneCol(line []byte, byteCol int) int {
	if byteCol > len(line) {
		byteCol = len(line)
	}
	return utf8.RuneCount(line[:byteCol])
}
