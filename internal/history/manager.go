package history

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/Akuli/porcupine-sub000/internal/buffer"
	"github.com/Akuli/porcupine-sub000/internal/logger"
	"github.com/Akuli/porcupine-sub000/internal/types"
)

const DefaultMaxHistory = 100

// EditorInterface defines the methods the history manager needs from its
// owner. EmitChanges delivers the diff of one whole undo/redo step as a
// single notification.
type EditorInterface interface {
	GetBuffer() buffer.Buffer
	SetCursor(types.Position)
	EmitChanges(changes types.ChangeSet, edits []types.EditInfo)
}

// Manager handles the undo/redo stack. Entries live in groups; one group
// is one undo step.
type Manager struct {
	editor       EditorInterface
	groups       [][]Entry
	currentIndex int // Index of the next group to potentially Redo
	open         bool
	maxHistory   int
	mutex        sync.Mutex
}

// NewManager creates a history manager.
func NewManager(editor EditorInterface, maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{
		editor:     editor,
		groups:     make([][]Entry, 0, maxHistory),
		maxHistory: maxHistory,
	}
}

// Record adds a new entry, clearing any redo history. Outside a group the
// entry becomes its own undo step; inside a group it joins the step.
func (m *Manager) Record(e Entry) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.truncateRedoLocked()

	if m.open && len(m.groups) > 0 {
		last := len(m.groups) - 1
		m.groups[last] = append(m.groups[last], e)
	} else {
		m.groups = append(m.groups, []Entry{e})
	}

	if len(m.groups) > m.maxHistory {
		m.groups = m.groups[len(m.groups)-m.maxHistory:]
	}
	m.currentIndex = len(m.groups)

	logger.Debugf("History: Recorded %v entry. Groups: %d", e.Type, len(m.groups))
}

// BeginGroup marks an undo boundary and starts collecting subsequent
// entries into one step.
func (m *Manager) BeginGroup() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.truncateRedoLocked()
	m.groups = append(m.groups, []Entry{})
	m.currentIndex = len(m.groups)
	m.open = true
}

// EndGroup closes the currently collecting step. An empty group is
// dropped.
func (m *Manager) EndGroup() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.open {
		return
	}
	m.open = false
	if len(m.groups) > 0 && len(m.groups[len(m.groups)-1]) == 0 {
		m.groups = m.groups[:len(m.groups)-1]
		m.currentIndex = len(m.groups)
	}
}

// truncateRedoLocked drops groups past the current index (must hold lock).
func (m *Manager) truncateRedoLocked() {
	if m.currentIndex < len(m.groups) {
		m.groups = m.groups[:m.currentIndex]
	}
}

// Undo reverts the most recent group as one step.
func (m *Manager) Undo() (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.currentIndex <= 0 {
		logger.Debugf("History: Nothing to undo.")
		return false, nil
	}

	m.currentIndex--
	group := m.groups[m.currentIndex]
	logger.Debugf("History: Undoing group %d (%d entries)", m.currentIndex, len(group))

	buf := m.editor.GetBuffer()
	var changes types.ChangeSet
	var edits []types.EditInfo

	// Apply inverse operations, newest entry first.
	for i := len(group) - 1; i >= 0; i-- {
		e := group[i]
		switch e.Type {
		case InsertAction:
			// Undo an insert by deleting the inserted text.
			edit, err := buf.Delete(e.Start, e.End)
			if err != nil {
				m.currentIndex++
				return false, fmt.Errorf("undo failed: %w", err)
			}
			changes = append(changes, types.Change{
				Start:     e.Start,
				End:       e.End,
				OldLength: utf8.RuneCountInString(e.Text),
				NewText:   "",
			})
			edits = append(edits, edit)

		case DeleteAction:
			// Undo a delete by inserting the deleted text back.
			edit, err := buf.Insert(e.Start, e.Text)
			if err != nil {
				m.currentIndex++
				return false, fmt.Errorf("undo failed: %w", err)
			}
			changes = append(changes, types.Change{
				Start:   e.Start,
				End:     e.Start,
				NewText: e.Text,
			})
			edits = append(edits, edit)
		}
	}

	if len(group) > 0 {
		m.editor.SetCursor(group[0].CursorBefore)
	}
	if len(changes) > 0 {
		m.editor.EmitChanges(changes, edits)
	}
	return true, nil
}

// Redo reapplies the most recently undone group as one step.
func (m *Manager) Redo() (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.currentIndex >= len(m.groups) {
		logger.Debugf("History: Nothing to redo.")
		return false, nil
	}

	group := m.groups[m.currentIndex]
	logger.Debugf("History: Redoing group %d (%d entries)", m.currentIndex, len(group))

	buf := m.editor.GetBuffer()
	var changes types.ChangeSet
	var edits []types.EditInfo
	var finalCursor types.Position

	for _, e := range group {
		switch e.Type {
		case InsertAction:
			edit, err := buf.Insert(e.Start, e.Text)
			if err != nil {
				return false, fmt.Errorf("redo failed: %w", err)
			}
			changes = append(changes, types.Change{
				Start:   e.Start,
				End:     e.Start,
				NewText: e.Text,
			})
			edits = append(edits, edit)
			finalCursor = e.End

		case DeleteAction:
			edit, err := buf.Delete(e.Start, e.End)
			if err != nil {
				return false, fmt.Errorf("redo failed: %w", err)
			}
			changes = append(changes, types.Change{
				Start:     e.Start,
				End:       e.End,
				OldLength: utf8.RuneCountInString(e.Text),
				NewText:   "",
			})
			edits = append(edits, edit)
			finalCursor = e.Start
		}
	}

	m.currentIndex++

	if len(group) > 0 {
		m.editor.SetCursor(finalCursor)
	}
	if len(changes) > 0 {
		m.editor.EmitChanges(changes, edits)
	}
	return true, nil
}

// Clear resets the history stack. Call this on file load.
func (m *Manager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.groups = m.groups[:0]
	m.currentIndex = 0
	m.open = false
	logger.Debugf("History: Cleared.")
}

// CanUndo returns true if there are groups that can be undone.
func (m *Manager) CanUndo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.currentIndex > 0
}

// CanRedo returns true if there are groups that can be redone.
func (m *Manager) CanRedo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.currentIndex < len(m.groups)
}
