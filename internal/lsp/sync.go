// Package lsp translates tracked buffer changes into the incremental
// document-sync shape of the language server protocol. Only the
// translation and versioning live here; wiring the deltas to an actual
// server transport is someone else's job.
package lsp

import (
	"sync"

	"github.com/Akuli/porcupine-sub000/internal/logger"
	"github.com/Akuli/porcupine-sub000/internal/types"
)

// Position is an LSP position: 0-based line and character.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is an LSP range, end exclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// ContentChangeEvent is one incremental delta of a didChange
// notification. A nil Range means a full-content replacement.
type ContentChangeEvent struct {
	Range       *Range `json:"range,omitempty"`
	RangeLength int    `json:"rangeLength,omitempty"`
	Text        string `json:"text"`
}

// SyncState accumulates deltas for one document and hands them out in
// versioned batches.
type SyncState struct {
	mu      sync.Mutex
	version int
	pending []ContentChangeEvent
}

// NewSyncState creates sync state for a freshly opened document,
// starting at version 1.
func NewSyncState() *SyncState {
	return &SyncState{version: 1}
}

// Version returns the current document version.
func (s *SyncState) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Push converts a delivered ChangeSet into pending deltas. didChange
// applies each delta against the result of the previous one, so a
// multi-range delete set, whose records are all measured against the
// same pre-delete content and delivered in ascending order, is queued
// highest start first. Everything else already comes in application
// order and keeps it.
func (s *SyncState) Push(changes types.ChangeSet) {
	if len(changes) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(changes) > 1 && allDeletes(changes) {
		for i := len(changes) - 1; i >= 0; i-- {
			s.pending = append(s.pending, toDelta(changes[i]))
		}
	} else {
		for _, c := range changes {
			s.pending = append(s.pending, toDelta(c))
		}
	}
	logger.Debugf("lsp: %d pending deltas", len(s.pending))
}

func allDeletes(changes types.ChangeSet) bool {
	for _, c := range changes {
		if c.NewText != "" {
			return false
		}
	}
	return true
}

func toDelta(c types.Change) ContentChangeEvent {
	return ContentChangeEvent{
		Range: &Range{
			Start: toLSP(c.Start),
			End:   toLSP(c.End),
		},
		RangeLength: c.OldLength,
		Text:        c.NewText,
	}
}

// PushFull queues a full-content replacement, e.g. after reload.
func (s *SyncState) PushFull(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A full sync supersedes any pending incremental deltas.
	s.pending = []ContentChangeEvent{{Text: content}}
}

// Flush returns the pending deltas along with the version the document
// has after applying them, and clears the queue. An empty queue returns
// the current version and nil.
func (s *SyncState) Flush() (int, []ContentChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return s.version, nil
	}
	deltas := s.pending
	s.pending = nil
	s.version++
	return s.version, deltas
}

// toLSP converts a 1-based buffer position to a 0-based LSP position.
// Character offsets are rune counts; clients negotiating UTF-8 offsets
// get exact values.
func toLSP(p types.Position) Position {
	return Position{Line: p.Line - 1, Character: p.Col}
}
