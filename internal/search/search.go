// Package search implements plain-text find and replace over a tracked
// view. Matches are located on a snapshot of the buffer first, then
// replacements are applied through the tracker so history, cursor and
// change notifications behave like any other edit.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/Akuli/porcupine-sub000/internal/track"
	"github.com/Akuli/porcupine-sub000/internal/types"
)

// Match is one occurrence of a needle. End is exclusive.
type Match struct {
	Start types.Position
	End   types.Position
}

// FindAll returns every occurrence of needle in the view's buffer, in
// ascending position order. Matches do not span line boundaries.
func FindAll(v *track.View, needle string) []Match {
	if needle == "" || strings.Contains(needle, "\n") {
		return nil
	}

	var matches []Match
	needleRunes := utf8.RuneCountInString(needle)
	lines := v.Buffer().Lines()
	for i, lineBytes := range lines {
		line := string(lineBytes)
		byteOff := 0
		for {
			idx := strings.Index(line[byteOff:], needle)
			if idx < 0 {
				break
			}
			startByte := byteOff + idx
			startCol := utf8.RuneCountInString(line[:startByte])
			matches = append(matches, Match{
				Start: types.Position{Line: i + 1, Col: startCol},
				End:   types.Position{Line: i + 1, Col: startCol + needleRunes},
			})
			byteOff = startByte + len(needle)
		}
	}
	return matches
}

// FindNext returns the first match at or after the given position,
// wrapping around to the top of the buffer. ok is false when the needle
// does not occur at all.
func FindNext(v *track.View, needle string, from types.Position) (Match, bool) {
	matches := FindAll(v, needle)
	if len(matches) == 0 {
		return Match{}, false
	}
	for _, m := range matches {
		if from.Compare(m.Start) <= 0 {
			return m, true
		}
	}
	return matches[0], true
}

// ReplaceAll replaces every occurrence of old with new as a single undo
// step, emitting one change notification for the whole operation. The
// match set is computed up front, so replacement text containing the
// needle does not cause rescanning. Returns the number of replacements.
func ReplaceAll(v *track.View, old, new string) (int, error) {
	matches := FindAll(v, old)
	if len(matches) == 0 {
		return 0, nil
	}

	if err := v.BeginBatch(); err != nil {
		return 0, err
	}
	defer v.FinishBatch()

	// Apply from the highest match down so earlier positions stay valid.
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if _, err := v.Replace(m.Start, m.End, new); err != nil {
			return 0, err
		}
	}
	return len(matches), nil
}
