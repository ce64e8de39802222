package tui

import (
	"fmt"
	"math"

	"github.com/Akuli/porcupine-sub000/internal/buffer"
	"github.com/Akuli/porcupine-sub000/internal/logger"
	"github.com/Akuli/porcupine-sub000/internal/types"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Highlighter supplies styled ranges for a 1-based line number.
type Highlighter interface {
	HighlightsForLine(lineNum int) []types.StyledRange
}

// ViewState is everything the draw routines need to render one frame.
type ViewState struct {
	Buffer      buffer.Buffer
	Cursor      types.Position
	ViewLine    int // first visible line, 1-based
	ViewCol     int // first visible visual column
	TabWidth    int
	Highlighter Highlighter
}

// styleForCapture maps highlight capture names to terminal styles.
func styleForCapture(name string) tcell.Style {
	switch name {
	case "keyword":
		return tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	case "string":
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case "comment":
		return tcell.StyleDefault.Foreground(tcell.ColorGray).Italic(true)
	case "number", "constant":
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case "type":
		return tcell.StyleDefault.Foreground(tcell.ColorTeal)
	case "function", "function.call":
		return tcell.StyleDefault.Foreground(tcell.ColorBlue)
	case "namespace", "property", "string.escape":
		return tcell.StyleDefault.Foreground(tcell.ColorOlive)
	default:
		return tcell.StyleDefault
	}
}

func calculateVisualColumn(line []byte, runeIndex int) int {
	if runeIndex <= 0 {
		return 0
	}
	visualWidth := 0
	currentRuneIndex := 0

	gr := uniseg.NewGraphemes(string(line))
	for gr.Next() {
		if currentRuneIndex >= runeIndex {
			break
		}
		visualWidth += gr.Width()
		currentRuneIndex += len(gr.Runes())
	}

	return visualWidth
}

// gutterWidth computes the line number gutter width for the buffer, or 0
// when the screen is too narrow for one.
func gutterWidth(lineCount, screenWidth int) (int, int) {
	if lineCount <= 0 {
		lineCount = 1
	}
	maxDigits := int(math.Log10(float64(lineCount))) + 1
	const lineNumberPadding = 1
	gw := maxDigits + lineNumberPadding
	if gw >= screenWidth {
		return 0, maxDigits
	}
	return gw, maxDigits
}

// DrawBuffer draws the visible portion of the buffer plus a line number
// gutter.
func DrawBuffer(tuiManager *TUI, state *ViewState) {
	defaultStyle := tcell.StyleDefault
	lineNumberStyle := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)

	width, height := tuiManager.Size()
	statusBarHeight := 1
	viewHeight := height - statusBarHeight
	if viewHeight <= 0 || width <= 0 {
		return
	}

	lines := state.Buffer.Lines()
	gw, maxDigits := gutterWidth(len(lines), width)
	textAreaWidth := width - gw

	tabWidth := state.TabWidth
	if tabWidth <= 0 {
		tabWidth = 4
	}

	for screenY := 0; screenY < viewHeight; screenY++ {
		lineNum := screenY + state.ViewLine // 1-based

		for fillX := 0; fillX < width; fillX++ {
			tuiManager.screen.SetContent(fillX, screenY, ' ', nil, defaultStyle)
		}

		if gw > 0 && lineNum >= 1 && lineNum <= len(lines) {
			currentLineStyle := lineNumberStyle
			if state.Cursor.Line == lineNum {
				currentLineStyle = lineNumberStyle.Bold(true)
			}
			lineNumStr := fmt.Sprintf("%*d", maxDigits, lineNum)
			for i, r := range lineNumStr {
				if i < maxDigits {
					tuiManager.screen.SetContent(i, screenY, r, nil, currentLineStyle)
				}
			}
		}

		if lineNum < 1 || lineNum > len(lines) {
			continue
		}

		lineBytes := lines[lineNum-1]
		var lineStyles []types.StyledRange
		if state.Highlighter != nil {
			lineStyles = state.Highlighter.HighlightsForLine(lineNum)
		}

		gr := uniseg.NewGraphemes(string(lineBytes))
		currentVisualX := 0
		currentRuneIndex := 0

		for gr.Next() {
			clusterRunes := gr.Runes()
			clusterWidth := gr.Width()
			clusterVisualStart := currentVisualX
			clusterVisualEnd := currentVisualX + clusterWidth

			screenX := (clusterVisualStart - state.ViewCol) + gw

			if clusterVisualEnd > state.ViewCol && clusterVisualStart < state.ViewCol+textAreaWidth {
				currentStyle := defaultStyle
				for _, sr := range lineStyles {
					if currentRuneIndex >= sr.StartCol && currentRuneIndex < sr.EndCol {
						currentStyle = styleForCapture(sr.Style)
						break
					}
				}

				if screenX >= gw && screenX < width {
					mainRune := clusterRunes[0]
					combining := clusterRunes[1:]

					if mainRune == '\t' {
						visualScreenX := currentVisualX - state.ViewCol + gw
						spacesToDraw := tabWidth - (visualScreenX % tabWidth)
						for i := 0; i < spacesToDraw && screenX+i < width; i++ {
							tuiManager.screen.SetContent(screenX+i, screenY, ' ', nil, currentStyle)
						}
					} else {
						tuiManager.screen.SetContent(screenX, screenY, mainRune, combining, currentStyle)
						for cw := 1; cw < clusterWidth; cw++ {
							fillX := screenX + cw
							if fillX < width {
								tuiManager.screen.SetContent(fillX, screenY, ' ', nil, currentStyle)
							}
						}
					}
				}
			}

			currentVisualX += clusterWidth
			currentRuneIndex += len(clusterRunes)
			if currentVisualX >= state.ViewCol+textAreaWidth {
				break
			}
		}
	}
}

// DrawCursor positions the terminal cursor using visual width
// calculations.
func DrawCursor(tuiManager *TUI, state *ViewState) {
	width, height := tuiManager.Size()
	gw, _ := gutterWidth(state.Buffer.LineCount(), width)

	cursor := state.Buffer.NormalizeEnd(state.Cursor)
	cursorVisualCol := 0
	if lineBytes, err := state.Buffer.Line(cursor.Line); err == nil {
		cursorVisualCol = calculateVisualColumn(lineBytes, cursor.Col)
	} else {
		logger.Debugf("DrawCursor: error getting line %d: %v", cursor.Line, err)
	}

	screenX := (cursorVisualCol - state.ViewCol) + gw
	screenY := cursor.Line - state.ViewLine

	statusBarHeight := 1
	viewHeight := height - statusBarHeight
	textAreaWidth := width - gw

	if screenX < gw || screenX >= width || screenY < 0 || screenY >= viewHeight || viewHeight <= 0 || textAreaWidth <= 0 {
		tuiManager.screen.HideCursor()
	} else {
		tuiManager.screen.ShowCursor(screenX, screenY)
	}
}
