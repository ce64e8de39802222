package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Akuli/porcupine-sub000/internal/config"
	"github.com/Akuli/porcupine-sub000/internal/tui"
	"github.com/gdamore/tcell/v2"
)

func newTestApp(t *testing.T, content string) (*App, tcell.SimulationScreen) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	tuiManager, err := tui.NewFromScreen(screen)
	if err != nil {
		t.Fatalf("screen setup failed: %v", err)
	}

	a, err := newApp(tuiManager, path, config.NewDefaultConfig())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	return a, screen
}

// runUntilQuit runs the app, injects the given keys and waits for the
// main loop to exit. All key handling happens on the main loop
// goroutine, so once Run returns the buffer is safe to inspect.
func runUntilQuit(t *testing.T, a *App, screen tcell.SimulationScreen, keys []*tcell.EventKey) {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	for _, k := range keys {
		screen.InjectKey(k.Key(), k.Rune(), k.Modifiers())
	}
	screen.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("app did not quit")
	}
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func ctrl(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func TestKeysRunOnMainLoop(t *testing.T) {
	t.Run("typed runes reach the buffer", func(t *testing.T) {
		a, screen := newTestApp(t, "")
		runUntilQuit(t, a, screen, []*tcell.EventKey{runeKey('h'), runeKey('i')})
		if got := string(a.buf.Bytes()); got != "hi" {
			t.Errorf("buffer after typing: got %q, want %q", got, "hi")
		}
	})

	t.Run("undo key reverts the last insert", func(t *testing.T) {
		a, screen := newTestApp(t, "base")
		runUntilQuit(t, a, screen, []*tcell.EventKey{
			runeKey('x'),
			ctrl(tcell.KeyCtrlZ),
		})
		if got := string(a.buf.Bytes()); got != "base" {
			t.Errorf("buffer after undo: got %q, want %q", got, "base")
		}
	})
}
