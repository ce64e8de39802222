// Package clipboard provides a single copy/paste register backed either
// by the system clipboard or by an in-process fallback.
package clipboard

import (
	"sync"

	"github.com/Akuli/porcupine-sub000/internal/logger"
	"github.com/atotto/clipboard"
)

// Register stores yanked text. When system clipboard use is enabled and
// available, reads and writes go through it; otherwise an internal
// register is used.
type Register struct {
	mu        sync.Mutex
	useSystem bool
	internal  string
}

// New creates a register. useSystem requests the system clipboard; if it
// is unsupported on this platform the register silently falls back to
// internal storage.
func New(useSystem bool) *Register {
	if useSystem && clipboard.Unsupported {
		logger.Warnf("clipboard: system clipboard unsupported, using internal register")
		useSystem = false
	}
	return &Register{useSystem: useSystem}
}

// Write stores text in the register.
func (r *Register) Write(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.internal = text
	if r.useSystem {
		if err := clipboard.WriteAll(text); err != nil {
			logger.Warnf("clipboard: system write failed, keeping internal copy: %v", err)
			return err
		}
	}
	return nil
}

// Read returns the register's current text.
func (r *Register) Read() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.useSystem {
		text, err := clipboard.ReadAll()
		if err != nil {
			logger.Warnf("clipboard: system read failed, using internal copy: %v", err)
			return r.internal, nil
		}
		return text, nil
	}
	return r.internal, nil
}
