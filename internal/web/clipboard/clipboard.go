// Package clipboard isolates copying text to a clipboard behind a single
// capability so flows work on hosts without one.
package clipboard

import (
	"github.com/atotto/clipboard"
)

// Copier copies text and reports whether it succeeded
type Copier interface {
	Copy(text string) bool
}

// System writes to the operating system clipboard
type System struct{}

// Copy implements Copier. It returns false when no clipboard utility is
// available, for example on a headless server.
func (System) Copy(text string) bool {
	if clipboard.Unsupported {
		return false
	}
	return clipboard.WriteAll(text) == nil
}

// Noop never copies
type Noop struct{}

// Copy implements Copier
func (Noop) Copy(string) bool { return false }

// Func adapts a function to Copier
type Func func(text string) bool

// Copy implements Copier
func (f Func) Copy(text string) bool { return f(text) }
