// Package logging builds the shared *log.Logger used across the module.
// The teacher's cmd/ entrypoints call log.Printf/log.Fatalf directly
// against the default logger; this package only centralizes the flag
// configuration so every caller gets the same prefix and timestamp
// format instead of repeating log.SetFlags in multiple mains.
package logging

import (
	"io"
	"log"
)

// New returns a *log.Logger writing to out with a standard timestamp
// prefix, matching the teacher's log.LstdFlags usage.
func New(out io.Writer, prefix string) *log.Logger {
	return log.New(out, prefix, log.LstdFlags)
}
