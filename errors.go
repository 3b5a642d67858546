package rxscan

import (
	"fmt"

	"github.com/rxscan/rxscan/internal/driver"
)

// ErrAborted is returned ( alongside -1 ) when a callout function
// answers false.
var ErrAborted = driver.ErrAborted

// PatternError reports a failed compilation.
type PatternError struct {
	Expr string
	Err  error
}

func (e *PatternError) Error() string { return "rxscan: " + e.Err.Error() }
func (e *PatternError) Unwrap() error { return e.Err }

// ConversionError reports a capture that would not parse into its
// destination. The overall match was still consumed: previously
// converted destinations keep their values and the stream stands past
// the match.
type ConversionError struct {
	// Dest is the zero-based index of the failing destination.
	Dest  int
	Input string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("rxscan: destination %d rejects %q: %s", e.Dest, e.Input, e.Err)
}
func (e *ConversionError) Unwrap() error { return e.Err }
