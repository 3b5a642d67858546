// Package bytesource adapts byte streams into the window/refill/commit
// surface the match driver runs against. Two implementations exist:
// Reader wraps any io.Reader ( borrowing a *bufio.Reader's buffer
// zero-copy when it can ), Ring runs over a quantized ring buffer for
// bulk scanning with bounded memory.
package bytesource

import "fmt"

type RefillStatus uint8

const (
	// Refilled: the window grew, retry the match.
	Refilled RefillStatus = iota
	// EOF: the stream is exhausted, no further growth is possible.
	EOF
	// CannotRefill: the stream may hold more bytes but the source
	// cannot take on any more without dropping the scan start.
	CannotRefill
)

func (rs RefillStatus) String() string {
	switch rs {
	case Refilled:
		return "refilled"
	case EOF:
		return "eof"
	case CannotRefill:
		return "cannot-refill"
	}
	return fmt.Sprintf("refill-status(%d)", rs)
}

// Source is what a scan consumes. The contract is scan-oriented:
// BeginScan pins the current position as the scan start, Window and
// Refill operate on the region from that start onward, Commit ( at
// most once per scan ) consumes the matched span, EndScan releases
// everything before the new position. Captured ranges into Window
// stay valid until EndScan and no longer.
type Source interface {
	// Window returns the contiguous unread region from the scan start.
	// Only valid between BeginScan and EndScan; invalidated by Refill.
	Window() []byte

	// PrecedingByte reports the byte immediately before the scan
	// start, when one exists and is known.
	PrecedingByte() (byte, bool)

	// Refill tries to grow the window by at least min bytes ( min < 1
	// is treated as 1 ). A Refilled status guarantees growth.
	Refill(min int) (RefillStatus, error)

	// Commit consumes n bytes from the window. offset advances, the
	// preceding-byte context updates.
	Commit(n int)

	// BeginScan marks the current position as the scan start.
	BeginScan()

	// EndScan finishes the scan begun by BeginScan, releasing any
	// bytes Commit consumed.
	EndScan()

	// RewindToStart repositions at the scan start, undoing any Commit
	// of the current scan. The return reports whether the position of
	// the *underlying* stream still corresponds to the scan start:
	// false means bytes were pulled off an unseekable stream and are
	// now held by this Source alone. They are not lost while the
	// Source stays in use.
	RewindToStart() bool

	// Offset returns the total bytes committed through this Source.
	Offset() int64
}
