// Package rxscan provides formatted input scanning from a byte stream
// under the direction of a regular expression. A scan anchors the
// pattern at the current stream position, reads exactly enough input
// to decide the match, routes captured ranges into typed destinations
// and advances the stream past the consumed bytes. On failure the
// stream is left, best-effort, where scanning began.
//
// Patterns additionally understand \R ( CR, LF or CRLF ) and callout
// tokens (?C), (?Cn) and (?C"name"), which hand matched ranges to a
// caller function as scanning progresses.
package rxscan

import (
	"fmt"
	"io"
	"sync"

	"github.com/rxscan/rxscan/internal/bytesource"
	"github.com/rxscan/rxscan/internal/driver"
	"github.com/rxscan/rxscan/internal/rxengine"
)

// Source wraps a byte stream for scanning. It owns whatever buffering
// the scans need: bytes pulled off the stream but not consumed by a
// match stay available to the next scan, so a failed scan never loses
// input even on unseekable streams. A Source is single-owner: one
// scan at a time.
type Source struct {
	bs bytesource.Source
}

// NewSource adapts any io.Reader. A *bufio.Reader is recognized and
// its buffer borrowed zero-copy for as long as windows fit in it;
// everything else ( and any overgrown window ) is serviced from an
// owned overflow buffer.
func NewSource(r io.Reader) *Source {
	return &Source{bs: bytesource.NewReader(r)}
}

// RingConfig tunes NewRingSource. Zero values select usable defaults.
type RingConfig struct {
	// BufferSize is the total ring allocation.
	BufferSize int
	// MinRead is the smallest single read issued to the stream.
	MinRead int
	// SectorSize is the ring quantization step.
	SectorSize int
	// MaxWindow caps the bytes a single scan can hold uncommitted; a
	// match needing more fails rather than overrun the ring.
	MaxWindow int
	// Limit stops reading after this many stream bytes, 0 means none.
	Limit int64
}

// NewRingSource runs scans over a quantized ring buffer: bounded
// memory regardless of input size, suited to pumping large files
// through repeated scans.
func NewRingSource(r io.Reader, cfg RingConfig) (*Source, error) {
	ring, err := bytesource.NewRing(r, bytesource.RingConfig{
		BufferSize: cfg.BufferSize,
		MinRead:    cfg.MinRead,
		SectorSize: cfg.SectorSize,
		MaxWindow:  cfg.MaxWindow,
		Limit:      cfg.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &Source{bs: ring}, nil
}

// Offset returns the total bytes consumed through this Source.
func (s *Source) Offset() int64 { return s.bs.Offset() }

// Scan anchors p at the current position of src and, on a complete
// match, converts capture i into dests[i-1] in order. The return is
// the count of successful conversions: it stops short at the first
// non-participating group or conversion failure ( the latter also
// yields a *ConversionError, with the match still consumed ). A
// no-match returns ( 0, nil ) with the position restored.
func Scan(src *Source, p *Pattern, dests ...Dest) (int, error) {
	if len(dests) > p.NumCaptures() {
		return 0, fmt.Errorf(
			"rxscan: %d destinations supplied for a pattern with %d capture groups",
			len(dests), p.NumCaptures(),
		)
	}
	return driver.RunPositional(src.bs, p.compiled(), bindPositional(dests))
}

// ScanExpr is Scan over an ad hoc expression: compiled on first use
// with acceleration off, cached for reuse.
func ScanExpr(src *Source, expr string, dests ...Dest) (int, error) {
	p, err := compileAdHoc(expr)
	if err != nil {
		return 0, err
	}
	return Scan(src, p, dests...)
}

// CaptureRecord is the argument to a callout function. Bytes aliases
// the scan window: copy it if it must survive the call.
type CaptureRecord struct {
	Bytes []byte
	Num   uint32
	Name  string
}

// CalloutFunc returns false to abort the scan.
type CalloutFunc func(CaptureRecord) bool

// ScanCallouts runs p against src in callout mode: each callout point
// reached on the match path hands fn the most recently captured range
// ( or the bytes of the enclosing match step ). The return is the
// count of callout invocations that answered true, or -1 with
// ErrAborted if one answered false; aborting consumes nothing.
func ScanCallouts(src *Source, p *Pattern, fn CalloutFunc) (int, error) {
	return driver.RunCallouts(src.bs, p.compiled(), func(r driver.CalloutRecord) bool {
		return fn(CaptureRecord{Bytes: r.Bytes, Num: r.Num, Name: r.Name})
	})
}

// ScanCalloutsExpr is ScanCallouts over an ad hoc cached expression.
func ScanCalloutsExpr(src *Source, expr string, fn CalloutFunc) (int, error) {
	p, err := compileAdHoc(expr)
	if err != nil {
		return 0, err
	}
	return ScanCallouts(src, p, fn)
}

func bindPositional(dests []Dest) driver.Binder {
	return func(win []byte, caps []int) (int, error) {
		converted := 0
		for i, d := range dests {
			lo, hi := caps[2*(i+1)], caps[2*(i+1)+1]
			if lo < 0 {
				break
			}
			if err := d.convert(win[lo:hi]); err != nil {
				return converted, &ConversionError{
					Dest:  i,
					Input: string(win[lo:hi]),
					Err:   err,
				}
			}
			converted++
		}
		return converted, nil
	}
}

var (
	adHocMu sync.Mutex
	adHoc   = make(map[string]*Pattern)
)

func compileAdHoc(expr string) (*Pattern, error) {

	adHocMu.Lock()
	defer adHocMu.Unlock()

	if p, ok := adHoc[expr]; ok {
		return p, nil
	}

	c, err := rxengine.Compile(expr, rxengine.Options{})
	if err != nil {
		return nil, &PatternError{Expr: expr, Err: err}
	}
	p := &Pattern{expr: expr}
	p.prog.Store(c)
	p.used.Store(true)
	adHoc[expr] = p
	return p, nil
}
