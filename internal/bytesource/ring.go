package bytesource

import (
	"io"

	qringbuf "github.com/ipfs/go-qringbuf"

	"github.com/rxscan/rxscan/internal/constants"
)

// RingConfig tunes the quantized ring buffer behind a Ring source.
type RingConfig struct {
	// BufferSize is the total ring allocation.
	BufferSize int
	// MinRead is the smallest read issued against the underlying
	// stream on refill.
	MinRead int
	// SectorSize is the ring's quantization step.
	SectorSize int
	// MaxWindow caps how many uncommitted bytes can be carried across
	// a refill. A scan needing a larger window degrades to
	// cannot-refill instead of overrunning the ring.
	MaxWindow int
	// Limit stops reading the stream after this many bytes, 0 for no
	// limit.
	Limit int64

	Stats *qringbuf.Stats
}

// Ring runs the Source contract over a qringbuf.QuantizedRingBuffer:
// fixed allocation, background-filled, suited to pumping large inputs
// through repeated scans.
type Ring struct {
	qrb *qringbuf.QuantizedRingBuffer
	reg *qringbuf.Region

	base      int
	committed int
	win       []byte

	maxWindow int

	prev     byte
	havePrev bool

	offset       int64
	eof          bool
	scanRefilled bool
}

func NewRing(r io.Reader, cfg RingConfig) (*Ring, error) {

	if cfg.BufferSize == 0 {
		cfg.BufferSize = 4 * 1024 * 1024
	}
	if cfg.MaxWindow == 0 {
		cfg.MaxWindow = cfg.BufferSize / 4
	}
	if cfg.MinRead == 0 {
		cfg.MinRead = 256 * 1024
	}
	if cfg.SectorSize == 0 {
		cfg.SectorSize = 64 * 1024
	}

	qrb, err := qringbuf.NewFromReader(r, qringbuf.Config{
		BufferSize: cfg.BufferSize,
		MinRegion:  cfg.MaxWindow,
		MinRead:    cfg.MinRead,
		MaxCopy:    cfg.MaxWindow,
		SectorSize: cfg.SectorSize,
		Stats:      cfg.Stats,
	})
	if err != nil {
		return nil, err
	}

	if err := qrb.StartFill(cfg.Limit); err != nil {
		return nil, err
	}

	return &Ring{
		qrb:       qrb,
		maxWindow: cfg.MaxWindow,
	}, nil
}

func (s *Ring) BeginScan() {
	s.committed = 0
	s.scanRefilled = false
	if s.reg != nil {
		s.win = s.reg.Bytes()[s.base:]
	} else {
		s.win = nil
	}
}

func (s *Ring) Window() []byte { return s.win[s.committed:] }

func (s *Ring) PrecedingByte() (byte, bool) { return s.prev, s.havePrev }

func (s *Ring) Refill(min int) (RefillStatus, error) {

	if min < 1 {
		min = 1
	}
	if s.eof {
		return EOF, nil
	}

	held := 0
	if s.reg != nil {
		held = s.reg.Size() - s.base
	}
	if held+min > s.maxWindow {
		return CannotRefill, nil
	}

	reg, err := s.qrb.NextRegion(held)
	if err != nil && err != io.EOF {
		return CannotRefill, err
	}
	if reg == nil {
		// stream done with nothing carried over
		s.eof = true
		return EOF, nil
	}
	if err == io.EOF {
		s.eof = true
	}

	s.reg = reg
	s.base = 0
	s.win = reg.Bytes()

	if reg.Size() > held {
		s.scanRefilled = true
		return Refilled, nil
	}
	if s.eof {
		return EOF, nil
	}
	return CannotRefill, nil
}

func (s *Ring) Commit(n int) {

	if constants.PerformSanityChecks && (n < 0 || n > len(s.win)) {
		panic("commit size out of window bounds")
	}

	s.committed = n
	s.offset += int64(n)
	if n > 0 {
		s.prev = s.win[n-1]
		s.havePrev = true
	}
}

func (s *Ring) EndScan() {
	s.base += s.committed
	s.committed = 0
	s.win = nil
}

func (s *Ring) RewindToStart() bool {
	s.committed = 0
	return !s.scanRefilled
}

func (s *Ring) Offset() int64 { return s.offset }
