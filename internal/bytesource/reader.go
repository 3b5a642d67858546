package bytesource

import (
	"bufio"
	"io"

	"github.com/rxscan/rxscan/internal/constants"
)

// Reader adapts an io.Reader. When the reader is a *bufio.Reader the
// adapter starts in direct mode, matching straight off the bufio
// buffer with Peek/Discard and committing nothing until EndScan. A
// window that outgrows the bufio buffer, or any non-bufio reader,
// runs in pulled mode: bytes get copied into an owned growable buffer
// that retains everything uncommitted across scans.
type Reader struct {
	br *bufio.Reader
	r  io.Reader

	pulled bool
	buf    []byte
	bufPos int

	win       []byte
	committed int

	prev     byte
	havePrev bool

	offset       int64
	eof          bool
	scanRefilled bool
}

func NewReader(r io.Reader) *Reader {
	s := &Reader{r: r}
	if br, ok := r.(*bufio.Reader); ok {
		s.br = br
	} else {
		s.pulled = true
	}
	return s
}

func (s *Reader) BeginScan() {

	s.committed = 0
	s.scanRefilled = false

	if s.pulled {
		if s.bufPos > 0 {
			n := copy(s.buf, s.buf[s.bufPos:])
			s.buf = s.buf[:n]
			s.bufPos = 0
		}
		s.win = s.buf
		return
	}

	// Whatever bufio happens to hold right now is the opening window:
	// a Partial verdict will come back for more.
	s.win, _ = s.br.Peek(s.br.Buffered())
}

func (s *Reader) Window() []byte { return s.win[s.committed:] }

func (s *Reader) PrecedingByte() (byte, bool) { return s.prev, s.havePrev }

func (s *Reader) Refill(min int) (RefillStatus, error) {

	if min < 1 {
		min = 1
	}
	if s.eof {
		return EOF, nil
	}

	if !s.pulled {
		want := len(s.win) + min
		if want <= s.br.Size() {
			p, err := s.br.Peek(want)
			grew := len(p) > len(s.win)
			s.win = p
			switch {
			case err == nil || err == io.EOF:
				if err == io.EOF {
					s.eof = true
				}
				if grew {
					return Refilled, nil
				}
				return EOF, nil
			default:
				return CannotRefill, err
			}
		}
		if err := s.toPulled(); err != nil {
			return CannotRefill, err
		}
	}

	return s.pull(min)
}

// toPulled moves the current direct window into the owned buffer and
// consumes it from the bufio side.
func (s *Reader) toPulled() error {

	if constants.PerformSanityChecks && s.committed != 0 {
		panic("mode transition with committed bytes in flight")
	}

	s.buf = append(s.buf[:0], s.win...)
	s.bufPos = 0
	if _, err := s.br.Discard(len(s.win)); err != nil {
		return err
	}
	s.pulled = true
	s.win = s.buf
	return nil
}

func (s *Reader) pull(min int) (RefillStatus, error) {

	src := s.r
	if s.br != nil {
		src = s.br
	}

	grew := false
	for min > 0 && !s.eof {
		if len(s.buf) == cap(s.buf) {
			next := 2 * cap(s.buf)
			if next < 4096 {
				next = 4096
			}
			if next < len(s.buf)+min {
				next = len(s.buf) + min
			}
			nb := make([]byte, len(s.buf), next)
			copy(nb, s.buf)
			s.buf = nb
		}

		n, err := src.Read(s.buf[len(s.buf):cap(s.buf)])
		s.buf = s.buf[:len(s.buf)+n]
		min -= n
		if n > 0 {
			grew = true
		}

		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			s.win = s.buf[s.bufPos:]
			return CannotRefill, err
		}
	}

	s.win = s.buf[s.bufPos:]
	if grew {
		s.scanRefilled = true
		return Refilled, nil
	}
	return EOF, nil
}

func (s *Reader) Commit(n int) {

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

func (s *Reader) EndScan() {

	if s.pulled {
		s.bufPos += s.committed
	} else if s.committed > 0 {
		// cannot fail: the committed span is inside the peeked buffer
		s.br.Discard(s.committed)
	}

	s.committed = 0
	s.win = nil
}

func (s *Reader) RewindToStart() bool {
	s.committed = 0
	return !s.scanRefilled
}

func (s *Reader) Offset() int64 { return s.offset }
