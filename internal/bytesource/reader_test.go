package bytesource

import (
	"bufio"
	"strings"
	"testing"
)

func TestPulledModeRetention(t *testing.T) {

	s := NewReader(strings.NewReader("hello world"))

	if _, ok := s.PrecedingByte(); ok {
		t.Errorf("A fresh source claims a preceding byte")
	}

	s.BeginScan()
	if len(s.Window()) != 0 {
		t.Errorf("Opening window holds %d bytes, expected 0", len(s.Window()))
	}

	st, err := s.Refill(5)
	if err != nil || st != Refilled {
		t.Fatalf("Refill(5) returned ( %s, %v ), expected ( refilled, nil )", st, err)
	}
	if string(s.Window()) != "hello world" {
		t.Fatalf("Window %q after refill", s.Window())
	}

	s.Commit(6)
	s.EndScan()

	if s.Offset() != 6 {
		t.Errorf("Offset %d after committing 6 bytes", s.Offset())
	}
	if b, ok := s.PrecedingByte(); !ok || b != ' ' {
		t.Errorf("PrecedingByte ( %q, %v ), expected ( ' ', true )", b, ok)
	}

	// the uncommitted tail must carry over without touching the stream
	s.BeginScan()
	if string(s.Window()) != "world" {
		t.Errorf("Window %q on the next scan, expected \"world\"", s.Window())
	}

	if st, err = s.Refill(1); err != nil || st != EOF {
		t.Errorf("Refill at stream end returned ( %s, %v ), expected ( eof, nil )", st, err)
	}
	s.Commit(5)
	s.EndScan()

	if s.Offset() != 11 {
		t.Errorf("Final offset %d, expected 11", s.Offset())
	}
}

func TestRewindReporting(t *testing.T) {

	s := NewReader(strings.NewReader("abcdef"))

	// nothing pulled yet: the rewind is trivially clean
	s.BeginScan()
	if !s.RewindToStart() {
		t.Errorf("Rewind before any refill reported data loss")
	}
	s.EndScan()

	// a refilled scan reports the raw stream as disturbed, but the
	// source itself still retains every byte
	s.BeginScan()
	if st, err := s.Refill(3); err != nil || st != Refilled {
		t.Fatalf("Refill returned ( %s, %v )", st, err)
	}
	if s.RewindToStart() {
		t.Errorf("Rewind after a refill claims the raw stream is untouched")
	}
	s.EndScan()

	if s.Offset() != 0 {
		t.Errorf("Offset %d after rewound scans, expected 0", s.Offset())
	}

	s.BeginScan()
	if string(s.Window()) != "abcdef" {
		t.Errorf("Window %q after rewound scans, expected the full input", s.Window())
	}
}

func TestDirectModeOverBufio(t *testing.T) {

	// 16 is the smallest buffer bufio will give out
	input := "0123456789abcdef0123"
	s := NewReader(bufio.NewReaderSize(strings.NewReader(input), 16))

	s.BeginScan()
	if st, err := s.Refill(4); err != nil || st != Refilled {
		t.Fatalf("Refill(4) returned ( %s, %v )", st, err)
	}
	if st, err := s.Refill(4); err != nil || st != Refilled {
		t.Fatalf("Second Refill(4) returned ( %s, %v )", st, err)
	}
	if string(s.Window()) != "01234567" {
		t.Fatalf("Window %q, expected \"01234567\"", s.Window())
	}

	s.Commit(8)
	s.EndScan()
	if s.Offset() != 8 {
		t.Fatalf("Offset %d, expected 8", s.Offset())
	}

	// the bytes bufio already held open the next window for free
	s.BeginScan()
	if string(s.Window()) != "89abcdef" {
		t.Fatalf("Window %q on the next scan, expected \"89abcdef\"", s.Window())
	}

	// asking past the bufio capacity flips the source to its own buffer
	if st, err := s.Refill(10); err != nil || st != Refilled {
		t.Fatalf("Overflowing Refill returned ( %s, %v )", st, err)
	}
	if string(s.Window()) != "89abcdef0123" {
		t.Fatalf("Window %q after overflow, expected \"89abcdef0123\"", s.Window())
	}

	if st, err := s.Refill(1); err != nil || st != EOF {
		t.Errorf("Refill at stream end returned ( %s, %v ), expected ( eof, nil )", st, err)
	}

	s.Commit(12)
	s.EndScan()
	if s.Offset() != int64(len(input)) {
		t.Errorf("Final offset %d, expected %d", s.Offset(), len(input))
	}
}

func TestDirectModePartialCommit(t *testing.T) {

	s := NewReader(bufio.NewReaderSize(strings.NewReader("aaabbb"), 16))

	s.BeginScan()
	if st, err := s.Refill(6); err != nil || st != Refilled {
		t.Fatalf("Refill returned ( %s, %v )", st, err)
	}
	s.Commit(3)
	s.EndScan()

	if b, ok := s.PrecedingByte(); !ok || b != 'a' {
		t.Errorf("PrecedingByte ( %q, %v ), expected ( 'a', true )", b, ok)
	}

	s.BeginScan()
	if string(s.Window()) != "bbb" {
		t.Errorf("Window %q after a partial commit, expected \"bbb\"", s.Window())
	}
	s.EndScan()
}

func TestRefillStatusNames(t *testing.T) {
	for st, want := range map[RefillStatus]string{
		Refilled:     "refilled",
		EOF:          "eof",
		CannotRefill: "cannot-refill",
	} {
		if st.String() != want {
			t.Errorf("RefillStatus %d stringifies as %q, expected %q", st, st.String(), want)
		}
	}
}
