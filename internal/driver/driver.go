// Package driver is the scan state machine: it pins a scan start on a
// byte source, pumps windows through a compiled program reacting to
// the three verdicts ( retry on partial after refill, finalize on
// complete / no-match ), dispatches callouts, and commits or rewinds.
package driver

import (
	"errors"

	"github.com/rxscan/rxscan/internal/bytesource"
	"github.com/rxscan/rxscan/internal/constants"
	"github.com/rxscan/rxscan/internal/rxengine"
)

// ErrAborted is returned when a callout answers false mid-scan.
var ErrAborted = errors.New("scan aborted by callout")

// Binder consumes the captures of a completed match: window is the
// scan window the index pairs refer to. It returns the count of
// successfully converted captures, plus the conversion error that
// stopped it, if any.
type Binder func(window []byte, caps []int) (int, error)

// CalloutRecord is handed to the caller on every callout invocation.
// Bytes aliases the scan window and must not be retained.
type CalloutRecord struct {
	Bytes []byte
	Num   uint32
	Name  string
}

// CalloutFunc returns false to abort the scan.
type CalloutFunc func(CalloutRecord) bool

// attempt drives one program to a final verdict at a given window
// position, refilling on partials. Once the source reports eof or
// refuses to grow, verdicts are finalized ( no partial can escape ).
type attempt struct {
	src    bytesource.Source
	sawEOF bool
}

func (a *attempt) run(p *rxengine.Program, pos int, bol bool, prev byte) (rxengine.Result, error) {

	for {
		res, err := p.Match(a.src.Window()[pos:], bol, prev, a.sawEOF)
		if err != nil {
			return res, err
		}
		if res.Verdict != rxengine.Partial {
			return res, nil
		}

		st, err := a.src.Refill(1)
		if err != nil {
			return rxengine.Result{}, err
		}
		if st != bytesource.Refilled {
			a.sawEOF = true
		}
	}
}

func bolHint(src bytesource.Source) (bol bool, prev byte) {
	b, ok := src.PrecedingByte()
	if !ok {
		return true, 0
	}
	return b == '\n' || b == '\r', b
}

// RunPositional performs one anchored scan and routes the captures of
// a complete match through bind. A conversion failure inside bind
// still commits the overall match; no-match rewinds best-effort and
// reports ( 0, nil ).
func RunPositional(src bytesource.Source, c *rxengine.Compiled, bind Binder) (int, error) {

	src.BeginScan()
	defer src.EndScan()

	bol, prev := bolHint(src)
	a := &attempt{src: src}

	res, err := a.run(c.Whole, 0, bol, prev)
	if err != nil {
		src.RewindToStart()
		return 0, err
	}
	if res.Verdict != rxengine.Complete {
		src.RewindToStart()
		return 0, nil
	}

	n, convErr := bind(src.Window(), res.Caps)
	src.Commit(res.Consumed)
	return n, convErr
}

// RunCallouts executes the unit decomposition of a pattern: each unit
// matches anchored where the previous one ended, its callout fires
// after the unit's bytes are ( provisionally ) consumed, and loop
// units repeat until their body stops matching. Nothing commits until
// every unit ran; an abort or no-match rewinds to the scan start.
func RunCallouts(src bytesource.Source, c *rxengine.Compiled, fn CalloutFunc) (int, error) {

	src.BeginScan()
	defer src.EndScan()

	bol, prev := bolHint(src)
	a := &attempt{src: src}

	var pos, count int

	advance := func(consumed int) {
		if consumed == 0 {
			return
		}
		win := src.Window()
		if constants.PerformSanityChecks && pos+consumed > len(win) {
			panic("unit consumed past the window end")
		}
		prev = win[pos+consumed-1]
		bol = prev == '\n' || prev == '\r'
		pos += consumed
	}

	fire := func(co *rxengine.Callout, caps []int, matchStart int) bool {
		lo, hi := lastCapture(caps)
		ok := fn(CalloutRecord{
			Bytes: src.Window()[matchStart+lo : matchStart+hi],
			Num:   co.Num,
			Name:  co.Name,
		})
		if ok {
			count++
		}
		return ok
	}

	for i := range c.Units {
		u := &c.Units[i]

		if !u.Loop {
			res, err := a.run(u.Prog, pos, bol, prev)
			if err != nil {
				src.RewindToStart()
				return 0, err
			}
			if res.Verdict != rxengine.Complete {
				src.RewindToStart()
				return 0, nil
			}
			start := pos
			advance(res.Consumed)
			if u.Callout != nil && !fire(u.Callout, res.Caps, start) {
				src.RewindToStart()
				return -1, ErrAborted
			}
			continue
		}

		reps := 0
		for {
			res, err := a.run(u.Prog, pos, bol, prev)
			if err != nil {
				src.RewindToStart()
				return 0, err
			}
			if res.Verdict != rxengine.Complete {
				break
			}
			start := pos
			advance(res.Consumed)
			if !fire(u.Callout, res.Caps, start) {
				src.RewindToStart()
				return -1, ErrAborted
			}
			reps++

			// an empty-match body would repeat forever
			if res.Consumed == 0 {
				break
			}
		}
		if u.MinOne && reps == 0 {
			src.RewindToStart()
			return 0, nil
		}
	}

	src.Commit(pos)
	return count, nil
}

// lastCapture picks the byte range a callout reports: the
// highest-numbered participating group, or the whole match when no
// group captured.
func lastCapture(caps []int) (int, int) {
	for i := len(caps) - 2; i >= 2; i -= 2 {
		if caps[i] >= 0 {
			return caps[i], caps[i+1]
		}
	}
	return caps[0], caps[1]
}
