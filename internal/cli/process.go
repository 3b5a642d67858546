// Package cli is the record-extraction program behind cmd/rxscan: it
// pumps a ( possibly compressed ) stream through repeated anchored
// scans and emits one JSONL record per match.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/rxscan/rxscan"
	"github.com/rxscan/rxscan/internal/digest"
	"github.com/rxscan/rxscan/internal/util"
)

type Scanner struct {
	cfg      config
	pattern  *rxscan.Pattern
	digester digest.Digester

	// emission target, swappable in tests
	Out io.Writer
}

// consumes exactly one byte to resync after a failed match
var skipOne = rxscan.MustCompile(`(?s:.)`)

type scanRecord struct {
	Event    string   `json:"event"`
	Offset   int64    `json:"offset"`
	Length   int      `json:"length"`
	Captures []string `json:"captures"`
	Digest   string   `json:"digest,omitempty"`
}

// setupPattern wraps the user expression in a recording group, making
// capture 1 the overall match so the digest has bytes to chew on.
func (sc *Scanner) setupPattern() (errs []string) {

	p, err := rxscan.Compile("(" + sc.cfg.Expression + ")")
	if err != nil {
		return []string{err.Error()}
	}
	if sc.cfg.NoJIT {
		p.DisableJIT()
	}
	sc.pattern = p
	return
}

func (sc *Scanner) ProcessReader(r io.Reader) error {

	t0 := time.Now()

	if sc.Out == nil {
		sc.Out = os.Stdout
	}

	switch sc.cfg.decompress {
	case decompressZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return err
		}
		defer zr.Close()
		r = zr
	case decompressXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return err
		}
		r = xr
	}

	src, err := rxscan.NewRingSource(r, rxscan.RingConfig{
		BufferSize: sc.cfg.RingBufferSize,
		MinRead:    sc.cfg.RingBufferMinRead,
		SectorSize: sc.cfg.RingBufferSectSize,
		MaxWindow:  sc.cfg.MaxWindow,
	})
	if err != nil {
		return err
	}

	var (
		whole    []byte
		userCaps = sc.pattern.NumCaptures() - 1
		strs     = make([]string, userCaps)
		dests    = make([]rxscan.Dest, 0, userCaps+1)
	)
	dests = append(dests, rxscan.Bytes(&whole))
	for i := range strs {
		dests = append(dests, rxscan.String(&strs[i]))
	}

	enc := json.NewEncoder(sc.Out)
	var records int64

	for {
		before := src.Offset()

		n, err := rxscan.Scan(src, sc.pattern, dests...)
		if err != nil {
			// the only destinations in play are infallible
			var convErr *rxscan.ConversionError
			if !errors.As(err, &convErr) {
				return err
			}
		}
		length := int(src.Offset() - before)

		if n >= 1 {
			if emitErr := enc.Encode(scanRecord{
				Event:    "match",
				Offset:   before,
				Length:   length,
				Captures: strs[:n-1],
				Digest:   sc.digester.Sum(whole),
			}); emitErr != nil {
				return emitErr
			}
			records++
			if sc.cfg.MaxRecords > 0 && records >= int64(sc.cfg.MaxRecords) {
				break
			}
		}

		// resync one byte forward on no-match, and after an empty
		// match which would otherwise loop in place
		if n < 1 || length == 0 {
			at := src.Offset()
			if _, err := rxscan.Scan(src, skipOne); err != nil {
				return err
			}
			if src.Offset() == at {
				break
			}
		}
	}

	fmt.Fprintf(
		os.Stderr,
		"%s bytes scanned, %s records matched in %.2fs\n",
		util.Commify64(src.Offset()),
		util.Commify64(records),
		time.Since(t0).Seconds(),
	)

	return nil
}
