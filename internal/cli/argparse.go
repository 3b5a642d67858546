package cli

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	getopt "github.com/pborman/getopt/v2"
	"github.com/pborman/options"

	"github.com/rxscan/rxscan"
	"github.com/rxscan/rxscan/internal/digest"
	"github.com/rxscan/rxscan/internal/util"
)

const (
	decompressNone = "none"
	decompressZstd = "zstd"
	decompressXz   = "xz"
)

// where the CLI initial error messages go
var argParseErrOut = os.Stderr

type config struct {
	optSet *getopt.Set

	//
	// Bulk of CLI options definition starts here, the rest further down in initArgvParser()
	//

	Help bool `getopt:"-h --help            Display help"`

	Expression string `getopt:"-e --expression=regex The expression to apply repeatedly to the input stream"`
	NoJIT      bool   `getopt:"--no-jit              Disable the engine's lazy-DFA / prefilter acceleration"`
	MaxRecords int    `getopt:"--max-records=count   Stop after this many matched records, 0 means no limit"`

	RingBufferSize     int `getopt:"--ring-buffer-size=bytes        The size of the quantized ring buffer used for ingestion. Default:"`
	RingBufferSectSize int `getopt:"--ring-buffer-sync-size=bytes   (EXPERT SETTING) The size of each buffer synchronization sector. Default:"`
	RingBufferMinRead  int `getopt:"--ring-buffer-min-sysread=bytes (EXPERT SETTING) Perform next read(2) only when the specified amount of free space is available in the buffer. Default:"`
	MaxWindow          int `getopt:"--max-window=bytes              The largest window a single match attempt may hold before degrading to no-match. Default:"`

	digestAlg  string // option/helptext in initArgvParser()
	decompress string // option/helptext in initArgvParser()
}

func (cfg *config) initArgvParser() {
	// The default documented way of using pborman/options is to muck with globals
	// Operate over objects instead, allowing us to re-parse argv multiple times
	o := getopt.New()
	if err := options.RegisterSet("", cfg, o); err != nil {
		log.Fatalf("Option set registration failed: %s", err)
	}
	cfg.optSet = o

	// program does not take freeform args
	// need to override this for sensible help render
	o.SetParameters("")

	o.FlagLong(&cfg.digestAlg, "digest", 0,
		"Digest to fingerprint each record with, one of: "+util.AvailableMapKeys(digest.AvailableDigesters),
	)
	o.FlagLong(&cfg.decompress, "decompress", 0,
		"Transparent input decompression, one of: 'none', 'zstd', 'xz'",
	)
}

func NewFromArgv(argv []string) (sc *Scanner) {

	sc = &Scanner{
		cfg: config{
			MaxRecords: 0,

			RingBufferSize: 24 * 1024 * 1024,
			//SANCHECK: these numbers have not been validated
			RingBufferMinRead:  256 * 1024,
			RingBufferSectSize: 64 * 1024,
			MaxWindow:          4 * 1024 * 1024,

			digestAlg:  "none",
			decompress: decompressNone,
		},
	}

	cfg := &sc.cfg
	cfg.initArgvParser()

	// accumulator for multiple errors, to present to the user all at once
	argParseErrs := util.ArgParse(argv, cfg.optSet)

	if cfg.Help {
		cfg.optSet.PrintUsage(argParseErrOut)
		os.Exit(0)
	}

	if cfg.Expression == "" {
		argParseErrs = append(argParseErrs, "You must supply a scan expression via --expression")
	} else {
		// probe-compile the bare expression: cleaner errors than the
		// recording wrapper would give, and callout rejection
		probe, err := rxscan.Compile(cfg.Expression)
		if err != nil {
			argParseErrs = append(argParseErrs, err.Error())
		} else if len(probe.Callouts()) > 0 {
			argParseErrs = append(argParseErrs, "Expressions with callout tokens are not usable for record extraction")
		} else {
			argParseErrs = append(argParseErrs, sc.setupPattern()...)
		}
	}

	dg, found := digest.AvailableDigesters[cfg.digestAlg]
	if !found {
		argParseErrs = append(argParseErrs, fmt.Sprintf(
			"Unknown digest '%s' requested, available: %s",
			cfg.digestAlg,
			util.AvailableMapKeys(digest.AvailableDigesters),
		))
	}
	sc.digester = dg

	switch cfg.decompress {
	case decompressNone, decompressZstd, decompressXz:
	default:
		argParseErrs = append(argParseErrs, fmt.Sprintf(
			"Unknown decompressor '%s' requested, available: 'none', 'zstd', 'xz'",
			cfg.decompress,
		))
	}

	if cfg.MaxWindow > cfg.RingBufferSize/2 {
		argParseErrs = append(argParseErrs, "The value of --max-window may not exceed half of --ring-buffer-size")
	}

	if len(argParseErrs) != 0 {
		fmt.Fprint(argParseErrOut, "\nFatal error parsing arguments:\n\n")
		cfg.optSet.PrintUsage(argParseErrOut)

		sort.Strings(argParseErrs)
		fmt.Fprintf(
			argParseErrOut,
			"\nFatal error parsing arguments:\n\t%s\n",
			strings.Join(argParseErrs, "\n\t"),
		)
		os.Exit(1)
	}

	return
}
