// Package rxengine adapts a batch submatch engine into the incremental
// matcher the scan driver needs: anchored attempts over a window of
// buffered input, three-way verdicts ( complete / partial / no-match ),
// beginning-of-line context injection, and callout enumeration.
//
// The concrete engine is selected at build time, mirroring the
// interpreter/JIT duality of the scanning runtimes this package fronts
// for: the default build matches through coregex, `-tags rxscan_rure`
// swaps in the rure binding.
package rxengine

import (
	"fmt"
	"regexp/syntax"
)

// Options is the fixed compile-option surface. Anchoring at the scan
// position, multiline mode and CR|LF|CRLF linebreak recognition are
// always on and not represented here.
type Options struct {
	// Accel governs whether the engine's lazy-DFA / prefilter
	// acceleration is compiled in. Off means pure interpretive NFA.
	Accel bool
}

type Verdict uint8

const (
	// NoMatch: the pattern cannot match at the scan position, not even
	// with more input.
	NoMatch Verdict = iota
	// Partial: the window could still be extended into a ( longer )
	// match; the caller should refill and retry.
	Partial
	// Complete: an anchored match was found and is final for the
	// supplied window.
	Complete
)

func (v Verdict) String() string {
	switch v {
	case NoMatch:
		return "no-match"
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("verdict(%d)", v)
}

// Result of one match attempt against a window.
type Result struct {
	Verdict  Verdict
	Consumed int
	// Caps holds index pairs relative to the window, [0:2] being the
	// overall match. Non-participating groups hold -1.
	Caps []int
}

// Callout describes one callout token found in a pattern: a numeric
// mark, a textual mark, or neither ( both zero values ).
type Callout struct {
	Num  uint32
	Name string
}

// Unit is one sequential step of callout-mode execution: a sub-program
// optionally followed by a callout. A Loop unit repeats its program
// ( firing the callout once per completed repetition ) until it stops
// matching; MinOne demands at least one repetition.
type Unit struct {
	Prog    *Program
	Callout *Callout
	Loop    bool
	MinOne  bool
}

// Compiled is an immutable compiled pattern: the callout-stripped whole
// program for positional scanning plus the unit decomposition for
// callout dispatch.
type Compiled struct {
	Expr     string
	Whole    *Program
	Units    []Unit
	Callouts []Callout
	// NumCap is the count of capturing groups, excluding the overall
	// match.
	NumCap int
}

// matcher is the one-call engine surface a Program variant runs on:
// a single anchored submatch attempt returning stdlib-style index
// pairs, nil when nothing matched. The implementations live in the
// build-tagged matcher_*.go files.
type matcher interface {
	find(haystack []byte) []int
}

// Program is one compiled sub-pattern together with its derived
// variants: the plain anchored form, the preceding-byte context form
// ( only when the pattern observes line starts ), and the
// prefix-language form that powers partial verdicts.
type Program struct {
	expr     string
	plain    matcher
	ctx      matcher
	prefix   matcher
	needsBOL bool
}

// Compile runs the pattern through linebreak expansion and callout
// dissection, then compiles the whole program and the per-unit
// programs.
func Compile(expr string, opts Options) (*Compiled, error) {

	expanded, err := expandLineBreaks(expr)
	if err != nil {
		return nil, err
	}

	units, callouts, stripped, err := dissect(expanded)
	if err != nil {
		return nil, err
	}

	ast, err := parseBody(stripped)
	if err != nil {
		return nil, err
	}

	whole, err := compileProgram(stripped, ast, opts)
	if err != nil {
		return nil, err
	}

	c := &Compiled{
		Expr:     expr,
		Whole:    whole,
		Callouts: callouts,
		NumCap:   ast.MaxCap(),
	}

	if len(callouts) == 0 {
		c.Units = []Unit{{Prog: whole}}
		return c, nil
	}

	c.Units = make([]Unit, 0, len(units))
	for _, u := range units {
		uAst, err := parseBody(u.body)
		if err != nil {
			return nil, err
		}
		p, err := compileProgram(u.body, uAst, opts)
		if err != nil {
			return nil, err
		}
		c.Units = append(c.Units, Unit{
			Prog:    p,
			Callout: u.callout,
			Loop:    u.loop,
			MinOne:  u.minOne,
		})
	}

	return c, nil
}

func parseBody(body string) (*syntax.Regexp, error) {
	ast, err := syntax.Parse("(?m:"+body+")", syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("pattern %q does not compile: %w", body, err)
	}
	return ast, nil
}

func compileProgram(body string, ast *syntax.Regexp, opts Options) (*Program, error) {

	p := &Program{
		expr:     body,
		needsBOL: hasOp(ast, syntax.OpBeginLine),
	}

	var err error
	if p.plain, err = compileMatcher(`\A(?m:`+body+`)`, opts.Accel); err != nil {
		return nil, fmt.Errorf("pattern %q does not compile: %w", body, err)
	}

	if p.needsBOL {
		if p.ctx, err = compileMatcher(`\A(?s:.)(?m:`+body+`)`, opts.Accel); err != nil {
			return nil, fmt.Errorf("pattern %q does not compile: %w", body, err)
		}
	}

	// The prefix program is pure accept/reject machinery: stray capture
	// groups surviving inside prefixExpr are never read back.
	if p.prefix, err = compileMatcher(`\A(?:`+prefixExpr(ast)+`)\z`, opts.Accel); err != nil {
		return nil, fmt.Errorf("derived prefix form of %q does not compile: %w", body, err)
	}

	return p, nil
}

// Match runs one anchored attempt. bol signals whether the scan
// position is to be treated as a line start; prev is the byte
// preceding the window and is only consulted when bol is false and the
// pattern observes line starts. atEOF finalizes verdicts: no Partial
// can be returned once the input is known to be exhausted.
func (p *Program) Match(window []byte, bol bool, prev byte, atEOF bool) (Result, error) {

	var m []int
	if bol || !p.needsBOL {
		m = p.plain.find(window)
	} else {
		// Splice the preceding byte back in front so the engine sees
		// the true line context, then shift everything back out.
		buf := make([]byte, 0, len(window)+1)
		buf = append(buf, prev)
		buf = append(buf, window...)
		m = p.ctx.find(buf)
		// the anchored match starts at the spliced byte, index 0 stays
		for i := range m {
			if m[i] > 0 {
				m[i]--
			}
		}
	}

	// As long as the entire window sits inside the pattern's prefix
	// language, more input could still extend ( or first produce ) a
	// match: hold the verdict open.
	if !atEOF && p.prefix.find(window) != nil {
		return Result{Verdict: Partial}, nil
	}

	if m == nil {
		return Result{Verdict: NoMatch}, nil
	}

	return Result{
		Verdict:  Complete,
		Consumed: m[1],
		Caps:     m,
	}, nil
}

func hasOp(re *syntax.Regexp, op syntax.Op) bool {
	if re.Op == op {
		return true
	}
	for _, sub := range re.Sub {
		if hasOp(sub, op) {
			return true
		}
	}
	return false
}
