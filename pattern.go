package rxscan

import (
	"sync"
	"sync/atomic"

	"github.com/rxscan/rxscan/internal/rxengine"
)

// Pattern is a compiled expression. Immutable once any scan has used
// it, safe for concurrent scans.
type Pattern struct {
	expr string

	mu   sync.Mutex
	prog atomic.Pointer[rxengine.Compiled]
	used atomic.Bool
}

// Callout describes one callout token of a pattern: a numeric mark, a
// textual mark, or neither.
type Callout struct {
	Num  uint32
	Name string
}

// Compile builds a Pattern. The option set is fixed: anchored at the
// scan position, multiline mode, CR|LF|CRLF recognized by \R, and
// lazy-DFA acceleration enabled ( see DisableJIT ).
func Compile(expr string) (*Pattern, error) {
	c, err := rxengine.Compile(expr, rxengine.Options{Accel: true})
	if err != nil {
		return nil, &PatternError{Expr: expr, Err: err}
	}
	p := &Pattern{expr: expr}
	p.prog.Store(c)
	return p, nil
}

// MustCompile is Compile for patterns known good, panicking otherwise.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic("rxscan: MustCompile(`" + expr + "`): " + err.Error())
	}
	return p
}

// DisableJIT drops the engine's acceleration ( lazy DFA, prefilters )
// from the pattern, leaving pure interpretive matching. Idempotent,
// and a no-op once any scan has used the pattern.
func (p *Pattern) DisableJIT() {

	if p.used.Load() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.used.Load() {
		return
	}

	c, err := rxengine.Compile(p.expr, rxengine.Options{})
	if err != nil {
		// the pattern compiled once already; keep the accelerated form
		return
	}
	p.prog.Store(c)
}

// NumCaptures returns the count of capturing groups, excluding the
// overall match.
func (p *Pattern) NumCaptures() int { return p.prog.Load().NumCap }

// Callouts enumerates the callout tokens in pattern order.
func (p *Pattern) Callouts() []Callout {
	src := p.prog.Load().Callouts
	out := make([]Callout, len(src))
	for i, co := range src {
		out[i] = Callout{Num: co.Num, Name: co.Name}
	}
	return out
}

func (p *Pattern) String() string { return p.expr }

func (p *Pattern) compiled() *rxengine.Compiled {
	p.used.Store(true)
	return p.prog.Load()
}
