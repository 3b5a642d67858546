//go:build rxscan_rure

package rxengine

import (
	rure "github.com/BurntSushi/rure-go"
)

type rureMatcher struct{ *rure.Regex }

func compileMatcher(expr string, accel bool) (matcher, error) {
	opts := rure.NewOptions()
	if !accel {
		// A zero-size lazy-DFA cache forces rure onto its backtracking
		// and PikeVM paths.
		opts.SetDFASizeLimit(0)
	}
	r, err := rure.CompileOptions(expr, 0, opts)
	return rureMatcher{r}, err
}

func (m rureMatcher) find(haystack []byte) []int {
	caps := m.NewCaptures()
	if !m.CapturesBytes(caps, haystack) {
		return nil
	}

	out := make([]int, 2*caps.Len())
	for i := 0; i < caps.Len(); i++ {
		if start, end, ok := caps.Group(i); ok {
			out[2*i], out[2*i+1] = start, end
		} else {
			out[2*i], out[2*i+1] = -1, -1
		}
	}
	return out
}
