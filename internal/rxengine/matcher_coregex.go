//go:build !rxscan_rure

package rxengine

import (
	coregex "github.com/coregx/coregex"
)

type coregexMatcher struct{ *coregex.Regex }

func compileMatcher(expr string, accel bool) (matcher, error) {
	if accel {
		r, err := coregex.Compile(expr)
		return coregexMatcher{r}, err
	}

	cfg := coregex.DefaultConfig()
	cfg.EnableDFA = false
	cfg.EnablePrefilter = false
	r, err := coregex.CompileWithConfig(expr, cfg)
	return coregexMatcher{r}, err
}

func (m coregexMatcher) find(haystack []byte) []int {
	return m.FindSubmatchIndex(haystack)
}
