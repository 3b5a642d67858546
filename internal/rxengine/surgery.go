package rxengine

import (
	"fmt"
	"strconv"
	"strings"
)

// unitSpec is the pre-compilation form of a Unit.
type unitSpec struct {
	body    string
	callout *Callout
	loop    bool
	minOne  bool
}

// expandLineBreaks rewrites every \R outside a character class into the
// explicit CR|LF|CRLF alternation the engines understand.
func expandLineBreaks(expr string) (string, error) {

	out := make([]byte, 0, len(expr))
	inClass := false

	for i := 0; i < len(expr); i++ {
		c := expr[i]

		if c == '\\' {
			if i+1 >= len(expr) {
				return "", fmt.Errorf("pattern %q ends in a dangling escape", expr)
			}
			if expr[i+1] == 'R' && !inClass {
				out = append(out, `(?:\r\n|[\r\n])`...)
			} else {
				out = append(out, c, expr[i+1])
			}
			i++
			continue
		}

		if inClass {
			inClass = c != ']'
		} else {
			inClass = c == '['
		}
		out = append(out, c)
	}

	return string(out), nil
}

// dissect splits a pattern on its callout tokens. A callout must sit at
// group-nesting depth zero; the one sanctioned nested form is a
// non-capturing group holding a single trailing callout under a * or +
// quantifier, which turns into a loop unit. The stripped return is the
// pattern with every callout token removed, semantics otherwise intact.
func dissect(expr string) (units []unitSpec, callouts []Callout, stripped string, err error) {

	var strippedBuf, body []byte
	inClass := false

	flush := func(co *Callout, loop, minOne bool) {
		units = append(units, unitSpec{
			body:    string(body),
			callout: co,
			loop:    loop,
			minOne:  minOne,
		})
		body = body[:0]
	}

	emit := func(s string) {
		body = append(body, s...)
		strippedBuf = append(strippedBuf, s...)
	}

	for i := 0; i < len(expr); {
		c := expr[i]

		if c == '\\' {
			if i+1 >= len(expr) {
				return nil, nil, "", fmt.Errorf("pattern %q ends in a dangling escape", expr)
			}
			emit(expr[i : i+2])
			i += 2
			continue
		}

		if inClass {
			inClass = c != ']'
			emit(expr[i : i+1])
			i++
			continue
		}

		switch c {

		case '[':
			inClass = true
			emit(expr[i : i+1])
			i++

		case '(':
			if isCalloutAt(expr, i) {
				co, end, perr := parseCallout(expr, i)
				if perr != nil {
					return nil, nil, "", perr
				}
				if end < len(expr) && (expr[end] == '*' || expr[end] == '+' || expr[end] == '?') {
					return nil, nil, "", fmt.Errorf(
						"pattern %q: a bare callout cannot be quantified", expr,
					)
				}
				callouts = append(callouts, co)
				flush(&co, false, false)
				i = end
				continue
			}

			closeAt, perr := matchingParen(expr, i)
			if perr != nil {
				return nil, nil, "", perr
			}
			group := expr[i : closeAt+1]
			if !containsCallout(group) {
				emit(group)
				i = closeAt + 1
				continue
			}

			u, strippedGroup, qend, perr := parseLoopUnit(expr, i, closeAt)
			if perr != nil {
				return nil, nil, "", perr
			}
			if len(body) > 0 {
				flush(nil, false, false)
			}
			callouts = append(callouts, *u.callout)
			units = append(units, u)
			strippedBuf = append(strippedBuf, strippedGroup...)
			i = qend

		default:
			emit(expr[i : i+1])
			i++
		}
	}

	if inClass {
		return nil, nil, "", fmt.Errorf("pattern %q has an unterminated character class", expr)
	}

	if len(body) > 0 || len(units) == 0 {
		flush(nil, false, false)
	}

	return units, callouts, string(strippedBuf), nil
}

// parseLoopUnit validates and decomposes a callout-bearing group: the
// '(' at expr[open] must open a (?: ... (?Cx) ) form whose quantifier
// at expr[closeAt+1] is * or +. Returns the unit, the group's stripped
// rendition for the whole-pattern program, and the index just past the
// quantifier.
func parseLoopUnit(expr string, open, closeAt int) (unitSpec, string, int, error) {

	if !strings.HasPrefix(expr[open:], "(?:") {
		return unitSpec{}, "", 0, fmt.Errorf(
			"pattern %q: a nested callout is only allowed inside a non-capturing loop group", expr,
		)
	}
	if closeAt+1 >= len(expr) || (expr[closeAt+1] != '*' && expr[closeAt+1] != '+') {
		return unitSpec{}, "", 0, fmt.Errorf(
			"pattern %q: a callout group must be quantified with * or +", expr,
		)
	}
	if closeAt+2 < len(expr) && expr[closeAt+2] == '?' {
		return unitSpec{}, "", 0, fmt.Errorf(
			"pattern %q: a callout group cannot take a lazy quantifier", expr,
		)
	}

	content := expr[open+3 : closeAt]

	coStart := -1
	inClass := false
	for j := 0; j < len(content); {
		switch {

		case content[j] == '\\' && j+1 < len(content):
			j += 2

		case inClass:
			inClass = content[j] != ']'
			j++

		case content[j] == '[':
			inClass = true
			j++

		case content[j] == '(' && isCalloutAt(content, j):
			_, end, err := parseCallout(content, j)
			if err != nil {
				return unitSpec{}, "", 0, err
			}
			if end != len(content) {
				return unitSpec{}, "", 0, fmt.Errorf(
					"pattern %q: a loop callout must be the last element of its group", expr,
				)
			}
			coStart = j
			j = end

		case content[j] == '(':
			sub, err := matchingParen(content, j)
			if err != nil {
				return unitSpec{}, "", 0, err
			}
			if containsCallout(content[j : sub+1]) {
				return unitSpec{}, "", 0, fmt.Errorf(
					"pattern %q: callout nested too deep", expr,
				)
			}
			j = sub + 1

		default:
			j++
		}
	}

	if coStart < 0 {
		return unitSpec{}, "", 0, fmt.Errorf("pattern %q: callout nested too deep", expr)
	}

	co, _, err := parseCallout(content, coStart)
	if err != nil {
		return unitSpec{}, "", 0, err
	}

	loopBody := content[:coStart]
	quant := expr[closeAt+1]

	return unitSpec{
			body:    loopBody,
			callout: &co,
			loop:    true,
			minOne:  quant == '+',
		},
		"(?:" + loopBody + ")" + string(quant),
		closeAt + 2,
		nil
}

func isCalloutAt(s string, i int) bool {
	return strings.HasPrefix(s[i:], "(?C")
}

// parseCallout decodes one (?C), (?Cn) or (?C"name") token starting at
// s[i], returning the callout and the index just past its ')'.
func parseCallout(s string, i int) (co Callout, end int, err error) {

	j := i + 3

	switch {

	case j < len(s) && s[j] == ')':
		return co, j + 1, nil

	case j < len(s) && s[j] == '"':
		k := strings.IndexByte(s[j+1:], '"')
		if k < 0 {
			return co, 0, fmt.Errorf("unterminated callout name at byte %d of %q", i, s)
		}
		co.Name = s[j+1 : j+1+k]
		j += k + 2

	default:
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k == j {
			return co, 0, fmt.Errorf("malformed callout at byte %d of %q", i, s)
		}
		n, perr := strconv.ParseUint(s[j:k], 10, 32)
		if perr != nil {
			return co, 0, fmt.Errorf("callout number at byte %d of %q does not fit 32 bits", i, s)
		}
		co.Num = uint32(n)
		j = k
	}

	if j >= len(s) || s[j] != ')' {
		return co, 0, fmt.Errorf("malformed callout at byte %d of %q", i, s)
	}
	return co, j + 1, nil
}

func containsCallout(s string) bool {
	inClass := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\':
			i++
		case inClass:
			inClass = s[i] != ']'
		case s[i] == '[':
			inClass = true
		case s[i] == '(' && isCalloutAt(s, i):
			return true
		}
	}
	return false
}

// matchingParen returns the index of the ')' closing the '(' at s[i].
func matchingParen(s string, i int) (int, error) {
	depth := 0
	inClass := false
	for j := i; j < len(s); j++ {
		switch {
		case s[j] == '\\':
			j++
		case inClass:
			inClass = s[j] != ']'
		case s[j] == '[':
			inClass = true
		case s[j] == '(':
			depth++
		case s[j] == ')':
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}
	return 0, fmt.Errorf("pattern %q has an unbalanced group", s)
}
