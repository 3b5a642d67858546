package rxengine

import (
	"regexp"
	"regexp/syntax"
	"strings"
)

// prefixExpr renders an expression matching every string that could
// still be extended into a match of re: the prefix language. The
// rendition may over-approximate ( extra holds of the Partial verdict
// cost a refill round-trip, never correctness ) but must never miss a
// true prefix.
//
// The output always accepts the empty string: nothing seen yet is a
// prefix of everything.
func prefixExpr(re *syntax.Regexp) string {

	switch re.Op {

	case syntax.OpEmptyMatch, syntax.OpNoMatch,
		syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return `(?:)`

	case syntax.OpLiteral:
		return literalPrefix(re.Rune, re.Flags&syntax.FoldCase != 0)

	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return `(?:` + re.String() + `)?`

	case syntax.OpCapture, syntax.OpQuest:
		return prefixExpr(re.Sub[0])

	case syntax.OpStar, syntax.OpPlus, syntax.OpRepeat:
		// Repetition counts are deliberately ignored: allowing extra
		// iterations only widens the language.
		sub := re.Sub[0]
		return `(?:` + sub.String() + `)*(?:` + prefixExpr(sub) + `)`

	case syntax.OpAlternate:
		parts := make([]string, len(re.Sub))
		for i, s := range re.Sub {
			parts[i] = prefixExpr(s)
		}
		return `(?:` + strings.Join(parts, `|`) + `)`

	case syntax.OpConcat:
		return concatPrefix(re.Sub)
	}

	return `(?:` + re.String() + `)?`
}

// concatPrefix: a prefix of x·rest is either a prefix of x, or a full
// word of x followed by a prefix of rest.
func concatPrefix(subs []*syntax.Regexp) string {

	if len(subs) == 0 {
		return `(?:)`
	}
	if len(subs) == 1 {
		return prefixExpr(subs[0])
	}

	head := subs[0]
	rest := concatPrefix(subs[1:])

	return `(?:` + prefixExpr(head) + `|(?:` + head.String() + `)(?:` + rest + `))`
}

// literalPrefix unrolls a literal into nested optionals over its proper
// prefixes, so "abc" becomes (?:a(?:b)?)?: the full literal cannot be
// extended any further, and acceptance stops as soon as a byte
// diverges.
func literalPrefix(runes []rune, fold bool) string {

	out := ""
	for i := len(runes) - 2; i >= 0; i-- {
		ch := regexp.QuoteMeta(string(runes[i]))
		if fold {
			ch = `(?i:` + ch + `)`
		}
		out = `(?:` + ch + out + `)?`
	}
	if out == "" {
		return `(?:)`
	}
	return out
}
