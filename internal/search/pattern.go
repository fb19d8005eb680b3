package search

import (
	"regexp"
	"strings"

	"github.com/mj1618/uisync/internal/model"
)

// PatternKind says how a Pattern matches.
type PatternKind int

const (
	Regex PatternKind = iota
	Literal
)

func (k PatternKind) String() string {
	if k == Literal {
		return "literal"
	}
	return "regex"
}

// Pattern is a compiled text matcher: a regular expression, or the literal
// source text when the expression does not compile.
type Pattern struct {
	Kind   PatternKind
	Source string
	re     *regexp.Regexp
}

// Compile builds a Pattern from s, falling back to a literal match when s
// is not a valid regular expression.
func Compile(s string) Pattern {
	re, err := regexp.Compile(s)
	if err != nil {
		return Pattern{Kind: Literal, Source: s}
	}
	return Pattern{Kind: Regex, Source: s, re: re}
}

// MatchString reports whether s contains a match.
func (p Pattern) MatchString(s string) bool {
	if p.Kind == Literal {
		return strings.Contains(s, p.Source)
	}
	return p.re.MatchString(s)
}

// MatchNode reports whether the node's display text or error text matches,
// or its hint when the display text is empty.
func (p Pattern) MatchNode(n *model.Node) bool {
	if n == nil {
		return false
	}
	if p.MatchString(n.Text) {
		return true
	}
	if n.Error != "" && p.MatchString(n.Error) {
		return true
	}
	return n.Text == "" && n.Hint != "" && p.MatchString(n.Hint)
}

func (p Pattern) String() string { return p.Source }
