// Package codes resolves account code tokens from mapping rules against the
// codes of a trial balance.
//
// A token is one of:
//
//	1122        exact code
//	113*        every code starting with "113"
//	1001-1012   every all-digit code whose value lies in the inclusive range
package codes

import (
	"regexp"
	"strings"
)

// Kind is the matching strategy of a Token.
type Kind int

const (
	Exact Kind = iota
	Prefix
	Range
)

func (k Kind) String() string {
	switch k {
	case Prefix:
		return "prefix"
	case Range:
		return "range"
	default:
		return "exact"
	}
}

// Token is a parsed account code token.
type Token struct {
	raw  string
	kind Kind

	value string // exact code or prefix
	lo    string // range bounds, leading zeros stripped
	hi    string
}

var rangePattern = regexp.MustCompile(`^(\d+)-(\d+)$`)

// Parse classifies a raw token. A trailing "*" takes precedence over the range
// form; anything that is neither is an exact code.
func Parse(raw string) Token {
	s := strings.TrimSpace(raw)
	t := Token{raw: s}
	switch {
	case strings.HasSuffix(s, "*"):
		t.kind = Prefix
		t.value = strings.TrimSuffix(s, "*")
	case rangePattern.MatchString(s):
		m := rangePattern.FindStringSubmatch(s)
		t.kind = Range
		t.lo = trimZeros(m[1])
		t.hi = trimZeros(m[2])
	default:
		t.kind = Exact
		t.value = s
	}
	return t
}

// Kind returns the matching strategy.
func (t Token) Kind() Kind { return t.kind }

// String returns the token as written, trimmed.
func (t Token) String() string { return t.raw }

// Match reports whether code is selected by the token.
func (t Token) Match(code string) bool {
	switch t.kind {
	case Prefix:
		return strings.HasPrefix(code, t.value)
	case Range:
		if !isDigits(code) {
			return false
		}
		v := trimZeros(code)
		return compareDigits(t.lo, v) <= 0 && compareDigits(v, t.hi) <= 0
	default:
		return t.raw != "" && code == t.value
	}
}

// Resolve returns the codes selected by raw, in the order of codes. An empty
// result means the token matched nothing.
func Resolve(raw string, codes []string) []string {
	t := Parse(raw)
	if t.raw == "" {
		return nil
	}
	var out []string
	for _, c := range codes {
		if t.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

var separators = regexp.MustCompile(`[;,，、\s]+`)

// SplitTokens splits a mapping code cell into tokens. Separators are ";", ",",
// "，", "、" and whitespace. Ranges are written without inner spaces.
func SplitTokens(cell string) []string {
	var out []string
	for _, p := range separators.Split(cell, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// compareDigits compares two digit strings without leading zeros by numeric
// value. Codes of any length compare correctly.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func trimZeros(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
