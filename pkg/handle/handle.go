// Package handle derives catalog handles from product titles.
//
// A handle is the stable, URL-safe identifier used to match a feed product
// against a catalog entry. Derivation is deterministic and idempotent:
// Normalize(Normalize(t)) == Normalize(t) for every title t.
package handle

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldTable lists every accented or ligature rune that is rewritten to ASCII
// before stripping. Runes not listed here go through compatibility
// decomposition, so ligatures such as ﬁ expand and combining marks are
// dropped; anything still outside [a-z0-9_] is removed.
var FoldTable = map[rune]string{
	'å': "a", 'ä': "a", 'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ā': "a",
	'ö': "o", 'ó': "o", 'ò': "o", 'ô': "o", 'õ': "o", 'ø': "o", 'ō': "o",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e", 'ē': "e",
	'ü': "u", 'ú': "u", 'ù': "u", 'û': "u", 'ū': "u",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'ñ': "n", 'ç': "c", 'ý': "y", 'ÿ': "y",
	'æ': "ae", 'œ': "oe", 'ß': "ss", 'ð': "d", 'þ': "th", 'ł': "l",
}

// dropped runes vanish before any other rule runs.
var dropped = map[rune]bool{'½': true, '®': true, '™': true}

var (
	nonWord    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// Fold lowercases s and rewrites accented runes to ASCII using FoldTable,
// falling back to compatibility decomposition. Every Unicode space becomes
// an ASCII space.
func Fold(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if dropped[r] {
			continue
		}
		if unicode.IsSpace(r) {
			b.WriteByte(' ')
			continue
		}
		if repl, ok := FoldTable[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, b.String())
	if err != nil {
		return b.String()
	}
	return strings.ToLower(folded)
}

// Normalize converts a product title into a catalog handle.
func Normalize(title string) string {
	h := Fold(title)
	h = strings.ReplaceAll(h, ".", "-")
	h = nonWord.ReplaceAllString(h, "")
	h = whitespace.ReplaceAllString(strings.TrimSpace(h), "-")
	h = hyphens.ReplaceAllString(h, "-")
	return strings.Trim(h, "-")
}

// Set is a set of normalized handles.
type Set map[string]struct{}

// NewSet normalizes every value and collects the non-empty results.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add normalizes v and inserts it unless it normalizes to the empty string.
func (s Set) Add(v string) {
	if h := Normalize(v); h != "" {
		s[h] = struct{}{}
	}
}

// Contains reports whether the normalized form of v is in the set.
func (s Set) Contains(v string) bool {
	_, ok := s[Normalize(v)]
	return ok
}

// Len returns the number of distinct handles.
func (s Set) Len() int {
	return len(s)
}
