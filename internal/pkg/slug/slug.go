// Package slug derives URL-safe identifiers from human labels.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	VocabularyFallback = "vocabulary-slug"
	TermFallback       = "term-slug"
	RepositoryFallback = "repository-slug"
)

var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// Normalize folds label to lowercase ASCII, collapsing every run of
// non-alphanumeric characters into a single "-" with none at either end.
func Normalize(label string) string {
	folded, _, err := transform.String(asciiFold, label)
	if err != nil {
		folded = label
	}
	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Generate returns the first of base, base1, base2, ... for which taken
// reports false. base is Normalize(label), or fallback when that is empty.
func Generate(label, fallback string, taken func(candidate string) bool) string {
	base := Normalize(label)
	if base == "" {
		base = fallback
	}
	if taken == nil || !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// TakenSet adapts a list of existing slugs into a taken predicate.
func TakenSet(existing []string) func(string) bool {
	set := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		set[s] = struct{}{}
	}
	return func(candidate string) bool {
		_, ok := set[candidate]
		return ok
	}
}
