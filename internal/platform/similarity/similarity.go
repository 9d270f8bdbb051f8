// Package similarity scores how close two team names are, tolerant of the
// accent and spacing noise that shows up in scraped league data.
package similarity

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, strips diacritics and collapses runs of whitespace
// so "As de Québec" and "as de quebec" compare equal.
func Normalize(s string) string {
	folded, _, err := transform.String(foldMarks, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Ratio is the Ratcliff-Obershelp similarity of the two normalized names,
// in [0,1] with 1 meaning equal after normalization.
func Ratio(a, b string) float64 {
	return RatioNormalized(Normalize(a), Normalize(b))
}

// RatioNormalized scores two already-normalized names, skipping the
// normalization pass for callers that compare one name against many.
func RatioNormalized(na, nb string) float64 {
	if na == nb {
		if na == "" {
			return 0
		}
		return 1
	}
	m := difflib.NewMatcher(chars(na), chars(nb))
	return m.Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
