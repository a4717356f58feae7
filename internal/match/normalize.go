package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMarks selects the marks dropped after decomposition,
// turning "Econômica" into "Economica".
var combiningMarks = runes.In(unicode.Mn)

// Normalize lower-cases the input and strips diacritics. It never
// fails and is idempotent. Transformers carry internal buffers, so the
// chain is built per call instead of shared between goroutines.
func Normalize(s string) string {
	s = strings.ToLower(s)
	stripMarks := transform.Chain(norm.NFD, runes.Remove(combiningMarks), norm.NFC)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// transform only fails on broken encodings; fall back to the
		// lower-cased input so matching still has something to chew on.
		return s
	}
	return out
}

// NormalizeStrict additionally drops every rune that is not a letter,
// digit or space. This is the variant used for agency code and service
// comparisons.
func NormalizeStrict(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return -1
	}, Normalize(s))
}
