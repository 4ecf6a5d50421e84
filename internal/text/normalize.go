package text

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// #region strip
// stripper removes sentence punctuation (. · …) and the ? ! , marks.
var stripper = strings.NewReplacer(
	".", "", "·", "", "…", "",
	"?", "", "!", "", ",", "",
)

// #endregion strip

// #region normalize
// Normalize canonicalizes free text into the form used for every comparison:
// punctuation stripped, whitespace runs collapsed to one space, edges
// trimmed, lower-cased and NFC-composed. Strings that differ only in the
// stripped punctuation, spacing, case or canonical encoding normalize
// identically.
//
// Normalize is total and idempotent. Composition runs before stripping so
// canonical equivalents of the stripped marks (U+0387 for ·) go too, and
// again at the end since removing a mark can leave a base letter next to a
// combining one.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// A Caser is stateful; one per call keeps Normalize goroutine-safe.
	s = cases.Lower(language.Und).String(norm.NFC.String(s))
	s = stripper.Replace(s)
	// Fields splits on unicode.IsSpace, which also trims what the
	// punctuation removal left at the edges.
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return norm.NFC.String(s)
}

// #endregion normalize
