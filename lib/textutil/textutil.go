package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

var diacriticsStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// StripDiacritics turns "Électronique" into "Electronique" so that
// free-text labels typed with inconsistent accents still compare equal.
func StripDiacritics(s string) string {
	out, _, err := transform.String(diacriticsStripper, s)
	if err != nil {
		return s
	}
	return out
}

func NormalizeLabel(label string) string {
	label = StripDiacritics(label)
	label = strings.ToLower(label)
	label = strings.Trim(label, " \n\t")
	label = whitespaceRegex.ReplaceAllString(label, " ")
	return label
}

func ContainsNormalized(label, keyword string) bool {
	return strings.Contains(NormalizeLabel(label), NormalizeLabel(keyword))
}
