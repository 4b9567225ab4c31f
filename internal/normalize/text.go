package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// volatilePatterns match substrings that vary per occurrence without carrying
// identifying information: per-payment timestamps, card sequence numbers,
// terminal IDs, processor transaction codes and wallet boilerplate. They are
// stripped before fingerprinting so that two sightings of the same payment
// normalize identically. Stable reference tokens (IBANs, "Kenmerk:"
// structured references, mandate and creditor identifiers, policy numbers)
// are deliberately not matched and survive normalization verbatim.
var volatilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Datum/Tijd:\s*\d{2}-\d{2}-\d{4}\s*\d{2}:\d{2}:\d{2}`),
	regexp.MustCompile(`(?i)Pasvolgnr:\s*\d+`),
	regexp.MustCompile(`(?i)Term:\s*\S+`),
	regexp.MustCompile(`(?i)Transactie:\s*\S+`),
	regexp.MustCompile(`(?i)Apple Pay`),
}

// Text trims a raw field, applies Unicode canonical decomposition and
// collapses internal whitespace runs to a single space. Case is preserved;
// this is the display form.
func Text(value string) string {
	v := strings.TrimSpace(value)
	v = norm.NFKD.String(v)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(v, " "))
}

// Fold returns the case-folded matching form of a field.
func Fold(value string) string {
	return strings.ToLower(Text(value))
}

// Description produces the normalized description used for matching and
// fingerprinting: normalized text with volatile tokens removed.
func Description(desc string) string {
	v := Text(desc)
	for _, re := range volatilePatterns {
		v = re.ReplaceAllString(v, "")
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(v, " "))
}
