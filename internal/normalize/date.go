package normalize

import (
	"fmt"
	"regexp"
	"time"

	"cloud.google.com/go/civil"
)

var valueDateRe = regexp.MustCompile(`Valutadatum:\s*(\d{2}-\d{2}-\d{4})`)

// dateLayouts are the fixed date forms seen in statement exports, tried in
// order: compact ING form, Dutch day-first, ISO.
var dateLayouts = []string{
	"20060102",
	"02-01-2006",
	"2006-01-02",
}

// ParseDate parses a fixed-format statement date into a calendar date.
func ParseDate(raw string) (civil.Date, error) {
	for _, layout := range dateLayouts {
		if len(raw) != len(layout) {
			continue
		}
		t, err := time.Parse(layout, raw)
		if err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognized date %q", raw)
}

// ExtractValueDate pulls a labeled value date ("Valutadatum: DD-MM-YYYY")
// out of a free-text memo. Returns nil when no label is present; the value
// date is never guessed.
func ExtractValueDate(memo string) *civil.Date {
	m := valueDateRe.FindStringSubmatch(memo)
	if m == nil {
		return nil
	}
	d, err := ParseDate(m[1])
	if err != nil {
		return nil
	}
	return &d
}
