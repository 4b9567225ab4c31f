package extract

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// blockRule is one tagged heuristic matcher tried against a text line. Rules
// are evaluated in priority order; the tags keep diagnostics readable.
type blockRule struct {
	tag string
	re  *regexp.Regexp
}

var pageRules = []blockRule{
	{tag: "date", re: regexp.MustCompile(`\b(\d{2}-\d{2}-\d{4})\b`)},
	{tag: "amount", re: regexp.MustCompile(`([-+]?\d{1,3}(?:\.\d{3})*,\d{2})`)},
	{tag: "iban", re: regexp.MustCompile(`\b([A-Z]{2}\d{2}[A-Z]{4}\d{10})\b`)},
}

func pageRule(tag string) *regexp.Regexp {
	for _, r := range pageRules {
		if r.tag == tag {
			return r.re
		}
	}
	return nil
}

// PageText extracts candidates from unstructured page text, such as the text
// layer pulled out of a PDF statement. A line carrying both a date and an
// amount starts a transaction block; the remainder of the line (or the next
// line) is the description. Direction comes from the amount sign. When no
// block can be located the whole document degrades to a single failed parse
// event; this extractor never fails fatally on layout.
type PageText struct{}

// Extract implements Extractor. The caller bounds the heuristic scan with a
// context deadline; pathological inputs stop at the deadline with whatever
// was found so far plus a failed event.
func (e *PageText) Extract(ctx context.Context, in Input) ([]domain.RawCandidate, []domain.ParseEvent, error) {
	if isBinary(in.Data) {
		return nil, []domain.ParseEvent{
			failEvent(in.DocumentID, domain.StageExtract,
				"content is binary, not extracted page text; cannot scan for transaction blocks"),
		}, nil
	}

	dateRe := pageRule("date")
	amountRe := pageRule("amount")
	ibanRe := pageRule("iban")

	lines := nonEmptyLines(string(in.Data))
	// When no IBAN is visible anywhere in the text, candidates land in a
	// shared unknown-account bucket rather than being rejected wholesale.
	accountRef := "UNKNOWN"
	if m := ibanRe.FindString(string(in.Data)); m != "" {
		accountRef = m
	}

	var candidates []domain.RawCandidate
	var events []domain.ParseEvent

	for i, line := range lines {
		select {
		case <-ctx.Done():
			events = append(events, failEvent(in.DocumentID, domain.StageExtract,
				"heuristic scan timed out after %d of %d lines", i, len(lines)))
			return candidates, events, nil
		default:
		}

		dm := dateRe.FindString(line)
		am := amountRe.FindString(line)
		if dm == "" || am == "" {
			continue
		}

		desc := dateRe.ReplaceAllString(line, "")
		desc = amountRe.ReplaceAllString(desc, "")
		desc = strings.TrimSpace(desc)
		if desc == "" && i+1 < len(lines) {
			desc = lines[i+1]
		}

		direction := "Bij"
		if strings.Contains(am, "-") {
			direction = "Af"
		}

		candidates = append(candidates, domain.RawCandidate{
			DocumentID:     in.DocumentID,
			Index:          i,
			BookingDateRaw: dm,
			AmountRaw:      strings.TrimLeft(am, "-+"),
			DirectionRaw:   direction,
			Description:    desc,
			AccountRef:     accountRef,
		})
	}

	if len(candidates) == 0 {
		events = append(events, failEvent(in.DocumentID, domain.StageExtract,
			"no transaction blocks recognized in %d lines of page text", len(lines)))
	}

	return candidates, events, nil
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// isBinary flags content that is clearly not text: a PDF header or embedded
// NUL bytes.
func isBinary(data []byte) bool {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return true
	}
	return bytes.IndexByte(data, 0) >= 0
}
