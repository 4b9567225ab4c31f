package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// Delimited extracts candidates from delimited-text bank exports. Columns
// are located by case-insensitive header match, so reordered exports parse
// the same way. Rows missing a required field are skipped with a failed
// parse event; they never abort the document.
type Delimited struct{}

// Extract implements Extractor.
func (e *Delimited) Extract(ctx context.Context, in Input) ([]domain.RawCandidate, []domain.ParseEvent, error) {
	data := bytes.TrimPrefix(in.Data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, []domain.ParseEvent{
			failEvent(in.DocumentID, domain.StageExtract, "no header row: %v", err),
		}, nil
	}

	cm, missing := mapHeaders(header)
	if len(missing) > 0 {
		return nil, []domain.ParseEvent{
			failEvent(in.DocumentID, domain.StageExtract,
				"header missing required columns %s", strings.Join(missing, ", ")),
		}, nil
	}

	var candidates []domain.RawCandidate
	var events []domain.ParseEvent

	for index := 1; ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			events = append(events, failEvent(in.DocumentID, domain.StageExtract,
				"row %d: malformed record: %v", index, err))
			continue
		}

		c, reason := e.rowCandidate(cm, row, in.DocumentID, index)
		if reason != "" {
			events = append(events, failEvent(in.DocumentID, domain.StageExtract,
				"row %d: %s", index, reason))
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates, events, nil
}

func (e *Delimited) rowCandidate(cm columnMap, row []string, docID int64, index int) (domain.RawCandidate, string) {
	c := domain.RawCandidate{
		DocumentID:       docID,
		Index:            index,
		BookingDateRaw:   cm.cell(row, colDate),
		AmountRaw:        cm.cell(row, colAmount),
		DirectionRaw:     cm.cell(row, colDirection),
		AccountRef:       cm.cell(row, colAccount),
		CounterpartyIBAN: cm.cell(row, colCounterparty),
		CounterpartyName: cm.cell(row, colName),
		BalanceRaw:       cm.cell(row, colBalance),
	}

	c.Description = cm.cell(row, colMemo)
	if c.Description == "" {
		c.Description = c.CounterpartyName
	}

	switch {
	case c.BookingDateRaw == "":
		return c, "missing booking date"
	case c.AmountRaw == "":
		return c, "missing amount"
	case c.DirectionRaw == "":
		return c, "missing direction indicator"
	case c.AccountRef == "":
		return c, "missing account reference"
	}
	return c, ""
}

// detectDelimiter picks the field separator by counting occurrences in the
// first line. ING exports use commas; some banks export semicolon-separated
// files under the same extension.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
