package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/statement-ingest/internal/domain"
)

// Spreadsheet extracts candidates from xlsx workbook exports. It applies the
// same header mapping and per-row rules as the delimited extractor, over the
// first sheet of the workbook. Cell values come back formatted, so Excel
// serial dates arrive as date strings and flow through the shared date
// parsing.
type Spreadsheet struct{}

// Extract implements Extractor.
func (e *Spreadsheet) Extract(ctx context.Context, in Input) ([]domain.RawCandidate, []domain.ParseEvent, error) {
	f, err := excelize.OpenReader(bytes.NewReader(in.Data))
	if err != nil {
		return nil, []domain.ParseEvent{
			failEvent(in.DocumentID, domain.StageExtract, "open workbook: %v", err),
		}, nil
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, []domain.ParseEvent{
			failEvent(in.DocumentID, domain.StageExtract, "workbook has no sheets"),
		}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, []domain.ParseEvent{
			failEvent(in.DocumentID, domain.StageExtract, "read sheet %q: %v", sheets[0], err),
		}, nil
	}
	if len(rows) == 0 {
		return nil, []domain.ParseEvent{
			failEvent(in.DocumentID, domain.StageExtract, "sheet %q is empty", sheets[0]),
		}, nil
	}

	cm, missing := mapHeaders(rows[0])
	if len(missing) > 0 {
		return nil, []domain.ParseEvent{
			failEvent(in.DocumentID, domain.StageExtract,
				"header missing required columns %s", strings.Join(missing, ", ")),
		}, nil
	}

	var candidates []domain.RawCandidate
	var events []domain.ParseEvent

	delimited := &Delimited{}
	for index, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		c, reason := delimited.rowCandidate(cm, row, in.DocumentID, index+1)
		if reason != "" {
			events = append(events, failEvent(in.DocumentID, domain.StageExtract,
				"row %d: %s", index+1, reason))
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates, events, nil
}
