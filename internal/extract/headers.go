package extract

import (
	"strings"
)

// Logical columns shared by the delimited and spreadsheet extractors.
// Synonyms cover the Dutch ING export headers plus common English fallbacks;
// matching is case-insensitive and tolerant of column reordering.
const (
	colDate         = "date"
	colName         = "name"
	colAccount      = "account"
	colCounterparty = "counterparty"
	colDirection    = "direction"
	colAmount       = "amount"
	colMemo         = "memo"
	colBalance      = "balance"
)

var headerSynonyms = map[string][]string{
	colDate:         {"datum", "date", "boekdatum"},
	colName:         {"naam / omschrijving", "naam/omschrijving", "naam", "name"},
	colAccount:      {"rekening", "iban", "account"},
	colCounterparty: {"tegenrekening", "iban tegenrekening", "counterparty"},
	colDirection:    {"af bij", "af/bij", "sign", "debit/credit"},
	colAmount:       {"bedrag (eur)", "bedrag", "amount (eur)", "amount"},
	colMemo:         {"mededelingen", "omschrijving", "details", "memo", "description"},
	colBalance:      {"saldo na mutatie", "saldo", "balance"},
}

// requiredColumns must all be present in the header row for a tabular
// document to be extractable at all.
var requiredColumns = []string{colDate, colAmount, colDirection, colAccount}

// columnMap maps logical column names onto positions in a header row.
type columnMap map[string]int

// mapHeaders resolves each logical column against a raw header row.
// The second return value lists required columns that could not be located.
func mapHeaders(headers []string) (columnMap, []string) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
	}

	cm := columnMap{}
	for logical, synonyms := range headerSynonyms {
		for _, syn := range synonyms {
			for i, h := range normalized {
				if h == syn {
					cm[logical] = i
					break
				}
			}
			if _, ok := cm[logical]; ok {
				break
			}
		}
	}

	var missing []string
	for _, req := range requiredColumns {
		if _, ok := cm[req]; !ok {
			missing = append(missing, req)
		}
	}
	return cm, missing
}

// cell returns the trimmed value of a logical column in a data row, or ""
// when the column is absent or the row is short.
func (cm columnMap) cell(row []string, logical string) string {
	i, ok := cm[logical]
	if !ok || i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
