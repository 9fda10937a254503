// CLAUDE:SUMMARY Maps raw tabular rows (header -> cell) onto canonical contacts via exact Google Contacts headers, then ordered heuristic rules.
package mapper

import (
	"sort"
	"strings"

	"github.com/hazyhaar/contact-normalizer/pkg/contact"
)

// Cell is one column of a raw row.
type Cell struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// Row is a raw tabular row in column order. Duplicate headers are allowed.
type Row []Cell

// RowFromMap builds a Row from an unordered map. Columns are sorted by header
// so that heuristic precedence is deterministic.
func RowFromMap(m map[string]string) Row {
	row := make(Row, 0, len(m))
	for h, v := range m {
		row = append(row, Cell{Header: h, Value: v})
	}
	sort.Slice(row, func(i, j int) bool { return row[i].Header < row[j].Header })
	return row
}

// Map converts a raw row into a contact. It never fails: unknown columns are
// dropped and the result may be empty. Name and Phone are derived last.
func Map(row Row) contact.Contact {
	var c contact.Contact
	for _, cell := range row {
		header := strings.TrimSpace(cell.Header)
		value := strings.TrimSpace(cell.Value)

		if f, ok := contact.FieldByHeader(header); ok {
			f.Set(&c, value)
			continue
		}
		applyHeuristics(&c, strings.ToLower(header), value)
	}
	c.Derive()
	return c
}

// MapAll maps every row, keeping only valid contacts.
func MapAll(rows []Row) []contact.Contact {
	out := make([]contact.Contact, 0, len(rows))
	for _, row := range rows {
		if c := Map(row); contact.IsValid(c) {
			out = append(out, c)
		}
	}
	return out
}
