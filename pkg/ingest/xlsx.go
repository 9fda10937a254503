package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first worksheet of an Office Open XML workbook. The
// first row is the header line.
func ParseXLSX(r io.Reader, opts Options) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrCorruptSpreadsheet, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	headers, err := trimHeaders(rows[0])
	if err != nil {
		return nil, err
	}
	t := &Table{Format: FormatXLSX, Headers: headers}
	for _, rec := range rows[1:] {
		if err := t.appendRecord(rec, opts.MaxRows); err != nil {
			return nil, err
		}
	}
	return t, nil
}
