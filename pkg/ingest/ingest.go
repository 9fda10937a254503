// CLAUDE:SUMMARY Reads uploaded contact files (CSV, XLSX, pasted text) into header/row tables with size, row and encoding limits.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/contact-normalizer/pkg/contact"
	"github.com/hazyhaar/contact-normalizer/pkg/mapper"
)

// DefaultMaxSize is the upload cap applied when Options.MaxSize is zero.
const DefaultMaxSize = 10 << 20

// Options bounds and tunes parsing.
type Options struct {
	MaxSize   int64  // bytes; 0 means DefaultMaxSize
	MaxRows   int    // data rows; 0 means unlimited
	Encoding  string // CSV only, WHATWG label ("windows-1252", "iso-8859-1"); empty means UTF-8
	Delimiter rune   // CSV only; 0 sniffs ',' ';' or tab from the header line
}

func (o Options) maxSize() int64 {
	if o.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return o.MaxSize
}

// Table is a parsed sheet: a header line and the data rows under it.
type Table struct {
	Format  string     `json:"format"`
	Headers []string   `json:"headers"`
	Records [][]string `json:"records"`
}

// Rows pairs every record with its headers. Columns without a header and
// cells past the end of a short record are skipped.
func (t *Table) Rows() []mapper.Row {
	out := make([]mapper.Row, 0, len(t.Records))
	for _, rec := range t.Records {
		row := make(mapper.Row, 0, len(t.Headers))
		for i, h := range t.Headers {
			if h == "" || i >= len(rec) {
				continue
			}
			row = append(row, mapper.Cell{Header: h, Value: rec[i]})
		}
		out = append(out, row)
	}
	return out
}

// Contacts maps the table and keeps valid contacts only.
func (t *Table) Contacts() []contact.Contact {
	return mapper.MapAll(t.Rows())
}

// Format names accepted by Parse.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatText = "text"
)

// FormatFromName picks a parser from a file name extension.
func FormatFromName(name string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".tsv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".txt":
		return FormatText, nil
	case ".xls":
		return "", ErrLegacyExcel
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ParseFile reads a whole upload, enforcing the size cap, and dispatches on
// the file extension. A .tsv file is read as CSV split on tabs.
func ParseFile(name string, r io.Reader, opts Options) (*Table, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	return Parse(format, r, opts.ForFile(name))
}

// ForFile fills in what the file name implies: a .tsv file splits on tabs
// unless a delimiter is already set.
func (o Options) ForFile(name string) Options {
	if o.Delimiter == 0 && strings.EqualFold(filepath.Ext(name), ".tsv") {
		o.Delimiter = '\t'
	}
	return o
}

// Parse reads r with the parser for format.
func Parse(format string, r io.Reader, opts Options) (*Table, error) {
	data, err := readCapped(r, opts.maxSize())
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return ParseCSV(bytes.NewReader(data), opts)
	case FormatXLSX:
		return ParseXLSX(bytes.NewReader(data), opts)
	case FormatText:
		return ParseText(bytes.NewReader(data), opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func readCapped(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, &SizeError{Max: max}
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}

// appendRecord adds rec unless it is blank, enforcing the row cap.
func (t *Table) appendRecord(rec []string, maxRows int) error {
	if isBlank(rec) {
		return nil
	}
	if maxRows > 0 && len(t.Records) >= maxRows {
		return fmt.Errorf("%w (max %d)", ErrTooManyRows, maxRows)
	}
	t.Records = append(t.Records, rec)
	return nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func trimHeaders(h []string) ([]string, error) {
	out := make([]string, len(h))
	for i, v := range h {
		out[i] = strings.TrimSpace(v)
	}
	if isBlank(out) {
		return nil, ErrMissingHeader
	}
	return out, nil
}
