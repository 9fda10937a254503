package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Column headers given to pasted lines. They resolve through the mapper's
// bare-name and phone rules.
const (
	TextNameHeader  = "Name"
	TextPhoneHeader = "Phone"
)

// ParseText reads pasted "name<sep>phone" lines, where the separator is a
// tab, comma or semicolon. Extra parts are ignored and blank lines skipped.
func ParseText(r io.Reader, opts Options) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	t := &Table{Format: FormatText, Headers: []string{TextNameHeader, TextPhoneHeader}}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := splitPasted(line)
		rec := []string{parts[0], ""}
		if len(parts) > 1 {
			rec[1] = parts[1]
		}
		if err := t.appendRecord(rec, opts.MaxRows); err != nil {
			return nil, err
		}
	}
	if len(t.Records) == 0 {
		return nil, ErrEmptyFile
	}
	return t, nil
}

// splitPasted splits on every tab, comma or semicolon, keeping empty parts,
// and trims each part.
func splitPasted(line string) []string {
	var parts []string
	start := 0
	for i, r := range line {
		if r == '\t' || r == ',' || r == ';' {
			parts = append(parts, strings.TrimSpace(line[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(line[start:]))
}
