package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a delimited file whose first record is the header line.
func ParseCSV(r io.Reader, opts Options) (*Table, error) {
	br := bufio.NewReader(r)
	if b, _ := br.Peek(3); bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(3)
	}

	src, err := decode(br, opts.Encoding)
	if err != nil {
		return nil, err
	}

	comma := opts.Delimiter
	if comma == 0 {
		comma = sniffDelimiter(src)
	}

	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, csvError(err)
	}
	headers, err := trimHeaders(header)
	if err != nil {
		return nil, err
	}

	t := &Table{Format: FormatCSV, Headers: headers}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if err := t.appendRecord(rec, opts.MaxRows); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// decode wraps br with a transcoder for non-UTF-8 labels. UTF-8 input is
// checked up front so a mis-saved file fails early instead of producing
// replacement characters.
func decode(br *bufio.Reader, label string) (*bufio.Reader, error) {
	if label == "" || isUTF8(label) {
		head, err := br.Peek(4096)
		if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("read file: %w", err)
		}
		if len(head) == 0 {
			return nil, ErrEmptyFile
		}
		if !validUTF8Prefix(head, len(head) == br.Size()) {
			return nil, ErrInvalidEncoding
		}
		return br, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label)
	}
	return bufio.NewReader(transform.NewReader(br, enc.NewDecoder())), nil
}

func isUTF8(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8":
		return true
	}
	return false
}

// validUTF8Prefix checks the peeked head of the input. When the window is
// full, a multi-byte rune cut at its end is dropped before the check.
func validUTF8Prefix(b []byte, truncated bool) bool {
	if truncated {
		for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
			tail := b[len(b)-i:]
			if utf8.RuneStart(tail[0]) {
				if !utf8.FullRune(tail) {
					b = b[:len(b)-i]
				}
				break
			}
		}
	}
	return utf8.Valid(b)
}

// sniffDelimiter picks the most frequent of ',', ';' and tab on the first
// line. Ties go to the comma.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(4096)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestCount := ',', bytes.Count(head, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(head, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

func csvError(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedCSV, err)
}
