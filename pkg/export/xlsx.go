package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hazyhaar/contact-normalizer/pkg/contact"
	"github.com/hazyhaar/contact-normalizer/pkg/normalize"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Contatos"

// WriteXLSX writes the same columns as WriteCSV into a single worksheet with
// a bold header row.
func WriteXLSX(w io.Writer, contacts []contact.Contact, r normalize.Rules) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("xlsx stream: %w", err)
	}
	if err := sw.SetRow("A1", toCells(contact.Headers()), excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i := range contacts {
		c := Project(contacts[i], r)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
		if err := sw.SetRow(cell, toCells(c.Values())); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx flush: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// Values are written as strings so phone numbers keep leading zeros.
func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
