// CLAUDE:SUMMARY Serializes contacts to Google Contacts CSV, tab-separated text and XLSX, honoring the export group toggles.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hazyhaar/contact-normalizer/pkg/contact"
	"github.com/hazyhaar/contact-normalizer/pkg/normalize"
)

// TextHeader is the first line of the plain text export.
const TextHeader = "Name\tPhone\tEmail\tCompany"

// Project blanks the field groups that r excludes from export. The column
// set is unchanged. Without IncludeAllPhones the derived Phone is kept only
// when it came from the first slot.
func Project(c contact.Contact, r normalize.Rules) contact.Contact {
	if !r.IncludeAllPhones && strings.TrimSpace(c.Phone1Value) == "" {
		c.Phone = ""
	}
	for _, f := range contact.Fields() {
		if !included(f, r) {
			f.Set(&c, "")
		}
	}
	return c
}

func included(f contact.Field, r normalize.Rules) bool {
	switch f.Group() {
	case contact.GroupPhone:
		return r.IncludeAllPhones || f == contact.FieldPhone1Label || f == contact.FieldPhone1Value
	case contact.GroupEmail:
		return r.IncludeEmails
	case contact.GroupAddress:
		return r.IncludeAddress
	case contact.GroupOrganization:
		return r.IncludeOrganization
	}
	return true
}

// WriteCSV writes a Google Contacts import file: UTF-8 BOM, the canonical
// header line, then one line per contact with every field quoted.
func WriteCSV(w io.Writer, contacts []contact.Contact, r normalize.Rules) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("\uFEFF")
	bw.WriteString(strings.Join(contact.Headers(), ","))
	for i := range contacts {
		c := Project(contacts[i], r)
		bw.WriteByte('\n')
		for j, v := range c.Values() {
			if j > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quote(v))
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// WriteText writes one tab-separated line per contact: display name,
// display phone, first e-mail and organization.
func WriteText(w io.Writer, contacts []contact.Contact, r normalize.Rules) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(TextHeader)
	for i := range contacts {
		c := Project(contacts[i], r)
		bw.WriteByte('\n')
		bw.WriteString(strings.Join([]string{
			flatten(c.DisplayName()),
			flatten(c.DisplayPhone()),
			flatten(c.Email1Value),
			flatten(c.OrganizationName),
		}, "\t"))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

// flatten keeps a value on one line and in one column.
func flatten(s string) string {
	return strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
