// CLAUDE:SUMMARY Applies a rule set to contacts: name casing/accent stripping, phone formatting, derived full name and primary phone.
package normalize

import "github.com/hazyhaar/contact-normalizer/pkg/contact"

var nameFields = []contact.Field{
	contact.FieldFirstName,
	contact.FieldMiddleName,
	contact.FieldLastName,
	contact.FieldNickname,
	contact.FieldNamePrefix,
	contact.FieldNameSuffix,
	contact.FieldOrganizationName,
	contact.FieldOrganizationTitle,
	contact.FieldOrganizationDepartment,
}

var phoneFields = []contact.Field{
	contact.FieldPhone1Value,
	contact.FieldPhone2Value,
	contact.FieldPhone3Value,
	contact.FieldPhone4Value,
}

// Normalize returns a new slice with every contact normalized. The input is
// not modified.
func Normalize(contacts []contact.Contact, r Rules) []contact.Contact {
	out := make([]contact.Contact, len(contacts))
	for i := range contacts {
		out[i] = NormalizeContact(contacts[i], r)
	}
	return out
}

// NormalizeContact normalizes a single contact. Derived name and phone are
// computed from the source values, not from the already formatted fields.
func NormalizeContact(src contact.Contact, r Rules) contact.Contact {
	dst := src

	for _, f := range nameFields {
		f.Set(&dst, FormatName(f.Get(&src), r))
	}
	for _, f := range phoneFields {
		f.Set(&dst, FormatPhone(f.Get(&src), r.PhoneFormat))
	}

	if r.CombineNames {
		dst.Name = FormatName(src.FullName(), r)
	}
	if r.PreferPrimaryPhone {
		dst.Phone = FormatPhone(src.PrimaryPhone(), r.PhoneFormat)
	}
	return dst
}
