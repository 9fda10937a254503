// CLAUDE:SUMMARY Canonical contact record (Google Contacts schema), field table with export headers, derived name/phone and validity.
package contact

import "strings"

// Contact is one person. All canonical fields default to the empty string.
// Name and Phone are display fields derived from the structured ones.
type Contact struct {
	FirstName          string `json:"firstName"`
	MiddleName         string `json:"middleName"`
	LastName           string `json:"lastName"`
	PhoneticFirstName  string `json:"phoneticFirstName"`
	PhoneticMiddleName string `json:"phoneticMiddleName"`
	PhoneticLastName   string `json:"phoneticLastName"`
	NamePrefix         string `json:"namePrefix"`
	NameSuffix         string `json:"nameSuffix"`
	Nickname           string `json:"nickname"`
	FileAs             string `json:"fileAs"`

	OrganizationName       string `json:"organizationName"`
	OrganizationTitle      string `json:"organizationTitle"`
	OrganizationDepartment string `json:"organizationDepartment"`

	Birthday string `json:"birthday"`
	Notes    string `json:"notes"`
	Photo    string `json:"photo"`
	Labels   string `json:"labels"`

	Email1Label string `json:"email1Label"`
	Email1Value string `json:"email1Value"`
	Email2Label string `json:"email2Label"`
	Email2Value string `json:"email2Value"`

	Phone1Label string `json:"phone1Label"`
	Phone1Value string `json:"phone1Value"`
	Phone2Label string `json:"phone2Label"`
	Phone2Value string `json:"phone2Value"`
	Phone3Label string `json:"phone3Label"`
	Phone3Value string `json:"phone3Value"`
	Phone4Label string `json:"phone4Label"`
	Phone4Value string `json:"phone4Value"`

	Address1Label           string `json:"address1Label"`
	Address1Formatted       string `json:"address1Formatted"`
	Address1Street          string `json:"address1Street"`
	Address1City            string `json:"address1City"`
	Address1POBox           string `json:"address1POBox"`
	Address1Region          string `json:"address1Region"`
	Address1PostalCode      string `json:"address1PostalCode"`
	Address1Country         string `json:"address1Country"`
	Address1ExtendedAddress string `json:"address1ExtendedAddress"`

	Website1Label string `json:"website1Label"`
	Website1Value string `json:"website1Value"`

	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// FullName joins prefix, first, middle, last and suffix with single spaces,
// skipping blank parts.
func (c *Contact) FullName() string {
	return JoinNonBlank(c.NamePrefix, c.FirstName, c.MiddleName, c.LastName, c.NameSuffix)
}

// PrimaryPhone returns the first non-blank of Phone1Value..Phone4Value.
func (c *Contact) PrimaryPhone() string {
	for _, p := range c.Phones() {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}
	return ""
}

// Phones returns the four phone values in order, blanks included.
func (c *Contact) Phones() []string {
	return []string{c.Phone1Value, c.Phone2Value, c.Phone3Value, c.Phone4Value}
}

// Derive recomputes Name and Phone from the structured fields.
func (c *Contact) Derive() {
	c.Name = c.FullName()
	c.Phone = c.PrimaryPhone()
}

// DisplayName is Name when set, otherwise the assembled full name.
func (c *Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.FullName()
}

// DisplayPhone is Phone when set, otherwise the primary phone.
func (c *Contact) DisplayPhone() string {
	if c.Phone != "" {
		return c.Phone
	}
	return c.PrimaryPhone()
}

// IsValid reports whether the contact carries enough data to keep.
func IsValid(c Contact) bool {
	for _, v := range []string{
		c.FirstName,
		c.LastName,
		c.Phone1Value,
		c.Phone2Value,
		c.Email1Value,
		c.OrganizationName,
		c.Name,
	} {
		if v != "" {
			return true
		}
	}
	return false
}

// JoinNonBlank joins the non-blank parts with a single space.
func JoinNonBlank(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
