package contact

// Field identifies one canonical contact attribute. Fields are declared in
// canonical export order.
type Field int

const (
	FieldFirstName Field = iota
	FieldMiddleName
	FieldLastName
	FieldPhoneticFirstName
	FieldPhoneticMiddleName
	FieldPhoneticLastName
	FieldNamePrefix
	FieldNameSuffix
	FieldNickname
	FieldFileAs
	FieldOrganizationName
	FieldOrganizationTitle
	FieldOrganizationDepartment
	FieldBirthday
	FieldNotes
	FieldPhoto
	FieldLabels
	FieldEmail1Label
	FieldEmail1Value
	FieldEmail2Label
	FieldEmail2Value
	FieldPhone1Label
	FieldPhone1Value
	FieldPhone2Label
	FieldPhone2Value
	FieldPhone3Label
	FieldPhone3Value
	FieldPhone4Label
	FieldPhone4Value
	FieldAddress1Label
	FieldAddress1Formatted
	FieldAddress1Street
	FieldAddress1City
	FieldAddress1POBox
	FieldAddress1Region
	FieldAddress1PostalCode
	FieldAddress1Country
	FieldAddress1ExtendedAddress
	FieldWebsite1Label
	FieldWebsite1Value

	fieldCount
)

// Group is the export group a field belongs to.
type Group int

const (
	GroupName Group = iota
	GroupOrganization
	GroupPersonal
	GroupEmail
	GroupPhone
	GroupAddress
	GroupWebsite
)

type fieldSpec struct {
	header string
	key    string
	group  Group
	ref    func(*Contact) *string
}

var fieldSpecs = [fieldCount]fieldSpec{
	FieldFirstName:               {"First Name", "firstName", GroupName, func(c *Contact) *string { return &c.FirstName }},
	FieldMiddleName:              {"Middle Name", "middleName", GroupName, func(c *Contact) *string { return &c.MiddleName }},
	FieldLastName:                {"Last Name", "lastName", GroupName, func(c *Contact) *string { return &c.LastName }},
	FieldPhoneticFirstName:       {"Phonetic First Name", "phoneticFirstName", GroupName, func(c *Contact) *string { return &c.PhoneticFirstName }},
	FieldPhoneticMiddleName:      {"Phonetic Middle Name", "phoneticMiddleName", GroupName, func(c *Contact) *string { return &c.PhoneticMiddleName }},
	FieldPhoneticLastName:        {"Phonetic Last Name", "phoneticLastName", GroupName, func(c *Contact) *string { return &c.PhoneticLastName }},
	FieldNamePrefix:              {"Name Prefix", "namePrefix", GroupName, func(c *Contact) *string { return &c.NamePrefix }},
	FieldNameSuffix:              {"Name Suffix", "nameSuffix", GroupName, func(c *Contact) *string { return &c.NameSuffix }},
	FieldNickname:                {"Nickname", "nickname", GroupName, func(c *Contact) *string { return &c.Nickname }},
	FieldFileAs:                  {"File As", "fileAs", GroupName, func(c *Contact) *string { return &c.FileAs }},
	FieldOrganizationName:        {"Organization Name", "organizationName", GroupOrganization, func(c *Contact) *string { return &c.OrganizationName }},
	FieldOrganizationTitle:       {"Organization Title", "organizationTitle", GroupOrganization, func(c *Contact) *string { return &c.OrganizationTitle }},
	FieldOrganizationDepartment:  {"Organization Department", "organizationDepartment", GroupOrganization, func(c *Contact) *string { return &c.OrganizationDepartment }},
	FieldBirthday:                {"Birthday", "birthday", GroupPersonal, func(c *Contact) *string { return &c.Birthday }},
	FieldNotes:                   {"Notes", "notes", GroupPersonal, func(c *Contact) *string { return &c.Notes }},
	FieldPhoto:                   {"Photo", "photo", GroupPersonal, func(c *Contact) *string { return &c.Photo }},
	FieldLabels:                  {"Labels", "labels", GroupPersonal, func(c *Contact) *string { return &c.Labels }},
	FieldEmail1Label:             {"E-mail 1 - Label", "email1Label", GroupEmail, func(c *Contact) *string { return &c.Email1Label }},
	FieldEmail1Value:             {"E-mail 1 - Value", "email1Value", GroupEmail, func(c *Contact) *string { return &c.Email1Value }},
	FieldEmail2Label:             {"E-mail 2 - Label", "email2Label", GroupEmail, func(c *Contact) *string { return &c.Email2Label }},
	FieldEmail2Value:             {"E-mail 2 - Value", "email2Value", GroupEmail, func(c *Contact) *string { return &c.Email2Value }},
	FieldPhone1Label:             {"Phone 1 - Label", "phone1Label", GroupPhone, func(c *Contact) *string { return &c.Phone1Label }},
	FieldPhone1Value:             {"Phone 1 - Value", "phone1Value", GroupPhone, func(c *Contact) *string { return &c.Phone1Value }},
	FieldPhone2Label:             {"Phone 2 - Label", "phone2Label", GroupPhone, func(c *Contact) *string { return &c.Phone2Label }},
	FieldPhone2Value:             {"Phone 2 - Value", "phone2Value", GroupPhone, func(c *Contact) *string { return &c.Phone2Value }},
	FieldPhone3Label:             {"Phone 3 - Label", "phone3Label", GroupPhone, func(c *Contact) *string { return &c.Phone3Label }},
	FieldPhone3Value:             {"Phone 3 - Value", "phone3Value", GroupPhone, func(c *Contact) *string { return &c.Phone3Value }},
	FieldPhone4Label:             {"Phone 4 - Label", "phone4Label", GroupPhone, func(c *Contact) *string { return &c.Phone4Label }},
	FieldPhone4Value:             {"Phone 4 - Value", "phone4Value", GroupPhone, func(c *Contact) *string { return &c.Phone4Value }},
	FieldAddress1Label:           {"Address 1 - Label", "address1Label", GroupAddress, func(c *Contact) *string { return &c.Address1Label }},
	FieldAddress1Formatted:       {"Address 1 - Formatted", "address1Formatted", GroupAddress, func(c *Contact) *string { return &c.Address1Formatted }},
	FieldAddress1Street:          {"Address 1 - Street", "address1Street", GroupAddress, func(c *Contact) *string { return &c.Address1Street }},
	FieldAddress1City:            {"Address 1 - City", "address1City", GroupAddress, func(c *Contact) *string { return &c.Address1City }},
	FieldAddress1POBox:           {"Address 1 - PO Box", "address1POBox", GroupAddress, func(c *Contact) *string { return &c.Address1POBox }},
	FieldAddress1Region:          {"Address 1 - Region", "address1Region", GroupAddress, func(c *Contact) *string { return &c.Address1Region }},
	FieldAddress1PostalCode:      {"Address 1 - Postal Code", "address1PostalCode", GroupAddress, func(c *Contact) *string { return &c.Address1PostalCode }},
	FieldAddress1Country:         {"Address 1 - Country", "address1Country", GroupAddress, func(c *Contact) *string { return &c.Address1Country }},
	FieldAddress1ExtendedAddress: {"Address 1 - Extended Address", "address1ExtendedAddress", GroupAddress, func(c *Contact) *string { return &c.Address1ExtendedAddress }},
	FieldWebsite1Label:           {"Website 1 - Label", "website1Label", GroupWebsite, func(c *Contact) *string { return &c.Website1Label }},
	FieldWebsite1Value:           {"Website 1 - Value", "website1Value", GroupWebsite, func(c *Contact) *string { return &c.Website1Value }},
}

var byHeader = func() map[string]Field {
	m := make(map[string]Field, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		m[fieldSpecs[f].header] = f
	}
	return m
}()

// Fields returns every canonical field in export order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Headers returns the export header line, in canonical order.
func Headers() []string {
	out := make([]string, fieldCount)
	for i := range out {
		out[i] = fieldSpecs[i].header
	}
	return out
}

// FieldByHeader resolves an exact export header (e.g. "Phone 1 - Value").
func FieldByHeader(header string) (Field, bool) {
	f, ok := byHeader[header]
	return f, ok
}

func (f Field) valid() bool { return f >= 0 && f < fieldCount }

// Header is the Google Contacts CSV column name of the field.
func (f Field) Header() string {
	if !f.valid() {
		return ""
	}
	return fieldSpecs[f].header
}

// String returns the JSON key of the field.
func (f Field) String() string {
	if !f.valid() {
		return "unknown"
	}
	return fieldSpecs[f].key
}

// Group returns the export group of the field.
func (f Field) Group() Group {
	return fieldSpecs[f].group
}

// Get reads the field from c.
func (f Field) Get(c *Contact) string {
	if !f.valid() {
		return ""
	}
	return *fieldSpecs[f].ref(c)
}

// Set writes v into the field of c.
func (f Field) Set(c *Contact, v string) {
	if !f.valid() {
		return
	}
	*fieldSpecs[f].ref(c) = v
}

// Values returns the canonical fields of c in export order.
func (c *Contact) Values() []string {
	out := make([]string, fieldCount)
	for i := range out {
		out[i] = *fieldSpecs[i].ref(c)
	}
	return out
}
