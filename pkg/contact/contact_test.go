package contact

import "testing"

func TestHeadersCoverEveryField(t *testing.T) {
	headers := Headers()
	if len(headers) != 40 {
		t.Fatalf("headers = %d, want 40", len(headers))
	}
	seen := make(map[string]bool)
	for i, h := range headers {
		if seen[h] {
			t.Errorf("duplicate header %q", h)
		}
		seen[h] = true
		f, ok := FieldByHeader(h)
		if !ok {
			t.Errorf("FieldByHeader(%q) not found", h)
			continue
		}
		if int(f) != i {
			t.Errorf("FieldByHeader(%q) = %d, want %d", h, f, i)
		}
	}
	if headers[0] != "First Name" || headers[len(headers)-1] != "Website 1 - Value" {
		t.Errorf("unexpected header order: first %q, last %q", headers[0], headers[len(headers)-1])
	}
}

func TestFieldByHeader_ExactOnly(t *testing.T) {
	for _, h := range []string{"first name", "FIRST NAME", " First Name", "Phone 1 Value", ""} {
		if _, ok := FieldByHeader(h); ok {
			t.Errorf("FieldByHeader(%q) matched, want no match", h)
		}
	}
}

func TestFieldGetSet(t *testing.T) {
	var c Contact
	for _, f := range Fields() {
		f.Set(&c, f.String())
	}
	if c.FirstName != "firstName" || c.Address1POBox != "address1POBox" || c.Website1Value != "website1Value" {
		t.Errorf("Set did not reach struct fields: %+v", c)
	}
	values := c.Values()
	for i, f := range Fields() {
		if f.Get(&c) != values[i] {
			t.Errorf("Get(%s) = %q, Values()[%d] = %q", f, f.Get(&c), i, values[i])
		}
	}
}

func TestFieldGroups(t *testing.T) {
	tests := []struct {
		field Field
		want  Group
	}{
		{FieldNickname, GroupName},
		{FieldOrganizationTitle, GroupOrganization},
		{FieldBirthday, GroupPersonal},
		{FieldEmail2Value, GroupEmail},
		{FieldPhone4Label, GroupPhone},
		{FieldAddress1Country, GroupAddress},
		{FieldWebsite1Label, GroupWebsite},
	}
	for _, tt := range tests {
		if got := tt.field.Group(); got != tt.want {
			t.Errorf("%s.Group() = %d, want %d", tt.field, got, tt.want)
		}
	}
}

func TestFullName(t *testing.T) {
	tests := []struct {
		c    Contact
		want string
	}{
		{Contact{}, ""},
		{Contact{FirstName: "Ana"}, "Ana"},
		{Contact{NamePrefix: "Dr.", FirstName: "Ana", LastName: "Souza"}, "Dr. Ana Souza"},
		{Contact{FirstName: "Ana", MiddleName: "  ", LastName: "Souza", NameSuffix: "Jr."}, "Ana Souza Jr."},
		{Contact{MiddleName: "Clara"}, "Clara"},
	}
	for _, tt := range tests {
		if got := tt.c.FullName(); got != tt.want {
			t.Errorf("FullName(%+v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestPrimaryPhone(t *testing.T) {
	tests := []struct {
		c    Contact
		want string
	}{
		{Contact{}, ""},
		{Contact{Phone1Value: "1"}, "1"},
		{Contact{Phone2Value: "2", Phone3Value: "3"}, "2"},
		{Contact{Phone1Value: " ", Phone4Value: "4"}, "4"},
	}
	for _, tt := range tests {
		if got := tt.c.PrimaryPhone(); got != tt.want {
			t.Errorf("PrimaryPhone(%+v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestDerive(t *testing.T) {
	c := Contact{FirstName: "Ana", LastName: "Lima", Phone2Value: "31999998888", Name: "stale", Phone: "stale"}
	c.Derive()
	if c.Name != "Ana Lima" {
		t.Errorf("Name = %q, want Ana Lima", c.Name)
	}
	if c.Phone != "31999998888" {
		t.Errorf("Phone = %q, want 31999998888", c.Phone)
	}
}

func TestDisplayFallbacks(t *testing.T) {
	c := Contact{FirstName: "Ana", Phone1Value: "123"}
	if c.DisplayName() != "Ana" || c.DisplayPhone() != "123" {
		t.Errorf("display = %q/%q, want Ana/123", c.DisplayName(), c.DisplayPhone())
	}
	c.Name, c.Phone = "ANA", "(31) 1234-5678"
	if c.DisplayName() != "ANA" || c.DisplayPhone() != "(31) 1234-5678" {
		t.Errorf("display = %q/%q, want derived fields", c.DisplayName(), c.DisplayPhone())
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		c    Contact
		want bool
	}{
		{"empty", Contact{}, false},
		{"organization only", Contact{OrganizationName: "Acme"}, true},
		{"first name", Contact{FirstName: "Ana"}, true},
		{"second phone", Contact{Phone2Value: "3133224455"}, true},
		{"email", Contact{Email1Value: "ana@example.com"}, true},
		{"derived name", Contact{Name: "Dr."}, true},
		{"notes only", Contact{Notes: "hello", Phone3Value: "1"}, false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.c); got != tt.want {
			t.Errorf("%s: IsValid = %v, want %v", tt.name, got, tt.want)
		}
	}
}
