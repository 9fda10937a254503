// CLAUDE:SUMMARY Normalization rule set: phone format tokens, casing enum, export toggles, YAML/JSON codecs and validation.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CaseMode selects the casing transform applied to name-class fields.
type CaseMode int

const (
	CaseNone CaseMode = iota
	CaseUpper
	CaseLower
	CaseCapitalize
)

var caseNames = [...]string{"none", "upper", "lower", "capitalize"}

func (m CaseMode) String() string {
	if m < 0 || int(m) >= len(caseNames) {
		return "none"
	}
	return caseNames[m]
}

func (m CaseMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *CaseMode) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	if s == "" {
		*m = CaseNone
		return nil
	}
	for i, name := range caseNames {
		if s == name {
			*m = CaseMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown case mode %q", s)
}

// PhoneFormat is a display token for Brazilian phone numbers.
type PhoneFormat string

const (
	PhoneInternational       PhoneFormat = "+55 (XX) XXXXX-XXXX"
	PhoneNational            PhoneFormat = "(XX) XXXXX-XXXX"
	PhoneInternationalSpaced PhoneFormat = "+55 XX XXXXX XXXX"
	PhoneLocal               PhoneFormat = "XX XXXXX-XXXX"
	PhoneDigits              PhoneFormat = "XXXXXXXXXXX"
	PhoneDigits10            PhoneFormat = "XXXXXXXXXX"
	PhoneTrunk               PhoneFormat = "XXX X XXXX XXXX"
)

var phoneFormats = []PhoneFormat{
	PhoneInternational,
	PhoneNational,
	PhoneInternationalSpaced,
	PhoneLocal,
	PhoneDigits,
	PhoneDigits10,
	PhoneTrunk,
}

// PhoneFormats lists every supported token.
func PhoneFormats() []PhoneFormat {
	out := make([]PhoneFormat, len(phoneFormats))
	copy(out, phoneFormats)
	return out
}

// Valid reports whether f is a supported token.
func (f PhoneFormat) Valid() bool {
	for _, p := range phoneFormats {
		if f == p {
			return true
		}
	}
	return false
}

// Rules configures normalization and export.
type Rules struct {
	PhoneFormat   PhoneFormat `yaml:"phone_format" json:"phoneFormat" validate:"phoneformat"`
	RemoveAccents bool        `yaml:"remove_accents" json:"removeAccents"`
	Case          CaseMode    `yaml:"case" json:"case" validate:"gte=0,lte=3"`

	CombineNames        bool `yaml:"combine_names" json:"combineNames"`
	PreferPrimaryPhone  bool `yaml:"prefer_primary_phone" json:"preferPrimaryPhone"`
	IncludeAllPhones    bool `yaml:"include_all_phones" json:"includeAllPhones"`
	IncludeEmails       bool `yaml:"include_emails" json:"includeEmails"`
	IncludeAddress      bool `yaml:"include_address" json:"includeAddress"`
	IncludeOrganization bool `yaml:"include_organization" json:"includeOrganization"`
}

// DefaultRules returns the rules a fresh session starts with.
func DefaultRules() Rules {
	return Rules{
		PhoneFormat:         PhoneInternational,
		Case:                CaseCapitalize,
		CombineNames:        true,
		PreferPrimaryPhone:  true,
		IncludeAllPhones:    true,
		IncludeEmails:       true,
		IncludeAddress:      true,
		IncludeOrganization: true,
	}
}

// Option names accepted by SetOption.
const (
	OptionUpperCase           = "upperCase"
	OptionLowerCase           = "lowerCase"
	OptionCapitalize          = "capitalize"
	OptionRemoveAccents       = "removeAccents"
	OptionCombineNames        = "combineNames"
	OptionPreferPrimaryPhone  = "preferPrimaryPhone"
	OptionIncludeAllPhones    = "includeAllPhones"
	OptionIncludeEmails       = "includeEmails"
	OptionIncludeAddress      = "includeAddress"
	OptionIncludeOrganization = "includeOrganization"
)

// SetOption toggles a boolean option by name. The three casing options are
// mutually exclusive: enabling one clears the others, disabling the active
// one leaves names as-is.
func (r *Rules) SetOption(name string, on bool) error {
	switch name {
	case OptionUpperCase:
		r.setCase(CaseUpper, on)
	case OptionLowerCase:
		r.setCase(CaseLower, on)
	case OptionCapitalize:
		r.setCase(CaseCapitalize, on)
	case OptionRemoveAccents:
		r.RemoveAccents = on
	case OptionCombineNames:
		r.CombineNames = on
	case OptionPreferPrimaryPhone:
		r.PreferPrimaryPhone = on
	case OptionIncludeAllPhones:
		r.IncludeAllPhones = on
	case OptionIncludeEmails:
		r.IncludeEmails = on
	case OptionIncludeAddress:
		r.IncludeAddress = on
	case OptionIncludeOrganization:
		r.IncludeOrganization = on
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}

func (r *Rules) setCase(m CaseMode, on bool) {
	switch {
	case on:
		r.Case = m
	case r.Case == m:
		r.Case = CaseNone
	}
}

// rulesJSON is the wire shape. The casing booleans are accepted for clients
// that still send the flag triplet.
type rulesJSON struct {
	PhoneFormat   PhoneFormat `json:"phoneFormat"`
	RemoveAccents bool        `json:"removeAccents"`
	Case          *CaseMode   `json:"case,omitempty"`
	UpperCase     *bool       `json:"upperCase,omitempty"`
	LowerCase     *bool       `json:"lowerCase,omitempty"`
	Capitalize    *bool       `json:"capitalize,omitempty"`

	CombineNames        bool `json:"combineNames"`
	PreferPrimaryPhone  bool `json:"preferPrimaryPhone"`
	IncludeAllPhones    bool `json:"includeAllPhones"`
	IncludeEmails       bool `json:"includeEmails"`
	IncludeAddress      bool `json:"includeAddress"`
	IncludeOrganization bool `json:"includeOrganization"`
}

func (r Rules) MarshalJSON() ([]byte, error) {
	m := r.Case
	upper, lower, capitalize := m == CaseUpper, m == CaseLower, m == CaseCapitalize
	return json.Marshal(rulesJSON{
		PhoneFormat:         r.PhoneFormat,
		RemoveAccents:       r.RemoveAccents,
		Case:                &m,
		UpperCase:           &upper,
		LowerCase:           &lower,
		Capitalize:          &capitalize,
		CombineNames:        r.CombineNames,
		PreferPrimaryPhone:  r.PreferPrimaryPhone,
		IncludeAllPhones:    r.IncludeAllPhones,
		IncludeEmails:       r.IncludeEmails,
		IncludeAddress:      r.IncludeAddress,
		IncludeOrganization: r.IncludeOrganization,
	})
}

// UnmarshalJSON decodes over the current values, so absent keys keep
// whatever r already holds. An explicit "case" wins over the legacy
// booleans. Among the booleans upper beats lower beats capitalize.
func (r *Rules) UnmarshalJSON(b []byte) error {
	w := rulesJSON{
		PhoneFormat:         r.PhoneFormat,
		RemoveAccents:       r.RemoveAccents,
		CombineNames:        r.CombineNames,
		PreferPrimaryPhone:  r.PreferPrimaryPhone,
		IncludeAllPhones:    r.IncludeAllPhones,
		IncludeEmails:       r.IncludeEmails,
		IncludeAddress:      r.IncludeAddress,
		IncludeOrganization: r.IncludeOrganization,
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	mode := r.Case
	if w.Case != nil {
		mode = *w.Case
	} else {
		mode = legacyCase(mode, w)
	}

	*r = Rules{
		PhoneFormat:         w.PhoneFormat,
		RemoveAccents:       w.RemoveAccents,
		Case:                mode,
		CombineNames:        w.CombineNames,
		PreferPrimaryPhone:  w.PreferPrimaryPhone,
		IncludeAllPhones:    w.IncludeAllPhones,
		IncludeEmails:       w.IncludeEmails,
		IncludeAddress:      w.IncludeAddress,
		IncludeOrganization: w.IncludeOrganization,
	}
	return nil
}

// legacyCase applies the casing booleans the way SetOption does: a false
// clears only the mode it names, then the highest-ranked true wins.
func legacyCase(mode CaseMode, w rulesJSON) CaseMode {
	r := Rules{Case: mode}
	flags := []struct {
		on *bool
		m  CaseMode
	}{
		{w.Capitalize, CaseCapitalize},
		{w.LowerCase, CaseLower},
		{w.UpperCase, CaseUpper},
	}
	for _, f := range flags {
		if f.on != nil && !*f.on {
			r.setCase(f.m, false)
		}
	}
	for _, f := range flags {
		if f.on != nil && *f.on {
			r.setCase(f.m, true)
		}
	}
	return r.Case
}

var validate = func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phoneformat", func(fl validator.FieldLevel) bool {
		return PhoneFormat(fl.Field().String()).Valid()
	})
	return v
}()

// Validate checks that the rules reference a known phone format and casing.
func (r Rules) Validate() error {
	if err := validate.Struct(r); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			switch e.Tag() {
			case "phoneformat":
				return fmt.Errorf("rules: unknown phone format %q", r.PhoneFormat)
			default:
				return fmt.Errorf("rules: invalid %s (%s)", e.Field(), e.Tag())
			}
		}
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}
