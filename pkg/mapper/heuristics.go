package mapper

import (
	"strings"

	"github.com/hazyhaar/contact-normalizer/pkg/contact"
)

// Default labels given to heuristically mapped phones and emails.
const (
	LabelMobile   = "Mobile"
	LabelOther    = "Other"
	LabelPersonal = "Personal"
	LabelWork     = "Work"
)

// headerRule maps an unrecognised header onto the contact. Rules are tried in
// order; the first whose match returns true consumes the cell.
type headerRule struct {
	name   string
	match  func(key string, c *contact.Contact) bool
	assign func(c *contact.Contact, value string)
}

var headerRules = []headerRule{
	{
		name: "first-name",
		match: func(k string, c *contact.Contact) bool {
			return containsAll(k, "first", "name") && c.FirstName == ""
		},
		assign: func(c *contact.Contact, v string) { c.FirstName = v },
	},
	{
		name: "last-name",
		match: func(k string, c *contact.Contact) bool {
			return containsAll(k, "last", "name") && c.LastName == ""
		},
		assign: func(c *contact.Contact, v string) { c.LastName = v },
	},
	{
		name: "middle-name",
		match: func(k string, c *contact.Contact) bool {
			return containsAll(k, "middle", "name") && c.MiddleName == ""
		},
		assign: func(c *contact.Contact, v string) { c.MiddleName = v },
	},
	{
		// A bare name column is not split into parts.
		name: "name",
		match: func(k string, c *contact.Contact) bool {
			return (k == "name" || k == "nome") && c.FirstName == ""
		},
		assign: func(c *contact.Contact, v string) { c.FirstName = v },
	},
	{
		name: "phone",
		match: func(k string, _ *contact.Contact) bool {
			return containsAny(k, "phone", "telefone", "fone")
		},
		assign: func(c *contact.Contact, v string) {
			switch {
			case c.Phone1Value == "":
				c.Phone1Value, c.Phone1Label = v, LabelMobile
			case c.Phone2Value == "":
				c.Phone2Value, c.Phone2Label = v, LabelOther
			}
		},
	},
	{
		name: "email",
		match: func(k string, _ *contact.Contact) bool {
			return containsAny(k, "email", "e-mail")
		},
		assign: func(c *contact.Contact, v string) {
			switch {
			case c.Email1Value == "":
				c.Email1Value, c.Email1Label = v, LabelPersonal
			case c.Email2Value == "":
				c.Email2Value, c.Email2Label = v, LabelWork
			}
		},
	},
	{
		name: "organization",
		match: func(k string, _ *contact.Contact) bool {
			return containsAny(k, "company", "organization", "empresa")
		},
		assign: func(c *contact.Contact, v string) { c.OrganizationName = v },
	},
}

// applyHeuristics runs the rule chain for a lower-cased header. It returns the
// name of the rule that consumed the cell, or "" when the cell was dropped.
// Empty values are consumed without being written.
func applyHeuristics(c *contact.Contact, key, value string) string {
	for _, r := range headerRules {
		if !r.match(key, c) {
			continue
		}
		if value != "" {
			r.assign(c, value)
		}
		return r.name
	}
	return ""
}

// Describe reports how a header maps on a fresh contact: the canonical field
// key for exact headers, "heuristic:<rule>" for fallback matches, "" when the
// column is ignored.
func Describe(header string) string {
	header = strings.TrimSpace(header)
	if f, ok := contact.FieldByHeader(header); ok {
		return f.String()
	}
	var c contact.Contact
	if rule := applyHeuristics(&c, strings.ToLower(header), ""); rule != "" {
		return "heuristic:" + rule
	}
	return ""
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
