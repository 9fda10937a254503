package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacritics is the Combining Diacritical Marks block.
var combiningDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// RemoveAccents decomposes s and drops combining diacritical marks
// (João -> Joao, Conceição -> Conceicao).
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacritics)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FormatName trims s, optionally strips accents, then applies the casing
// mode. Accents are removed before casing.
func FormatName(s string, r Rules) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if r.RemoveAccents {
		s = RemoveAccents(s)
	}
	return applyCase(s, r.Case)
}

// Casers keep state and are not safe for concurrent use, so one is built
// per call.
func applyCase(s string, m CaseMode) string {
	switch m {
	case CaseUpper:
		return cases.Upper(language.BrazilianPortuguese).String(s)
	case CaseLower:
		return cases.Lower(language.BrazilianPortuguese).String(s)
	case CaseCapitalize:
		return cases.Title(language.BrazilianPortuguese).String(s)
	default:
		return s
	}
}
