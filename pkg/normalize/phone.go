package normalize

import "strings"

// FormatPhone renders a Brazilian phone number using the given token.
// Country code 55 and trunk prefix 0 are dropped before formatting. Input
// that is too short, or that the token cannot lay out, is returned as-is.
func FormatPhone(value string, format PhoneFormat) string {
	if value == "" {
		return ""
	}

	digits := extractDigits(value)
	if len(digits) >= 11 && strings.HasPrefix(digits, "55") {
		digits = digits[2:]
	}
	if len(digits) >= 10 && strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	if len(digits) < 10 {
		return value
	}

	if out, ok := layoutPhone(digits, format); ok {
		return out
	}
	return value
}

func extractDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// layoutPhone formats digits (area code first, at least 10 digits).
func layoutPhone(d string, format PhoneFormat) (string, bool) {
	switch format {
	case PhoneDigits:
		return d, true
	case PhoneDigits10:
		return d[:10], true
	}

	area, head, tail, ok := splitPhone(d)
	if !ok {
		return "", false
	}

	switch format {
	case PhoneInternational:
		return "+55 (" + area + ") " + head + "-" + tail, true
	case PhoneNational:
		return "(" + area + ") " + head + "-" + tail, true
	case PhoneInternationalSpaced:
		return "+55 " + area + " " + head + " " + tail, true
	case PhoneLocal:
		return area + " " + head + "-" + tail, true
	case PhoneTrunk:
		if len(head) == 5 {
			return "0" + area + " " + head[:1] + " " + head[1:] + " " + tail, true
		}
		return "0" + area + " " + head + " " + tail, true
	}
	return "", false
}

// splitPhone splits an 11-digit mobile (2+5+4) or a 10-digit landline
// (2+4+4).
func splitPhone(d string) (area, head, tail string, ok bool) {
	switch len(d) {
	case 11:
		return d[:2], d[2:7], d[7:], true
	case 10:
		return d[:2], d[2:6], d[6:], true
	}
	return "", "", "", false
}
