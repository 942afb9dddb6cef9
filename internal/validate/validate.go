// Package validate holds the stateless helpers used by the contact form:
// email format checks, name splitting and joining, and escaping.
package validate

import (
	"regexp"
	"strings"
)

// emailPattern matches what an HTML email input with the same pattern
// attribute accepts
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether s, after trimming, is a well-formed address
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ParseName splits a full name into first and last name. Every token but the
// last is the first name; a single token yields an empty last name.
func ParseName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

// FormatName joins first and last name with a single space
func FormatName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"'", "&#x27;",
		"<", "&lt;",
		">", "&gt;",
	)
)

// EscapeText escapes s for use as HTML text content
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttribute escapes s for use inside a quoted HTML attribute
func EscapeAttribute(s string) string {
	return attrEscaper.Replace(s)
}
