package domain

import "regexp"

var codeRe = regexp.MustCompile(`^[A-Z0-9]{2,12}$`)

// ValidCode reports whether s looks like an instrument ticker
// (uppercase alphanumeric, e.g. "PETR4", "HGLG11").
func ValidCode(s string) bool {
	return codeRe.MatchString(s)
}
