package entities

import "strings"

// Ptr returns a pointer to v. Used to build optional fields inline.
func Ptr[T any](v T) *T {
	return &v
}

// HasText reports whether an optional string is present and not blank.
func HasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// Text returns the value of an optional string or "" when absent.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
