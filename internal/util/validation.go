package util

import (
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail performs a shape check only; deliverability is not verified.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}
