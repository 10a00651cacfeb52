// Package validation holds the field predicates shared by the API
// handlers and the rendered auth forms. The rules intentionally stay
// loose: a basic local@domain.tld shape for emails and minimum lengths
// for the rest.
package validation

import (
	"regexp"
	"strings"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether email has a basic local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// IsValidUsername reports whether the trimmed username meets the minimum length.
func IsValidUsername(username string) bool {
	return len(strings.TrimSpace(username)) >= MinUsernameLength
}

// IsValidPassword reports whether the trimmed password meets the minimum length.
func IsValidPassword(password string) bool {
	return len(strings.TrimSpace(password)) >= MinPasswordLength
}

// IsValidName reports whether name is non-empty after trimming.
func IsValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}
