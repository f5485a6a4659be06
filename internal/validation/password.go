// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"unicode"
)

// Signup credential limits. Password lengths are byte counts; the policy is
// about input size, not rune count.
const (
	minPasswordLen = 12
	maxPasswordLen = 128
	maxEmailLen    = 254
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidatePassword enforces the signup password policy: length within bounds
// and at least one uppercase letter, one lowercase letter, one digit, and one
// punctuation or symbol rune.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLen)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case !upper:
		return fmt.Errorf("password needs an uppercase letter")
	case !lower:
		return fmt.Errorf("password needs a lowercase letter")
	case !digit:
		return fmt.Errorf("password needs a digit")
	case !special:
		return fmt.Errorf("password needs a punctuation or symbol character")
	}
	return nil
}

// ValidateEmail checks the address shape and length. Deliverability is the
// mail provider's problem; this only rejects obviously malformed input.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLen {
		return fmt.Errorf("email must be at most %d characters", maxEmailLen)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("email address is not valid")
	}
	return nil
}
