package domain

import "unicode"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// StrongPassword reports whether pw satisfies the registration policy:
// at least MinPasswordLength characters with a lowercase letter, an
// uppercase letter and a digit.
func StrongPassword(pw string) bool {
	if len([]rune(pw)) < MinPasswordLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
