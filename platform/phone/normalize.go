// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "PH"

// MinDigits is the minimum number of digits accepted for a submitted
// phone number. Anything shorter cannot be a reachable number.
const MinDigits = 7

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// DigitCount returns the number of decimal digits in the input, ignoring
// separators and formatting characters.
func DigitCount(input string) int {
	count := 0
	for _, r := range input {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}

// PlausibleLength reports whether the input carries at least MinDigits digits.
func PlausibleLength(input string) bool {
	return DigitCount(input) >= MinDigits
}
