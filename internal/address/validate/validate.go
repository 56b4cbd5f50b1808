// Package validate holds the pure field validators for address records.
// Validators never return errors and never perform I/O; empty input is the
// caller's concern (see Validity for the tri-state used by workflows).
package validate

import (
	"strings"
	"unicode/utf8"

	"cepbook/internal/address/models"
)

// PostalCodeLength is the length of a canonically formatted CEP (DDDDD-DDD).
const PostalCodeLength = 9

// Digits strips every non-digit character from the input.
func Digits(input string) string {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// FormatPostalCode strips every non-digit character from the input and, once
// eight digits are available, formats the first eight as DDDDD-DDD. With fewer
// than eight digits the bare digits are returned unchanged, so a partially
// typed CEP never carries a hyphen.
func FormatPostalCode(input string) string {
	d := Digits(input)
	if len(d) < 8 {
		return d
	}
	return d[:5] + "-" + d[5:8]
}

// PostalCode reports whether s is exactly in canonical DDDDD-DDD form.
func PostalCode(s string) bool {
	if len(s) != PostalCodeLength || s[5] != '-' {
		return false
	}
	for i, r := range s {
		if i == 5 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Name reports whether s looks like a full person name: at least two
// whitespace-separated tokens after trimming, and at least three characters
// before trimming.
func Name(s string) bool {
	return len(strings.Fields(strings.TrimSpace(s))) >= 2 && utf8.RuneCountInString(s) >= 3
}

// Street reports whether the trimmed street name has at least three characters.
func Street(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= 3
}

// City reports whether the trimmed city name has at least two characters.
func City(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= 2
}

// Number reports whether s is non-empty and consists only of digit characters.
func Number(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StateCode reports whether s is one of the 27 federative unit abbreviations,
// ignoring case.
func StateCode(s string) bool {
	return models.IsStateCode(s)
}
