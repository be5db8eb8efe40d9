package extract

import (
	"strings"
	"time"
	"unicode"
)

// Validators are applied at the moment a candidate value is accepted into a
// record. They are deliberately idempotent: re-running a validator against an
// accepted value always succeeds.

// ValidPassportNumber accepts 6-12 character alphanumeric document numbers.
func ValidPassportNumber(s string) bool {
	if len(s) < 6 || len(s) > 12 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidName accepts 2-4 whitespace-separated tokens, each at least two
// characters, no digits, 5-50 characters in total.
func ValidName(s string) bool {
	if len(s) < 5 || len(s) > 50 {
		return false
	}
	tokens := strings.Fields(s)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}
	for _, tok := range tokens {
		if len(tok) < 2 {
			return false
		}
		for _, r := range tok {
			if unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

// ValidISODate accepts a YYYY-MM-DD string naming a real calendar date with
// a year strictly between 1900 and 2100.
func ValidISODate(s string) bool {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return false
	}
	return t.Year() > 1900 && t.Year() < 2100
}

// ValidFreeText accepts label-anchored free-text captures (place of birth,
// issuing authority) within a 3-40 character band.
func ValidFreeText(s string) bool {
	return len(s) >= 3 && len(s) <= 40
}

// sexVocabulary maps the accepted sex spellings, including the French and
// Spanish forms seen on passports, to the canonical single letter.
var sexVocabulary = map[string]string{
	"M":         "M",
	"MALE":      "M",
	"MASCULIN":  "M",
	"MASCULINO": "M",
	"F":         "F",
	"FEMALE":    "F",
	"FEMININ":   "F",
	"FEMENINO":  "F",
}

// NormalizeSex maps a raw sex value onto M or F. Values outside the fixed
// vocabulary normalize to the empty string.
func NormalizeSex(s string) string {
	return sexVocabulary[strings.ToUpper(strings.TrimSpace(s))]
}
