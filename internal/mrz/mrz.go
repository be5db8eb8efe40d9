// Package mrz decodes the ICAO 9303 machine-readable zone of a passport from
// raw OCR text. Only the TD3 booklet layout (two 44-character lines) is
// supported; ID-card layouts are out of scope.
package mrz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fields is the structured decode of a TD3 MRZ line pair. Dates are kept in
// the raw YYMMDD form; ExpandDate converts them to ISO calendar dates.
type Fields struct {
	DocumentType   string
	IssuingCountry string
	Surname        string
	GivenNames     string
	PassportNumber string
	Nationality    string
	BirthDateRaw   string
	Sex            string
	ExpiryDateRaw  string
}

// FullName joins given names and surname in display order.
func (f *Fields) FullName() string {
	return strings.TrimSpace(f.GivenNames + " " + f.Surname)
}

const (
	// minLineLength is the shortest cleaned line accepted as an MRZ
	// candidate. Nominal TD3 lines are 44 characters but OCR routinely
	// drops trailing filler.
	minLineLength = 30

	// line2MinLength covers every fixed slot on line 2 up to the expiry
	// check digit (positions 0-27).
	line2MinLength = 28
)

// Parse locates and decodes a TD3 MRZ in raw OCR text. It returns nil when
// no well-formed MRZ is present; a low-quality scan with no readable MRZ is
// a normal outcome, not an error.
func Parse(text string) *Fields {
	candidates := candidateLines(text)
	if len(candidates) < 2 {
		return nil
	}

	// Line 1 is the one carrying the P< document-type marker; line 2 is the
	// next candidate after it.
	for i := 0; i < len(candidates)-1; i++ {
		if !strings.HasPrefix(candidates[i], "P<") {
			continue
		}
		if fields := parsePair(candidates[i], candidates[i+1]); fields != nil {
			return fields
		}
	}
	return nil
}

// candidateLines reduces each line of the text to the MRZ alphabet
// (A-Z, 0-9 and the < filler) and keeps the ones long enough to be MRZ.
func candidateLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		cleaned := cleanLine(line)
		if len(cleaned) >= minLineLength {
			out = append(out, cleaned)
		}
	}
	return out
}

func cleanLine(line string) string {
	var b strings.Builder
	for _, r := range line {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '<' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// line2Pattern walks the fixed TD3 slots of line 2 in order: 9-character
// passport number, check digit, 3-letter nationality, YYMMDD birth date,
// check digit, sex, YYMMDD expiry date. Filler between the number and its
// check digit is tolerated because OCR output routinely shifts it.
var line2Pattern = regexp.MustCompile(`^([A-Z0-9]{1,9})<*([0-9<])?([A-Z]{3})([0-9]{6})[0-9<]?([MF<])([0-9]{6})`)

// parsePair decodes one line-1/line-2 pair, returning nil if the pair does
// not hold together as TD3.
func parsePair(line1, line2 string) *Fields {
	if len(line2) < line2MinLength || len(line1) < 5 {
		return nil
	}

	m := line2Pattern.FindStringSubmatch(line2)
	if m == nil {
		return nil
	}

	f := &Fields{
		DocumentType:   strings.Trim(line1[0:2], "<"),
		IssuingCountry: strings.Trim(line1[2:5], "<"),
		PassportNumber: strings.Trim(m[1], "<"),
		Nationality:    m[3],
		BirthDateRaw:   m[4],
		ExpiryDateRaw:  m[6],
	}
	if m[5] == "M" || m[5] == "F" {
		f.Sex = m[5]
	}

	// Line 1: names after position 5, surname and given names separated by
	// the << delimiter, single fillers standing in for spaces.
	nameParts := strings.SplitN(line1[5:], "<<", 2)
	f.Surname = cleanName(nameParts[0])
	if len(nameParts) == 2 {
		f.GivenNames = cleanName(nameParts[1])
	}

	return f
}

// cleanName collapses filler runs to single spaces.
func cleanName(s string) string {
	s = strings.Trim(s, "<")
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '<' }), " ")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ExpandDate converts an MRZ YYMMDD date to an ISO calendar date. Two-digit
// years expand with a fixed pivot: 00-30 become 20YY, 31-99 become 19YY.
func ExpandDate(raw string) (string, error) {
	if len(raw) != 6 || !isDigits(raw) {
		return "", fmt.Errorf("malformed MRZ date %q", raw)
	}
	yy, _ := strconv.Atoi(raw[0:2])
	mm, _ := strconv.Atoi(raw[2:4])
	dd, _ := strconv.Atoi(raw[4:6])

	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return "", fmt.Errorf("MRZ date %q out of range", raw)
	}

	year := 1900 + yy
	if yy <= 30 {
		year = 2000 + yy
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, mm, dd), nil
}
