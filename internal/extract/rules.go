package extract

import (
	"regexp"
	"strings"
)

// rule is one entry of a per-field pattern table. Rules run in slice order
// and the first candidate that passes validation wins, so priority lives in
// the table, not in control flow.
type rule struct {
	name string
	re   *regexp.Regexp
}

// firstValid runs the rules in order and returns the first captured value
// that passes the validator.
func firstValid(rules []rule, text string, valid func(string) bool) string {
	for _, r := range rules {
		for _, m := range r.re.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			if valid(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// Passport number: label-anchored patterns run before the bare-line pattern,
// because a bare alphanumeric line could just as well be a file reference.
var passportNumberRules = []rule{
	{"passport-label", regexp.MustCompile(`(?i)passport\s*(?:no|number|num|#)\.?\s*[:\-]?\s*([A-Z0-9]{6,12})\b`)},
	{"document-label", regexp.MustCompile(`(?i)(?:travel\s+)?document\s*(?:no|number)\.?\s*[:\-]?\s*([A-Z0-9]{6,12})\b`)},
	{"bare-line", regexp.MustCompile(`(?m)^\s*([A-Z]{1,2}[0-9]{6,8})\s*$`)},
}

// Surname / given-name label pairs are tried before any single-line name
// pattern; a document that labels its name fields is the most reliable case.
var (
	surnameRule   = rule{"surname-label", regexp.MustCompile(`(?im)^\s*(?:surname|last\s+name|family\s+name)s?\s*[:\-]?\s*([A-Za-z][A-Za-z .'\-]*?)\s*$`)}
	givenNameRule = rule{"given-name-label", regexp.MustCompile(`(?im)^\s*(?:given\s+names?|first\s+names?|forenames?)\s*[:\-]?\s*([A-Za-z][A-Za-z .'\-]*?)\s*$`)}
)

var nameRules = []rule{
	{"name-label", regexp.MustCompile(`(?im)^\s*(?:full\s+)?name\s*[:\-]\s*([A-Za-z][A-Za-z .'\-]*?)\s*$`)},
	{"caps-line", regexp.MustCompile(`(?m)^\s*([A-Z]{2,}(?:\s+[A-Z]{2,}){1,3})\s*$`)},
	{"title-line", regexp.MustCompile(`(?m)^\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\s*$`)},
}

var nationalityRules = []rule{
	{"nationality-label", regexp.MustCompile(`(?im)^\s*nationality\s*[:\-]?\s*([A-Za-z][A-Za-z ]{1,30}?)\s*$`)},
	{"citizen-label", regexp.MustCompile(`(?i)citizen(?:ship)?\s*(?:of)?\s*[:\-]?\s*([A-Za-z][A-Za-z ]{1,30}?)\b`)},
}

var sexRules = []rule{
	{"sex-label", regexp.MustCompile(`(?im)^\s*(?:sex[eo]?|gender)\s*[:\-]?\s*([A-Za-z]+)\s*$`)},
	{"sex-inline", regexp.MustCompile(`(?i)\b(?:sex[eo]?|gender)\s*[:\-]\s*([A-Za-z]+)\b`)},
}

var placeOfBirthRules = []rule{
	{"pob-label", regexp.MustCompile(`(?im)^\s*(?:place\s+of\s+birth|birth\s*place)\s*[:\-]?\s*([A-Za-z][A-Za-z ,.'\-]*?)\s*$`)},
}

var issuingAuthorityRules = []rule{
	{"authority-label", regexp.MustCompile(`(?im)^\s*(?:issuing\s+authority|issued\s+by|authority)\s*[:\-]?\s*([A-Za-z][A-Za-z ,.'\-]*?)\s*$`)},
}

var addressRules = []rule{
	{"address-label", regexp.MustCompile(`(?im)^\s*(?:permanent\s+)?address\s*[:\-]\s*([A-Za-z0-9][A-Za-z0-9 ,.'\-/#]*?)\s*$`)},
}

// surnameGivenName extracts a full name from a labeled surname/given-name
// pair. Both labels must be present for the pair to count.
func surnameGivenName(text string) string {
	s := surnameRule.re.FindStringSubmatch(text)
	g := givenNameRule.re.FindStringSubmatch(text)
	if s == nil || g == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(g[1]) + " " + strings.TrimSpace(s[1]))
}
