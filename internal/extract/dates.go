package extract

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/adhuhaam/laraos-sub001/pkg/models"
)

type dateKind int

const (
	kindBirth dateKind = iota
	kindIssue
	kindExpiry
	kindGeneric
)

type dateMatch struct {
	kind dateKind
	iso  string
	when time.Time
	span [2]int
}

// datePattern recognizes the date spellings that show up on identity pages:
// ISO, day-first numeric, and the month-name forms.
const datePattern = `(?:\d{4}-\d{2}-\d{2}|\d{1,2}[./-]\d{1,2}[./-]\d{4}|\d{1,2}\s+[A-Za-z]{3,9},?\s+\d{4}|[A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4})`

var labeledDateRules = []struct {
	kind dateKind
	re   *regexp.Regexp
}{
	{kindBirth, regexp.MustCompile(`(?i)(?:date\s+of\s+birth|birth\s+date|d\.?o\.?b\.?|born)\s*[:\-]?\s*(` + datePattern + `)`)},
	{kindIssue, regexp.MustCompile(`(?i)(?:date\s+of\s+issue|issue\s+date|issued(?:\s+on)?)\s*[:\-]?\s*(` + datePattern + `)`)},
	{kindExpiry, regexp.MustCompile(`(?i)(?:date\s+of\s+expiry|expiry\s+date|expiration\s+date|valid\s+until|expires?(?:\s+on)?)\s*[:\-]?\s*(` + datePattern + `)`)},
}

var genericDateRule = regexp.MustCompile(`(` + datePattern + `)`)

// dateLayouts are tried in order. Day-first numeric forms come before
// month-first because that is how the passports this system sees write
// dates; month-first is a fallback for US-issued documents.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"01/02/2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// parseDate normalizes a raw date string to ISO form. Only real calendar
// dates with a year strictly between 1900 and 2100 are accepted.
func parseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Year() <= 1900 || t.Year() >= 2100 {
			continue
		}
		return t.Format("2006-01-02"), true
	}
	return "", false
}

// collectDates gathers every validated date in the text, labeled matches
// first. Generic matches that overlap a labeled capture are dropped so the
// same date is not counted twice.
func collectDates(text string) []dateMatch {
	var matches []dateMatch
	var labeledSpans [][2]int

	for _, lr := range labeledDateRules {
		for _, idx := range lr.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := idx[2], idx[3]
			iso, ok := parseDate(text[start:end])
			if !ok {
				continue
			}
			when, _ := time.Parse("2006-01-02", iso)
			matches = append(matches, dateMatch{kind: lr.kind, iso: iso, when: when, span: [2]int{start, end}})
			labeledSpans = append(labeledSpans, [2]int{start, end})
		}
	}

	for _, idx := range genericDateRule.FindAllStringSubmatchIndex(text, -1) {
		start, end := idx[2], idx[3]
		if overlapsAny(start, end, labeledSpans) {
			continue
		}
		iso, ok := parseDate(text[start:end])
		if !ok {
			continue
		}
		when, _ := time.Parse("2006-01-02", iso)
		matches = append(matches, dateMatch{kind: kindGeneric, iso: iso, when: when, span: [2]int{start, end}})
	}

	return matches
}

func overlapsAny(start, end int, spans [][2]int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

// fillDates assigns collected dates to the record's empty date slots.
// Labeled matches go straight to their slot. Unlabeled dates are assigned by
// chronological position (earliest birth, middle issue, latest expiry) only
// as a last resort, and every slot filled that way is flagged as inferred;
// it is a guess, and the UI must present it as one.
func fillDates(rec *models.ExtractedRecord, text string) {
	matches := collectDates(text)

	for _, m := range matches {
		switch m.kind {
		case kindBirth:
			if rec.DateOfBirth == "" {
				rec.DateOfBirth = m.iso
			}
		case kindIssue:
			if rec.IssueDate == "" {
				rec.IssueDate = m.iso
			}
		case kindExpiry:
			if rec.ExpiryDate == "" {
				rec.ExpiryDate = m.iso
			}
		}
	}

	if rec.DateOfBirth != "" && rec.IssueDate != "" && rec.ExpiryDate != "" {
		return
	}

	var generic []dateMatch
	for _, m := range matches {
		if m.kind == kindGeneric {
			generic = append(generic, m)
		}
	}
	if len(generic) == 0 {
		return
	}
	sort.Slice(generic, func(i, j int) bool { return generic[i].when.Before(generic[j].when) })

	positional := map[string]string{}
	switch len(generic) {
	case 1:
		positional[FieldDateOfBirth] = generic[0].iso
	case 2:
		positional[FieldDateOfBirth] = generic[0].iso
		positional[FieldExpiryDate] = generic[1].iso
	default:
		positional[FieldDateOfBirth] = generic[0].iso
		positional[FieldIssueDate] = generic[1].iso
		positional[FieldExpiryDate] = generic[len(generic)-1].iso
	}

	if rec.DateOfBirth == "" && positional[FieldDateOfBirth] != "" {
		rec.DateOfBirth = positional[FieldDateOfBirth]
		rec.MarkInferred(FieldDateOfBirth)
	}
	if rec.IssueDate == "" && positional[FieldIssueDate] != "" {
		rec.IssueDate = positional[FieldIssueDate]
		rec.MarkInferred(FieldIssueDate)
	}
	if rec.ExpiryDate == "" && positional[FieldExpiryDate] != "" {
		rec.ExpiryDate = positional[FieldExpiryDate]
		rec.MarkInferred(FieldExpiryDate)
	}
}
