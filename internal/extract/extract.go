// Package extract fills an ExtractedRecord from raw OCR text using
// prioritized pattern rules with per-field validation and normalization.
// Fields already decoded from the machine-readable zone are copied through
// first; the heuristics only fill what the MRZ did not supply.
//
// Extraction never fails: a field for which no rule produces a valid
// candidate simply stays empty. Callers treat an all-empty record as total
// extraction failure and route the operator to manual entry.
package extract

import (
	"strings"

	"github.com/adhuhaam/laraos-sub001/internal/mrz"
	"github.com/adhuhaam/laraos-sub001/pkg/models"
)

// Record field names, as used in diagnostics and the Inferred list.
const (
	FieldPassportNumber   = "passport_number"
	FieldFullName         = "full_name"
	FieldNationality      = "nationality"
	FieldDateOfBirth      = "date_of_birth"
	FieldIssueDate        = "issue_date"
	FieldExpiryDate       = "expiry_date"
	FieldPlaceOfBirth     = "place_of_birth"
	FieldSex              = "sex"
	FieldIssuingAuthority = "issuing_authority"
	FieldAddress          = "address"
)

// Extract builds a record from raw OCR text, seeded with any MRZ decode.
// Every accepted value has passed its field validator; the record never
// carries raw matches.
func Extract(rawText string, m *mrz.Fields) *models.ExtractedRecord {
	rec := &models.ExtractedRecord{}
	applyMRZ(rec, m)

	if rec.PassportNumber == "" {
		if v := firstValid(passportNumberRules, rawText, ValidPassportNumber); v != "" {
			rec.PassportNumber = strings.ToUpper(v)
		}
	}

	if rec.FullName == "" {
		if v := surnameGivenName(rawText); ValidName(v) {
			rec.FullName = v
		} else if v := firstValid(nameRules, rawText, ValidName); v != "" {
			rec.FullName = v
		}
	}

	fillDates(rec, rawText)

	if rec.Nationality == "" {
		rec.Nationality = firstValid(nationalityRules, rawText, func(s string) bool {
			return LookupNationality(s) != ""
		})
		rec.Nationality = LookupNationality(rec.Nationality)
	}

	if rec.Sex == "" {
		v := firstValid(sexRules, rawText, func(s string) bool {
			return NormalizeSex(s) != ""
		})
		rec.Sex = NormalizeSex(v)
	}

	if rec.PlaceOfBirth == "" {
		rec.PlaceOfBirth = firstValid(placeOfBirthRules, rawText, ValidFreeText)
	}
	if rec.IssuingAuthority == "" {
		rec.IssuingAuthority = firstValid(issuingAuthorityRules, rawText, ValidFreeText)
	}
	if rec.Address == "" {
		rec.Address = firstValid(addressRules, rawText, ValidFreeText)
	}

	return rec
}

// applyMRZ copies MRZ fields into the record, running the same validators
// and normalizers the heuristic rules use. An MRZ value that fails its
// validator is discarded so the pattern rules get a chance at the field.
func applyMRZ(rec *models.ExtractedRecord, m *mrz.Fields) {
	if m == nil {
		return
	}

	if ValidPassportNumber(m.PassportNumber) {
		rec.PassportNumber = strings.ToUpper(m.PassportNumber)
	}
	if name := m.FullName(); ValidName(name) {
		rec.FullName = name
	}
	rec.Nationality = LookupNationality(m.Nationality)
	rec.Sex = NormalizeSex(m.Sex)

	if iso, err := mrz.ExpandDate(m.BirthDateRaw); err == nil && ValidISODate(iso) {
		rec.DateOfBirth = iso
	}
	if iso, err := mrz.ExpandDate(m.ExpiryDateRaw); err == nil && ValidISODate(iso) {
		rec.ExpiryDate = iso
	}
}

// ApplyManual overlays operator-typed values onto an automatically extracted
// record. Manual values pass through exactly the validators and normalizers
// automatic extraction uses, nothing more; a manual value that fails its
// validator is ignored and the automatic value kept.
func ApplyManual(auto, manual *models.ExtractedRecord) *models.ExtractedRecord {
	merged := &models.ExtractedRecord{}
	if auto != nil {
		*merged = *auto
		merged.Inferred = append([]string(nil), auto.Inferred...)
	}
	if manual == nil {
		return merged
	}

	if v := strings.ToUpper(strings.TrimSpace(manual.PassportNumber)); ValidPassportNumber(v) {
		merged.PassportNumber = v
	}
	if v := strings.TrimSpace(manual.FullName); ValidName(v) {
		merged.FullName = v
	}
	if v := LookupNationality(manual.Nationality); v != "" {
		merged.Nationality = v
	}
	if v := NormalizeSex(manual.Sex); v != "" {
		merged.Sex = v
	}
	if iso, ok := parseDate(manual.DateOfBirth); ok {
		merged.DateOfBirth = iso
	}
	if iso, ok := parseDate(manual.IssueDate); ok {
		merged.IssueDate = iso
	}
	if iso, ok := parseDate(manual.ExpiryDate); ok {
		merged.ExpiryDate = iso
	}
	if v := strings.TrimSpace(manual.PlaceOfBirth); ValidFreeText(v) {
		merged.PlaceOfBirth = v
	}
	if v := strings.TrimSpace(manual.IssuingAuthority); ValidFreeText(v) {
		merged.IssuingAuthority = v
	}
	if v := strings.TrimSpace(manual.Address); ValidFreeText(v) {
		merged.Address = v
	}
	return merged
}
