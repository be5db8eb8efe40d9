package models

// ExtractedRecord is the canonical output of the passport data-extraction
// pipeline. Every field is optional: an empty string means the field could
// not be determined. Dates are always ISO calendar dates (YYYY-MM-DD).
//
// A record never carries raw, unvalidated matches: values are validated and
// normalized at the point they are accepted, so consumers can use fields
// as-is. Partial records are normal; callers must tolerate any subset of
// fields being empty.
type ExtractedRecord struct {
	PassportNumber   string `json:"passport_number,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	Nationality      string `json:"nationality,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	IssueDate        string `json:"issue_date,omitempty"`
	ExpiryDate       string `json:"expiry_date,omitempty"`
	PlaceOfBirth     string `json:"place_of_birth,omitempty"`
	Sex              string `json:"sex,omitempty"`
	IssuingAuthority string `json:"issuing_authority,omitempty"`
	Address          string `json:"address,omitempty"`

	// Inferred names fields that were filled by a lower-confidence guess
	// (currently only the positional date assignment for unlabeled dates).
	// Consumers should surface these for operator review.
	Inferred []string `json:"inferred,omitempty"`
}

// IsEmpty reports whether no field at all was extracted.
func (r *ExtractedRecord) IsEmpty() bool {
	return r.PassportNumber == "" &&
		r.FullName == "" &&
		r.Nationality == "" &&
		r.DateOfBirth == "" &&
		r.IssueDate == "" &&
		r.ExpiryDate == "" &&
		r.PlaceOfBirth == "" &&
		r.Sex == "" &&
		r.IssuingAuthority == "" &&
		r.Address == ""
}

// HasIdentity reports whether the key identity fields are present.
// A record without both passport number and name is at best partial.
func (r *ExtractedRecord) HasIdentity() bool {
	return r.PassportNumber != "" && r.FullName != ""
}

// MarkInferred records that a field value came from a best-effort guess.
func (r *ExtractedRecord) MarkInferred(field string) {
	for _, f := range r.Inferred {
		if f == field {
			return
		}
	}
	r.Inferred = append(r.Inferred, field)
}

// IsInferred reports whether a field was filled by a best-effort guess.
func (r *ExtractedRecord) IsInferred(field string) bool {
	for _, f := range r.Inferred {
		if f == field {
			return true
		}
	}
	return false
}
