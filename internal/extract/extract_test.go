package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhuhaam/laraos-sub001/internal/mrz"
	"github.com/adhuhaam/laraos-sub001/pkg/models"
)

func TestExtractLabeledFields(t *testing.T) {
	text := "Name: JOHN MICHAEL SMITH\nPassport No: 123456789\nDate of Birth: 15/03/1985"
	rec := Extract(text, nil)

	assert.Equal(t, "JOHN MICHAEL SMITH", rec.FullName)
	assert.Equal(t, "123456789", rec.PassportNumber)
	assert.Equal(t, "1985-03-15", rec.DateOfBirth)
	assert.Empty(t, rec.Inferred, "labeled date must not be flagged as inferred")
	assert.Empty(t, rec.IssueDate)
	assert.Empty(t, rec.ExpiryDate)
}

func TestExtractFromMRZPair(t *testing.T) {
	text := "P<USASMITH<<JOHN<MICHAEL<<<<<<<<<<<<<<<<<<<\n123456789<0USA8503159M3001011<<<<<<<<<<<<<04"
	fields := mrz.Parse(text)
	require.NotNil(t, fields)

	rec := Extract(text, fields)
	assert.Equal(t, "123456789", rec.PassportNumber)
	assert.Equal(t, "American", rec.Nationality)
	assert.Equal(t, "1985-03-15", rec.DateOfBirth)
	assert.Equal(t, "M", rec.Sex)
	assert.Equal(t, "2030-01-01", rec.ExpiryDate)
	assert.Equal(t, "JOHN MICHAEL SMITH", rec.FullName)
}

func TestMRZFieldsAreCopiedThroughUnchanged(t *testing.T) {
	// The heuristic rules must not overwrite what the MRZ supplied, even
	// when the surrounding text disagrees.
	text := "Passport No: Z9999999\nP<USASMITH<<JOHN<MICHAEL<<<<<<<<<<<<<<<<<<<\n123456789<0USA8503159M3001011<<<<<<<<<<<<<04"
	fields := mrz.Parse(text)
	require.NotNil(t, fields)

	rec := Extract(text, fields)
	assert.Equal(t, "123456789", rec.PassportNumber)
}

func TestExtractSurnameGivenNamePair(t *testing.T) {
	text := "Surname: FERNANDO\nGiven Names: KASUN PERERA\nPassport Number: N7654321"
	rec := Extract(text, nil)

	assert.Equal(t, "KASUN PERERA FERNANDO", rec.FullName)
	assert.Equal(t, "N7654321", rec.PassportNumber)
}

func TestExtractNeverFailsOnGarbage(t *testing.T) {
	rec := Extract("%%%$$$###\n\n12\nxx", nil)
	assert.True(t, rec.IsEmpty())
}

func TestPositionalDateAssignmentIsFlaggedInferred(t *testing.T) {
	// Three unlabeled dates: earliest is birth, middle issue, latest expiry.
	text := "SOME CARD\n01/02/1980\n05/06/2015\n07/08/2025"
	rec := Extract(text, nil)

	assert.Equal(t, "1980-02-01", rec.DateOfBirth)
	assert.Equal(t, "2015-06-05", rec.IssueDate)
	assert.Equal(t, "2025-08-07", rec.ExpiryDate)
	assert.True(t, rec.IsInferred(FieldDateOfBirth))
	assert.True(t, rec.IsInferred(FieldIssueDate))
	assert.True(t, rec.IsInferred(FieldExpiryDate))
}

func TestTwoGenericDatesSkipIssueSlot(t *testing.T) {
	text := "11/11/1990 some text 12/12/2030"
	rec := Extract(text, nil)

	assert.Equal(t, "1990-11-11", rec.DateOfBirth)
	assert.Empty(t, rec.IssueDate)
	assert.Equal(t, "2030-12-12", rec.ExpiryDate)
}

func TestLabeledDateWinsOverPositional(t *testing.T) {
	text := "Date of Expiry: 01/01/2031\n15/03/1985"
	rec := Extract(text, nil)

	assert.Equal(t, "2031-01-01", rec.ExpiryDate)
	assert.False(t, rec.IsInferred(FieldExpiryDate))
	assert.Equal(t, "1985-03-15", rec.DateOfBirth)
	assert.True(t, rec.IsInferred(FieldDateOfBirth))
}

func TestDateVariants(t *testing.T) {
	cases := map[string]string{
		"Date of Birth: 1985-03-15":     "1985-03-15",
		"Date of Birth: 15 March 1985":  "1985-03-15",
		"Date of Birth: March 15, 1985": "1985-03-15",
		"DOB: 15.03.1985":               "1985-03-15",
	}
	for text, want := range cases {
		rec := Extract(text, nil)
		assert.Equal(t, want, rec.DateOfBirth, text)
	}
}

func TestDateYearBounds(t *testing.T) {
	// Years at or outside 1900/2100 are rejected outright.
	rec := Extract("Date of Birth: 01/01/1900\nDate of Issue: 01/01/2100", nil)
	assert.Empty(t, rec.DateOfBirth)
	assert.Empty(t, rec.IssueDate)
}

func TestNationalityLookupIsTableOnly(t *testing.T) {
	rec := Extract("Nationality: INDIA", nil)
	assert.Equal(t, "Indian", rec.Nationality)

	rec = Extract("Nationality: IND", nil)
	assert.Equal(t, "Indian", rec.Nationality)

	// Outside the table: never guessed.
	rec = Extract("Nationality: ATLANTIS", nil)
	assert.Empty(t, rec.Nationality)
}

func TestSexNormalization(t *testing.T) {
	cases := map[string]string{
		"Sex: M":         "M",
		"Sex: Male":      "M",
		"Sexe: Masculin": "M",
		"Sex: FEMALE":    "F",
		"Sexo: Femenino": "F",
	}
	for text, want := range cases {
		rec := Extract(text, nil)
		assert.Equal(t, want, rec.Sex, text)
	}

	rec := Extract("Sex: unknown", nil)
	assert.Empty(t, rec.Sex)
}

func TestPlaceAndAuthorityLengthBand(t *testing.T) {
	rec := Extract("Place of Birth: COLOMBO\nIssuing Authority: Department of Immigration", nil)
	assert.Equal(t, "COLOMBO", rec.PlaceOfBirth)
	assert.Equal(t, "Department of Immigration", rec.IssuingAuthority)

	// Below the 3-character floor.
	rec = Extract("Place of Birth: AB", nil)
	assert.Empty(t, rec.PlaceOfBirth)
}

// Every value accepted into a record must still satisfy its validator;
// validation is idempotent.
func TestAcceptedValuesRevalidate(t *testing.T) {
	text := "Name: JOHN MICHAEL SMITH\nPassport No: 123456789\nDate of Birth: 15/03/1985\nNationality: INDIA\nSex: Male\nPlace of Birth: COLOMBO"
	rec := Extract(text, nil)

	assert.True(t, ValidPassportNumber(rec.PassportNumber))
	assert.True(t, ValidName(rec.FullName))
	assert.True(t, ValidISODate(rec.DateOfBirth))
	assert.Equal(t, rec.Nationality, LookupNationality(rec.Nationality))
	assert.Equal(t, rec.Sex, NormalizeSex(rec.Sex))
	assert.True(t, ValidFreeText(rec.PlaceOfBirth))
}

func TestApplyManual(t *testing.T) {
	auto := &models.ExtractedRecord{
		PassportNumber: "123456789",
		DateOfBirth:    "1985-03-15",
	}
	manual := &models.ExtractedRecord{
		FullName:    "JOHN MICHAEL SMITH",
		ExpiryDate:  "01/01/2031",
		Nationality: "india",
		Sex:         "male",
		// Fails validation: too short, must not clobber anything.
		PlaceOfBirth: "AB",
	}

	merged := ApplyManual(auto, manual)
	assert.Equal(t, "123456789", merged.PassportNumber)
	assert.Equal(t, "JOHN MICHAEL SMITH", merged.FullName)
	assert.Equal(t, "1985-03-15", merged.DateOfBirth)
	assert.Equal(t, "2031-01-01", merged.ExpiryDate)
	assert.Equal(t, "Indian", merged.Nationality)
	assert.Equal(t, "M", merged.Sex)
	assert.Empty(t, merged.PlaceOfBirth)

	// The automatic record is untouched.
	assert.Empty(t, auto.FullName)
}

func TestApplyManualWithNilAuto(t *testing.T) {
	merged := ApplyManual(nil, &models.ExtractedRecord{PassportNumber: "a1234567"})
	assert.Equal(t, "A1234567", merged.PassportNumber)
}

func TestPassportNumberValidator(t *testing.T) {
	assert.True(t, ValidPassportNumber("123456"))
	assert.True(t, ValidPassportNumber("AB12345678CD"[:12]))
	assert.False(t, ValidPassportNumber("12345"))
	assert.False(t, ValidPassportNumber("1234567890123"))
	assert.False(t, ValidPassportNumber("12345-789"))
}

func TestNameValidator(t *testing.T) {
	assert.True(t, ValidName("JOHN SMITH"))
	assert.True(t, ValidName("Anna Maria Rosa Lee"))
	assert.False(t, ValidName("JOHN"))                       // one token
	assert.False(t, ValidName("A B"))                        // tokens too short, total too short
	assert.False(t, ValidName("JOHN SM1TH"))                 // digit
	assert.False(t, ValidName("ONE TWO THREE FOUR FIVE SI")) // five+ tokens
}
