package mrz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	td3Line1 = "P<USASMITH<<JOHN<MICHAEL<<<<<<<<<<<<<<<<<<<"
	td3Line2 = "123456789<0USA8503159M3001011<<<<<<<<<<<<<04"
)

func TestParseTD3(t *testing.T) {
	fields := Parse(td3Line1 + "\n" + td3Line2)
	require.NotNil(t, fields)

	assert.Equal(t, "P", fields.DocumentType)
	assert.Equal(t, "USA", fields.IssuingCountry)
	assert.Equal(t, "SMITH", fields.Surname)
	assert.Equal(t, "JOHN MICHAEL", fields.GivenNames)
	assert.Equal(t, "JOHN MICHAEL SMITH", fields.FullName())
	assert.Equal(t, "123456789", fields.PassportNumber)
	assert.Equal(t, "USA", fields.Nationality)
	assert.Equal(t, "850315", fields.BirthDateRaw)
	assert.Equal(t, "M", fields.Sex)
	assert.Equal(t, "300101", fields.ExpiryDateRaw)
}

func TestParseCanonicalCheckDigitPlacement(t *testing.T) {
	// Check digit directly after the number slot, no filler.
	line2 := "L898902C36UTO7408122F1204159ZE184226B<<<<<10"
	fields := Parse("P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<" + "\n" + line2)
	require.NotNil(t, fields)

	assert.Equal(t, "L898902C3", fields.PassportNumber)
	assert.Equal(t, "UTO", fields.Nationality)
	assert.Equal(t, "740812", fields.BirthDateRaw)
	assert.Equal(t, "F", fields.Sex)
	assert.Equal(t, "120415", fields.ExpiryDateRaw)
	assert.Equal(t, "ERIKSSON", fields.Surname)
	assert.Equal(t, "ANNA MARIA", fields.GivenNames)
}

func TestParseSurvivesSurroundingText(t *testing.T) {
	text := "REPUBLIC OF UTOPIA\nPASSPORT\n" + td3Line1 + "\n" + td3Line2 + "\nsome trailing footer"
	fields := Parse(text)
	require.NotNil(t, fields)
	assert.Equal(t, "123456789", fields.PassportNumber)
}

func TestParseStripsNonMRZCharacters(t *testing.T) {
	// OCR output often injects spaces and stray punctuation into MRZ lines.
	dirty1 := "P< USA SMITH<<JOHN<MICHAEL <<<<<<<<<<<<<<<<<<<"
	dirty2 := "123456789< 0USA 850315 9M 300101 1<<<<<<<<<<<<<04."
	fields := Parse(dirty1 + "\n" + dirty2)
	require.NotNil(t, fields)
	assert.Equal(t, "123456789", fields.PassportNumber)
	assert.Equal(t, "M", fields.Sex)
}

func TestParseReturnsNilWithoutMRZ(t *testing.T) {
	assert.Nil(t, Parse("Name: JOHN SMITH\nPassport No: 123456789"))
	assert.Nil(t, Parse(""))
	// One candidate line is not enough.
	assert.Nil(t, Parse(td3Line1))
	// Lines below the minimum length are not candidates.
	assert.Nil(t, Parse("P<USASMITH<<JOHN\n1234567<<USA"))
}

func TestParseRejectsUnfilledSexSlot(t *testing.T) {
	line2 := "123456789<0USA8503159<3001011<<<<<<<<<<<<<04"
	fields := Parse(td3Line1 + "\n" + line2)
	require.NotNil(t, fields)
	assert.Empty(t, fields.Sex)
	assert.Equal(t, "850315", fields.BirthDateRaw)
}

func TestExpandDate(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"850315", "1985-03-15"},
		{"050315", "2005-03-15"},
		{"000101", "2000-01-01"},
		{"300101", "2030-01-01"},
		{"310101", "1931-01-01"},
		{"991231", "1999-12-31"},
	}
	for _, tc := range cases {
		got, err := ExpandDate(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestExpandDateRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "85031", "8503151", "85031X", "851315", "850332"} {
		_, err := ExpandDate(raw)
		assert.Error(t, err, raw)
	}
}
