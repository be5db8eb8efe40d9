package extract

import "strings"

// nationalityEntry binds an ICAO alpha-3 country code and the country name
// to the canonical nationality adjective stored on records.
type nationalityEntry struct {
	code      string
	country   string
	adjective string
}

// nationalityTable is the finite lookup used for nationality normalization.
// Input that matches neither a code nor a country name is never guessed at.
// The list is weighted toward the labour-source countries this HR system
// actually processes, plus the common tourist-visa issuers.
var nationalityTable = []nationalityEntry{
	{"MDV", "MALDIVES", "Maldivian"},
	{"IND", "INDIA", "Indian"},
	{"LKA", "SRI LANKA", "Sri Lankan"},
	{"BGD", "BANGLADESH", "Bangladeshi"},
	{"NPL", "NEPAL", "Nepali"},
	{"PAK", "PAKISTAN", "Pakistani"},
	{"PHL", "PHILIPPINES", "Filipino"},
	{"IDN", "INDONESIA", "Indonesian"},
	{"MMR", "MYANMAR", "Burmese"},
	{"THA", "THAILAND", "Thai"},
	{"MYS", "MALAYSIA", "Malaysian"},
	{"CHN", "CHINA", "Chinese"},
	{"JPN", "JAPAN", "Japanese"},
	{"KOR", "SOUTH KOREA", "South Korean"},
	{"VNM", "VIETNAM", "Vietnamese"},
	{"KEN", "KENYA", "Kenyan"},
	{"NGA", "NIGERIA", "Nigerian"},
	{"ZAF", "SOUTH AFRICA", "South African"},
	{"EGY", "EGYPT", "Egyptian"},
	{"TUR", "TURKEY", "Turkish"},
	{"ARE", "UNITED ARAB EMIRATES", "Emirati"},
	{"SAU", "SAUDI ARABIA", "Saudi"},
	{"USA", "UNITED STATES", "American"},
	{"GBR", "UNITED KINGDOM", "British"},
	{"CAN", "CANADA", "Canadian"},
	{"AUS", "AUSTRALIA", "Australian"},
	{"NZL", "NEW ZEALAND", "New Zealander"},
	{"DEU", "GERMANY", "German"},
	{"FRA", "FRANCE", "French"},
	{"ITA", "ITALY", "Italian"},
	{"ESP", "SPAIN", "Spanish"},
	{"NLD", "NETHERLANDS", "Dutch"},
	{"RUS", "RUSSIA", "Russian"},
	{"UKR", "UKRAINE", "Ukrainian"},
	{"BRA", "BRAZIL", "Brazilian"},
	{"MEX", "MEXICO", "Mexican"},
}

// LookupNationality resolves a country code, country name or nationality
// adjective to the canonical adjective. Returns "" when the input is outside
// the table.
func LookupNationality(value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return ""
	}
	for _, e := range nationalityTable {
		if v == e.code || v == e.country || v == strings.ToUpper(e.adjective) {
			return e.adjective
		}
	}
	return ""
}
