package address

import (
	"fmt"
	"regexp"
)

// zipPatterns holds the postal-code regex per country. Countries missing
// from the table have no known zip format and extraction degrades for them.
var zipPatterns = map[string]string{
	"DZ": `\d{5}`,
	"SA": `\d{5}`,
	"AU": `\d{4}`,
	"AT": `(AT-)?\d{4}`,
	"CN": `\d{6}`,
	"CY": `\d{4}`,
	"DK": `\d{4}`,
	"PH": `\d{4}`,
	"FI": `\d{5}`,
	"FR": `\d{5}`,
	"GR": `\d{3}(\s)?\d{2}`,
	"ES": `\d{5}`,
	"IN": `\d{6}`,
	"IS": `\d{3}`,
	"JP": `\d{7}`,
	"CR": `\d{5}`,
	"KW": `\d{5}`,
	"LS": `\d{3}`,
	"LI": `\d{4}`,
	"MY": `\d{5}`,
	"MX": `\d{5}`,
	"MC": `\d{5}`,
	"DE": `\d{5}`,
	"NO": `\d{4}`,
	"NZ": `\d{4}`,
	"ZA": `\d{4}`,
	"RU": `\d{6}`,
	"SG": `\d{6}`,
	"CH": `\d{4}`,
	"TH": `\d{5}`,
	"TN": `\d{4}`,
	"TR": `\d{5}`,
	"HU": `\d{4}`,
	"VN": `\d{6}`,
	"IT": `\d{5}`,
	"FO": `\d{3}`,
	"IR": `\d{10}`,
	"ID": `\d{5}`,
	"BR": `\d{5}\-\d{3}`,
	"NL": `\d{4}(\s)?[a-zA-Z]{2}`,
	"CA": `[a-zA-Z]\d[a-zA-Z](\s)?\d[a-zA-Z]\d`,
	"PL": `\d{2}\-\d{3}`,
	"SE": `\d{3}(\s)?\d{2}`,
	"CZ": `\d{3}(\s)?\d{2}`,
	"SK": `\d{3}(\s)?\d{2}`,
	"BE": `\d{4}`,
	"BG": `\d{4}`,
	"EE": `\d{5}`,
	"GB": `[a-zA-Z]([a-zA-Z])?\d([a-zA-Z\d])?((\s)?\d[a-zA-Z]{2})?`,
	"MT": `[a-zA-Z]{3}(\s)?\d{2}(\d{2})?`,
	"LT": `LT-\d{5}`,
	"LU": `L-\d{4}`,
	"LV": `LV-\d{4}`,
	"RO": `\d{6}`,
	"SI": `(SI-)?\d{4}`,
	"HR": `\d{5}`,
	"PT": `\d{4}-\d{3}`,
}

// zipExamples carries a human-readable sample per country, used in the
// CheckZip diagnostic.
var zipExamples = map[string]string{
	"DZ": "12345", "SA": "12345", "AU": "1234", "AT": "1234", "CN": "123456",
	"CY": "1234", "DK": "1234", "PH": "1234", "FI": "12345", "FR": "12345",
	"GR": "12345", "ES": "12345", "IN": "123456", "IS": "123", "JP": "1234567",
	"CR": "12345", "KW": "12345", "LS": "123", "LI": "1234", "MY": "12345",
	"MX": "12345", "MC": "12345", "DE": "12345", "NO": "1234", "NZ": "1234",
	"ZA": "1234", "RU": "123456", "SG": "123456", "CH": "1234", "TH": "12345",
	"TN": "1234", "TR": "12345", "HU": "1234", "VN": "123456", "IT": "12345",
	"FO": "123", "IR": "1234567890", "ID": "12345", "BR": "12345-678",
	"NL": "1234 AB", "CA": "A1B 2C3", "PL": "12-345", "SE": "123 45",
	"CZ": "123 45", "SK": "123 45", "BE": "1234", "BG": "1234", "EE": "12345",
	"MT": "ABC 12", "LT": "LT-12345", "LU": "L-1234", "LV": "LV-1234",
	"RO": "123456", "SI": "1234", "HR": "12345", "PT": "1234-567",
}

// ZipRegex returns the zip pattern for a country, or "" when none is known.
func ZipRegex(country string) string {
	return zipPatterns[country]
}

var zipContentRegexp = regexp.MustCompile(`[\p{L}0-9]`)
var zipCharsRegexp = regexp.MustCompile(`[^a-zA-Z0-9_ ,.()\s/-]`)

// CheckZip verifies a postal code against its country format.
func CheckZip(zip string, country string) error {
	pattern := zipPatterns[country]
	if pattern != "" && !regexp.MustCompile("^"+pattern+"$").MatchString(zip) {
		if example, ok := zipExamples[country]; ok {
			return fmt.Errorf("incorrect zip code, try %s", example)
		}
		return fmt.Errorf("incorrect zip code")
	}
	if !zipContentRegexp.MatchString(zip) {
		return fmt.Errorf("zip code must contain letter or number")
	}
	if len([]rune(zip)) > 16 {
		return fmt.Errorf("zip code too long")
	}
	if zipCharsRegexp.MatchString(zip) {
		return fmt.Errorf("zip code has incorrect chars")
	}
	return nil
}
