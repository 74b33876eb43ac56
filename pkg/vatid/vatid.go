// Package vatid validates tax identifiers and resolves country-prefixed
// ones into their (country, bare number) parts.
package vatid

import (
	"regexp"
	"strings"

	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
)

var allowedCountries = map[string]bool{}

func init() {
	for _, c := range []string{
		"ES", "EL", "IE", "DZ", "SA", "AU", "AT", "CN", "CY", "DK", "PH",
		"FI", "FR", "GB", "GR", "IN", "IS", "JP", "CR", "KW", "LS", "LI",
		"MY", "MX", "MC", "DE", "NO", "NZ", "ZA", "RU", "SG", "CH", "TH",
		"TN", "TR", "HU", "VN", "IT", "FO", "IR", "ID", "BR", "NL", "CA",
		"PL", "SE", "CZ", "SK", "BE", "BG", "EE", "MT", "LT", "LU", "LV",
		"RO", "SI", "HR", "PT",
	} {
		allowedCountries[c] = true
	}
}

var countryPrefixRegexp = regexp.MustCompile(`^[a-zA-Z]{2}`)

// ValidateCountry checks the country code against the supported set.
func ValidateCountry(country string) error {
	if !allowedCountries[country] {
		return lookup.Validation("incorrect country code")
	}
	return nil
}

// Resolve splits a prefixed identifier like "PL1234567890" into the country
// code and the bare number, with internal spaces removed.
func Resolve(vatid string) (country string, number string, err error) {
	return resolve(vatid, "")
}

// ResolveWithDefault behaves like Resolve but assumes the given country when
// the identifier carries no letter prefix.
func ResolveWithDefault(vatid string, defaultCountry string) (country string, number string, err error) {
	return resolve(vatid, defaultCountry)
}

func resolve(vatid string, defaultCountry string) (string, string, error) {
	country := strings.ToUpper(countryPrefixRegexp.FindString(vatid))
	number := vatid
	if country != "" {
		number = vatid[2:]
	} else if defaultCountry != "" {
		country = defaultCountry
	}
	if err := ValidateCountry(country); err != nil {
		return "", "", err
	}
	return country, strings.ReplaceAll(number, " ", ""), nil
}

// checksumFuncs maps a country code to its national-ID checksum routine.
// New countries register here.
var checksumFuncs = map[string]func(string, companydata.IdentifierType) (string, error){
	"PL": validatePL,
}

// Validate normalizes an identifier (separators and country prefix stripped)
// and runs the country checksum for it when one is registered. The country is
// taken from the identifier prefix, falling back to the supplied default.
func Validate(id string, typ companydata.IdentifierType, defaultCountry string) (string, error) {
	country := strings.ToUpper(countryPrefixRegexp.FindString(id))
	if country == "" {
		country = defaultCountry
	}
	if err := ValidateCountry(country); err != nil {
		return "", err
	}
	check, ok := checksumFuncs[country]
	if !ok {
		return strings.ReplaceAll(id, " ", ""), nil
	}
	return check(id, typ)
}
