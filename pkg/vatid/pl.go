package vatid

import (
	"strings"

	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
)

var nipWeights = []int{6, 5, 7, 2, 3, 4, 5, 6, 7}
var regonWeights = []int{8, 9, 2, 3, 4, 5, 6, 7}

func validatePL(id string, typ companydata.IdentifierType) (string, error) {
	switch typ {
	case companydata.TypeNIP, companydata.TypeVAT:
		return CheckNip(id)
	case companydata.TypeREGON:
		return CheckRegon(id)
	case companydata.TypeKRS:
		return CheckKrs(id)
	}
	return "", lookup.Validation("no validation rule for identifier type '%s'", typ)
}

// CheckNip validates a Polish NIP: 10 digits with a mod-11 check digit, or
// 12 characters when an inline PL prefix is carried, which is stripped and
// the remainder re-checked. Returns the bare 10-digit number.
func CheckNip(nip string) (string, error) {
	value := strings.ReplaceAll(nip, "-", "")
	value = strings.ReplaceAll(value, " ", "")

	if len(value) == 12 {
		if !strings.EqualFold(value[0:2], "PL") {
			return "", lookup.Validation("incorrect country code '%s' in NIP", value[0:2])
		}
		value = value[2:]
	}
	if len(value) != 10 {
		return "", lookup.Validation("incorrect NIP length: expected 10 digits, got %d", len(value))
	}
	digits, err := toDigits(value)
	if err != nil {
		return "", err
	}

	sum := 0
	for i, w := range nipWeights {
		sum += w * digits[i]
	}
	control := sum % 11
	if control == 10 {
		control = 0
	}
	if control != digits[9] {
		return "", lookup.Validation("incorrect NIP checksum: expected control digit %d, got %d", control, digits[9])
	}
	return value, nil
}

// CheckRegon validates the 9-digit REGON form with its mod-11 check digit.
// 14-digit local-unit REGONs embed a valid 9-digit one as their prefix and
// are checked the same way.
func CheckRegon(regon string) (string, error) {
	value := strings.ReplaceAll(regon, "-", "")
	value = strings.ReplaceAll(value, " ", "")

	if len(value) != 9 && len(value) != 14 {
		return "", lookup.Validation("incorrect REGON length: expected 9 or 14 digits, got %d", len(value))
	}
	digits, err := toDigits(value)
	if err != nil {
		return "", err
	}

	sum := 0
	for i, w := range regonWeights {
		sum += w * digits[i]
	}
	control := sum % 11
	if control == 10 {
		control = 0
	}
	if control != digits[8] {
		return "", lookup.Validation("incorrect REGON checksum: expected control digit %d, got %d", control, digits[8])
	}
	return value, nil
}

// CheckKrs validates a KRS number: exactly 10 digits, no checksum.
func CheckKrs(krs string) (string, error) {
	value := strings.ReplaceAll(krs, " ", "")
	if len(value) != 10 {
		return "", lookup.Validation("incorrect KRS length: expected 10 digits, got %d", len(value))
	}
	if _, err := toDigits(value); err != nil {
		return "", err
	}
	return value, nil
}

func toDigits(value string) ([]int, error) {
	digits := make([]int, len(value))
	for i, r := range value {
		if r < '0' || r > '9' {
			return nil, lookup.Validation("identifier must contain only digits")
		}
		digits[i] = int(r - '0')
	}
	return digits, nil
}
