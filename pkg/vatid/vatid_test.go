package vatid_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
	"github.com/aftermarketpl/companylookup/pkg/vatid"
)

func TestCheckNip(t *testing.T) {
	for _, nip := range []string{"7282697380", "5342532004", "728-269-73-80", "PL7282697380"} {
		value, err := vatid.CheckNip(nip)
		if err != nil {
			t.Fatalf("expected %s to validate: %v", nip, err)
		}
		assert.Len(t, value, 10)
	}
}

func TestCheckNipBadChecksum(t *testing.T) {
	_, err := vatid.CheckNip("7282697381")
	if err == nil {
		t.Fatal("expected checksum error")
	}
	var validationErr *lookup.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, err.Error(), "checksum")
}

func TestCheckNipBadLength(t *testing.T) {
	_, err := vatid.CheckNip("12345")
	if err == nil {
		t.Fatal("expected length error")
	}
	assert.Contains(t, err.Error(), "expected 10 digits, got 5")
}

func TestCheckNipForeignPrefix(t *testing.T) {
	_, err := vatid.CheckNip("DE7282697380")
	if err == nil {
		t.Fatal("expected country error")
	}
}

func TestCheckRegon(t *testing.T) {
	value, err := vatid.CheckRegon("123456785")
	if err != nil {
		t.Fatalf("expected REGON to validate: %v", err)
	}
	assert.Equal(t, "123456785", value)

	_, err = vatid.CheckRegon("123456784")
	assert.Error(t, err)

	_, err = vatid.CheckRegon("1234")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "expected 9 or 14 digits, got 4")
	}
}

func TestCheckKrs(t *testing.T) {
	value, err := vatid.CheckKrs("0000123456")
	if err != nil {
		t.Fatalf("expected KRS to validate: %v", err)
	}
	assert.Equal(t, "0000123456", value)

	_, err = vatid.CheckKrs("123")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	country, number, err := vatid.Resolve("PL1234567890")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	assert.Equal(t, "PL", country)
	assert.Equal(t, "1234567890", number)

	country, number, err = vatid.Resolve("de 123 456 789")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	assert.Equal(t, "DE", country)
	assert.Equal(t, "123456789", number)
}

func TestResolveUnknownCountry(t *testing.T) {
	_, _, err := vatid.Resolve("XX1234567890")
	if err == nil {
		t.Fatal("expected country error")
	}
	var validationErr *lookup.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "incorrect country code", err.Error())
}

func TestResolveWithDefault(t *testing.T) {
	country, number, err := vatid.ResolveWithDefault("1234567890", "PL")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	assert.Equal(t, "PL", country)
	assert.Equal(t, "1234567890", number)

	_, _, err = vatid.ResolveWithDefault("1234567890", "")
	assert.Error(t, err)
}

func TestValidateDispatch(t *testing.T) {
	// Countries without a registered checksum pass through untouched.
	value, err := vatid.Validate("DE 123456789", companydata.TypeVAT, "")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	assert.Equal(t, "DE123456789", value)

	_, err = vatid.Validate("PL7282697381", companydata.TypeVAT, "")
	assert.Error(t, err)
}
