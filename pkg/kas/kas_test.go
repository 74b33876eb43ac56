package kas_test

import (
	"errors"
	"os"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"

	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/kas"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
)

func getReader(t *testing.T) *kas.Reader {
	r, err := kas.New()
	if err != nil {
		t.Fatalf("unable to create reader: %v", err)
	}
	return r
}

func subjectBody(statusVat string) map[string]interface{} {
	return map[string]interface{}{
		"result": map[string]interface{}{
			"subject": map[string]interface{}{
				"name":                  "ACME SP. Z O.O.",
				"nip":                   "7282697380",
				"regon":                 "123456785",
				"krs":                   "0000123456",
				"statusVat":             statusVat,
				"residenceAddress":      "Prosta 1/2, 00-838 Warszawa",
				"workingAddress":        "Krotka 3, 90-001 Lodz",
				"registrationLegalDate": "2015-03-01",
				"representatives": []map[string]interface{}{
					{"firstName": "JAN", "lastName": "KOWALSKI"},
				},
			},
		},
	}
}

func TestLookupActivePayer(t *testing.T) {
	defer gock.Off()
	gock.New("https://wl-api.mf.gov.pl").
		Get("/api/search/nip/7282697380").
		MatchParam("date", "2026-05-01").
		Reply(200).
		JSON(subjectBody("Czynny"))

	data, err := getReader(t).LookupByDate("728-269-73-80", "2026-05-01", companydata.TypeNIP)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	assert.True(t, data.Valid)
	assert.Equal(t, "ACME SP. Z O.O.", data.Name)
	assert.Equal(t, "2015-03-01", data.StartDate)
	assert.Equal(t, []companydata.CompanyIdentifier{
		{Type: companydata.TypeNIP, Id: "7282697380"},
		{Type: companydata.TypeREGON, Id: "123456785"},
		{Type: companydata.TypeKRS, Id: "0000123456"},
	}, data.Identifiers)
	assert.Equal(t, &companydata.CompanyAddress{
		Country:    "PL",
		PostalCode: "00-838",
		Address:    "Prosta 1/2",
		City:       "Warszawa",
	}, data.MainAddress)
	assert.Equal(t, []companydata.CompanyAddress{{
		Country:    "PL",
		PostalCode: "90-001",
		Address:    "Krotka 3",
		City:       "Lodz",
	}}, data.AdditionalAddresses)
	assert.Equal(t, []companydata.CompanyRepresentative{
		{FirstName: "JAN", LastName: "KOWALSKI"},
	}, data.Representatives)
}

func TestLookupExemptPayer(t *testing.T) {
	defer gock.Off()
	gock.New("https://wl-api.mf.gov.pl").
		Get("/api/search/nip/7282697380").
		Reply(200).
		JSON(subjectBody("Zwolniony"))

	data, err := getReader(t).LookupByDate("7282697380", "2026-05-01", companydata.TypeNIP)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	assert.False(t, data.Valid)
	assert.Equal(t, "ACME SP. Z O.O.", data.Name)
}

func TestLookupByRegon(t *testing.T) {
	defer gock.Off()
	gock.New("https://wl-api.mf.gov.pl").
		Get("/api/search/regon/123456785").
		MatchParam("date", "2026-05-01").
		Reply(200).
		JSON(subjectBody("Czynny"))

	data, err := getReader(t).LookupByDate("123456785", "2026-05-01", companydata.TypeREGON)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	assert.True(t, data.Valid)
}

func TestLookupNoSubject(t *testing.T) {
	defer gock.Off()
	gock.New("https://wl-api.mf.gov.pl").
		Get("/api/search/nip/7282697380").
		Reply(200).
		JSON(map[string]interface{}{
			"result": map[string]interface{}{"subject": nil},
		})

	_, err := getReader(t).LookupByDate("7282697380", "2026-05-01", companydata.TypeNIP)
	if err == nil {
		t.Fatal("expected error for empty subject")
	}
	assert.True(t, errors.Is(err, lookup.ErrEmptyResponse))
}

func TestLookupUnparseableResidenceAddress(t *testing.T) {
	body := subjectBody("Czynny")
	s := body["result"].(map[string]interface{})["subject"].(map[string]interface{})
	s["residenceAddress"] = ""

	defer gock.Off()
	gock.New("https://wl-api.mf.gov.pl").
		Get("/api/search/nip/7282697380").
		Reply(200).
		JSON(body)

	data, err := getReader(t).LookupByDate("7282697380", "2026-05-01", companydata.TypeNIP)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if assert.NotNil(t, data.MainAddress) {
		assert.Equal(t, "Lodz", data.MainAddress.City)
	}
	assert.Empty(t, data.AdditionalAddresses)
}

func TestLookupServerError(t *testing.T) {
	defer gock.Off()
	gock.New("https://wl-api.mf.gov.pl").
		Get("/api/search/nip/7282697380").
		Reply(500)

	_, err := getReader(t).LookupByDate("7282697380", "2026-05-01", companydata.TypeNIP)
	var unavailable *lookup.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	assert.Contains(t, unavailable.Detail, "500")
}

func TestLookupInvalidJson(t *testing.T) {
	defer gock.Off()
	gock.New("https://wl-api.mf.gov.pl").
		Get("/api/search/nip/7282697380").
		Reply(200).
		BodyString("not json")

	_, err := getReader(t).LookupByDate("7282697380", "2026-05-01", companydata.TypeNIP)
	var unavailable *lookup.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
}

func TestLookupUnsupportedType(t *testing.T) {
	_, err := getReader(t).Lookup("0000123456", companydata.TypeKRS)
	var typeErr *lookup.UnsupportedIdentifierTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnsupportedIdentifierTypeError, got %v", err)
	}
}

func TestLookupBadChecksum(t *testing.T) {
	_, err := getReader(t).LookupByDate("7282697381", "2026-05-01", companydata.TypeNIP)
	if err == nil {
		t.Fatal("expected checksum error")
	}
	assert.Contains(t, err.Error(), "checksum")
}

func TestLookupE2E(t *testing.T) {
	if os.Getenv("E2E_TEST") != "true" {
		t.Skip("skipping test; E2E_TEST is not set")
	}
	data, err := getReader(t).Lookup(os.Getenv("E2E_NIP"), companydata.TypeNIP)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	assert.NotEmpty(t, data.Name)
}
