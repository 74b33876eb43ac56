package vat_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
	"github.com/aftermarketpl/companylookup/pkg/vat"
)

type fakeTransport struct {
	res *vat.StatusResponse
	err error

	nip  string
	date string
}

func (t *fakeTransport) CheckNip(nip string) (*vat.StatusResponse, error) {
	t.nip = nip
	if t.err != nil {
		return nil, t.err
	}
	return t.res, nil
}

func (t *fakeTransport) CheckNipOnDate(nip string, date string) (*vat.StatusResponse, error) {
	t.nip = nip
	t.date = date
	if t.err != nil {
		return nil, t.err
	}
	return t.res, nil
}

func getReader(transport *fakeTransport) *vat.Reader {
	r := vat.New()
	r.SetTransport(transport)
	return r
}

func TestLookupActive(t *testing.T) {
	transport := &fakeTransport{res: &vat.StatusResponse{Code: "C"}}
	data, err := getReader(transport).Lookup("7282697380", companydata.TypeNIP)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	assert.True(t, data.Valid)
	assert.Equal(t, []companydata.CompanyIdentifier{
		{Type: companydata.TypeNIP, Id: "7282697380"},
	}, data.Identifiers)
	assert.Equal(t, "7282697380", transport.nip)
}

func TestLookupInactive(t *testing.T) {
	for _, code := range []string{"N", "I", "D", ""} {
		transport := &fakeTransport{res: &vat.StatusResponse{Code: code}}
		data, err := getReader(transport).Lookup("7282697380", companydata.TypeNIP)
		if err != nil {
			t.Fatalf("lookup with code %q: %v", code, err)
		}
		assert.False(t, data.Valid)
	}
}

func TestLookupServiceDisabled(t *testing.T) {
	transport := &fakeTransport{res: &vat.StatusResponse{Code: "X", Message: "Usługa nieaktywna"}}
	_, err := getReader(transport).Lookup("7282697380", companydata.TypeNIP)
	var unavailableErr *lookup.UnavailableError
	if !errors.As(err, &unavailableErr) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	assert.Contains(t, unavailableErr.Detail, "Usługa nieaktywna")
}

func TestLookupTransportFailure(t *testing.T) {
	transport := &fakeTransport{err: fmt.Errorf("connection refused")}
	_, err := getReader(transport).Lookup("7282697380", companydata.TypeNIP)
	var unavailableErr *lookup.UnavailableError
	assert.True(t, errors.As(err, &unavailableErr))
}

func TestLookupByDate(t *testing.T) {
	transport := &fakeTransport{res: &vat.StatusResponse{Code: "C"}}
	data, err := getReader(transport).LookupByDate("728-269-73-80", "2020-01-15", companydata.TypeNIP)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	assert.True(t, data.Valid)
	assert.Equal(t, "2020-01-15", transport.date)
	assert.Equal(t, "7282697380", transport.nip)
}

func TestLookupUnsupportedType(t *testing.T) {
	_, err := getReader(&fakeTransport{}).Lookup("123456785", companydata.TypeREGON)
	var typeErr *lookup.UnsupportedIdentifierTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnsupportedIdentifierTypeError, got %v", err)
	}
}

func TestLookupBadChecksum(t *testing.T) {
	_, err := getReader(&fakeTransport{}).Lookup("7282697381", companydata.TypeNIP)
	var validationErr *lookup.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
