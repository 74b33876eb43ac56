// Package vies checks EU VAT numbers against the VIES network.
package vies

import (
	"encoding/xml"
	"strings"

	"github.com/hooklift/gowsdl/soap"

	"github.com/aftermarketpl/companylookup/pkg/address"
	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
	"github.com/aftermarketpl/companylookup/pkg/vatid"
)

const DefaultEndpoint = "https://ec.europa.eu/taxation_customs/vies/services/checkVatService"

// Transport performs the checkVat operation. The default implementation
// speaks SOAP; tests substitute their own.
type Transport interface {
	CheckVat(countryCode string, vatNumber string) (*CheckVatResponse, error)
}

type CheckVatResponse struct {
	XMLName     xml.Name `xml:"urn:ec.europa.eu:taxud:vies:services:checkVat:types checkVatResponse"`
	CountryCode string   `xml:"countryCode"`
	VatNumber   string   `xml:"vatNumber"`
	RequestDate string   `xml:"requestDate"`
	Valid       bool     `xml:"valid"`
	Name        string   `xml:"name"`
	Address     string   `xml:"address"`
}

type checkVatRequest struct {
	XMLName     xml.Name `xml:"urn:ec.europa.eu:taxud:vies:services:checkVat:types checkVat"`
	CountryCode string   `xml:"countryCode"`
	VatNumber   string   `xml:"vatNumber"`
}

type soapTransport struct {
	client *soap.Client
}

func (t *soapTransport) CheckVat(countryCode string, vatNumber string) (*CheckVatResponse, error) {
	req := checkVatRequest{CountryCode: countryCode, VatNumber: vatNumber}
	var res CheckVatResponse
	if err := t.client.Call("", &req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Reader looks up companies in VIES. Only VAT identifiers are supported.
type Reader struct {
	transport Transport
}

func New() *Reader {
	return &Reader{
		transport: &soapTransport{client: soap.NewClient(DefaultEndpoint)},
	}
}

// SetTransport replaces the SOAP transport, used by tests.
func (r *Reader) SetTransport(t Transport) {
	r.transport = t
}

func (r *Reader) Lookup(id string, typ companydata.IdentifierType) (*companydata.CompanyData, error) {
	if typ != companydata.TypeVAT {
		return nil, &lookup.UnsupportedIdentifierTypeError{Type: string(typ)}
	}
	if _, err := vatid.Validate(id, companydata.TypeVAT, ""); err != nil {
		return nil, err
	}
	country, number, err := vatid.Resolve(id)
	if err != nil {
		return nil, err
	}

	res, err := r.transport.CheckVat(country, number)
	if err != nil {
		// Keep the upstream fault text: callers distinguish retryable
		// faults like MS_MAX_CONCURRENT_REQ and TIMEOUT by substring.
		return nil, lookup.Unavailable("vies", err.Error(), err)
	}

	if !res.Valid {
		return companydata.Invalid(companydata.TypeVAT, number), nil
	}

	addr, zip, city := address.Extract(country, res.Address)
	addr = strings.TrimSpace(strings.ReplaceAll(addr, "---", ""))

	return &companydata.CompanyData{
		Valid: true,
		Name:  strings.TrimSpace(res.Name),
		Identifiers: []companydata.CompanyIdentifier{
			{Type: companydata.TypeVAT, Id: number},
		},
		MainAddress: &companydata.CompanyAddress{
			Country:    country,
			PostalCode: zip,
			Address:    addr,
			City:       city,
		},
	}, nil
}
