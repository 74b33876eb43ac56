// Package vat queries the Polish real-time VAT taxpayer status service.
package vat

import (
	"encoding/xml"
	"time"

	"github.com/hooklift/gowsdl/soap"

	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
	"github.com/aftermarketpl/companylookup/pkg/vatid"
)

const DefaultEndpoint = "https://sprawdz-status-vat.mf.gov.pl"

// Status codes returned by the service. Anything other than CodeActive means
// the NIP is not an active VAT payer; CodeDisabled means the service itself
// refused to answer.
const (
	CodeActive   = "C"
	CodeDisabled = "X"
)

type StatusResponse struct {
	Code    string
	Message string
}

// Transport performs the status-check operations against the service.
type Transport interface {
	CheckNip(nip string) (*StatusResponse, error)
	CheckNipOnDate(nip string, date string) (*StatusResponse, error)
}

type sprawdzNIP struct {
	XMLName xml.Name `xml:"http://www.mf.gov.pl/uslugiBiznesowe/uslugiESB/AP/VerificationStatusVAT/2018/03/definitions SprawdzNIP"`
	NIP     string   `xml:"NIP"`
}

type sprawdzNIPNaDzien struct {
	XMLName xml.Name `xml:"http://www.mf.gov.pl/uslugiBiznesowe/uslugiESB/AP/VerificationStatusVAT/2018/03/definitions SprawdzNIPNaDzien"`
	NIP     string   `xml:"NIP"`
	Data    string   `xml:"Data"`
}

type sprawdzNIPResponse struct {
	XMLName   xml.Name `xml:"http://www.mf.gov.pl/uslugiBiznesowe/uslugiESB/AP/VerificationStatusVAT/2018/03/definitions SprawdzNIPResponse"`
	Kod       string   `xml:"Kod"`
	Komunikat string   `xml:"Komunikat"`
}

type sprawdzNIPNaDzienResponse struct {
	XMLName   xml.Name `xml:"http://www.mf.gov.pl/uslugiBiznesowe/uslugiESB/AP/VerificationStatusVAT/2018/03/definitions SprawdzNIPNaDzienResponse"`
	Kod       string   `xml:"Kod"`
	Komunikat string   `xml:"Komunikat"`
}

type soapTransport struct {
	client *soap.Client
}

func (t *soapTransport) CheckNip(nip string) (*StatusResponse, error) {
	var res sprawdzNIPResponse
	if err := t.client.Call("", &sprawdzNIP{NIP: nip}, &res); err != nil {
		return nil, err
	}
	return &StatusResponse{Code: res.Kod, Message: res.Komunikat}, nil
}

func (t *soapTransport) CheckNipOnDate(nip string, date string) (*StatusResponse, error) {
	var res sprawdzNIPNaDzienResponse
	if err := t.client.Call("", &sprawdzNIPNaDzien{NIP: nip, Data: date}, &res); err != nil {
		return nil, err
	}
	return &StatusResponse{Code: res.Kod, Message: res.Komunikat}, nil
}

// Reader checks the current VAT-payer status of a NIP. The service returns
// no name or address data, only the status code.
type Reader struct {
	transport Transport
}

func New() *Reader {
	return &Reader{
		transport: &soapTransport{client: soap.NewClient(DefaultEndpoint)},
	}
}

func (r *Reader) SetTransport(t Transport) {
	r.transport = t
}

func (r *Reader) Lookup(id string, typ companydata.IdentifierType) (*companydata.CompanyData, error) {
	return r.lookup(id, typ, "")
}

// LookupByDate checks the VAT-payer status as of the given day (YYYY-MM-DD).
func (r *Reader) LookupByDate(id string, date string, typ companydata.IdentifierType) (*companydata.CompanyData, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return r.lookup(id, typ, date)
}

func (r *Reader) lookup(id string, typ companydata.IdentifierType, date string) (*companydata.CompanyData, error) {
	if typ != companydata.TypeNIP {
		return nil, &lookup.UnsupportedIdentifierTypeError{Type: string(typ)}
	}
	nip, err := vatid.CheckNip(id)
	if err != nil {
		return nil, err
	}

	var res *StatusResponse
	if date == "" {
		res, err = r.transport.CheckNip(nip)
	} else {
		res, err = r.transport.CheckNipOnDate(nip, date)
	}
	if err != nil {
		return nil, lookup.Unavailable("vat", err.Error(), err)
	}

	if res.Code == CodeDisabled {
		// The service explicitly reports itself as disabled. This is not
		// the same as the NIP being inactive.
		return nil, lookup.Unavailable("vat", res.Message, nil)
	}

	return &companydata.CompanyData{
		Valid: res.Code == CodeActive,
		Identifiers: []companydata.CompanyIdentifier{
			{Type: companydata.TypeNIP, Id: nip},
		},
	}, nil
}
