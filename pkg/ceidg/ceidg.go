// Package ceidg looks up sole proprietors and civil partnerships in the
// CEIDG business registry.
package ceidg

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hooklift/gowsdl/soap"

	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
	"github.com/aftermarketpl/companylookup/pkg/vatid"
)

const DefaultEndpoint = "https://datastore.ceidg.gov.pl/CEIDG.DataStore/services/DataStoreProvider201901.svc"

// Query is one GetMigrationData filter set. Exactly one field is populated
// per call.
type Query struct {
	NIP   []string
	REGON []string
	NIPSC []string
	Name  []string
}

// Transport performs the GetMigrationData operation and returns the inner
// XML payload the registry wraps into its SOAP result string.
type Transport interface {
	GetMigrationData(q Query) (string, error)
}

type getMigrationData struct {
	XMLName   xml.Name `xml:"http://wsdlDataStoreProvider201901/ GetMigrationData201901"`
	AuthToken string   `xml:"AuthToken"`
	NIP       []string `xml:"NIP,omitempty"`
	REGON     []string `xml:"REGON,omitempty"`
	NIPSC     []string `xml:"NIP_SC,omitempty"`
	Firma     []string `xml:"Firma,omitempty"`
}

type getMigrationDataResponse struct {
	XMLName xml.Name `xml:"http://wsdlDataStoreProvider201901/ GetMigrationData201901Response"`
	Result  string   `xml:"GetMigrationData201901Result"`
}

type soapTransport struct {
	client    *soap.Client
	authToken string
}

func (t *soapTransport) GetMigrationData(q Query) (string, error) {
	req := getMigrationData{
		AuthToken: t.authToken,
		NIP:       q.NIP,
		REGON:     q.REGON,
		NIPSC:     q.NIPSC,
		Firma:     q.Name,
	}
	var res getMigrationDataResponse
	if err := t.client.Call("", &req, &res); err != nil {
		return "", err
	}
	return res.Result, nil
}

// activeStatuses lists every wording the registry uses for a running
// business. The second one marks owners whose whole activity happens through
// civil partnerships; they carry no standalone business but still count as
// active.
var activeStatuses = map[string]bool{
	"Aktywny": true,
	"Działalność jest prowadzona wyłącznie w formie spółki/spółek cywilnych": true,
}

var noTokenRegexp = regexp.MustCompile(`(?i)brak tokenu`)

// Reader queries the CEIDG registry. NIP and REGON lookups are supported,
// plus partnership expansion and search by company name.
type Reader struct {
	transport Transport
}

func New(apiKey string) *Reader {
	return &Reader{
		transport: &soapTransport{
			client:    soap.NewClient(DefaultEndpoint),
			authToken: apiKey,
		},
	}
}

func (r *Reader) SetTransport(t Transport) {
	r.transport = t
}

func (r *Reader) Lookup(id string, typ companydata.IdentifierType) (*companydata.CompanyData, error) {
	number, q, err := buildQuery(id, typ)
	if err != nil {
		return nil, err
	}

	entries, err := r.fetchEntries(q)
	if err != nil {
		return nil, err
	}

	resolved := selectEntry(entries)
	if resolved == nil {
		return companydata.Invalid(typ, number), nil
	}
	return mapEntry(typ, number, resolved), nil
}

// LookupPartnership expands a civil partnership NIP into the linked partner
// registrations. Partnerships can register several entries under one number,
// so the result is a slice.
func (r *Reader) LookupPartnership(id string, typ companydata.IdentifierType) ([]*companydata.CompanyData, error) {
	if typ != companydata.TypeNIP {
		return nil, &lookup.UnsupportedIdentifierTypeError{Type: string(typ)}
	}
	number, err := vatid.CheckNip(id)
	if err != nil {
		return nil, err
	}

	entries, err := r.fetchEntries(Query{NIPSC: []string{number}})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []*companydata.CompanyData{companydata.Invalid(typ, number)}, nil
	}

	companies := make([]*companydata.CompanyData, 0, len(entries))
	for i := range entries {
		companies = append(companies, mapEntry(typ, number, &entries[i]))
	}
	return companies, nil
}

// Search queries the registry by company name. Only the "name" filter is
// supported by the upstream endpoint.
func (r *Reader) Search(params map[string]string) ([]*companydata.CompanyData, error) {
	if len(params) == 0 {
		return nil, lookup.ErrEmptySearchParameters
	}
	var unsupported []string
	for key := range params {
		if key != "name" {
			unsupported = append(unsupported, key)
		}
	}
	if len(unsupported) > 0 {
		sort.Strings(unsupported)
		return nil, &lookup.UnsupportedParameterError{Parameters: unsupported}
	}

	entries, err := r.fetchEntries(Query{Name: []string{params["name"]}})
	if err != nil {
		return nil, err
	}

	companies := make([]*companydata.CompanyData, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		companies = append(companies, mapEntry(companydata.TypeNIP, e.DanePodstawowe.NIP, e))
	}
	return companies, nil
}

func buildQuery(id string, typ companydata.IdentifierType) (string, Query, error) {
	switch typ {
	case companydata.TypeNIP:
		number, err := vatid.CheckNip(id)
		if err != nil {
			return "", Query{}, err
		}
		return number, Query{NIP: []string{number}}, nil
	case companydata.TypeREGON:
		number, err := vatid.CheckRegon(id)
		if err != nil {
			return "", Query{}, err
		}
		return number, Query{REGON: []string{number}}, nil
	}
	return "", Query{}, &lookup.UnsupportedIdentifierTypeError{Type: string(typ)}
}

func (r *Reader) fetchEntries(q Query) ([]entry, error) {
	raw, err := r.transport.GetMigrationData(q)
	if err != nil {
		return nil, lookup.Unavailable("ceidg", err.Error(), err)
	}
	if noTokenRegexp.MatchString(raw) {
		return nil, lookup.Unavailable("ceidg", "incorrect API key", lookup.ErrInvalidKey)
	}

	var payload migrationPayload
	if err := xml.Unmarshal([]byte(raw), &payload); err != nil {
		// The registry answers with plain text instead of XML when it has
		// nothing to report for the filter.
		return nil, nil
	}
	return payload.Entries, nil
}

// selectEntry picks the authoritative record: the last active entry, falling
// back to the last entry overall so callers still get name and address data
// for a closed business. Returns nil only when there are no entries at all.
func selectEntry(entries []entry) *entry {
	if len(entries) == 0 {
		return nil
	}
	var resolved *entry
	for i := range entries {
		if activeStatuses[entries[i].DaneDodatkowe.Status] {
			resolved = &entries[i]
		}
	}
	if resolved == nil {
		resolved = &entries[len(entries)-1]
	}
	return resolved
}

func mapEntry(typ companydata.IdentifierType, number string, e *entry) *companydata.CompanyData {
	data := &companydata.CompanyData{
		Valid: activeStatuses[e.DaneDodatkowe.Status],
		Name:  e.DanePodstawowe.Firma,
		Identifiers: []companydata.CompanyIdentifier{
			{Type: typ, Id: number},
		},
		StartDate:   e.DaneDodatkowe.StartDate,
		EndDate:     e.DaneDodatkowe.EndDate,
		MainAddress: mapAddress(e.DaneAdresowe.Main),
	}

	if nip := e.DanePodstawowe.NIP; nip != "" && typ != companydata.TypeNIP {
		data.Identifiers = append(data.Identifiers, companydata.CompanyIdentifier{
			Type: companydata.TypeNIP, Id: nip,
		})
	}
	if regon := e.DanePodstawowe.REGON; regon != "" && typ != companydata.TypeREGON {
		data.Identifiers = append(data.Identifiers, companydata.CompanyIdentifier{
			Type: companydata.TypeREGON, Id: regon,
		})
	}
	if corr := mapAddress(e.DaneAdresowe.Correspondence); corr != nil {
		data.AdditionalAddresses = append(data.AdditionalAddresses, *corr)
	}
	for _, code := range strings.Split(e.DaneDodatkowe.PkdCodes, ",") {
		if code = strings.TrimSpace(code); code != "" {
			data.PkdCodes = append(data.PkdCodes, code)
		}
	}
	if e.DaneKontaktowe.Phone != "" {
		data.PhoneNumbers = append(data.PhoneNumbers, e.DaneKontaktowe.Phone)
	}
	if e.DaneKontaktowe.Fax != "" {
		data.FaxNumbers = append(data.FaxNumbers, e.DaneKontaktowe.Fax)
	}
	if e.DaneKontaktowe.Email != "" {
		data.EmailAddresses = append(data.EmailAddresses, e.DaneKontaktowe.Email)
	}
	if e.DaneKontaktowe.Website != "" {
		data.WebsiteAddresses = append(data.WebsiteAddresses, e.DaneKontaktowe.Website)
	}
	if e.DanePodstawowe.Nazwisko != "" {
		data.Representatives = append(data.Representatives, companydata.CompanyRepresentative{
			FirstName: e.DanePodstawowe.Imie,
			LastName:  e.DanePodstawowe.Nazwisko,
		})
	}
	return data
}

func mapAddress(a entryAddress) *companydata.CompanyAddress {
	if a.City == "" && a.Street == "" && a.PostalCode == "" {
		return nil
	}
	return &companydata.CompanyAddress{
		Country:    "PL",
		PostalCode: a.PostalCode,
		Address:    composeStreet(a.Street, a.Building, a.Unit, a.City),
		City:       a.City,
	}
}

// composeStreet joins street, building and unit as "<street> <building>/<unit>".
// A missing street degrades to "<city> <building>", as village addresses in
// the registry carry no street at all.
func composeStreet(street, building, unit, city string) string {
	base := street
	if base == "" {
		base = city
	}
	if building == "" {
		return base
	}
	if unit != "" {
		return fmt.Sprintf("%s %s/%s", base, building, unit)
	}
	return fmt.Sprintf("%s %s", base, building)
}
