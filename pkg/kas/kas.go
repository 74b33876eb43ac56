// Package kas queries the official VAT-payer whitelist kept by the national
// revenue administration.
package kas

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
	"github.com/aftermarketpl/companylookup/pkg/vatid"
)

const DefaultEndpoint = "https://wl-api.mf.gov.pl"

// StatusActive is the whitelist wording for an active VAT payer.
const StatusActive = "Czynny"

type subject struct {
	Name                  string           `json:"name"`
	Nip                   string           `json:"nip"`
	Regon                 string           `json:"regon"`
	Krs                   string           `json:"krs"`
	StatusVat             string           `json:"statusVat"`
	ResidenceAddress      string           `json:"residenceAddress"`
	WorkingAddress        string           `json:"workingAddress"`
	RegistrationLegalDate string           `json:"registrationLegalDate"`
	Representatives       []representative `json:"representatives"`
}

type representative struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type searchResponse struct {
	Result struct {
		Subject *subject `json:"subject"`
	} `json:"result"`
}

// Reader looks up companies on the whitelist. Unlike the registry readers,
// a well-formed answer without a subject is an error (lookup.ErrEmptyResponse)
// rather than a valid=false record; the whitelist API models "not listed"
// that way and the behavior is kept.
type Reader struct {
	http     *http.Client
	endpoint *url.URL
}

func New() (*Reader, error) {
	return NewWithEndpoint(DefaultEndpoint)
}

func NewWithEndpoint(endpoint string) (*Reader, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scheme %s is not supported", u.Scheme)
	}
	return &Reader{
		endpoint: u,
		http:     http.DefaultClient,
	}, nil
}

// SetHttpTransport replaces the underlying HTTP transport, used by tests.
func (r *Reader) SetHttpTransport(transport http.RoundTripper) {
	r.http.Transport = transport
}

func (r *Reader) Lookup(id string, typ companydata.IdentifierType) (*companydata.CompanyData, error) {
	return r.LookupByDate(id, time.Now().Format("2006-01-02"), typ)
}

// LookupByDate checks the whitelist as of the given day (YYYY-MM-DD).
func (r *Reader) LookupByDate(id string, date string, typ companydata.IdentifierType) (*companydata.CompanyData, error) {
	var route, number string
	switch typ {
	case companydata.TypeNIP:
		nip, err := vatid.CheckNip(id)
		if err != nil {
			return nil, err
		}
		route, number = "nip", nip
	case companydata.TypeREGON:
		regon, err := vatid.CheckRegon(id)
		if err != nil {
			return nil, err
		}
		route, number = "regon", regon
	default:
		return nil, &lookup.UnsupportedIdentifierTypeError{Type: string(typ)}
	}

	searchUrl, err := r.endpoint.Parse(fmt.Sprintf("/api/search/%s/%s", route, number))
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL: %v", err)
	}
	query := searchUrl.Query()
	query.Set("date", date)
	searchUrl.RawQuery = query.Encode()

	res, err := r.http.Get(searchUrl.String())
	if err != nil {
		return nil, lookup.Unavailable("kas", err.Error(), err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, lookup.Unavailable("kas", fmt.Sprintf("unexpected status %s", res.Status), nil)
	}

	var payload searchResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, lookup.Unavailable("kas", fmt.Sprintf("invalid json response: %v", err), err)
	}
	if payload.Result.Subject == nil {
		return nil, fmt.Errorf("kas: %w", lookup.ErrEmptyResponse)
	}

	return mapSubject(payload.Result.Subject), nil
}

func mapSubject(s *subject) *companydata.CompanyData {
	data := &companydata.CompanyData{
		Valid:     s.StatusVat == StatusActive,
		Name:      s.Name,
		StartDate: s.RegistrationLegalDate,
	}

	if s.Nip != "" {
		data.Identifiers = append(data.Identifiers, companydata.CompanyIdentifier{
			Type: companydata.TypeNIP, Id: s.Nip,
		})
	}
	if s.Regon != "" {
		data.Identifiers = append(data.Identifiers, companydata.CompanyIdentifier{
			Type: companydata.TypeREGON, Id: s.Regon,
		})
	}
	if s.Krs != "" {
		data.Identifiers = append(data.Identifiers, companydata.CompanyIdentifier{
			Type: companydata.TypeKRS, Id: s.Krs,
		})
	}

	// The residence address is preferred as the main one; when it does not
	// parse, the working address takes its place instead of becoming an
	// additional address.
	residence := parseAddress(s.ResidenceAddress)
	working := parseAddress(s.WorkingAddress)
	if residence != nil {
		data.MainAddress = residence
		if working != nil {
			data.AdditionalAddresses = append(data.AdditionalAddresses, *working)
		}
	} else {
		data.MainAddress = working
	}

	for _, rep := range s.Representatives {
		data.Representatives = append(data.Representatives, companydata.CompanyRepresentative{
			FirstName: rep.FirstName,
			LastName:  rep.LastName,
		})
	}
	return data
}

// The whitelist serves addresses as single free-text lines in the Polish
// "street, 00-000 City" shape.
var addressRegexp = regexp.MustCompile(`^(?P<address>.*?)(,)?\s+(?P<postcode>\d{2}-\d{3})\s+(?P<city>.*)$`)

func parseAddress(text string) *companydata.CompanyAddress {
	m := addressRegexp.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &companydata.CompanyAddress{
		Country:    "PL",
		PostalCode: m[addressRegexp.SubexpIndex("postcode")],
		Address:    m[addressRegexp.SubexpIndex("address")],
		City:       m[addressRegexp.SubexpIndex("city")],
	}
}
