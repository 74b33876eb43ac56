// Package gus looks up companies in the REGON registry kept by the Polish
// statistical office (BIR 1.1 protocol).
package gus

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/lookup"
	"github.com/aftermarketpl/companylookup/pkg/vatid"
)

var log = logrus.StandardLogger().WithField("package", "gus")

// Transport failure sentinels. The default BIR transport returns these;
// fakes in tests do too.
var (
	ErrNotFound   = errors.New("no matching entity")
	ErrInvalidKey = errors.New("invalid API key")
)

// SearchQuery selects the identifier the search runs on. Exactly one field
// is set per call.
type SearchQuery struct {
	Nip   string
	Regon string
	Krs   string
}

// Transport speaks the BIR protocol: an authenticated session, a search
// operation returning registration stubs, and a full-report operation
// returning rows of prefixed attribute fields.
type Transport interface {
	Login() error
	Search(q SearchQuery) ([]SearchReport, error)
	FullReport(regon string, reportType string) ([]map[string]string, error)
}

// Reader resolves NIP, REGON and KRS identifiers against the registry.
// The session is established lazily on first use and reused afterwards; a
// Reader is not safe for concurrent use.
type Reader struct {
	transport Transport
	loggedIn  bool
}

func New(apiKey string) *Reader {
	return &Reader{transport: newBirTransport(DefaultEndpoint, apiKey)}
}

func (r *Reader) SetTransport(t Transport) {
	r.transport = t
	r.loggedIn = false
}

func (r *Reader) Lookup(id string, typ companydata.IdentifierType) (*companydata.CompanyData, error) {
	number, q, err := buildQuery(id, typ)
	if err != nil {
		return nil, err
	}

	if !r.loggedIn {
		if err := r.transport.Login(); err != nil {
			return nil, readerError(err)
		}
		r.loggedIn = true
	}

	stubs, err := r.transport.Search(q)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return companydata.Invalid(typ, number), nil
		}
		return nil, readerError(err)
	}
	if len(stubs) == 0 {
		return companydata.Invalid(typ, number), nil
	}

	stub := selectReport(stubs)
	data, err := r.mapCompanyData(stub)
	if err != nil {
		return nil, err
	}
	if typ == companydata.TypeKRS {
		data.Identifiers = append(data.Identifiers, companydata.CompanyIdentifier{
			Type: companydata.TypeKRS, Id: number,
		})
	}
	return data, nil
}

func buildQuery(id string, typ companydata.IdentifierType) (string, SearchQuery, error) {
	switch typ {
	case companydata.TypeNIP:
		number, err := vatid.CheckNip(id)
		if err != nil {
			return "", SearchQuery{}, err
		}
		return number, SearchQuery{Nip: number}, nil
	case companydata.TypeREGON:
		number, err := vatid.CheckRegon(id)
		if err != nil {
			return "", SearchQuery{}, err
		}
		return number, SearchQuery{Regon: number}, nil
	case companydata.TypeKRS:
		number, err := vatid.CheckKrs(id)
		if err != nil {
			return "", SearchQuery{}, err
		}
		return number, SearchQuery{Krs: number}, nil
	}
	return "", SearchQuery{}, &lookup.UnsupportedIdentifierTypeError{Type: string(typ)}
}

func readerError(err error) error {
	if errors.Is(err, ErrInvalidKey) {
		return lookup.Unavailable("gus", "invalid API key", lookup.ErrInvalidKey)
	}
	return lookup.Unavailable("gus", err.Error(), err)
}

// selectReport picks the stub of the current registration: the last one
// without an activity end date. When every registration has ended, the last
// stub is used and the record comes back with valid=false.
func selectReport(stubs []SearchReport) SearchReport {
	resolved := stubs[len(stubs)-1]
	for _, stub := range stubs {
		if stub.ActivityEndDate == "" {
			resolved = stub
		}
	}
	return resolved
}

// mapCompanyData runs the multi-step part of the protocol for one stub:
// the activity full report, the classification codes and the representative
// report, all threaded through this call rather than stored on the Reader.
func (r *Reader) mapCompanyData(stub SearchReport) (*companydata.CompanyData, error) {
	data := &companydata.CompanyData{
		Valid: stub.ActivityEndDate == "",
		Name:  stub.Name,
		MainAddress: &companydata.CompanyAddress{
			Country:    "PL",
			PostalCode: stub.ZipCode,
			Address:    composeStreet(stub.Street, stub.PropertyNumber, stub.ApartmentNumber, stub.City),
			City:       stub.City,
		},
	}
	if stub.Nip != "" {
		data.Identifiers = append(data.Identifiers, companydata.CompanyIdentifier{
			Type: companydata.TypeNIP, Id: stub.Nip,
		})
	}
	if stub.Regon != "" {
		data.Identifiers = append(data.Identifiers, companydata.CompanyIdentifier{
			Type: companydata.TypeREGON, Id: stub.Regon,
		})
	}

	reportType, err := activityReportType(stub)
	if err != nil {
		return nil, err
	}
	// A stub without a matching full report still yields a record built
	// from the stub fields alone, the activity details just stay empty.
	activity, err := r.transport.FullReport(stub.Regon, reportType)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, readerError(err)
	}
	if len(activity) > 0 {
		row := activity[0]
		data.StartDate = pick(row, "fiz_dataRozpoczeciaDzialalnosci", "praw_dataRozpoczeciaDzialalnosci")
		data.EndDate = pick(row, "fiz_dataZakonczeniaDzialalnosci", "praw_dataZakonczeniaDzialalnosci")
		if krs := pick(row, "praw_numerWRejestrzeEwidencji"); krs != "" {
			data.Identifiers = append(data.Identifiers, companydata.CompanyIdentifier{
				Type: companydata.TypeKRS, Id: krs,
			})
		}
		if phone := pick(row, "fiz_numerTelefonu", "praw_numerTelefonu"); phone != "" {
			data.PhoneNumbers = append(data.PhoneNumbers, phone)
		}
		if fax := pick(row, "fiz_numerFaksu", "praw_numerFaksu"); fax != "" {
			data.FaxNumbers = append(data.FaxNumbers, fax)
		}
		if email := pick(row, "fiz_adresEmail", "praw_adresEmail"); email != "" {
			data.EmailAddresses = append(data.EmailAddresses, email)
		}
		if site := pick(row, "fiz_adresStronyinternetowej", "praw_adresStronyinternetowej"); site != "" {
			data.WebsiteAddresses = append(data.WebsiteAddresses, site)
		}
	}

	pkd, err := r.fetchPkd(stub)
	if err != nil {
		return nil, err
	}
	data.PkdCodes = pkd

	reps, err := r.fetchRepresentatives(stub)
	if err != nil {
		return nil, err
	}
	data.Representatives = reps

	return data, nil
}

func (r *Reader) fetchPkd(stub SearchReport) ([]string, error) {
	reportType := reportNaturalPkd
	if stub.Type == typeLegal {
		reportType = reportLegalPkd
	}
	rows, err := r.transport.FullReport(stub.Regon, reportType)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, readerError(err)
	}

	var codes []string
	for _, row := range rows {
		if code := pick(row, "fiz_pkd_Kod", "praw_pkdKod"); code != "" {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// fetchRepresentatives pulls the person records for a registration. Natural
// persons get duplicate suppression and records without a surname are
// skipped; for legal persons every partner record is kept as reported.
func (r *Reader) fetchRepresentatives(stub SearchReport) ([]companydata.CompanyRepresentative, error) {
	switch stub.Type {
	case typeNatural:
		rows, err := r.transport.FullReport(stub.Regon, reportNaturalPerson)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, nil
			}
			return nil, readerError(err)
		}
		var reps []companydata.CompanyRepresentative
		for _, row := range rows {
			if row["fiz_nazwisko"] == "" {
				continue
			}
			rep := companydata.CompanyRepresentative{
				FirstName:  row["fiz_imie1"],
				MiddleName: row["fiz_imie2"],
				LastName:   row["fiz_nazwisko"],
			}
			duplicate := false
			for _, existing := range reps {
				if existing.Equals(rep) {
					duplicate = true
					break
				}
			}
			if !duplicate {
				reps = append(reps, rep)
			}
		}
		return reps, nil

	case typeLegal:
		rows, err := r.transport.FullReport(stub.Regon, reportLegalPartners)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, nil
			}
			return nil, readerError(err)
		}
		var reps []companydata.CompanyRepresentative
		for _, row := range rows {
			if row["wspolsc_nazwisko"] == "" {
				continue
			}
			reps = append(reps, companydata.CompanyRepresentative{
				FirstName:  row["wspolsc_imiePierwsze"],
				MiddleName: row["wspolsc_imieDrugie"],
				LastName:   row["wspolsc_nazwisko"],
			})
		}
		return reps, nil
	}

	log.Debugf("no representative report for entity type %q", stub.Type)
	return nil, nil
}

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
