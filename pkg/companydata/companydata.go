package companydata

// IdentifierType names the registry an identifier belongs to.
type IdentifierType string

const (
	TypeNIP   IdentifierType = "nip"
	TypeREGON IdentifierType = "regon"
	TypeKRS   IdentifierType = "krs"
	TypeVAT   IdentifierType = "vat"
)

// CompanyData is the normalized result of a lookup, whichever source
// produced it. Records are built once per call and never mutated afterwards.
type CompanyData struct {
	Valid               bool                    `json:"valid"`
	Name                string                  `json:"name,omitempty"`
	Identifiers         []CompanyIdentifier     `json:"identifiers"`
	StartDate           string                  `json:"startDate,omitempty"`
	EndDate             string                  `json:"endDate,omitempty"`
	MainAddress         *CompanyAddress         `json:"mainAddress,omitempty"`
	AdditionalAddresses []CompanyAddress        `json:"additionalAddresses,omitempty"`
	PhoneNumbers        []string                `json:"phoneNumbers,omitempty"`
	FaxNumbers          []string                `json:"faxNumbers,omitempty"`
	EmailAddresses      []string                `json:"emailAddresses,omitempty"`
	WebsiteAddresses    []string                `json:"websiteAddresses,omitempty"`
	PkdCodes            []string                `json:"pkdCodes,omitempty"`
	Representatives     []CompanyRepresentative `json:"representatives,omitempty"`
}

// CompanyIdentifier holds one known identifier of a company. Id is always the
// bare national number, never the country-prefixed form the caller may have
// passed to a lookup.
type CompanyIdentifier struct {
	Type IdentifierType `json:"type"`
	Id   string         `json:"id"`
}

type CompanyAddress struct {
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	Address    string `json:"address"`
	City       string `json:"city"`
}

type CompanyRepresentative struct {
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
}

// Equals reports structural equality, used to suppress duplicate
// representative entries returned by an upstream source.
func (r CompanyRepresentative) Equals(other CompanyRepresentative) bool {
	return r.FirstName == other.FirstName &&
		r.MiddleName == other.MiddleName &&
		r.LastName == other.LastName
}

// Invalid builds the record every adapter returns when a source yields no
// matching entry: valid=false with just the queried identifier attached.
func Invalid(typ IdentifierType, id string) *CompanyData {
	return &CompanyData{
		Valid:       false,
		Identifiers: []CompanyIdentifier{{Type: typ, Id: id}},
	}
}
