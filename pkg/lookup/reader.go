package lookup

import (
	"github.com/aftermarketpl/companylookup/pkg/companydata"
)

// Reader is the uniform lookup contract every source adapter satisfies.
// Each adapter documents which identifier types it accepts; asking for any
// other type yields an UnsupportedIdentifierTypeError before any network
// call is made.
type Reader interface {
	Lookup(id string, typ companydata.IdentifierType) (*companydata.CompanyData, error)
}
