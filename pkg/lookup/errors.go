package lookup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySearchParameters is returned by Search when no filter was given.
var ErrEmptySearchParameters = errors.New("empty search parameters")

// ErrEmptyResponse is returned by the Kas reader when the whitelist answers
// with HTTP 200 but carries no subject. This is the one source where
// "not found" surfaces as an error instead of a valid=false record; the
// behavior is kept from the upstream API semantics.
var ErrEmptyResponse = errors.New("empty response")

// ErrInvalidKey marks an UnavailableError as an authentication failure, so
// callers can tell a rejected API key apart from a generic outage with
// errors.Is.
var ErrInvalidKey = errors.New("invalid API key")

// ValidationError reports a malformed identifier: wrong country code, wrong
// length, failed checksum. It is always raised before any network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validation(format string, a ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, a...)}
}

// UnsupportedIdentifierTypeError is raised when a reader is asked to look up
// an identifier type it has no upstream operation for.
type UnsupportedIdentifierTypeError struct {
	Type string
}

func (e *UnsupportedIdentifierTypeError) Error() string {
	return fmt.Sprintf("identifier type '%s' is not supported", e.Type)
}

// UnsupportedParameterError is raised when a search filter contains keys the
// upstream endpoint cannot handle.
type UnsupportedParameterError struct {
	Parameters []string
}

func (e *UnsupportedParameterError) Error() string {
	return fmt.Sprintf("unsupported search parameters: %s", strings.Join(e.Parameters, ", "))
}

// UnavailableError reports that the upstream service itself failed: transport
// error, SOAP fault, bad credentials or an explicit service-disabled status.
// Detail keeps the upstream's own fault text so callers can pattern-match it
// (VIES returns MS_MAX_CONCURRENT_REQ and TIMEOUT for retryable hiccups).
type UnavailableError struct {
	Source string
	Detail string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: checking status currently not available: %s", e.Source, e.Detail)
	}
	return fmt.Sprintf("%s: checking status currently not available", e.Source)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func Unavailable(source string, detail string, err error) *UnavailableError {
	return &UnavailableError{Source: source, Detail: detail, Err: err}
}

// UnknownSiloError is raised by the Gus reader when a natural-person search
// stub carries a silo id outside the documented 1..4 range, so no full-report
// type can be chosen for it.
type UnknownSiloError struct {
	Silo string
}

func (e *UnknownSiloError) Error() string {
	return fmt.Sprintf("unknown silo id '%s'", e.Silo)
}
