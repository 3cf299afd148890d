// Package errs provides the error types the web layer understands and the
// mapping of ledger errors onto http status codes.
package errs

import (
	"errors"
	"net/http"

	"github.com/powledger/powledger/foundation/blockchain/database"
	"github.com/powledger/powledger/foundation/blockchain/signature"
	"github.com/powledger/powledger/foundation/blockchain/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is an error whose message is safe to show the client, along with
// the status code to respond with.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists in the chain.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns the Trusted error from the chain or nil.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// FromLedger classifies an error returned by the ledger packages. Errors
// caused by the data a client sent become 400, a stopped node becomes 503,
// and anything else is returned untouched.
func FromLedger(err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, database.ErrMalformed),
		errors.Is(err, database.ErrMissingSignature),
		errors.Is(err, database.ErrInvalidSignature),
		errors.Is(err, signature.ErrInvalidAddress),
		errors.Is(err, signature.ErrInvalidSignature):
		return NewTrusted(err, http.StatusBadRequest)

	case errors.Is(err, state.ErrShutdown):
		return NewTrusted(err, http.StatusServiceUnavailable)
	}

	return err
}
