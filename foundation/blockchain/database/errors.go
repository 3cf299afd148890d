package database

import "errors"

// Signing errors are caller misuse and are returned to the caller.
var (
	ErrSigning = errors.New("signing error")
)

// Validation errors describe a transaction or block that must not be
// accepted into the chain or the pending pool.
var (
	ErrMissingSignature = errors.New("no signature in this transaction")
	ErrInvalidSignature = errors.New("invalid transaction signature")
	ErrInvalidHash      = errors.New("block hash is invalid")
	ErrBrokenLink       = errors.New("previous block hash does not match")
	ErrInvalidHeight    = errors.New("block is not the next height")
	ErrUnsolved         = errors.New("block hash does not meet the difficulty")
)

// ErrMalformed is returned when transported data can't be decoded into the
// domain types.
var ErrMalformed = errors.New("malformed data")
