package database

import (
	"bytes"
	"encoding/json"

	"github.com/powledger/powledger/foundation/blockchain/signature"
)

// Address is the hex encoded public key used as an account identifier. The
// empty address is the sender of a reward transaction and is rendered as
// null on the wire.
type Address string

// ToAddress validates the hex string is a public key and converts it to
// an address.
func ToAddress(hex string) (Address, error) {
	if err := signature.ParseAddress(hex); err != nil {
		return "", err
	}

	return Address(hex), nil
}

// IsNull reports whether this is the address of the reward mint.
func (a Address) IsNull() bool {
	return a == ""
}

// MarshalJSON implements the json.Marshaler interface.
func (a Address) MarshalJSON() ([]byte, error) {
	if a.IsNull() {
		return []byte("null"), nil
	}

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(string(a)); err != nil {
		return nil, err
	}

	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

// String renders the address for hashing, where the null address becomes
// the literal "null".
func (a Address) String() string {
	if a.IsNull() {
		return "null"
	}

	return string(a)
}

// short returns a prefix of the address suitable for logging.
func (a Address) short() string {
	s := a.String()
	if len(s) > 10 {
		return s[:10]
	}

	return s
}
