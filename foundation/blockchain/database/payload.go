package database

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is the data carried by a block. Mined blocks carry an ordered
// list of transactions. The genesis block carries a free form memo.
type Payload struct {
	Memo  string
	Trans []Tx
}

// NewPayload constructs a payload from the set of transactions.
func NewPayload(trans []Tx) Payload {
	return Payload{Trans: trans}
}

// MemoPayload constructs a payload holding only a memo.
func MemoPayload(memo string) Payload {
	return Payload{Memo: memo}
}

// IsMemo reports whether the payload is a memo rather than transactions.
func (p Payload) IsMemo() bool {
	return p.Memo != "" && len(p.Trans) == 0
}

// Canonical returns the serialized form of the payload that is hashed into
// the block. Transactions serialize as a JSON array with their fields in
// declaration order and a memo serializes as a JSON string.
func (p Payload) Canonical() (string, error) {
	var v any = p.Trans
	switch {
	case p.IsMemo():
		v = p.Memo
	case p.Trans == nil:
		v = []Tx{}
	}

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}

	return string(bytes.TrimRight(b.Bytes(), "\n")), nil
}

// MarshalJSON implements the json.Marshaler interface.
func (p Payload) MarshalJSON() ([]byte, error) {
	s, err := p.Canonical()
	if err != nil {
		return nil, err
	}

	return []byte(s), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. The shape of the
// JSON value decides the payload kind.
func (p *Payload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	switch data[0] {
	case '"':
		var memo string
		if err := json.Unmarshal(data, &memo); err != nil {
			return fmt.Errorf("%w: payload memo: %s", ErrMalformed, err)
		}
		*p = MemoPayload(memo)

	case '[':
		var trans []Tx
		if err := json.Unmarshal(data, &trans); err != nil {
			return fmt.Errorf("%w: payload transactions: %s", ErrMalformed, err)
		}
		*p = NewPayload(trans)

	default:
		return fmt.Errorf("%w: unexpected payload %.16s", ErrMalformed, data)
	}

	return nil
}
