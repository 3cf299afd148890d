package database

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/powledger/powledger/foundation/blockchain/signature"
)

// Tx is a value transfer between two parties. A transaction with a null
// From is a reward minted to the miner and carries no signature.
type Tx struct {
	From      Address `json:"from"`      // Hex public key of the sender, null for a reward.
	To        Address `json:"to"`        // Hex public key of the receiver.
	Amount    uint64  `json:"amount"`    // Value being transferred.
	TimeStamp int64   `json:"timestamp"` // Unix milliseconds at creation.
	Signature string  `json:"signature"` // Hex DER signature over the transaction hash.
}

// NewTx constructs a new unsigned transaction stamped with the current time.
func NewTx(from Address, to Address, amount uint64) Tx {
	return Tx{
		From:      from,
		To:        to,
		Amount:    amount,
		TimeStamp: time.Now().UnixMilli(),
	}
}

// NewRewardTx constructs the reward transaction for a miner.
func NewRewardTx(miner Address, amount uint64) Tx {
	return NewTx("", miner, amount)
}

// IsReward reports whether the transaction was minted by the system.
func (tx Tx) IsReward() bool {
	return tx.From.IsNull()
}

// message is the exact byte sequence that is hashed and signed. The field
// formatting must stay byte for byte compatible with other nodes.
func (tx Tx) message() []byte {
	var b bytes.Buffer
	b.WriteString(tx.From.String())
	b.WriteString(string(tx.To))
	b.WriteString(strconv.FormatUint(tx.Amount, 10))
	b.WriteString(strconv.FormatInt(tx.TimeStamp, 10))

	return b.Bytes()
}

// Hash returns the hex SHA-256 of the transaction fields.
func (tx Tx) Hash() string {
	sum := sha256.Sum256(tx.message())
	return hex.EncodeToString(sum[:])
}

// Sign uses the identity to sign the transaction and returns the signed
// copy. The identity must own the from address.
func (tx Tx) Sign(id *signature.Identity) (Tx, error) {
	if Address(id.Address()) != tx.From || tx.IsReward() {
		return Tx{}, fmt.Errorf("%w: you cannot sign transactions for other wallets", ErrSigning)
	}

	sig, err := id.Sign(tx.message())
	if err != nil {
		return Tx{}, fmt.Errorf("%w: %s", ErrSigning, err)
	}

	tx.Signature = hex.EncodeToString(sig)

	return tx, nil
}

// Validate checks the signature of the transaction against the from
// address. Rewards are always valid.
func (tx Tx) Validate() error {
	if tx.IsReward() {
		return nil
	}

	if tx.Signature == "" {
		return ErrMissingSignature
	}

	der, err := hex.DecodeString(tx.Signature)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	if err := signature.Verify(string(tx.From), tx.message(), der); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	return nil
}

// IsValid is the boolean form of Validate.
func (tx Tx) IsValid() bool {
	return tx.Validate() == nil
}

// Equals compares every field of the two transactions.
func (tx Tx) Equals(other Tx) bool {
	return tx == other
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.From.short(), tx.To.short(), tx.Amount)
}

// UnmarshalJSON decodes a transported transaction. Records without a to
// address, amount or timestamp are rejected as malformed. Only a null or
// absent from marks a reward; an empty from string is malformed.
func (tx *Tx) UnmarshalJSON(data []byte) error {
	var raw struct {
		From      *string `json:"from"`
		To        *string `json:"to"`
		Amount    *uint64 `json:"amount"`
		TimeStamp *int64  `json:"timestamp"`
		Signature string  `json:"signature"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: transaction: %s", ErrMalformed, err)
	}

	switch {
	case raw.From != nil && *raw.From == "":
		return fmt.Errorf("%w: transaction: empty from", ErrMalformed)
	case raw.To == nil || *raw.To == "":
		return fmt.Errorf("%w: transaction: missing to", ErrMalformed)
	case raw.Amount == nil:
		return fmt.Errorf("%w: transaction: missing amount", ErrMalformed)
	case raw.TimeStamp == nil:
		return fmt.Errorf("%w: transaction: missing timestamp", ErrMalformed)
	}

	var from Address
	if raw.From != nil {
		from = Address(*raw.From)
	}

	*tx = Tx{
		From:      from,
		To:        Address(*raw.To),
		Amount:    *raw.Amount,
		TimeStamp: *raw.TimeStamp,
		Signature: raw.Signature,
	}

	return nil
}

// IsMalformed reports whether the error came from decoding transported data.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
