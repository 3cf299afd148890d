package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// powCheckInterval is the number of hash attempts between checks of the
// context during a proof of work search.
const powCheckInterval = 100_000

// EventHandler defines a function that is called when events occur while
// mining a block.
type EventHandler func(v string, args ...any)

// =============================================================================

// Block represents a group of transactions chained to a previous block.
type Block struct {
	Height            uint64  `json:"height"`            // Position in the chain, genesis is 0.
	PreviousBlockHash string  `json:"previousBlockHash"` // Hash of the parent block, empty for genesis.
	Nonce             uint64  `json:"nonce"`             // Value identified to solve the hash puzzle.
	TimeStamp         int64   `json:"timestamp"`         // Unix milliseconds at creation.
	Data              Payload `json:"data"`              // Transactions or the genesis memo.
	Hash              string  `json:"hash"`              // Hash of all the fields above.
}

// NewBlock constructs a block chained to the previous block. A nil previous
// block produces a block at height 0. The hash is computed immediately for
// the starting nonce.
func NewBlock(data Payload, prevBlock *Block) Block {
	b := Block{
		Nonce:     1,
		TimeStamp: time.Now().UnixMilli(),
		Data:      data,
	}

	if prevBlock != nil {
		b.Height = prevBlock.Height + 1
		b.PreviousBlockHash = prevBlock.Hash
	}

	b.Hash = b.CalculateHash()

	return b
}

// NewGenesisBlock constructs the first block of a chain carrying a memo.
func NewGenesisBlock(memo string) Block {
	return NewBlock(MemoPayload(memo), nil)
}

// CalculateHash returns the hex SHA-256 of the canonical payload followed
// by the nonce, height, timestamp and previous block hash.
func (b Block) CalculateHash() string {
	data, err := b.Data.Canonical()
	if err != nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(data)
	sb.WriteString(strconv.FormatUint(b.Nonce, 10))
	sb.WriteString(strconv.FormatUint(b.Height, 10))
	sb.WriteString(strconv.FormatInt(b.TimeStamp, 10))
	sb.WriteString(b.PreviousBlockHash)

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Mine performs the proof of work, incrementing the nonce until the hash
// starts with difficulty zeros. The context is only checked to allow the
// process to shut down.
func (b *Block) Mine(ctx context.Context, difficulty uint, ev EventHandler) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("database: Mine: MINING: started: height[%d]: trans[%d]", b.Height, len(b.Data.Trans))

	b.Hash = b.CalculateHash()

	var attempts uint64
	for !IsHashSolved(difficulty, b.Hash) {
		attempts++
		if attempts%powCheckInterval == 0 {
			if ctx.Err() != nil {
				ev("database: Mine: MINING: CANCELLED: attempts[%d]", attempts)
				return ctx.Err()
			}
		}

		b.Nonce++
		b.Hash = b.CalculateHash()
	}

	ev("database: Mine: MINING: SOLVED: height[%d]: nonce[%d]: hash[%s]", b.Height, b.Nonce, b.Hash)

	return nil
}

// ValidateTransactions requires every transaction in the block to be valid.
func (b Block) ValidateTransactions() error {
	for i, tx := range b.Data.Trans {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("tx[%d] %s: %w", i, tx, err)
		}
	}

	return nil
}

// ValidateBlock checks the block against its parent. The stored hash must
// match the recomputed hash, the parent hash must link and every
// transaction must be valid.
func (b Block) ValidateBlock(prevBlock Block) error {
	if hash := b.CalculateHash(); b.Hash != hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrInvalidHash, b.Hash, hash)
	}

	if b.PreviousBlockHash != prevBlock.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrBrokenLink, b.PreviousBlockHash, prevBlock.Hash)
	}

	if err := b.ValidateTransactions(); err != nil {
		return err
	}

	return nil
}

// IsBlockValid is the boolean form of ValidateBlock.
func (b Block) IsBlockValid(prevBlock Block) bool {
	return b.ValidateBlock(prevBlock) == nil
}

// CheckStructure verifies a transported block is well formed without
// checking any of the chain rules.
func (b Block) CheckStructure() error {
	if !isHexHash(b.Hash) {
		return fmt.Errorf("%w: block hash %q", ErrMalformed, b.Hash)
	}

	if b.Height > 0 && !isHexHash(b.PreviousBlockHash) {
		return fmt.Errorf("%w: previous block hash %q", ErrMalformed, b.PreviousBlockHash)
	}

	return nil
}

// Contains reports whether a transaction with identical fields is part of
// the block.
func (b Block) Contains(tx Tx) bool {
	for _, btx := range b.Data.Trans {
		if btx.Equals(tx) {
			return true
		}
	}

	return false
}

// UnmarshalJSON decodes a transported block. The hash and height fields
// must be present.
func (b *Block) UnmarshalJSON(data []byte) error {
	type alias Block
	var raw struct {
		alias
		Height *uint64         `json:"height"`
		Hash   *string         `json:"hash"`
		Data   json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: block: %s", ErrMalformed, err)
	}

	switch {
	case raw.Height == nil:
		return fmt.Errorf("%w: block: missing height", ErrMalformed)
	case raw.Hash == nil:
		return fmt.Errorf("%w: block: missing hash", ErrMalformed)
	}

	// A null data value is rejected by the payload decoder.
	var payload Payload
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, &payload); err != nil {
			return err
		}
	}

	*b = Block(raw.alias)
	b.Height = *raw.Height
	b.Hash = *raw.Hash
	b.Data = payload

	return nil
}

// =============================================================================

// IsHashSolved checks the hash starts with difficulty zeros.
func IsHashSolved(difficulty uint, hash string) bool {
	if uint(len(hash)) < difficulty {
		return false
	}

	for i := uint(0); i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}

// isHexHash checks the value is a 64 character hex string.
func isHexHash(s string) bool {
	if len(s) != 64 {
		return false
	}

	_, err := hex.DecodeString(s)
	return err == nil
}
