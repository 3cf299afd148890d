// Package database provides the core ledger types for the blockchain. It
// defines transactions, blocks and the rules used to validate a chain and
// derive account balances from it.
package database

import (
	"errors"
	"fmt"
)

// ErrEmptyChain is returned when a chain has no genesis block.
var ErrEmptyChain = errors.New("chain has no blocks")

// ValidateChain walks the chain from the first block after genesis and
// validates every block against its parent. The genesis block is trusted.
func ValidateChain(blocks []Block) error {
	if len(blocks) == 0 {
		return ErrEmptyChain
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1]); err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
	}

	return nil
}

// IsChainValid is the boolean form of ValidateChain.
func IsChainValid(blocks []Block) bool {
	return ValidateChain(blocks) == nil
}

// BalanceOf sums every transaction after genesis that credits or debits
// the address. Balances are not checked on submission so the result can
// be negative.
func BalanceOf(blocks []Block, address Address) int64 {
	if address.IsNull() {
		return 0
	}

	var balance int64
	for i := 1; i < len(blocks); i++ {
		for _, tx := range blocks[i].Data.Trans {
			if tx.To == address {
				balance += int64(tx.Amount)
			}
			if tx.From == address {
				balance -= int64(tx.Amount)
			}
		}
	}

	return balance
}

// AcceptNext applies the rules used when appending a block received from
// another node to the chain ending in latest. On top of the parent checks
// the block must be the next height and solve the puzzle at difficulty.
func AcceptNext(latest Block, b Block, difficulty uint) error {
	if err := b.CheckStructure(); err != nil {
		return err
	}

	if b.Height != latest.Height+1 {
		return fmt.Errorf("%w: got %d, exp %d", ErrInvalidHeight, b.Height, latest.Height+1)
	}

	if err := b.ValidateBlock(latest); err != nil {
		return err
	}

	if !IsHashSolved(difficulty, b.Hash) {
		return fmt.Errorf("%w: difficulty %d: hash %s", ErrUnsolved, difficulty, b.Hash)
	}

	return nil
}
