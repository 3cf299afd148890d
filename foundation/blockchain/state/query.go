package state

import (
	"github.com/powledger/powledger/foundation/blockchain/database"
)

// LatestBlock returns the block at the tip of the chain.
func (s *State) LatestBlock() database.Block {
	var block database.Block
	s.do(func() {
		block = s.latestBlock()
	})

	return block
}

// Height returns the height of the latest block.
func (s *State) Height() uint64 {
	return s.LatestBlock().Height
}

// Blocks returns a copy of the chain starting at the specified index.
func (s *State) Blocks(from uint64) []database.Block {
	var blocks []database.Block
	s.do(func() {
		if from >= uint64(len(s.chain)) {
			return
		}
		blocks = append([]database.Block(nil), s.chain[from:]...)
	})

	return blocks
}

// Mempool returns a copy of the pending transactions.
func (s *State) Mempool() []database.Tx {
	var trans []database.Tx
	s.do(func() {
		trans = s.mempool.Copy()
	})

	return trans
}

// MempoolLength returns the current length of the mempool.
func (s *State) MempoolLength() int {
	var n int
	s.do(func() {
		n = s.mempool.Count()
	})

	return n
}

// BalanceOf walks the chain and returns the balance of the address.
func (s *State) BalanceOf(address database.Address) int64 {
	var balance int64
	s.do(func() {
		balance = database.BalanceOf(s.chain, address)
	})

	return balance
}

// ValidateChain validates every block of the chain against its parent.
func (s *State) ValidateChain() error {
	var err error
	if doErr := s.do(func() {
		err = database.ValidateChain(s.chain)
	}); doErr != nil {
		return doErr
	}

	return err
}

// IsChainValid is the boolean form of ValidateChain.
func (s *State) IsChainValid() bool {
	return s.ValidateChain() == nil
}
