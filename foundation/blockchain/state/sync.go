package state

import (
	"fmt"

	"github.com/powledger/powledger/foundation/blockchain/database"
)

// ApplySync processes the blocks returned by the relay for a sync request.
// A node that only holds its genesis block adopts the first block of the
// response as its genesis when it is a well formed height 0 block. Then
// every block is validated against the latest block and appended if it
// passes. The number of blocks added is returned.
func (s *State) ApplySync(blocks []database.Block) (int, error) {
	s.evHandler("state: ApplySync: started: blocks[%d]", len(blocks))

	var added int
	err := s.do(func() {
		if len(blocks) == 0 {
			return
		}

		if s.latestBlock().Height == 0 {
			if err := adoptableGenesis(blocks[0]); err != nil {
				s.evHandler("state: ApplySync: keep local genesis: %s", err)
			} else {
				s.chain = []database.Block{blocks[0]}
				s.evHandler("state: ApplySync: adopted genesis: hash[%s]", blocks[0].Hash)
				s.chainChanged()
				blocks = blocks[1:]
			}
		}

		for _, block := range blocks {
			if err := s.acceptBlock(block); err != nil {
				s.evHandler("state: ApplySync: skip: height[%d]: %s", block.Height, err)
				continue
			}
			added++
		}
	})
	if err != nil {
		return 0, err
	}

	s.evHandler("state: ApplySync: completed: added[%d]", added)

	if added > 0 {
		s.worker().SignalStartMining()
	}

	return added, nil
}

// adoptableGenesis checks a remote block can replace the local genesis.
func adoptableGenesis(block database.Block) error {
	if block.Height != 0 {
		return fmt.Errorf("first block is at height %d", block.Height)
	}

	if err := block.CheckStructure(); err != nil {
		return err
	}

	if hash := block.CalculateHash(); hash != block.Hash {
		return fmt.Errorf("%w: got %s, exp %s", database.ErrInvalidHash, block.Hash, hash)
	}

	return nil
}
