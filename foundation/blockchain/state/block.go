package state

import (
	"encoding/json"
	"fmt"

	"github.com/powledger/powledger/foundation/blockchain/database"
)

// ReceiveBlock takes a block shared by another node, validates it against
// the latest block and if that passes, adds the block to the chain. Any
// transaction in the mempool with the same values as one in the block is
// removed.
func (s *State) ReceiveBlock(block database.Block) error {
	s.evHandler("state: ReceiveBlock: started: height[%d]: hash[%s]", block.Height, block.Hash)
	defer s.evHandler("state: ReceiveBlock: completed: height[%d]", block.Height)

	var err error
	doErr := s.do(func() {
		err = s.acceptBlock(block)
	})
	if doErr != nil {
		return doErr
	}

	if err != nil {
		s.evHandler("state: ReceiveBlock: DROP: height[%d]: %s", block.Height, err)
		return err
	}

	s.worker().SignalStartMining()

	return nil
}

// CommitBlock appends a block mined by this node and removes the mempool
// entries it was assembled from. The block is appended even when the chain
// moved on while it was being mined, which leaves a local fork.
func (s *State) CommitBlock(block database.Block, entries []*database.Tx) (forked bool, err error) {
	doErr := s.do(func() {
		latest := s.latestBlock()
		if block.PreviousBlockHash != latest.Hash {
			forked = true
			s.evHandler("state: CommitBlock: WARNING: local fork: height[%d]: tip[%d]: prev[%s]: tip hash[%s]", block.Height, latest.Height, block.PreviousBlockHash, latest.Hash)
		}

		s.chain = append(s.chain, block)
		removed := s.mempool.RemoveEntries(entries)

		s.evHandler("state: CommitBlock: height[%d]: removed[%d]: mempool[%d]", block.Height, removed, s.mempool.Count())
		s.blockEvent(block)
		s.chainChanged()
	})
	if doErr != nil {
		return false, doErr
	}

	s.worker().SignalShareBlock(block)

	return forked, nil
}

// =============================================================================

// acceptBlock must only be called on the owning goroutine.
func (s *State) acceptBlock(block database.Block) error {
	if err := database.AcceptNext(s.latestBlock(), block, s.Difficulty()); err != nil {
		return err
	}

	s.chain = append(s.chain, block)
	removed := s.mempool.RemoveContained(block)

	s.evHandler("state: acceptBlock: height[%d]: removed[%d]: mempool[%d]", block.Height, removed, s.mempool.Count())
	s.blockEvent(block)
	s.chainChanged()

	return nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: %s`, string(blockJSON))
}
