package state

import (
	"github.com/powledger/powledger/foundation/blockchain/database"
)

// AssembleBlock prepares the next block to be mined by the specified miner.
// When the mempool holds transactions a reward for the miner is added,
// invalid entries are dropped and the remaining entries are returned along
// with an unmined block built on the latest block. The block is not part of
// the chain until CommitBlock is called.
func (s *State) AssembleBlock(miner database.Address) (database.Block, []*database.Tx, bool) {
	var block database.Block
	var entries []*database.Tx

	err := s.do(func() {
		if s.mempool.Count() == 0 {
			return
		}

		s.mempool.Add(database.NewRewardTx(miner, s.genesis.MiningReward))

		if dropped := s.mempool.DropInvalid(s.evHandler); dropped > 0 {
			s.evHandler("state: AssembleBlock: dropped[%d] invalid transactions", dropped)
		}
		s.chainChanged()

		entries = s.mempool.Snapshot()

		trans := make([]database.Tx, len(entries))
		for i, entry := range entries {
			trans[i] = *entry
		}

		latest := s.latestBlock()
		block = database.NewBlock(database.NewPayload(trans), &latest)
	})

	if err != nil || len(entries) == 0 {
		return database.Block{}, nil, false
	}

	s.evHandler("state: AssembleBlock: height[%d]: trans[%d]", block.Height, len(entries))

	return block, entries, true
}
