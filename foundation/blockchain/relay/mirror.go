package relay

import (
	"fmt"
	"sync"

	"github.com/powledger/powledger/foundation/blockchain/database"
)

// Mirror is the relay's copy of the blocks announced by nodes. The block
// at each index has a height equal to that index.
type Mirror struct {
	mu     sync.RWMutex
	blocks []database.Block
}

// NewMirror constructs a mirror seeded with the genesis block.
func NewMirror(genesis database.Block) *Mirror {
	return &Mirror{
		blocks: []database.Block{genesis},
	}
}

// Append adds the block when it is well formed and links to the last block
// in the mirror. Proof of work and signatures are left to the nodes.
func (m *Mirror) Append(block database.Block) error {
	if err := block.CheckStructure(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if block.Height != uint64(len(m.blocks)) {
		return fmt.Errorf("%w: got %d, exp %d", database.ErrInvalidHeight, block.Height, len(m.blocks))
	}

	if latest := m.blocks[len(m.blocks)-1]; block.PreviousBlockHash != latest.Hash {
		return fmt.Errorf("%w: got %s, exp %s", database.ErrBrokenLink, block.PreviousBlockHash, latest.Hash)
	}

	m.blocks = append(m.blocks, block)

	return nil
}

// From returns a copy of the blocks starting at the index. An index past
// the end returns an empty list.
func (m *Mirror) From(index uint64) []database.Block {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index >= uint64(len(m.blocks)) {
		return []database.Block{}
	}

	return append([]database.Block(nil), m.blocks[index:]...)
}

// Len returns the number of blocks in the mirror.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blocks)
}

// Latest returns the last block in the mirror.
func (m *Mirror) Latest() database.Block {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.blocks[len(m.blocks)-1]
}
