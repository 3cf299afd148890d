// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Default values used when no genesis file is provided.
const (
	DefaultDifficulty   = 4
	DefaultMiningReward = 50
	DefaultMemo         = "Genesis Block"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`
	Difficulty   uint16    `json:"difficulty"`    // How difficult it needs to be to solve the work problem.
	MiningReward uint64    `json:"mining_reward"` // Reward for mining a block.
	Memo         string    `json:"memo"`          // Payload carried by the genesis block.
}

// Default returns the genesis settings used by every node unless a file
// overrides them.
func Default() Genesis {
	return Genesis{
		Difficulty:   DefaultDifficulty,
		MiningReward: DefaultMiningReward,
		Memo:         DefaultMemo,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. An empty path returns the
// defaults. Fields missing from the file keep their default values.
func Load(path string) (Genesis, error) {
	genesis := Default()
	if path == "" {
		return genesis, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("parsing genesis file %s: %w", path, err)
	}

	if genesis.Difficulty > 64 {
		return Genesis{}, fmt.Errorf("genesis difficulty %d exceeds the hash length", genesis.Difficulty)
	}

	return genesis, nil
}
