package public

import (
	"github.com/powledger/powledger/foundation/blockchain/database"
	"github.com/powledger/powledger/foundation/nameservice"
)

// submitTx is the signed transaction a wallet posts to the node.
type submitTx struct {
	From      string  `json:"from" validate:"required,address"`
	To        string  `json:"to" validate:"required,address"`
	Amount    *uint64 `json:"amount" validate:"required"`
	TimeStamp *int64  `json:"timestamp" validate:"required"`
	Signature string  `json:"signature" validate:"required,hexadecimal"`
}

func (s submitTx) toDB() database.Tx {
	return database.Tx{
		From:      database.Address(s.From),
		To:        database.Address(s.To),
		Amount:    *s.Amount,
		TimeStamp: *s.TimeStamp,
		Signature: s.Signature,
	}
}

// =============================================================================

type tx struct {
	Hash      string           `json:"hash"`
	From      database.Address `json:"from"`
	FromName  string           `json:"from_name,omitempty"`
	To        database.Address `json:"to"`
	ToName    string           `json:"to_name,omitempty"`
	Amount    uint64           `json:"amount"`
	TimeStamp int64            `json:"timestamp"`
	Signature string           `json:"signature"`
}

func toTx(ns *nameservice.NameService, tran database.Tx) tx {
	t := tx{
		Hash:      tran.Hash(),
		From:      tran.From,
		To:        tran.To,
		ToName:    ns.Lookup(tran.To),
		Amount:    tran.Amount,
		TimeStamp: tran.TimeStamp,
		Signature: tran.Signature,
	}

	if !tran.IsReward() {
		t.FromName = ns.Lookup(tran.From)
	}

	return t
}

type block struct {
	Height            uint64 `json:"height"`
	PreviousBlockHash string `json:"previous_block_hash"`
	Nonce             uint64 `json:"nonce"`
	TimeStamp         int64  `json:"timestamp"`
	Memo              string `json:"memo,omitempty"`
	Transactions      []tx   `json:"transactions"`
	Hash              string `json:"hash"`
}

func toBlock(ns *nameservice.NameService, blk database.Block) block {
	trans := make([]tx, len(blk.Data.Trans))
	for i, tran := range blk.Data.Trans {
		trans[i] = toTx(ns, tran)
	}

	return block{
		Height:            blk.Height,
		PreviousBlockHash: blk.PreviousBlockHash,
		Nonce:             blk.Nonce,
		TimeStamp:         blk.TimeStamp,
		Memo:              blk.Data.Memo,
		Transactions:      trans,
		Hash:              blk.Hash,
	}
}

type balance struct {
	Address database.Address `json:"address"`
	Name    string           `json:"name"`
	Balance int64            `json:"balance"`
}

type chainStatus struct {
	Height          uint64 `json:"height"`
	LatestBlockHash string `json:"latest_block_hash"`
	Valid           bool   `json:"valid"`
	Uncommitted     int    `json:"uncommitted"`
	Difficulty      uint   `json:"difficulty"`
}
