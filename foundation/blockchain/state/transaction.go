package state

import (
	"github.com/powledger/powledger/foundation/blockchain/database"
)

// SubmitTransaction accepts a transaction from a local wallet. It is not
// validated here. Validation happens when the block is assembled locally
// or when other nodes receive it.
func (s *State) SubmitTransaction(tx database.Tx) error {
	var count int
	err := s.do(func() {
		s.mempool.Add(tx)
		count = s.mempool.Count()
		s.chainChanged()
	})
	if err != nil {
		return err
	}

	s.evHandler("state: SubmitTransaction: tx[%s]: mempool[%d]", tx, count)

	s.worker().SignalShareTx(tx)
	s.worker().SignalStartMining()

	return nil
}

// ReceiveTransaction accepts a transaction shared by another node. Invalid
// transactions are dropped and the error returned.
func (s *State) ReceiveTransaction(tx database.Tx) error {
	if err := tx.Validate(); err != nil {
		s.evHandler("state: ReceiveTransaction: DROP: tx[%s]: %s", tx, err)
		return err
	}

	var count int
	err := s.do(func() {
		s.mempool.Add(tx)
		count = s.mempool.Count()
		s.chainChanged()
	})
	if err != nil {
		return err
	}

	s.evHandler("state: ReceiveTransaction: tx[%s]: mempool[%d]", tx, count)

	s.worker().SignalStartMining()

	return nil
}
