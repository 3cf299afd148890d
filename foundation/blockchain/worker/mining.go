package worker

import (
	"time"

	"github.com/powledger/powledger/foundation/blockchain/database"
)

// miningOperations handles mining. Every pass through the select is a
// yield point where the state goroutine drains pending messages before the
// next block is assembled.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	// Give the sync response time to arrive before mining on top of the
	// local genesis.
	if w.syncWait > 0 {
		w.evHandler("worker: miningOperations: waiting %v for sync", w.syncWait)
		select {
		case <-time.After(w.syncWait):
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}

	poll := time.NewTicker(w.pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-w.startMining:
		case <-poll.C:
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}

		if !w.isShutdown() {
			w.runMiningOperation()
		}
	}
}

// runMiningOperation assembles a block from the mempool, solves the proof
// of work and commits the block to the chain.
func (w *Worker) runMiningOperation() {
	block, entries, ok := w.state.AssembleBlock(w.miner)
	if !ok {
		return
	}

	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// After running a mining operation, check if a new operation should
	// be signaled again.
	defer func() {
		length := w.state.MempoolLength()
		if length > 0 {
			w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: Txs[%d]", length)
			w.SignalStartMining()
		}
	}()

	t := time.Now()
	err := block.Mine(w.ctx, w.state.Difficulty(), database.EventHandler(w.evHandler))
	duration := time.Since(t)

	w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

	if err != nil {
		w.evHandler("worker: runMiningOperation: MINING: CANCEL: %s", err)
		return
	}

	forked, err := w.state.CommitBlock(block, entries)
	if err != nil {
		w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		return
	}

	if forked {
		w.evHandler("worker: runMiningOperation: MINING: WARNING: block[%d] mined on a stale tip", block.Height)
	}
}
