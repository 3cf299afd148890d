// Package worker implements mining, relay sharing, and chain syncing for
// the blockchain.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/powledger/powledger/foundation/blockchain/database"
	"github.com/powledger/powledger/foundation/blockchain/relay"
	"github.com/powledger/powledger/foundation/blockchain/state"
)

// Default intervals used when the configuration leaves them unset.
const (
	defaultPollInterval = time.Second
	defaultSyncInterval = time.Minute
)

// Sender represents the behavior required to deliver envelopes to the relay.
type Sender interface {
	Send(env relay.Envelope) error
}

// Config represents the configuration required to run the worker.
type Config struct {
	State        *state.State
	Sender       Sender
	Miner        database.Address
	SyncWait     time.Duration // Delay before the first mining attempt.
	PollInterval time.Duration // How often the mempool is checked without a signal.
	SyncInterval time.Duration // How often the relay is asked for missing blocks.
	EvHandler    state.EventHandler
}

// =============================================================================

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	state        *state.State
	sender       Sender
	miner        database.Address
	syncWait     time.Duration
	pollInterval time.Duration
	wg           sync.WaitGroup
	ticker       *time.Ticker
	ctx          context.Context
	cancel       context.CancelFunc
	shut         chan struct{}
	startMining  chan bool
	sharing      chan relay.Envelope
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(cfg Config) *Worker {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	syncInterval := cfg.SyncInterval
	if syncInterval <= 0 {
		syncInterval = defaultSyncInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		state:        cfg.State,
		sender:       cfg.Sender,
		miner:        cfg.Miner,
		syncWait:     cfg.SyncWait,
		pollInterval: pollInterval,
		ticker:       time.NewTicker(syncInterval),
		ctx:          ctx,
		cancel:       cancel,
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		sharing:      make(chan relay.Envelope, maxShareRequests),
		evHandler:    ev,
	}

	// Register this worker with the state package.
	cfg.State.RegisterWorker(&w)

	// Ask the relay for the blocks this node is missing before any
	// support G's start.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.syncOperations,
		w.miningOperations,
		w.shareOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: cancel mining")
	w.cancel()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalShareTx queues a new_transaction announcement for the relay.
func (w *Worker) SignalShareTx(tx database.Tx) {
	w.signalShare(relay.TypeNewTransaction, tx)
}

// SignalShareBlock queues a new_block announcement for the relay.
func (w *Worker) SignalShareBlock(block database.Block) {
	w.signalShare(relay.TypeNewBlock, block)
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
