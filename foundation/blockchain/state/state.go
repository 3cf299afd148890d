// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/powledger/powledger/foundation/blockchain/database"
	"github.com/powledger/powledger/foundation/blockchain/genesis"
	"github.com/powledger/powledger/foundation/blockchain/mempool"
)

// ErrShutdown is returned when an operation is requested after the state
// has been shut down.
var ErrShutdown = errors.New("state is shut down")

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and sharing with the relay.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalShareTx(tx database.Tx)
	SignalShareBlock(block database.Block)
}

// =============================================================================

// ChainHandler is called on the owning goroutine after the chain or the
// mempool changes.
type ChainHandler func(height uint64, mempool int)

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis      genesis.Genesis
	EvHandler    EventHandler
	ChainHandler ChainHandler
}

// State manages the blockchain held in memory. The chain and the mempool
// are owned by a single goroutine. Every read and write is a function sent
// to that goroutine, so no locks guard the data.
type State struct {
	evHandler    EventHandler
	chainHandler ChainHandler
	genesis      genesis.Genesis

	ops  chan func()
	shut chan struct{}
	once sync.Once
	wg   sync.WaitGroup

	chain   []database.Block
	mempool *mempool.Mempool

	// Set by RegisterWorker while relay traffic may already be arriving.
	wrk atomic.Pointer[workerRef]
}

// workerRef lets an interface value live behind an atomic pointer.
type workerRef struct {
	Worker
}

// New constructs a new blockchain seeded with a locally generated genesis
// block and starts the goroutine that owns it.
func New(cfg Config) *State {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	gen := database.NewGenesisBlock(cfg.Genesis.Memo)

	ch := cfg.ChainHandler
	if ch == nil {
		ch = func(uint64, int) {}
	}

	s := State{
		evHandler:    ev,
		chainHandler: ch,
		genesis:      cfg.Genesis,
		ops:          make(chan func()),
		shut:         make(chan struct{}),
		chain:        []database.Block{gen},
		mempool:      mempool.New(),
	}

	// The worker is replaced by the call to worker.Run.
	s.wrk.Store(&workerRef{nopWorker{}})
	s.chainHandler(gen.Height, 0)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()

	ev("state: New: genesis: hash[%s]: difficulty[%d]: reward[%d]", gen.Hash, cfg.Genesis.Difficulty, cfg.Genesis.MiningReward)

	return &s
}

// Shutdown stops the worker and then the goroutine owning the chain.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	s.once.Do(func() {
		s.worker().Shutdown()
		close(s.shut)
	})
	s.wg.Wait()

	return nil
}

// RegisterWorker installs the worker that mines and shares with the relay.
// It is safe to call while other goroutines are using the state.
func (s *State) RegisterWorker(w Worker) {
	s.wrk.Store(&workerRef{w})
}

// worker returns the registered worker.
func (s *State) worker() Worker {
	return s.wrk.Load().Worker
}

// Genesis returns the genesis settings in use.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// Difficulty returns the number of leading zeros a block hash needs.
func (s *State) Difficulty() uint {
	return uint(s.genesis.Difficulty)
}

// =============================================================================

// run executes every operation sent to the state until shutdown.
func (s *State) run() {
	s.evHandler("state: run: G started")
	defer s.evHandler("state: run: G completed")

	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.shut:
			return
		}
	}
}

// do executes the function on the goroutine that owns the chain and waits
// for it to complete.
func (s *State) do(f func()) error {
	done := make(chan struct{})
	op := func() {
		defer close(done)
		f()
	}

	select {
	case s.ops <- op:
	case <-s.shut:
		return ErrShutdown
	}

	<-done
	return nil
}

// chainChanged must only be called on the owning goroutine.
func (s *State) chainChanged() {
	s.chainHandler(s.latestBlock().Height, s.mempool.Count())
}

// latestBlock must only be called on the owning goroutine.
func (s *State) latestBlock() database.Block {
	return s.chain[len(s.chain)-1]
}

// =============================================================================

// nopWorker is used until a worker registers itself.
type nopWorker struct{}

func (nopWorker) Shutdown()                         {}
func (nopWorker) SignalStartMining()                {}
func (nopWorker) SignalShareTx(tx database.Tx)      {}
func (nopWorker) SignalShareBlock(b database.Block) {}
