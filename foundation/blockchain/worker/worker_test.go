package worker_test

import (
	"sync"
	"testing"
	"time"

	"github.com/powledger/powledger/foundation/blockchain/database"
	"github.com/powledger/powledger/foundation/blockchain/genesis"
	"github.com/powledger/powledger/foundation/blockchain/relay"
	"github.com/powledger/powledger/foundation/blockchain/signature"
	"github.com/powledger/powledger/foundation/blockchain/state"
	"github.com/powledger/powledger/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// sender records the envelopes the worker hands to the relay.
type sender struct {
	mu   sync.Mutex
	envs []relay.Envelope
}

func (s *sender) Send(env relay.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.envs = append(s.envs, env)
	return nil
}

func (s *sender) types() map[relay.MessageType]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[relay.MessageType]int)
	for _, env := range s.envs {
		m[env.Type]++
	}

	return m
}

func waitFor(t *testing.T, what string, f func() bool) {
	deadline := time.Now().Add(10 * time.Second)
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("\t%s\tShould %s.", failed, what)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Logf("\t%s\tShould %s.", success, what)
}

// =============================================================================

func Test_MiningLoop(t *testing.T) {
	id, err := signature.FromPrivateHex("9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %s", failed, err)
	}

	gen := genesis.Default()
	gen.Difficulty = 1

	ev := func(v string, args ...any) {
		t.Logf(v, args...)
	}

	s := state.New(state.Config{Genesis: gen, EvHandler: ev})
	t.Cleanup(func() { s.Shutdown() })

	snd := sender{}

	worker.Run(worker.Config{
		State:        s,
		Sender:       &snd,
		Miner:        "miner",
		PollInterval: 10 * time.Millisecond,
		EvHandler:    ev,
	})

	t.Log("Given the need to mine submitted transactions.")
	{
		waitFor(t, "request a sync from the relay", func() bool {
			types := snd.types()
			return types[relay.TypeNodeSync] == 1 && types[relay.TypeMaxHeight] == 1
		})

		tx, err := database.NewTx(database.Address(id.Address()), "bob", 10).Sign(id)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the transaction: %s", failed, err)
		}

		if err := s.SubmitTransaction(tx); err != nil {
			t.Fatalf("\t%s\tShould be able to submit the transaction: %s", failed, err)
		}

		waitFor(t, "mine the transaction into a block", func() bool {
			return s.Height() == 1
		})

		waitFor(t, "announce the transaction and the block", func() bool {
			types := snd.types()
			return types[relay.TypeNewTransaction] == 1 && types[relay.TypeNewBlock] == 1
		})

		if got := s.BalanceOf("miner"); got != 50 {
			t.Fatalf("\t%s\tShould reward the miner: got %d", failed, got)
		}
		t.Logf("\t%s\tShould reward the miner.", success)

		if got := s.BalanceOf("bob"); got != 10 {
			t.Fatalf("\t%s\tShould credit the receiver: got %d", failed, got)
		}
		t.Logf("\t%s\tShould credit the receiver.", success)

		if !s.IsChainValid() {
			t.Fatalf("\t%s\tShould keep a valid chain.", failed)
		}
		t.Logf("\t%s\tShould keep a valid chain.", success)
	}
}

func Test_SyncWait(t *testing.T) {
	gen := genesis.Default()
	gen.Difficulty = 1

	s := state.New(state.Config{Genesis: gen})

	worker.Run(worker.Config{
		State:        s,
		Miner:        "miner",
		SyncWait:     time.Hour,
		PollInterval: 10 * time.Millisecond,
	})

	if err := s.SubmitTransaction(database.NewRewardTx("seed", 1)); err != nil {
		t.Fatalf("Should be able to submit the transaction: %s", err)
	}

	time.Sleep(100 * time.Millisecond)

	if s.Height() != 0 {
		t.Fatalf("Should not mine before the sync wait has passed: height %d", s.Height())
	}

	done := make(chan struct{})
	go func() {
		s.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Should shut down while waiting to mine.")
	}
}

func Test_RunWhileReceiving(t *testing.T) {
	gen := genesis.Default()
	gen.Difficulty = 1

	s := state.New(state.Config{Genesis: gen})
	t.Cleanup(func() { s.Shutdown() })

	t.Log("Given the need to start the worker while peers are sending transactions.")
	{
		stop := make(chan struct{})
		done := make(chan struct{})

		go func() {
			defer close(done)
			for {
				select {
				case <-stop:
					return
				default:
				}

				if err := s.ReceiveTransaction(database.NewRewardTx("peer", 1)); err != nil {
					return
				}
			}
		}()

		worker.Run(worker.Config{
			State:        s,
			Miner:        "miner",
			SyncWait:     time.Hour,
			PollInterval: 10 * time.Millisecond,
		})

		time.Sleep(50 * time.Millisecond)
		close(stop)
		<-done

		if s.MempoolLength() == 0 {
			t.Fatalf("\t%s\tShould keep the received transactions in the mempool.", failed)
		}
		t.Logf("\t%s\tShould keep the received transactions in the mempool.", success)
	}
}

func Test_ShutdownTwice(t *testing.T) {
	gen := genesis.Default()
	gen.Difficulty = 1

	s := state.New(state.Config{Genesis: gen})

	worker.Run(worker.Config{
		State:        s,
		Miner:        "miner",
		SyncWait:     time.Hour,
		PollInterval: 10 * time.Millisecond,
	})

	t.Log("Given the need to shut down a node more than once.")
	{
		s.Shutdown()
		t.Logf("\t%s\tShould shut down the state and the worker.", success)

		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("\t%s\tShould not panic on a second shutdown: %v", failed, r)
			}
		}()

		s.Shutdown()
		t.Logf("\t%s\tShould not panic on a second shutdown.", success)
	}
}
