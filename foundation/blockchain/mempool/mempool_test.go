package mempool_test

import (
	"context"
	"testing"

	"github.com/powledger/powledger/foundation/blockchain/database"
	"github.com/powledger/powledger/foundation/blockchain/mempool"
	"github.com/powledger/powledger/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func sign(t *testing.T, to database.Address, amount uint64) database.Tx {
	id, err := signature.FromPrivateHex("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %s", failed, err)
	}

	tx, err := database.NewTx(database.Address(id.Address()), to, amount).Sign(id)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign transaction: %s", failed, err)
	}

	return tx
}

func TestCRUD(t *testing.T) {
	t.Log("Given the need to validate mempool api.")
	{
		mp := mempool.New()

		tx1 := sign(t, "bob", 10)
		tx2 := sign(t, "carol", 20)

		mp.Add(tx1)
		dup := mp.Add(tx1)
		mp.Add(tx2)

		if mp.Count() != 3 {
			t.Fatalf("\t%s\tShould keep duplicate submissions: got %d", failed, mp.Count())
		}
		t.Logf("\t%s\tShould keep duplicate submissions.", success)

		for i, exp := range []database.Tx{tx1, tx1, tx2} {
			if got := mp.Copy()[i]; !got.Equals(exp) {
				t.Fatalf("\t%s\tShould get back transactions in order: index %d", failed, i)
			}
		}
		t.Logf("\t%s\tShould get back transactions in order.", success)

		if n := mp.RemoveEntries([]*database.Tx{dup}); n != 1 || mp.Count() != 2 {
			t.Fatalf("\t%s\tShould remove only the identified entry: removed %d, left %d", failed, n, mp.Count())
		}
		t.Logf("\t%s\tShould remove only the identified entry.", success)

		if !mp.Copy()[0].Equals(tx1) {
			t.Fatalf("\t%s\tShould keep the equal transaction.", failed)
		}
		t.Logf("\t%s\tShould keep the equal transaction.", success)

		mp.Truncate()
		if mp.Count() != 0 {
			t.Fatalf("\t%s\tShould be able to truncate the pool.", failed)
		}
		t.Logf("\t%s\tShould be able to truncate the pool.", success)
	}
}

func TestSnapshotIdentity(t *testing.T) {
	mp := mempool.New()
	mp.Add(sign(t, "bob", 10))
	mp.Add(database.NewRewardTx("miner", 50))

	snapshot := mp.Snapshot()

	// Arrives while the snapshot is being mined.
	late := sign(t, "carol", 5)
	mp.Add(late)

	if n := mp.RemoveEntries(snapshot); n != 2 {
		t.Fatalf("Should remove the snapshotted entries: got %d", n)
	}

	left := mp.Copy()
	if len(left) != 1 || !left[0].Equals(late) {
		t.Fatalf("Should keep the transaction added after the snapshot: %v", left)
	}
}

func TestDropInvalid(t *testing.T) {
	mp := mempool.New()

	good := sign(t, "bob", 10)
	bad := good
	bad.Amount = 999

	mp.Add(good)
	mp.Add(bad)
	mp.Add(database.NewTx("alice", "bob", 1))
	mp.Add(database.NewRewardTx("miner", 50))

	var events int
	ev := func(v string, args ...any) { events++ }

	if n := mp.DropInvalid(ev); n != 2 {
		t.Fatalf("Should drop the tampered and unsigned transactions: got %d", n)
	}

	if events != 2 {
		t.Fatalf("Should report every dropped transaction: got %d", events)
	}

	if mp.Count() != 2 {
		t.Fatalf("Should keep the valid transaction and the reward: got %d", mp.Count())
	}
}

func TestRemoveContained(t *testing.T) {
	mp := mempool.New()

	tx1 := sign(t, "bob", 10)
	tx2 := sign(t, "carol", 20)
	mp.Add(tx1)
	mp.Add(tx2)

	genesis := database.NewGenesisBlock("Genesis Block")
	b := database.NewBlock(database.NewPayload([]database.Tx{tx1}), &genesis)
	if err := b.Mine(context.Background(), 1, nil); err != nil {
		t.Fatalf("Should be able to mine the block: %s", err)
	}

	if n := mp.RemoveContained(b); n != 1 {
		t.Fatalf("Should remove the mined transaction: got %d", n)
	}

	if left := mp.Copy(); len(left) != 1 || !left[0].Equals(tx2) {
		t.Fatalf("Should keep the unmined transaction: %v", left)
	}
}
