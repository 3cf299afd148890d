package relay_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/powledger/powledger/foundation/blockchain/database"
	"github.com/powledger/powledger/foundation/blockchain/relay"
	"github.com/powledger/powledger/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// ledger records what the relay client delivers.
type ledger struct {
	trans  chan database.Tx
	blocks chan database.Block
	syncs  chan []database.Block
}

func newLedger() *ledger {
	return &ledger{
		trans:  make(chan database.Tx, 10),
		blocks: make(chan database.Block, 10),
		syncs:  make(chan []database.Block, 10),
	}
}

func (l *ledger) ReceiveTransaction(tx database.Tx) error {
	l.trans <- tx
	return nil
}

func (l *ledger) ReceiveBlock(block database.Block) error {
	l.blocks <- block
	return nil
}

func (l *ledger) ApplySync(blocks []database.Block) (int, error) {
	l.syncs <- blocks
	return len(blocks), nil
}

// =============================================================================

func startHub(t *testing.T, genesis database.Block) (*relay.Hub, string) {
	hub := relay.NewHub(relay.NewMirror(genesis), nil)

	var upgrader websocket.Upgrader
	f := func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, r.RemoteAddr)
	}

	srv := httptest.NewServer(http.HandlerFunc(f))
	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
	})

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitPeers(t *testing.T, hub *relay.Hub, n int) {
	deadline := time.Now().Add(5 * time.Second)
	for len(hub.Status().KnownPeers) != n {
		if time.Now().After(deadline) {
			t.Fatalf("\t%s\tShould see %d connected peers: got %d", failed, n, len(hub.Status().KnownPeers))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) relay.Envelope {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to read a message: %s", failed, err)
	}

	env, err := relay.Decode(msg)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to decode the message: %s", failed, err)
	}

	return env
}

func send(t *testing.T, conn *websocket.Conn, typ relay.MessageType, data any) {
	env, err := relay.NewEnvelope(typ, data)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build the envelope: %s", failed, err)
	}

	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("\t%s\tShould be able to send %s: %s", failed, typ, err)
	}
}

// =============================================================================

func Test_Hub(t *testing.T) {
	genesis := database.NewGenesisBlock("Genesis Block")
	hub, url := startHub(t, genesis)

	t.Log("Given the need to relay messages between nodes.")
	{
		raw, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to connect a raw node: %s", failed, err)
		}
		defer raw.Close()

		l := newLedger()
		client, err := relay.Dial(context.Background(), url, l, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to connect a client node: %s", failed, err)
		}
		defer client.Close()

		waitPeers(t, hub, 2)
		t.Logf("\t%s\tShould be able to connect two nodes.", success)

		send(t, raw, relay.TypeMaxHeight, nil)
		env := readEnvelope(t, raw)
		if h, err := env.Height(); env.Type != relay.TypeMaxHeightRsp || err != nil || h != 1 {
			t.Fatalf("\t%s\tShould get the mirror size: type %s: %d: %v", failed, env.Type, h, err)
		}
		t.Logf("\t%s\tShould get the mirror size.", success)

		send(t, raw, relay.TypeNodeSync, 0)
		env = readEnvelope(t, raw)
		blocks, err := env.Blocks()
		if env.Type != relay.TypeNodeSyncRsp || err != nil || len(blocks) != 1 || blocks[0].Hash != genesis.Hash {
			t.Fatalf("\t%s\tShould get the relay genesis on sync: type %s: %v", failed, env.Type, err)
		}
		t.Logf("\t%s\tShould get the relay genesis on sync.", success)

		id, err := signature.Generate()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate an identity: %s", failed, err)
		}
		tx, err := database.NewTx(database.Address(id.Address()), "bob", 10).Sign(id)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign a transaction: %s", failed, err)
		}

		send(t, raw, relay.TypeNewTransaction, tx)
		select {
		case got := <-l.trans:
			if !got.Equals(tx) {
				t.Fatalf("\t%s\tShould deliver the same transaction: %v", failed, got)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("\t%s\tShould deliver the transaction to the other node.", failed)
		}
		t.Logf("\t%s\tShould deliver the transaction to the other node.", success)

		block := database.NewBlock(database.NewPayload([]database.Tx{tx}), &genesis)
		if err := block.Mine(context.Background(), 1, nil); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %s", failed, err)
		}

		send(t, raw, relay.TypeNewBlock, block)
		select {
		case got := <-l.blocks:
			if got.Hash != block.Hash {
				t.Fatalf("\t%s\tShould deliver the same block: %s", failed, got.Hash)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("\t%s\tShould deliver the block to the other node.", failed)
		}
		t.Logf("\t%s\tShould deliver the block to the other node.", success)

		if status := hub.Status(); status.LatestBlockNumber != 1 || status.LatestBlockHash != block.Hash {
			t.Fatalf("\t%s\tShould add the block to the mirror: %+v", failed, status)
		}
		t.Logf("\t%s\tShould add the block to the mirror.", success)

		sync, err := relay.NewEnvelope(relay.TypeNodeSync, 1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build the envelope: %s", failed, err)
		}
		if err := client.Send(sync); err != nil {
			t.Fatalf("\t%s\tShould be able to send from the client: %s", failed, err)
		}
		select {
		case got := <-l.syncs:
			if len(got) != 1 || got[0].Hash != block.Hash {
				t.Fatalf("\t%s\tShould sync the blocks from the height: %d blocks", failed, len(got))
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("\t%s\tShould answer the client sync request.", failed)
		}
		t.Logf("\t%s\tShould answer the client sync request.", success)

		send(t, raw, relay.TypeHello, "node1:9080")
		send(t, raw, relay.TypeMaxHeight, nil)
		readEnvelope(t, raw)

		var found bool
		for _, p := range hub.Status().KnownPeers {
			if p.Host == "node1:9080" {
				found = true
			}
		}
		if !found {
			t.Fatalf("\t%s\tShould record the announced host.", failed)
		}
		t.Logf("\t%s\tShould record the announced host.", success)
	}
}

func Test_Mirror(t *testing.T) {
	genesis := database.NewGenesisBlock("Genesis Block")
	m := relay.NewMirror(genesis)

	b1 := database.NewBlock(database.NewPayload(nil), &genesis)
	b2 := database.NewBlock(database.NewPayload(nil), &b1)

	if err := m.Append(b2); err == nil {
		t.Fatal("Should not append a block that skips a height.")
	}

	if err := m.Append(b1); err != nil {
		t.Fatalf("Should append the next block: %s", err)
	}

	other := database.NewBlock(database.NewPayload([]database.Tx{database.NewRewardTx("x", 1)}), &genesis)
	other.Height = 2
	other.Hash = other.CalculateHash()
	if err := m.Append(other); err == nil {
		t.Fatal("Should not append a block that does not link.")
	}

	if got := len(m.From(1)); got != 1 {
		t.Fatalf("Should get the blocks from the index: got %d", got)
	}

	if got := m.From(5); got == nil || len(got) != 0 {
		t.Fatalf("Should get an empty list past the end: %v", got)
	}
}

func Test_Envelope(t *testing.T) {
	type table struct {
		name string
		msg  string
		ok   bool
	}

	tt := []table{
		{name: "sync", msg: `{"type":"node_sync","data":3}`, ok: true},
		{name: "notype", msg: `{"data":3}`},
		{name: "garbage", msg: `not json`},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			_, err := relay.Decode([]byte(tst.msg))
			if tst.ok != (err == nil) {
				t.Fatalf("Test %s:\tShould get the right decode result: %v", tst.name, err)
			}
			if err != nil && !database.IsMalformed(err) {
				t.Fatalf("Test %s:\tShould classify the error as malformed: %v", tst.name, err)
			}
		}

		t.Run(tst.name, f)
	}

	env, err := relay.Decode([]byte(`{"type":"new_block","data":{"height":1}}`))
	if err != nil {
		t.Fatalf("Should decode the envelope: %s", err)
	}
	if _, err := env.Block(); !database.IsMalformed(err) {
		t.Fatalf("Should reject a block without a hash: %v", err)
	}

	env, err = relay.NewEnvelope(relay.TypeMaxHeight, nil)
	if err != nil || env.Data != nil {
		t.Fatalf("Should build an envelope without data: %v", err)
	}
	if _, err := env.Height(); !database.IsMalformed(err) {
		t.Fatalf("Should reject reading missing data: %v", err)
	}
}
