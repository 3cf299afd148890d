package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/powledger/powledger/foundation/blockchain/database"
)

// writeWait is the time allowed to write a message to the connection.
const writeWait = 10 * time.Second

// EventHandler defines a function that is called when events occur while
// exchanging messages.
type EventHandler func(v string, args ...any)

// Ledger represents the behavior a node provides to process the messages
// received from the relay.
type Ledger interface {
	ReceiveTransaction(tx database.Tx) error
	ReceiveBlock(block database.Block) error
	ApplySync(blocks []database.Block) (int, error)
}

// =============================================================================

// Client maintains a node's connection to the relay.
type Client struct {
	conn      *websocket.Conn
	ledger    Ledger
	evHandler EventHandler

	mu   sync.Mutex
	done chan struct{}
}

// Dial connects to the relay at the websocket url and starts processing
// the messages it delivers.
func Dial(ctx context.Context, url string, ledger Ledger, ev EventHandler) (*Client, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing relay %s: %w", url, err)
	}

	c := Client{
		conn:      conn,
		ledger:    ledger,
		evHandler: ev,
		done:      make(chan struct{}),
	}

	go c.readLoop()

	ev("relay: Dial: connected: url[%s]", url)

	return &c, nil
}

// Send writes the envelope to the relay. Messages are fire and forget, no
// acknowledgement is expected.
func (c *Client) Send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("sending %s: %w", env.Type, err)
	}

	return nil
}

// Close performs a close handshake with the relay and waits for the read
// loop to terminate.
func (c *Client) Close() error {
	c.mu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.mu.Unlock()

	select {
	case <-c.done:
	case <-time.After(writeWait):
	}

	return c.conn.Close()
}

// Done returns a channel that is closed when the connection to the relay
// is lost.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// =============================================================================

// readLoop dispatches every message received until the connection fails.
func (c *Client) readLoop() {
	c.evHandler("relay: readLoop: G started")
	defer c.evHandler("relay: readLoop: G completed")
	defer close(c.done)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.evHandler("relay: readLoop: ERROR: %s", err)
			}
			return
		}

		if err := c.dispatch(msg); err != nil {
			c.evHandler("relay: readLoop: DROP: %s", err)
		}
	}
}

// dispatch hands the message to the ledger based on its type.
func (c *Client) dispatch(msg []byte) error {
	env, err := Decode(msg)
	if err != nil {
		return err
	}

	switch env.Type {
	case TypeNewTransaction:
		tx, err := env.Transaction()
		if err != nil {
			return err
		}
		return c.ledger.ReceiveTransaction(tx)

	case TypeNewBlock:
		block, err := env.Block()
		if err != nil {
			return err
		}
		return c.ledger.ReceiveBlock(block)

	case TypeNodeSyncRsp:
		blocks, err := env.Blocks()
		if err != nil {
			return err
		}
		added, err := c.ledger.ApplySync(blocks)
		if err != nil {
			return err
		}
		c.evHandler("relay: dispatch: node_sync_rsp: received[%d]: added[%d]", len(blocks), added)
		return nil

	case TypeMaxHeightRsp:
		height, err := env.Height()
		if err != nil {
			return err
		}
		c.evHandler("relay: dispatch: max_height_rsp: relay blocks[%d]", height)
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}
