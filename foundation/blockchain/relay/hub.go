package relay

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/powledger/powledger/foundation/blockchain/peer"
)

// Hub accepts node connections, rebroadcasts announcements to every other
// node and answers sync queries from its mirror of the chain.
type Hub struct {
	mirror    *Mirror
	peers     *peer.PeerSet
	evHandler EventHandler

	mu    sync.RWMutex
	conns map[string]*hubConn
	shut  bool
	wg    sync.WaitGroup
}

// hubConn serializes the writes made to a single node connection.
type hubConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// write sends a raw message to the node.
func (hc *hubConn) write(msg []byte) error {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return hc.conn.WriteMessage(websocket.TextMessage, msg)
}

// NewHub constructs a hub that serves sync queries from the mirror.
func NewHub(mirror *Mirror, ev EventHandler) *Hub {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	return &Hub{
		mirror:    mirror,
		peers:     peer.NewPeerSet(),
		evHandler: ev,
		conns:     make(map[string]*hubConn),
	}
}

// Serve processes the messages of a node connection until it is closed.
// The connection is owned by the hub from this point.
func (h *Hub) Serve(conn *websocket.Conn, remote string) error {
	hc := hubConn{
		id:   uuid.NewString(),
		conn: conn,
	}

	h.mu.Lock()
	if h.shut {
		h.mu.Unlock()
		conn.Close()
		return fmt.Errorf("hub is shut down")
	}
	h.conns[hc.id] = &hc
	h.wg.Add(1)
	h.mu.Unlock()

	h.peers.Add(peer.New(hc.id, remote))

	h.evHandler("relay: hub: node connected: id[%s]: remote[%s]", hc.id, remote)

	defer func() {
		h.mu.Lock()
		delete(h.conns, hc.id)
		h.mu.Unlock()

		h.peers.Remove(hc.id)
		conn.Close()
		h.wg.Done()

		h.evHandler("relay: hub: node disconnected: id[%s]", hc.id)
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return err
			}
			return nil
		}

		if err := h.handle(&hc, msg); err != nil {
			h.evHandler("relay: hub: DROP: id[%s]: %s", hc.id, err)
		}
	}
}

// Shutdown closes every node connection and waits for them to finish.
func (h *Hub) Shutdown() {
	h.evHandler("relay: hub: shutdown: started")
	defer h.evHandler("relay: hub: shutdown: completed")

	h.mu.Lock()
	h.shut = true
	for _, hc := range h.conns {
		hc.mu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "relay shutting down")
		hc.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		hc.mu.Unlock()
		hc.conn.Close()
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// Status returns the state of the mirror and the connected peers.
func (h *Hub) Status() peer.PeerStatus {
	latest := h.mirror.Latest()

	return peer.PeerStatus{
		LatestBlockHash:   latest.Hash,
		LatestBlockNumber: latest.Height,
		KnownPeers:        h.peers.Copy(""),
	}
}

// =============================================================================

// handle processes a single message from a node.
func (h *Hub) handle(from *hubConn, msg []byte) error {
	env, err := Decode(msg)
	if err != nil {
		return err
	}

	h.evHandler("relay: hub: received: id[%s]: type[%s]", from.id, env.Type)

	switch env.Type {
	case TypeNewBlock:
		block, err := env.Block()
		if err != nil {
			return err
		}

		if err := h.mirror.Append(block); err != nil {
			h.evHandler("relay: hub: mirror: skip: height[%d]: %s", block.Height, err)
		}

		h.broadcast(from, msg)
		return nil

	case TypeNewTransaction:
		if _, err := env.Transaction(); err != nil {
			return err
		}

		h.broadcast(from, msg)
		return nil

	case TypeMaxHeight:
		return h.reply(from, TypeMaxHeightRsp, h.mirror.Len())

	case TypeNodeSync:
		height, err := env.Height()
		if err != nil {
			return err
		}
		return h.reply(from, TypeNodeSyncRsp, h.mirror.From(height))

	case TypeHello:
		host, err := env.Host()
		if err != nil {
			return err
		}
		h.peers.SetHost(from.id, host)
		h.evHandler("relay: hub: hello: id[%s]: host[%s]", from.id, host)
		return nil

	case TypeNodeSyncRsp, TypeMaxHeightRsp:
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

// reply sends a response envelope back to the node that asked.
func (h *Hub) reply(to *hubConn, typ MessageType, data any) error {
	env, err := NewEnvelope(typ, data)
	if err != nil {
		return err
	}

	msg, err := encode(env)
	if err != nil {
		return err
	}

	return to.write(msg)
}

// broadcast sends the raw message to every node except the sender. A
// failed write is logged and the remaining nodes still receive it.
func (h *Hub) broadcast(from *hubConn, msg []byte) {
	h.mu.RLock()
	conns := make([]*hubConn, 0, len(h.conns))
	for id, hc := range h.conns {
		if id != from.id {
			conns = append(conns, hc)
		}
	}
	h.mu.RUnlock()

	for _, hc := range conns {
		if err := hc.write(msg); err != nil {
			h.evHandler("relay: hub: broadcast: id[%s]: WARNING: %s", hc.id, err)
		}
	}
}
