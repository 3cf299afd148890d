// Package peer maintains the peer related information such as the set
// of connected peers and their status.
package peer

import (
	"sort"
	"sync"
)

// Peer represents information about a node connected to the relay.
type Peer struct {
	ID     string `json:"id"`     // Connection id assigned by the relay.
	Remote string `json:"remote"` // Remote address of the connection.
	Host   string `json:"host"`   // Public host announced by the node, if any.
}

// New contructs a new peer value.
func New(id string, remote string) Peer {
	return Peer{
		ID:     id,
		Remote: remote,
	}
}

// Match validates if the specified id matches this peer.
func (p Peer) Match(id string) bool {
	return p.ID == id
}

// =============================================================================

// PeerStatus represents information about the status
// of the relay and its peers.
type PeerStatus struct {
	LatestBlockHash   string `json:"latest_block_hash"`
	LatestBlockNumber uint64 `json:"latest_block_number"`
	KnownPeers        []Peer `json:"known_peers"`
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[string]Peer
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[string]Peer),
	}
}

// Add adds a new peer to the set.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer.ID]
	if !exists {
		ps.set[peer.ID] = peer
		return true
	}

	return false
}

// SetHost records the public host announced by the peer.
func (ps *PeerSet) SetHost(id string, host string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	peer, exists := ps.set[id]
	if !exists {
		return false
	}

	peer.Host = host
	ps.set[id] = peer

	return true
}

// Remove removes a peer from the set.
func (ps *PeerSet) Remove(id string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, id)
}

// Len returns the number of peers in the set.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a list of the known peers ordered by id, excluding the
// peer with the specified id.
func (ps *PeerSet) Copy(id string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for _, peer := range ps.set {
		if !peer.Match(id) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].ID < peers[j].ID })

	return peers
}
