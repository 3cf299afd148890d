// Package relay implements the messages exchanged between nodes and the
// relay that rebroadcasts them, along with the client used by a node and
// the hub run by the relay.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/powledger/powledger/foundation/blockchain/database"
)

// MessageType defines the type of message carried by an envelope.
type MessageType string

// Set of message types understood by nodes and the relay.
const (
	TypeNewTransaction MessageType = "new_transaction"
	TypeNewBlock       MessageType = "new_block"
	TypeNodeSync       MessageType = "node_sync"
	TypeNodeSyncRsp    MessageType = "node_sync_rsp"
	TypeMaxHeight      MessageType = "max_height"
	TypeMaxHeightRsp   MessageType = "max_height_rsp"
	TypeHello          MessageType = "hello"
)

// ErrUnknownType is returned when an envelope carries a type no handler
// knows about.
var ErrUnknownType = errors.New("unknown message type")

// Envelope is the unit of exchange on a relay connection.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope constructs an envelope with the data encoded as JSON. A nil
// data value produces an envelope without data.
func NewEnvelope(typ MessageType, data any) (Envelope, error) {
	env := Envelope{Type: typ}
	if data == nil {
		return env, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s: %w", typ, err)
	}
	env.Data = raw

	return env, nil
}

// Decode parses a raw message into an envelope.
func Decode(msg []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: envelope: %s", database.ErrMalformed, err)
	}

	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: envelope: missing type", database.ErrMalformed)
	}

	return env, nil
}

// encode renders the envelope as a wire message.
func encode(env Envelope) ([]byte, error) {
	msg, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", env.Type, err)
	}

	return msg, nil
}

// Transaction decodes the data as a transaction.
func (env Envelope) Transaction() (database.Tx, error) {
	var tx database.Tx
	if err := env.decode(&tx); err != nil {
		return database.Tx{}, err
	}

	return tx, nil
}

// Block decodes the data as a block.
func (env Envelope) Block() (database.Block, error) {
	var block database.Block
	if err := env.decode(&block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// Blocks decodes the data as a list of blocks.
func (env Envelope) Blocks() ([]database.Block, error) {
	var blocks []database.Block
	if err := env.decode(&blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

// Height decodes the data as a height or a block count.
func (env Envelope) Height() (uint64, error) {
	var height uint64
	if err := env.decode(&height); err != nil {
		return 0, err
	}

	return height, nil
}

// Host decodes the data of a hello message.
func (env Envelope) Host() (string, error) {
	var host string
	if err := env.decode(&host); err != nil {
		return "", err
	}

	return host, nil
}

// decode unmarshals the data into the value.
func (env Envelope) decode(v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s: missing data", database.ErrMalformed, env.Type)
	}

	if err := json.Unmarshal(env.Data, v); err != nil {
		if database.IsMalformed(err) {
			return fmt.Errorf("%s: %w", env.Type, err)
		}
		return fmt.Errorf("%w: %s: %s", database.ErrMalformed, env.Type, err)
	}

	return nil
}
