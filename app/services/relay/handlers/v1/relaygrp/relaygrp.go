// Package relaygrp maintains the group of handlers for node connections
// to the relay.
package relaygrp

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/powledger/powledger/foundation/blockchain/relay"
	"github.com/powledger/powledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of relay endpoints.
type Handlers struct {
	Log *zap.SugaredLogger
	Hub *relay.Hub
	WS  websocket.Upgrader
}

// Connect upgrades the request to a web socket and hands the connection to
// the hub for the lifetime of the node.
func (h Handlers) Connect(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	// The response has been hijacked so errors can only be logged.
	if err := h.Hub.Serve(c, r.RemoteAddr); err != nil {
		h.Log.Infow("relay connection", "traceid", v.TraceID, "remoteaddr", r.RemoteAddr, "ERROR", err)
	}

	return nil
}

// Status returns the tip of the mirror and the connected nodes.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Hub.Status(), http.StatusOK)
}
