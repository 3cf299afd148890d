// Package v1 contains the full set of handler functions and routes
// supported by the v1 relay api.
package v1

import (
	"net/http"

	"github.com/powledger/powledger/app/services/relay/handlers/v1/relaygrp"
	"github.com/powledger/powledger/foundation/blockchain/relay"
	"github.com/powledger/powledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log *zap.SugaredLogger
	Hub *relay.Hub
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	rgh := relaygrp.Handlers{
		Log: cfg.Log,
		Hub: cfg.Hub,
	}

	app.Handle(http.MethodGet, version, "/relay", rgh.Connect)
	app.Handle(http.MethodGet, version, "/mirror/status", rgh.Status)
}
