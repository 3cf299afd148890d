// Package handlers manages the different versions of the relay API.
package handlers

import (
	"net/http"
	"os"

	v1 "github.com/powledger/powledger/app/services/relay/handlers/v1"
	"github.com/powledger/powledger/business/web/debug"
	"github.com/powledger/powledger/business/web/mid"
	"github.com/powledger/powledger/foundation/blockchain/relay"
	"github.com/powledger/powledger/foundation/web"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Hub      *relay.Hub
}

// APIMux constructs a http.Handler with all relay routes defined.
func APIMux(cfg MuxConfig) http.Handler {

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Panics(),
	)

	// Load the v1 routes.
	v1.Routes(app, v1.Config{
		Log: cfg.Log,
		Hub: cfg.Hub,
	})

	return app
}

// DebugMux constructs the debug mux for the relay. The relay holds no
// chain of its own to check so it is ready whenever it is alive.
func DebugMux(build string, log *zap.SugaredLogger) http.Handler {
	return debug.Mux(build, log, nil)
}
