package mid

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/powledger/powledger/foundation/web"
)

// corsMaxAge is how long a browser may cache the result of a preflight.
const corsMaxAge = 10 * time.Minute

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
// The node only serves reads and transaction submits, so preflight requests
// are answered here with no content.
func Cors(origin string) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(int(corsMaxAge.Seconds())))
				return web.Respond(ctx, w, nil, http.StatusNoContent)
			}

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
