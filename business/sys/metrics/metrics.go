// Package metrics constructs the metrics the application will track.
package metrics

import (
	"expvar"
	"runtime"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The expvar package is already based on a singleton
// for the different metrics that are registered with the package so there
// isn't much choice here.
var m *metrics

// =============================================================================

// metrics represents the set of metrics we gather. These fields are
// safe to be accessed concurrently thanks to expvar. No extra abstraction is
// required.
type metrics struct {
	goroutines *expvar.Int
	requests   *expvar.Int
	errors     *expvar.Int
	panics     *expvar.Int
	height     *expvar.Int
	mempool    *expvar.Int
}

// init constructs the metrics value that will be used to capture metrics.
// The metrics value is stored in a package level variable since everything
// inside of expvar is registered as a singleton. The use of once will make
// sure this initialization only happens once.
func init() {
	m = &metrics{
		goroutines: expvar.NewInt("goroutines"),
		requests:   expvar.NewInt("requests"),
		errors:     expvar.NewInt("errors"),
		panics:     expvar.NewInt("panics"),
		height:     expvar.NewInt("chain_height"),
		mempool:    expvar.NewInt("mempool_length"),
	}
}

// =============================================================================

// AddGoroutines refreshes the goroutine metric every 100 requests.
func AddGoroutines() {
	if m.requests.Value()%100 == 0 {
		m.goroutines.Set(int64(runtime.NumGoroutine()))
	}
}

// AddRequests increments the request metric by 1.
func AddRequests() {
	m.requests.Add(1)
}

// AddErrors increments the errors metric by 1.
func AddErrors() {
	m.errors.Add(1)
}

// AddPanics increments the panics metric by 1.
func AddPanics() {
	m.panics.Add(1)
}

// SetChain records the height of the chain and the mempool length.
func SetChain(height uint64, mempool int) {
	m.height.Set(int64(height))
	m.mempool.Set(int64(mempool))
}
