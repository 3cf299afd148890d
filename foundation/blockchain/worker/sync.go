package worker

import (
	"github.com/powledger/powledger/foundation/blockchain/relay"
)

// syncOperations periodically asks the relay for missing blocks.
func (w *Worker) syncOperations() {
	w.evHandler("worker: syncOperations: G started")
	defer w.evHandler("worker: syncOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			w.evHandler("worker: syncOperations: received shut signal")
			return
		}
	}
}

// Sync sends the local height to the relay so it returns every block from
// that height on, and asks for the relay's block count. The responses are
// processed when they arrive on the relay connection.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	height := w.state.Height()

	env, err := relay.NewEnvelope(relay.TypeNodeSync, height)
	if err != nil {
		w.evHandler("worker: sync: ERROR: %s", err)
		return
	}
	w.send(env)

	env, err = relay.NewEnvelope(relay.TypeMaxHeight, nil)
	if err != nil {
		w.evHandler("worker: sync: ERROR: %s", err)
		return
	}
	w.send(env)

	w.evHandler("worker: sync: requested blocks from height[%d]", height)
}
