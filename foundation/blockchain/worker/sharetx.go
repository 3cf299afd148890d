package worker

import (
	"github.com/powledger/powledger/foundation/blockchain/relay"
)

// maxShareRequests represents the max number of pending announcements that
// can be outstanding before new ones are dropped. To keep this simple, a
// buffered channel of this arbitrary number is being used. If the channel
// does become full, announcements will not be sent.
const maxShareRequests = 100

// =============================================================================

// signalShare builds the envelope and queues it without blocking.
func (w *Worker) signalShare(typ relay.MessageType, data any) {
	env, err := relay.NewEnvelope(typ, data)
	if err != nil {
		w.evHandler("worker: signalShare: %s: ERROR: %s", typ, err)
		return
	}

	select {
	case w.sharing <- env:
		w.evHandler("worker: signalShare: %s signaled", typ)
	default:
		w.evHandler("worker: signalShare: queue full, %s won't be shared.", typ)
	}
}

// shareOperations handles sending announcements to the relay.
func (w *Worker) shareOperations() {
	w.evHandler("worker: shareOperations: G started")
	defer w.evHandler("worker: shareOperations: G completed")

	for {
		select {
		case env := <-w.sharing:
			if !w.isShutdown() {
				w.send(env)
			}
		case <-w.shut:
			w.evHandler("worker: shareOperations: received shut signal")
			return
		}
	}
}

// send delivers the envelope to the relay. Failures are logged and the
// envelope is not retried.
func (w *Worker) send(env relay.Envelope) {
	if w.sender == nil {
		return
	}

	if err := w.sender.Send(env); err != nil {
		w.evHandler("worker: send: %s: WARNING: %s", env.Type, err)
	}
}
