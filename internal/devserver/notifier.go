package devserver

import (
	"sync"

	"github.com/starview-labs/starview/internal/state"
)

// notifier broadcasts recompile outcomes to subscribed event-stream
// clients. Listeners get the recorded run for each attempt; a listener whose
// channel is full misses that run and catches up on the next one.
type notifier struct {
	mu        sync.RWMutex
	listeners map[chan *state.Run]struct{}
}

func newNotifier() *notifier {
	return &notifier{
		listeners: make(map[chan *state.Run]struct{}),
	}
}

// subscribe returns a channel receiving recompile outcomes. Callers must
// unsubscribe when done to avoid leaking the channel.
func (n *notifier) subscribe() chan *state.Run {
	ch := make(chan *state.Run, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// unsubscribe removes a listener channel and closes it.
func (n *notifier) unsubscribe(ch chan *state.Run) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// broadcast pushes a run to every listener without blocking.
func (n *notifier) broadcast(run *state.Run) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- run:
		default:
		}
	}
}
