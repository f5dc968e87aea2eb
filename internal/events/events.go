// package events contains message types shared between web and tui packages,
// and the broker that fans workspace change notifications out to SSE clients.
package events

import "sync"

// WebStateChangedMsg is sent to the TUI after a web-initiated mutation so
// the view refreshes without waiting for the next keypress.
type WebStateChangedMsg struct {
	Version uint64
}

// WebListenURLMsg is sent when the web server starts listening.
type WebListenURLMsg struct{ URL string }

// Event is a workspace change notification delivered to SSE subscribers.
type Event struct {
	Type    string `json:"type"`
	Version uint64 `json:"version"`
}

// Broker fans events out to subscribers. Delivery is best-effort: a
// subscriber that is not draining its channel misses events rather than
// blocking the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber goes away.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber that has channel capacity.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports the current number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
