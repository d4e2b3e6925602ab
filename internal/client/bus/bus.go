// Package bus provides a small typed publish/subscribe channel used for
// in-process change notifications: storage updates from the cache store and
// auth transitions from the session manager. It replaces ambient global
// event broadcasting with an explicit, injectable object that has a
// subscribe/unsubscribe lifecycle.
package bus

import "sync"

// DefaultBuffer is the per-subscriber channel capacity used by New.
const DefaultBuffer = 16

// Bus fans events of type E out to all current subscribers.
//
// Publish never blocks: a subscriber whose buffer is full misses the event.
// Listeners that need every notification must drain their channel promptly.
type Bus[E any] struct {
	mu   sync.Mutex
	subs map[int]chan E
	next int
	buf  int
}

// New returns a Bus whose subscriber channels hold up to DefaultBuffer
// events.
func New[E any]() *Bus[E] {
	return NewBuffered[E](DefaultBuffer)
}

// NewBuffered returns a Bus with an explicit per-subscriber buffer size.
func NewBuffered[E any](buffer int) *Bus[E] {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus[E]{subs: make(map[int]chan E), buf: buffer}
}

// Subscribe registers a new listener. The returned cancel function removes
// the subscription and closes the channel; it is safe to call more than once.
func (b *Bus[E]) Subscribe() (<-chan E, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan E, b.buf)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Publish delivers e to every subscriber that has room in its buffer.
func (b *Bus[E]) Publish(e E) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Len reports the number of active subscriptions.
func (b *Bus[E]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
