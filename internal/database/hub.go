package database

import "sync"

// Hub fans out change notices from the stores to anyone rendering the
// worklist. Subscribers get at most one pending notice; ranking and search
// are recomputed from a fresh snapshot on every notice, so collapsing bursts
// is fine.
type Hub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan struct{}]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}

	return ch, cancel
}

// Notify wakes all subscribers without blocking on slow ones. Safe on a nil
// hub so stores can run without one in tests.
func (h *Hub) Notify() {
	if h == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
