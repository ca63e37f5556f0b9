package store

import "sync"

// subscriptionBuffer bounds how many undelivered changes a slow subscriber
// may accumulate; older ones are dropped first.
const subscriptionBuffer = 8

type subscription struct {
	keys map[string]struct{}
	ch   chan Change
}

type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

func newHub() *hub {
	return &hub{subs: make(map[int]*subscription)}
}

func (h *hub) subscribe(keys []string) (<-chan Change, func()) {
	sub := &subscription{
		keys: make(map[string]struct{}, len(keys)),
		ch:   make(chan Change, subscriptionBuffer),
	}
	for _, k := range keys {
		sub.keys[k] = struct{}{}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(sub.ch)
			h.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// publish never blocks: when a subscriber's buffer is full its oldest
// pending change is discarded.
func (h *hub) publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if _, ok := sub.keys[c.Key]; !ok {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- c:
			default:
			}
		}
	}
}
