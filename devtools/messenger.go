package devtools

import "sync"

// Handler receives messages published on a Messenger.
type Handler func(Message)

type subscriber struct {
	id      uint64
	handler Handler
}

// Messenger is the in-process publish point between the host engine and the
// devtools. Publish delivers synchronously, in subscription order.
type Messenger struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers []subscriber
}

func NewMessenger() *Messenger {
	return &Messenger{}
}

// Subscribe registers handler and returns a function that removes it.
// The returned function is safe to call more than once.
func (m *Messenger) Subscribe(handler Handler) (unsubscribe func()) {
	if m == nil || handler == nil {
		return func() {}
	}
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subscribers = append(m.subscribers, subscriber{id: id, handler: handler})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { m.remove(id) })
	}
}

func (m *Messenger) remove(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subscribers {
		if sub.id == id {
			m.subscribers = append(m.subscribers[:i:i], m.subscribers[i+1:]...)
			return
		}
	}
}

// Publish delivers msg to every subscriber and returns how many received it.
func (m *Messenger) Publish(msg Message) int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	subs := make([]subscriber, len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(msg)
	}
	return len(subs)
}

// SubscriberCount returns the number of registered handlers.
func (m *Messenger) SubscriberCount() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers)
}
