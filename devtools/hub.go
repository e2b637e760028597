package devtools

import "sync"

var (
	defaultMu        sync.Mutex
	defaultMessenger = NewMessenger()
	defaultHub       = NewHub(defaultMessenger, Options{})
)

// DefaultMessenger is the process-wide publish point hosts write to.
func DefaultMessenger() *Messenger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultMessenger
}

// DefaultHub shares one Store between every observer in the process.
func DefaultHub() *Hub {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultHub
}

// ResetDefaultHubForTests disposes the shared store and replaces the defaults.
func ResetDefaultHubForTests() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultHub.shutdown()
	defaultMessenger = NewMessenger()
	defaultHub = NewHub(defaultMessenger, Options{})
}

// Hub hands out reference-counted access to a single Store. The store is
// created and attached on first Acquire and disposed on the last Release.
type Hub struct {
	mu        sync.Mutex
	messenger *Messenger
	opts      Options
	store     *Store
	refs      int
}

func NewHub(m *Messenger, opts Options) *Hub {
	if m == nil {
		m = NewMessenger()
	}
	return &Hub{messenger: m, opts: opts}
}

// Messenger returns the messenger the shared store listens on.
func (h *Hub) Messenger() *Messenger {
	return h.messenger
}

// Handle is one observer's claim on the shared store.
type Handle struct {
	hub   *Hub
	store *Store
	once  sync.Once
}

// Acquire returns a handle on the shared store, creating it if needed.
func (h *Hub) Acquire() *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.store == nil {
		h.store = NewStore(h.opts)
		h.store.Attach(h.messenger)
	}
	h.refs++
	return &Handle{hub: h, store: h.store}
}

// Store returns the shared store.
func (hd *Handle) Store() *Store {
	if hd == nil {
		return nil
	}
	return hd.store
}

// Release drops the claim. Releasing twice is a no-op.
func (hd *Handle) Release() {
	if hd == nil {
		return
	}
	hd.once.Do(func() { hd.hub.release(hd.store) })
}

func (h *Hub) release(store *Store) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if store != h.store || h.refs == 0 {
		return
	}
	h.refs--
	if h.refs == 0 {
		h.store.Dispose()
		h.store = nil
	}
}

// Refs returns the number of outstanding handles.
func (h *Hub) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.store != nil {
		h.store.Dispose()
	}
	h.store = nil
	h.refs = 0
}
