package http

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ObserverManager tracks the panels currently streaming devtools state.
type ObserverManager struct {
	observers map[string]*Observer
	mu        sync.RWMutex
}

// Observer is one connected event stream.
type Observer struct {
	ID          string
	RemoteAddr  string
	Created     time.Time
	LastSeen    time.Time
	LastVersion uint64
	Transport   *StreamableHTTPTransport
}

// ObserverInfo is the JSON view of an observer.
type ObserverInfo struct {
	ID          string    `json:"id"`
	RemoteAddr  string    `json:"remote_addr"`
	Created     time.Time `json:"created"`
	LastSeen    time.Time `json:"last_seen"`
	LastVersion uint64    `json:"last_version"`
}

func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make(map[string]*Observer),
	}
}

// Register records a new stream and returns its generated ID.
func (om *ObserverManager) Register(remoteAddr string, transport *StreamableHTTPTransport) string {
	id := uuid.NewString()
	now := time.Now().UTC()

	om.mu.Lock()
	defer om.mu.Unlock()
	om.observers[id] = &Observer{
		ID:         id,
		RemoteAddr: remoteAddr,
		Created:    now,
		LastSeen:   now,
		Transport:  transport,
	}
	return id
}

// Touch marks the observer as having received version.
func (om *ObserverManager) Touch(id string, version uint64) bool {
	om.mu.Lock()
	defer om.mu.Unlock()

	observer, ok := om.observers[id]
	if !ok {
		return false
	}
	observer.LastSeen = time.Now().UTC()
	observer.LastVersion = version
	return true
}

// Remove closes and forgets one observer.
func (om *ObserverManager) Remove(id string) {
	om.mu.Lock()
	observer, ok := om.observers[id]
	delete(om.observers, id)
	om.mu.Unlock()

	if ok && observer.Transport != nil {
		observer.Transport.Close()
	}
}

// List returns every observer, oldest first.
func (om *ObserverManager) List() []ObserverInfo {
	om.mu.RLock()
	out := make([]ObserverInfo, 0, len(om.observers))
	for _, o := range om.observers {
		out = append(out, ObserverInfo{
			ID:          o.ID,
			RemoteAddr:  o.RemoteAddr,
			Created:     o.Created,
			LastSeen:    o.LastSeen,
			LastVersion: o.LastVersion,
		})
	}
	om.mu.RUnlock()

	slices.SortFunc(out, func(a, b ObserverInfo) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Count returns the number of connected observers.
func (om *ObserverManager) Count() int {
	om.mu.RLock()
	defer om.mu.RUnlock()
	return len(om.observers)
}

// CloseAll closes every stream.
func (om *ObserverManager) CloseAll() {
	om.mu.Lock()
	observers := om.observers
	om.observers = make(map[string]*Observer)
	om.mu.Unlock()

	for _, o := range observers {
		if o.Transport != nil {
			o.Transport.Close()
		}
	}
}

// CleanupObservers removes observers idle for longer than timeout and
// returns how many were removed.
func (om *ObserverManager) CleanupObservers(timeout time.Duration) int {
	om.mu.Lock()
	var expired []*Observer
	now := time.Now().UTC()
	for id, o := range om.observers {
		if now.Sub(o.LastSeen) > timeout {
			expired = append(expired, o)
			delete(om.observers, id)
		}
	}
	om.mu.Unlock()

	for _, o := range expired {
		if o.Transport != nil {
			o.Transport.Close()
		}
	}
	return len(expired)
}
