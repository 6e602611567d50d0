// Package locks provides a keyed mutex. The transaction service serializes
// the read-window/classify/persist section per client with it, so two
// concurrent registrations cannot double-count toward a report threshold.
package locks

import "sync"

// Keyed hands out one mutex per key. Entries are kept for the process
// lifetime; the key space (active clients) is small enough that eviction
// is not worth the complexity.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyed creates an empty keyed mutex set.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *Keyed) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key.
func (k *Keyed) Unlock(key string) {
	k.get(key).Unlock()
}

func (k *Keyed) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
