// Package keylock provides per-key mutual exclusion.
//
// The booking state machine serializes read-validate-write sequences per trip:
// two concurrent joins for the last seat must not interleave. A KeyLock keyed
// by trip id gives that serialization without blocking unrelated trips.
package keylock

import "sync"

type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key and returns an unlock function.
// Entries are reference counted and removed once unused, so the map does not
// grow with the number of distinct keys seen over the process lifetime.
func (k *KeyLock) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
