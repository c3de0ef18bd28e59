package store

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks is a set of mutexes keyed by session id. Entries are dropped
// once nobody holds or waits on them.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{entries: make(map[string]*lockEntry)}
}

func (l *sessionLocks) acquire(id string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[id]
	if !ok {
		e = &lockEntry{}
		l.entries[id] = e
	}
	e.refs++
	return e
}

func (l *sessionLocks) release(id string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, id)
	}
}

// Lock blocks until the session is free and returns its unlock function.
func (l *sessionLocks) Lock(id string) func() {
	e := l.acquire(id)
	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.release(id, e)
		})
	}
}

// TryLock locks the session only if nobody else holds it.
func (l *sessionLocks) TryLock(id string) (func(), bool) {
	e := l.acquire(id)
	if !e.mu.TryLock() {
		l.release(id, e)
		return nil, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.release(id, e)
		})
	}, true
}
