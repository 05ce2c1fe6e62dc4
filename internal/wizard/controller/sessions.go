package controller

import (
	"sync"

	"comanda/internal/payment"
	"comanda/internal/wizard"
)

// sessionEntry serializes access to one wizard session. A session is a
// single logical thread of control; the mutex enforces that over HTTP.
type sessionEntry struct {
	mu      sync.Mutex
	session *wizard.Session
	// pending gateway outcome channel, nil when no gateway flow is active
	outcome <-chan payment.Outcome
	// last terminal outcome applied to the session, kept for re-reads
	settled *payment.Outcome
}

type sessionRegistry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{entries: make(map[string]*sessionEntry)}
}

func (r *sessionRegistry) add(s *wizard.Session) *sessionEntry {
	entry := &sessionEntry{session: s}
	r.mu.Lock()
	r.entries[s.ID()] = entry
	r.mu.Unlock()
	return entry
}

func (r *sessionRegistry) get(id string) (*sessionEntry, bool) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	return entry, ok
}

// remove tears the session down, cancelling any pending payment poll.
func (r *sessionRegistry) remove(id string) bool {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if ok {
		entry.mu.Lock()
		entry.session.DismissPayment()
		entry.mu.Unlock()
	}
	return ok
}
