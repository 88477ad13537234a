package whatsapp

import (
	"sync"
	"time"
)

// SessionManager remembers recently handled inbound message IDs so webhook redeliveries
// are not applied twice.
type SessionManager struct {
	seen map[string]time.Time
	ttl  time.Duration
	mu   sync.Mutex
	now  func() time.Time
}

// NewSessionManager creates a new session manager that forgets IDs after ttl.
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionManager{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// FirstDelivery records id and reports whether it had not been seen within the TTL.
func (sm *SessionManager) FirstDelivery(id string) bool {
	if id == "" {
		return true
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	for k, at := range sm.seen {
		if now.Sub(at) > sm.ttl {
			delete(sm.seen, k)
		}
	}
	if _, dup := sm.seen[id]; dup {
		return false
	}
	sm.seen[id] = now
	return true
}
