package application

import (
	"sync"
	"time"
)

// sessionStore keeps issued gate sessions in memory. Expired entries are
// dropped on access and whenever a new session is stored.
type sessionStore struct {
	mu         sync.RWMutex
	now        func() time.Time
	maxEntries int
	entries    map[string]Session
}

func newSessionStore(maxEntries int, now func() time.Time) *sessionStore {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	if now == nil {
		now = time.Now
	}
	return &sessionStore{
		now:        now,
		maxEntries: maxEntries,
		entries:    make(map[string]Session),
	}
}

// Get returns the session for token. The second result is false when the
// token is unknown; expired sessions are returned once so callers can tell
// expiry apart from an unknown token, then removed.
func (c *sessionStore) Get(token string) (Session, bool) {
	c.mu.RLock()
	session, ok := c.entries[token]
	c.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if !c.now().Before(session.ExpiresAt) {
		c.Delete(token)
	}
	return session, true
}

func (c *sessionStore) Store(session Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[session.Token] = session
}

// Delete removes token and reports whether it was present.
func (c *sessionStore) Delete(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[token]
	delete(c.entries, token)
	return ok
}

func (c *sessionStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *sessionStore) cleanupLocked() {
	now := c.now()
	for token, session := range c.entries {
		if !now.Before(session.ExpiresAt) {
			delete(c.entries, token)
		}
	}
}

func (c *sessionStore) evictOldestLocked() {
	var (
		oldestToken string
		oldest      time.Time
	)
	for token, session := range c.entries {
		if oldestToken == "" || session.CreatedAt.Before(oldest) {
			oldestToken, oldest = token, session.CreatedAt
		}
	}
	delete(c.entries, oldestToken)
}
