package relay

import (
	"context"
	"sync"
)

// PresenceStore tracks which live session, if any, an identity is reachable
// at. At most one session per identity; a later Set for the same identity
// replaces the previous mapping (last-write-wins, single-device model).
//
// The store is an injection point: the default implementation is an
// in-memory map, valid only for a single process. A shared backend can be
// swapped in without touching the hub.
type PresenceStore interface {
	// Set records identity as reachable at sessionID, replacing any
	// previous session for that identity.
	Set(ctx context.Context, identity, sessionID string) error

	// SessionFor returns the session currently owning identity, or "" if
	// the identity is offline.
	SessionFor(ctx context.Context, identity string) (string, error)

	// IdentityFor returns the identity that joined under sessionID, or ""
	// if the session never joined or was replaced.
	IdentityFor(ctx context.Context, sessionID string) (string, error)

	// RemoveBySession drops the mapping owned by sessionID and returns the
	// identity that went offline. Returns "" when the session owns no
	// mapping; that is a normal no-op, not an error.
	RemoveBySession(ctx context.Context, sessionID string) (string, error)
}

// MemoryPresence is the in-memory PresenceStore. All operations are cheap
// map mutations under a single lock and never return an error.
type MemoryPresence struct {
	mu         sync.RWMutex
	byIdentity map[string]string // identity -> session id
	bySession  map[string]string // session id -> identity
}

// NewMemoryPresence creates an empty in-memory presence store.
func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{
		byIdentity: make(map[string]string),
		bySession:  make(map[string]string),
	}
}

func (m *MemoryPresence) Set(_ context.Context, identity, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Drop the reverse entry of the session being replaced so its eventual
	// disconnect does not emit a spurious offline transition.
	if old, ok := m.byIdentity[identity]; ok {
		delete(m.bySession, old)
	}
	m.byIdentity[identity] = sessionID
	m.bySession[sessionID] = identity
	return nil
}

func (m *MemoryPresence) SessionFor(_ context.Context, identity string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byIdentity[identity], nil
}

func (m *MemoryPresence) IdentityFor(_ context.Context, sessionID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bySession[sessionID], nil
}

func (m *MemoryPresence) RemoveBySession(_ context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.bySession[sessionID]
	if !ok {
		return "", nil
	}
	delete(m.bySession, sessionID)
	if m.byIdentity[identity] == sessionID {
		delete(m.byIdentity, identity)
	}
	return identity, nil
}
