package core

import (
	"slices"
	"sync"
)

// Identity is the authenticated principal a connection represents.
type Identity struct {
	UserID   string
	Username string
}

// Registry owns the set of live connections and the connection to identity
// mapping. One mutex guards both, so a broadcast snapshot never observes a
// half-applied attach or detach.
type Registry struct {
	mu         sync.RWMutex
	live       map[string]*Client
	identities map[string]Identity
	// sessions counts associated connections per user id.
	sessions map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		live:       make(map[string]*Client),
		identities: make(map[string]Identity),
		sessions:   make(map[string]int),
	}
}

// Attach adds an open connection to the live set.
func (r *Registry) Attach(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[c.ID] = c
}

// Detach removes the connection from the live set. It reports false when the
// connection was not live, so a second detach is a no-op.
func (r *Registry) Detach(connID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.live[connID]
	if !ok {
		return nil, false
	}
	delete(r.live, connID)
	return c, true
}

// IsLive reports whether the connection is in the live set.
func (r *Registry) IsLive(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.live[connID]
	return ok
}

// Associate records that connID now represents id, replacing any previous
// identity on that connection. Only live connections can be associated;
// it reports false otherwise.
func (r *Registry) Associate(connID string, id Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live[connID]; !ok {
		return false
	}

	if prev, ok := r.identities[connID]; ok {
		if prev.UserID == id.UserID {
			r.identities[connID] = id
			return true
		}
		r.release(prev.UserID)
	}

	r.identities[connID] = id
	r.sessions[id.UserID]++
	return true
}

// Dissociate removes and returns the identity tied to connID.
// It reports false when the connection had none.
func (r *Registry) Dissociate(connID string) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.identities[connID]
	if !ok {
		return Identity{}, false
	}
	delete(r.identities, connID)
	r.release(id.UserID)
	return id, true
}

func (r *Registry) release(userID string) {
	if r.sessions[userID] <= 1 {
		delete(r.sessions, userID)
		return
	}
	r.sessions[userID]--
}

// IdentityOf returns the identity bound to connID, if any.
func (r *Registry) IdentityOf(connID string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.identities[connID]
	return id, ok
}

// ListOnlineUserIDs returns the distinct user ids with at least one live
// connection, sorted.
func (r *Registry) ListOnlineUserIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		ids = append(ids, userID)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// IsOnline reports whether userID has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[userID] > 0
}

// Snapshot copies the live connections so callers can iterate without the lock.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.live))
	for _, c := range r.live {
		clients = append(clients, c)
	}
	return clients
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}
