/*
Package chat contains the core logic for presence tracking, session-to-identity
binding, and fan-out of message and roster events to connected subscribers.

This file defines the PresenceRegistry, the process-wide table of online users.
*/
package chat

import (
	"sync"
	"time"
)

// PresenceRegistry is the authoritative record of which users are online now.
// Every operation is idempotent so duplicate or out-of-order connect and
// disconnect signals never corrupt the presence view. All methods are safe for
// concurrent use by arbitrarily many callers.
type PresenceRegistry struct {
	// online maps username -> connectedAt (time.Time).
	online sync.Map
}

// NewPresenceRegistry constructs an empty registry.
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{}
}

// MarkOnline records the user as online, refreshing the connected-at timestamp
// if an entry already exists. Marking an online user again is not an error.
func (p *PresenceRegistry) MarkOnline(username string) {
	p.online.Store(username, time.Now())
}

// MarkOffline removes the user's presence entry. Marking an absent user
// offline is a no-op; duplicate disconnect events are expected in practice.
func (p *PresenceRegistry) MarkOffline(username string) {
	p.online.Delete(username)
}

// IsOnline reports whether the user currently has a presence entry.
func (p *PresenceRegistry) IsOnline(username string) bool {
	_, ok := p.online.Load(username)
	return ok
}

// Snapshot returns the usernames currently online. The snapshot is consistent
// at the instant of the call; concurrent churn may be reflected partially.
func (p *PresenceRegistry) Snapshot() []string {
	var usernames []string

	p.online.Range(func(key, _ any) bool {
		usernames = append(usernames, key.(string))
		return true
	})

	return usernames
}
