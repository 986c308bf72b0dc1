/*
Package chat contains the core logic for presence tracking, session-to-identity
binding, and fan-out of message and roster events to connected subscribers.

This file defines the SessionBinder, which maps opaque transport session ids to
usernames so that disconnect events can be resolved back to an identity.
*/
package chat

import "sync"

// SessionBinder associates transport session identifiers with usernames.
// Disconnect events carry only a session id; this binder is the sole mechanism
// for recovering who disconnected. All methods are safe for concurrent use.
type SessionBinder struct {
	// bindings maps sessionID -> username.
	bindings sync.Map
}

// NewSessionBinder constructs an empty binder.
func NewSessionBinder() *SessionBinder {
	return &SessionBinder{}
}

// Bind associates the session id with the username. An existing binding for
// the same session id is overwritten (last-writer-wins); a session cannot
// legitimately carry a second identity, so the overwrite only matters on
// duplicated transport events.
func (b *SessionBinder) Bind(sessionID, username string) {
	b.bindings.Store(sessionID, username)
}

// Unbind removes the binding for the session id and returns the username that
// was bound. ok is false when the session was never bound or already unbound;
// callers must treat that as a no-op, not an error.
func (b *SessionBinder) Unbind(sessionID string) (username string, ok bool) {
	value, loaded := b.bindings.LoadAndDelete(sessionID)
	if !loaded {
		return "", false
	}
	return value.(string), true
}

// Lookup returns the username currently bound to the session id, if any.
func (b *SessionBinder) Lookup(sessionID string) (username string, ok bool) {
	value, loaded := b.bindings.Load(sessionID)
	if !loaded {
		return "", false
	}
	return value.(string), true
}
