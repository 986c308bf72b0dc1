/*
Package chat contains the core logic for presence tracking, session-to-identity
binding, and fan-out of message and roster events to connected subscribers.

This file defines the event kinds carried by the Broadcaster and the payload
views serialized to clients.
*/
package chat

import "time"

// EventKind identifies the logical broadcast topic of an event.
type EventKind string

const (
	// EventNewMessage carries a MessageView for a freshly persisted chat message.
	EventNewMessage EventKind = "newMessage"

	// EventRosterUpdate carries the full []RosterEntry after a presence change.
	EventRosterUpdate EventKind = "rosterUpdate"
)

// Event is a single broadcast unit delivered to every attached subscriber.
// Data holds the payload serialized exactly once per Publish call.
type Event struct {
	Kind EventKind
	Data []byte
}

// MessageView is the client-facing projection of a persisted chat message.
type MessageView struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// RosterEntry describes one known identity in the room roster.
// LastSeen is empty while the user is online, the formatted clock time of the
// last disconnect when offline, or LastSeenNever if the user never connected.
type RosterEntry struct {
	Username string `json:"username"`
	Online   bool   `json:"online"`
	LastSeen string `json:"lastSeen"`
}

const (
	// LastSeenNever is the roster sentinel for users that never connected.
	LastSeenNever = "Never"

	// lastSeenLayout formats last-seen timestamps as wall-clock time.
	lastSeenLayout = "15:04:05"
)
