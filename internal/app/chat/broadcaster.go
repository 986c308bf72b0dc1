/*
Package chat contains the core logic for presence tracking, session-to-identity
binding, and fan-out of message and roster events to connected subscribers.

This file defines the Broadcaster, the fan-out point that pushes each published
event to every attached subscriber and silently drops subscribers that can no
longer accept events.
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"webchat/internal/pkg/logx"
)

// DefaultSubscriberBuffer is the event queue capacity handed to transport
// subscribers. A subscriber whose queue is full at publish time is detached.
const DefaultSubscriberBuffer = 64

// Subscriber is a handle to one attached output channel. The events channel is
// closed when the subscriber is detached, whether by the owner or by the
// Broadcaster after a failed write.
type Subscriber struct {
	id     string
	events chan Event
}

// Events returns the receive side of the subscriber's event queue.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Broadcaster owns the set of attached subscribers and delivers each published
// event to all of them. A write failure on one subscriber never aborts
// delivery to the rest, and failed subscribers are detached on the spot.
type Broadcaster struct {
	// mu protects the subscribers set. Publish holds the read lock while
	// writing to subscriber channels so Detach can never close a channel
	// mid-send.
	mu sync.RWMutex

	subscribers map[*Subscriber]struct{}

	logger zerolog.Logger
}

// NewBroadcaster constructs a Broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[*Subscriber]struct{}),
		logger:      logx.Logger().With().Str("component", "Broadcaster").Logger(),
	}
}

// Attach registers a new subscriber with the given event queue capacity and
// returns its handle. The subscriber receives only events published after the
// attach; there is no backlog replay.
func (b *Broadcaster) Attach(buffer int) *Subscriber {
	sub := &Subscriber{
		id:     uuid.NewString(),
		events: make(chan Event, buffer),
	}

	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	b.logger.Debug().Str("subscriber_id", sub.id).Msg("Subscriber attached.")

	return sub
}

// Detach removes the subscriber and closes its event channel. Detaching a
// subscriber that is already gone is a no-op.
func (b *Broadcaster) Detach(sub *Subscriber) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	_, attached := b.subscribers[sub]
	if attached {
		delete(b.subscribers, sub)
		close(sub.events)
	}
	b.mu.Unlock()

	if attached {
		b.logger.Debug().Str("subscriber_id", sub.id).Msg("Subscriber detached.")
	}
}

// Len returns the number of currently attached subscribers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers)
}

// Publish serializes the payload once and writes the event to every attached
// subscriber. Writes are non-blocking: a subscriber whose queue is full is
// considered gone and is detached, while delivery to the remaining subscribers
// continues. Each subscriber observes events in the order Publish was called.
func (b *Broadcaster) Publish(kind EventKind, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error().Err(err).Str("event_kind", string(kind)).Msg("Failed to serialize event payload.")
		return
	}

	event := Event{Kind: kind, Data: data}

	var failed []*Subscriber

	b.mu.RLock()
	for sub := range b.subscribers {
		select {
		case sub.events <- event:
		default:
			failed = append(failed, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range failed {
		b.logger.Warn().
			Str("subscriber_id", sub.id).
			Str("event_kind", string(kind)).
			Msg("Subscriber queue full, detaching.")

		b.Detach(sub)
	}
}
