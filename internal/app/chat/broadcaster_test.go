package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// drainOne receives a single event without blocking the test on a stuck channel.
func drainOne(t *testing.T, sub *Subscriber) Event {
	t.Helper()

	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscriber channel closed unexpectedly")
		return ev
	default:
		t.Fatal("expected a buffered event, got none")
		return Event{}
	}
}

func TestBroadcaster_DeliversToAllSubscribers(t *testing.T) {
	req := require.New(t)
	b := NewBroadcaster()

	s1 := b.Attach(8)
	s2 := b.Attach(8)

	b.Publish(EventNewMessage, MessageView{ID: 1, Content: "hi", Username: "alice"})

	for _, sub := range []*Subscriber{s1, s2} {
		ev := drainOne(t, sub)
		req.Equal(EventNewMessage, ev.Kind)

		var view MessageView
		req.NoError(json.Unmarshal(ev.Data, &view))
		req.Equal("hi", view.Content)
		req.Equal("alice", view.Username)
	}
}

func TestBroadcaster_PartialFailureIsolation(t *testing.T) {
	req := require.New(t)
	b := NewBroadcaster()

	s1 := b.Attach(8)
	// Zero capacity with no reader: the first write fails immediately.
	s2 := b.Attach(0)
	s3 := b.Attach(8)
	req.Equal(3, b.Len())

	b.Publish(EventNewMessage, MessageView{ID: 1, Content: "m"})

	req.Equal(2, b.Len())

	ev1 := drainOne(t, s1)
	ev3 := drainOne(t, s3)
	req.Equal(EventNewMessage, ev1.Kind)
	req.Equal(EventNewMessage, ev3.Kind)

	// The failed subscriber's channel is closed.
	_, open := <-s2.Events()
	req.False(open)
}

func TestBroadcaster_PerSubscriberOrdering(t *testing.T) {
	req := require.New(t)
	b := NewBroadcaster()

	sub := b.Attach(8)

	for i := 1; i <= 5; i++ {
		b.Publish(EventNewMessage, MessageView{ID: int64(i)})
	}

	for i := 1; i <= 5; i++ {
		ev := drainOne(t, sub)
		var view MessageView
		req.NoError(json.Unmarshal(ev.Data, &view))
		req.Equal(int64(i), view.ID)
	}
}

func TestBroadcaster_DetachIsIdempotent(t *testing.T) {
	req := require.New(t)
	b := NewBroadcaster()

	sub := b.Attach(8)
	req.Equal(1, b.Len())

	b.Detach(sub)
	b.Detach(sub)
	req.Equal(0, b.Len())

	// Publishing to an empty broadcaster is harmless.
	b.Publish(EventRosterUpdate, []RosterEntry{})
}

func TestBroadcaster_NoBacklogReplay(t *testing.T) {
	req := require.New(t)
	b := NewBroadcaster()

	b.Publish(EventNewMessage, MessageView{ID: 1})

	late := b.Attach(8)
	req.Empty(late.Events())
}
