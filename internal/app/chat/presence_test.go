package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresenceRegistry_MarkOnlineIsIdempotent(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	for range 5 {
		p.MarkOnline("alice")
	}
	req.True(p.IsOnline("alice"))

	p.MarkOffline("alice")
	req.False(p.IsOnline("alice"))
}

func TestPresenceRegistry_MarkOfflineAbsentIsNoOp(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	p.MarkOffline("ghost")
	req.False(p.IsOnline("ghost"))

	// Duplicate offline after a real online/offline cycle stays clean.
	p.MarkOnline("alice")
	p.MarkOffline("alice")
	p.MarkOffline("alice")
	req.False(p.IsOnline("alice"))
}

func TestPresenceRegistry_Snapshot(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	p.MarkOnline("alice")
	p.MarkOnline("bob")
	p.MarkOnline("carol")
	p.MarkOffline("bob")

	req.ElementsMatch([]string{"alice", "carol"}, p.Snapshot())
}

func TestPresenceRegistry_ConcurrentChurn(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	const workers = 16
	var wg sync.WaitGroup

	for i := range workers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			name := fmt.Sprintf("user-%d", n)
			for range 100 {
				p.MarkOnline(name)
				p.MarkOffline(name)
			}
			p.MarkOnline(name)
		}(i)
	}
	wg.Wait()

	for i := range workers {
		req.True(p.IsOnline(fmt.Sprintf("user-%d", i)))
	}
	req.Len(p.Snapshot(), workers)
}
