package chat

import (
	"context"
	"sync"
	"time"

	"webchat/internal/app/store"
)

// fakeUserStore is an in-memory UserStore for core tests.
type fakeUserStore struct {
	mu     sync.Mutex
	order  []string
	users  map[string]*store.UserRecord
	nextID int64
}

func newFakeUserStore(usernames ...string) *fakeUserStore {
	f := &fakeUserStore{users: make(map[string]*store.UserRecord)}
	for _, name := range usernames {
		_, _ = f.Create(context.Background(), name, "hash")
	}
	return f
}

func (f *fakeUserStore) Create(_ context.Context, username, passwordHash string) (*store.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[username]; ok {
		return nil, store.ErrDuplicateUsername
	}

	f.nextID++
	rec := &store.UserRecord{
		ID:           f.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.users[username] = rec
	f.order = append(f.order, username)
	return rec, nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*store.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.users[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeUserStore) Exists(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeUserStore) UpdateLastSeen(_ context.Context, username string, ts time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rec, ok := f.users[username]; ok {
		seen := ts
		rec.LastSeen = &seen
	}
	return nil
}

func (f *fakeUserStore) UpdateAvatar(_ context.Context, username, avatarKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rec, ok := f.users[username]; ok {
		rec.AvatarKey = avatarKey
	}
	return nil
}

func (f *fakeUserStore) ListAllUsernames(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.order...), nil
}

// fakeMessageStore is an in-memory MessageStore that counts Save invocations.
type fakeMessageStore struct {
	mu        sync.Mutex
	messages  []*store.MessageRecord
	saveCalls int
	nextID    int64
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (f *fakeMessageStore) Save(_ context.Context, content, username string) (*store.MessageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saveCalls++
	f.nextID++
	rec := &store.MessageRecord{
		ID:        f.nextID,
		Content:   content,
		Username:  username,
		CreatedAt: time.Now(),
	}
	f.messages = append(f.messages, rec)
	return rec, nil
}

func (f *fakeMessageStore) FindRecent(_ context.Context, limit int) ([]*store.MessageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*store.MessageRecord
	for i := len(f.messages) - 1; i >= 0 && len(out) < limit; i-- {
		clone := *f.messages[i]
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeMessageStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.saveCalls
}

// newTestCore assembles a core over fresh registries and the given fakes.
func newTestCore(users store.UserStore, messages store.MessageStore) *Core {
	return NewCore(
		NewPresenceRegistry(),
		NewSessionBinder(),
		NewBroadcaster(),
		users,
		messages,
	)
}
