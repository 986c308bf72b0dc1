package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"webchat/internal/app/chat"
	"webchat/internal/app/store"
	"webchat/internal/configs"
	"webchat/internal/pkg/auth/jwt"
	"webchat/internal/pkg/resp"
)

const testJWTSecret = "handler-test-secret"

// fakeUserStore is an in-memory UserStore for handler tests.
type fakeUserStore struct {
	mu     sync.Mutex
	order  []string
	users  map[string]*store.UserRecord
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*store.UserRecord)}
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

// fakeMessageStore is an in-memory MessageStore for handler tests.
type fakeMessageStore struct {
	mu       sync.Mutex
	messages []*store.MessageRecord
	nextID   int64
}

func (f *fakeMessageStore) Save(_ context.Context, content, username string) (*store.MessageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

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

// newTestDeps assembles handler dependencies over in-memory stores.
func newTestDeps() (*AppDeps, *fakeUserStore) {
	users := newFakeUserStore()
	messages := &fakeMessageStore{}

	core := chat.NewCore(
		chat.NewPresenceRegistry(),
		chat.NewSessionBinder(),
		chat.NewBroadcaster(),
		users,
		messages,
	)

	deps := &AppDeps{
		Core: core,
		Config: &configs.AppConfig{
			Environment:    "development",
			Port:           8080,
			AllowedOrigins: []string{},
			JWTSecret:      testJWTSecret,
		},
		Users: users,
	}

	return deps, users
}

// tokenFor mints a valid token for the given username.
func tokenFor(t *testing.T, username string) string {
	t.Helper()

	token, err := jwt.GenerateToken(&jwt.Payload{Username: username}, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// doJSON runs the handler behind the identity middleware with a JSON body and
// optional bearer token, returning the recorded response.
func doJSON(t *testing.T, h http.HandlerFunc, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	jwt.IdentityExtractorMiddleware(testJWTSecret)(h).ServeHTTP(rec, req)
	return rec
}

// decodeResponse parses the standard JSON envelope from the recorder.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) resp.JSONResponse {
	t.Helper()

	var body resp.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
