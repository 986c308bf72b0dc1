/*
Package chat contains the core logic for presence tracking, session-to-identity
binding, and fan-out of message and roster events to connected subscribers.

This file defines the Core struct, which orchestrates the PresenceRegistry,
SessionBinder, and Broadcaster: on connect it registers presence and publishes
the updated roster, on message it persists then broadcasts, and on disconnect
it unregisters and publishes the roster again.
*/
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"webchat/internal/app/store"
	"webchat/internal/pkg/errs"
	"webchat/internal/pkg/logx"
)

// RecentMessagesLimit caps how many messages RecentMessages returns.
const RecentMessagesLimit = 50

// Core orchestrates the presence-and-broadcast subsystem. The registries are
// constructed once at process start and injected; Core is their exclusive
// owner and the only mutator. All methods are safe for concurrent use, and a
// session's termination path may race its own message handling: every
// registry and binder operation is independently idempotent.
type Core struct {
	presence    *PresenceRegistry
	sessions    *SessionBinder
	broadcaster *Broadcaster

	users    store.UserStore
	messages store.MessageStore

	logger zerolog.Logger
}

// NewCore wires the injected registries and stores into a chat core.
func NewCore(
	presence *PresenceRegistry,
	sessions *SessionBinder,
	broadcaster *Broadcaster,
	users store.UserStore,
	messages store.MessageStore,
) *Core {
	return &Core{
		presence:    presence,
		sessions:    sessions,
		broadcaster: broadcaster,
		users:       users,
		messages:    messages,
		logger:      logx.Logger().With().Str("component", "ChatCore").Logger(),
	}
}

// Broadcaster exposes the fan-out point so transports can attach subscribers.
func (c *Core) Broadcaster() *Broadcaster {
	return c.broadcaster
}

// Connect marks a known user online and publishes the updated roster.
// Connecting twice without disconnecting is tolerated. An identity absent from
// the user store yields ErrUserNotFound and no side effect.
func (c *Core) Connect(ctx context.Context, username string) *errs.CustomError {
	if customErr := c.requireKnownUser(ctx, username); customErr != nil {
		return customErr
	}

	c.presence.MarkOnline(username)
	c.touchLastSeen(ctx, username)

	c.logger.Info().Str("username", username).Msg("User connected.")

	c.publishRoster(ctx)
	return nil
}

// Identify binds a transport session to a username and has the same effect as
// Connect. This is the path used when the identity arrives asynchronously
// after the raw transport connection was established.
func (c *Core) Identify(ctx context.Context, sessionID, username string) *errs.CustomError {
	if customErr := c.requireKnownUser(ctx, username); customErr != nil {
		return customErr
	}

	c.sessions.Bind(sessionID, username)
	c.presence.MarkOnline(username)
	c.touchLastSeen(ctx, username)

	c.logger.Info().
		Str("username", username).
		Str("session_id", sessionID).
		Msg("Session identified.")

	c.publishRoster(ctx)
	return nil
}

// Disconnect resolves the session back to a username, marks the user offline,
// records the last-seen time, and publishes the updated roster. A disconnect
// for a session with no known binding is a silent no-op; duplicate disconnect
// notifications are expected under real network conditions.
func (c *Core) Disconnect(ctx context.Context, sessionID string) {
	username, ok := c.sessions.Unbind(sessionID)
	if !ok {
		c.logger.Debug().Str("session_id", sessionID).Msg("Disconnect for unbound session ignored.")
		return
	}

	c.presence.MarkOffline(username)
	c.touchLastSeen(ctx, username)

	c.logger.Info().
		Str("username", username).
		Str("session_id", sessionID).
		Msg("User disconnected.")

	c.publishRoster(ctx)
}

// SendMessage persists a message for a known user and broadcasts the persisted
// view. An unknown author yields ErrUserNotFound: nothing is persisted and
// nothing is broadcast. Empty content is accepted and stored as-is.
func (c *Core) SendMessage(ctx context.Context, content, username string) (*MessageView, *errs.CustomError) {
	if customErr := c.requireKnownUser(ctx, username); customErr != nil {
		return nil, customErr
	}

	rec, err := c.messages.Save(ctx, content, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		c.logger.Error().Err(err).Str("username", username).Msg("Failed to persist message.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	view := MessageView{
		ID:        rec.ID,
		Content:   rec.Content,
		Username:  rec.Username,
		CreatedAt: rec.CreatedAt,
	}

	c.broadcaster.Publish(EventNewMessage, view)

	return &view, nil
}

// RecentMessages returns up to limit persisted messages ordered newest-first.
// A non-positive or oversized limit falls back to RecentMessagesLimit.
func (c *Core) RecentMessages(ctx context.Context, limit int) ([]MessageView, *errs.CustomError) {
	if limit <= 0 || limit > RecentMessagesLimit {
		limit = RecentMessagesLimit
	}

	records, err := c.messages.FindRecent(ctx, limit)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to load recent messages.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	views := make([]MessageView, 0, len(records))
	for _, rec := range records {
		views = append(views, MessageView{
			ID:        rec.ID,
			Content:   rec.Content,
			Username:  rec.Username,
			CreatedAt: rec.CreatedAt,
		})
	}

	return views, nil
}

// Roster produces the full list of known identities annotated with online
// status and last-seen time. Enumeration follows the user store's native
// order; callers must not rely on a stronger ordering guarantee.
func (c *Core) Roster(ctx context.Context) ([]RosterEntry, *errs.CustomError) {
	usernames, err := c.users.ListAllUsernames(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to enumerate usernames.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	roster := make([]RosterEntry, 0, len(usernames))
	for _, username := range usernames {
		entry := RosterEntry{
			Username: username,
			Online:   c.presence.IsOnline(username),
		}

		if !entry.Online {
			entry.LastSeen = c.formatLastSeen(ctx, username)
		}

		roster = append(roster, entry)
	}

	return roster, nil
}

// requireKnownUser verifies the username against the user store. Unknown
// identities are logged at warning level and surfaced as ErrUserNotFound.
func (c *Core) requireKnownUser(ctx context.Context, username string) *errs.CustomError {
	exists, err := c.users.Exists(ctx, username)
	if err != nil {
		c.logger.Error().Err(err).Str("username", username).Msg("User store lookup failed.")
		return errs.NewError(errs.ErrUnknown)
	}

	if !exists {
		c.logger.Warn().Str("username", username).Msg("Operation for unknown identity rejected.")
		return errs.NewError(errs.ErrUserNotFound)
	}

	return nil
}

// touchLastSeen records the current time as the user's last-seen timestamp.
// Failures are diagnostic only; presence state already changed and the
// operation must not be rolled back.
func (c *Core) touchLastSeen(ctx context.Context, username string) {
	if err := c.users.UpdateLastSeen(ctx, username, time.Now()); err != nil {
		c.logger.Error().Err(err).Str("username", username).Msg("Failed to update last-seen timestamp.")
	}
}

// formatLastSeen renders the stored last-seen time for an offline user, or the
// LastSeenNever sentinel when no record exists.
func (c *Core) formatLastSeen(ctx context.Context, username string) string {
	rec, err := c.users.FindByUsername(ctx, username)
	if err != nil || rec.LastSeen == nil {
		return LastSeenNever
	}
	return rec.LastSeen.Format(lastSeenLayout)
}

// publishRoster recomputes the roster and broadcasts it. Failures degrade
// silently: presence state is already consistent and subscribers will receive
// the next successful update.
func (c *Core) publishRoster(ctx context.Context) {
	roster, customErr := c.Roster(ctx)
	if customErr != nil {
		c.logger.Warn().Str("error", customErr.Message).Msg("Skipping roster broadcast after roster failure.")
		return
	}

	c.broadcaster.Publish(EventRosterUpdate, roster)
}
