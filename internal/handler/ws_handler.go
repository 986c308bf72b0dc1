/*
Package handler provides the WebSocket endpoint. Each accepted connection is a
session: the client upgrades anonymously, identifies itself with a signed token
frame, and from then on exchanges chat frames while the write pump streams
broadcast events back.
*/
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"webchat/internal/app/chat"
	"webchat/internal/pkg/auth/jwt"
	"webchat/internal/pkg/errs"
	"webchat/internal/pkg/limiter"
	"webchat/internal/pkg/logx"
	"webchat/internal/pkg/resp"
)

const (
	// writeWait is the maximum time allowed for a single write to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long we wait for a pong before the read deadline fires.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxInboundFrameSize bounds a single inbound frame. Message content is
	// capped by MaxMessageContentLength separately; this guards the transport.
	maxInboundFrameSize = 32 * 1024

	// errorFrameBuffer holds per-session error frames awaiting the write pump.
	errorFrameBuffer = 8
)

// inboundFrame is the envelope for client-to-server frames.
type inboundFrame struct {
	Type    string `json:"type"`
	Token   string `json:"token,omitempty"`
	Content string `json:"content,omitempty"`
}

// outboundFrame is the envelope for server-to-client frames. Payload carries
// the pre-serialized event body.
type outboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsSession holds the per-connection state shared by the read and write pumps.
type wsSession struct {
	id        string
	conn      *websocket.Conn
	deps      *AppDeps
	sub       *chat.Subscriber
	errFrames chan outboundFrame

	// ctx outlives the upgrade request: the request context is canceled once
	// the handler returns, but the session keeps running.
	ctx context.Context

	// identified flips once an identify frame has been accepted. Only the read
	// pump touches it.
	identified bool
	username   string
}

// HandleWebSocket upgrades the connection and runs the session pumps. Upgrades
// are rate limited per client IP.
func HandleWebSocket(deps *AppDeps, connLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(deps.Config.AllowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !connLimiter.GetLimiter(limiter.ClientIP(r)).Allow() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Warn("WebSocket upgrade failed", "error", err)
			return
		}

		session := &wsSession{
			id:        uuid.NewString(),
			conn:      conn,
			deps:      deps,
			sub:       deps.Core.Broadcaster().Attach(chat.DefaultSubscriberBuffer),
			errFrames: make(chan outboundFrame, errorFrameBuffer),
			ctx:       context.Background(),
		}

		go session.writePump()
		go session.readPump()
	}
}

// originChecker allows same-origin requests plus the configured origins. An
// empty allow list admits everything, matching the CORS setup.
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	allowAll := len(allowedOrigins) == 0

	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		_, ok := allowed[origin]
		return ok
	}
}

// readPump consumes inbound frames until the connection drops, then tears the
// session down. It is the only goroutine reading from the connection.
func (s *wsSession) readPump() {
	defer s.teardown()

	s.conn.SetReadLimit(maxInboundFrameSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logx.Warn("WebSocket closed unexpectedly", "session_id", s.id, "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.sendError(errs.NewError(errs.ErrInvalidJSONFormat))
			continue
		}

		switch frame.Type {
		case "identify":
			s.handleIdentify(frame.Token)
		case "message":
			s.handleMessage(frame.Content)
		default:
			s.sendError(errs.NewError(errs.ErrInvalidParams))
		}
	}
}

// handleIdentify verifies the token and binds this session to the identity.
func (s *wsSession) handleIdentify(token string) {
	payload, err := jwt.ParseToken(token, s.deps.Config.JWTSecret)
	if err != nil {
		logx.Warn("WebSocket identify rejected", "session_id", s.id, "error", err)
		s.sendError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	if customErr := s.deps.Core.Identify(s.ctx, s.id, payload.Username); customErr != nil {
		s.sendError(customErr)
		return
	}

	s.identified = true
	s.username = payload.Username
}

// handleMessage submits a chat message on behalf of the identified user.
func (s *wsSession) handleMessage(content string) {
	if !s.identified {
		s.sendError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	if len(content) > MaxMessageContentLength*4 {
		s.sendError(errs.NewError(errs.ErrMessageContentTooLong))
		return
	}

	if _, customErr := s.deps.Core.SendMessage(s.ctx, content, s.username); customErr != nil {
		s.sendError(customErr)
	}
}

// sendError queues an error frame for this session only. Frames are dropped
// if the write pump is saturated.
func (s *wsSession) sendError(customErr *errs.CustomError) {
	body, err := json.Marshal(map[string]any{
		"code":    customErr.Code,
		"message": customErr.Message,
	})
	if err != nil {
		return
	}

	select {
	case s.errFrames <- outboundFrame{Type: "error", Payload: body}:
	default:
	}
}

// writePump drains the subscriber queue and the session's own error frames to
// the peer, keeping the connection alive with pings. It exits when the
// subscriber is detached or a write fails.
func (s *wsSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case event, ok := <-s.sub.Events():
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			frame := outboundFrame{Type: string(event.Kind), Payload: event.Data}
			if err := s.conn.WriteJSON(frame); err != nil {
				return
			}
		case frame := <-s.errFrames:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// teardown detaches the subscriber, reports the disconnect, and closes the
// connection. The read pump owns it.
func (s *wsSession) teardown() {
	s.deps.Core.Broadcaster().Detach(s.sub)
	s.deps.Core.Disconnect(s.ctx, s.id)
	s.conn.Close()
}
