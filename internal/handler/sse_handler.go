/*
Package handler provides the Server-Sent Events endpoint, a read-only event
stream for clients that cannot hold a WebSocket. The stream carries the same
broadcast events; presence is tracked only for identified WebSocket sessions.
*/
package handler

import (
	"fmt"
	"net/http"

	"webchat/internal/app/chat"
	"webchat/internal/pkg/auth/jwt"
	"webchat/internal/pkg/errs"
	"webchat/internal/pkg/logx"
	"webchat/internal/pkg/resp"
)

// HandleEventStream attaches a subscriber and streams its events as named SSE
// events until the client goes away or the subscriber is detached for falling
// behind.
func HandleEventStream(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		sub := deps.Core.Broadcaster().Attach(chat.DefaultSubscriberBuffer)
		defer deps.Core.Broadcaster().Detach(sub)

		for {
			select {
			case <-r.Context().Done():
				return
			case event, ok := <-sub.Events():
				if !ok {
					logx.Debug("SSE subscriber detached by broadcaster")
					return
				}

				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, event.Data); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
