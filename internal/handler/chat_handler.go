/*
Package handler provides HTTP handler functions for the chat REST endpoints:
message history, the user roster, and message submission.
*/
package handler

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"webchat/internal/pkg/auth/jwt"
	"webchat/internal/pkg/errs"
	"webchat/internal/pkg/req"
	"webchat/internal/pkg/resp"
)

// MaxMessageContentLength caps the rune count of a single chat message.
const MaxMessageContentLength = 5000

// HandleRecentMessages returns the latest persisted messages, newest first.
// An optional "limit" query parameter narrows the window; the core clamps it.
func HandleRecentMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		views, customErr := deps.Core.RecentMessages(r.Context(), limit)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"messages": views})
	}
}

// HandleRoster returns every registered user annotated with online status and,
// for offline users, the last-seen time.
func HandleRoster(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster, customErr := deps.Core.Roster(r.Context())
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"users": roster})
	}
}

type SendMessageInput struct {
	Content string `json:"content"`
}

// HandleSendMessage persists a message authored by the authenticated user and
// fans it out to all connected subscribers.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if utf8.RuneCountInString(input.Content) > MaxMessageContentLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentTooLong))
			return
		}

		view, customErr := deps.Core.SendMessage(r.Context(), input.Content, payload.Username)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, view)
	}
}
