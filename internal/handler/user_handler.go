/*
Package handler provides HTTP handler functions for user profile management,
currently avatar upload and retrieval via presigned object-storage URLs.
*/
package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"webchat/internal/pkg/auth/jwt"
	"webchat/internal/pkg/errs"
	"webchat/internal/pkg/logx"
	"webchat/internal/pkg/req"
	"webchat/internal/pkg/resp"
)

const (
	// MaxAvatarFileSize caps avatar uploads at 2 MiB.
	MaxAvatarFileSize = 2 << 20

	// presignDuration bounds how long a presigned URL stays usable.
	presignDuration = 15 * time.Minute
)

// allowedAvatarMimeTypes maps accepted MIME types to their object key suffix.
var allowedAvatarMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type PresignAvatarInput struct {
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatarUpload validates the declared avatar metadata and returns
// a presigned upload URL together with the object key the client must confirm
// once the upload completes.
func HandlePresignAvatarUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.Avatars == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext, ok := allowedAvatarMimeTypes[input.MimeType]
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if input.FileSize <= 0 || input.FileSize > MaxAvatarFileSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		key := fmt.Sprintf("avatars/%s/%s%s", payload.Username, uuid.NewString(), ext)

		uploadURL, err := deps.Avatars.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, presignDuration)
		if err != nil {
			logx.Error(err, "Failed to presign avatar upload", "username", payload.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"key":       key,
		})
	}
}

type ConfirmAvatarInput struct {
	Key string `json:"key"`
}

// HandleConfirmAvatar records the uploaded object key as the user's avatar.
// The key must belong to the caller's own avatar namespace.
func HandleConfirmAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input ConfirmAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		expectedPrefix := fmt.Sprintf("avatars/%s/", payload.Username)
		if !strings.HasPrefix(input.Key, expectedPrefix) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Users.UpdateAvatar(r.Context(), payload.Username, input.Key); err != nil {
			logx.Error(err, "Failed to save avatar key", "username", payload.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleAvatarURL resolves a user's stored avatar key into a short-lived
// presigned download URL. Users without an avatar get an empty URL.
func HandleAvatarURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Avatars == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		username := r.URL.Query().Get("username")
		if username == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		user, err := deps.Users.FindByUsername(r.Context(), username)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		if user.AvatarKey == "" {
			resp.RespondSuccess(w, r, map[string]any{"url": ""})
			return
		}

		url, err := deps.Avatars.PresignDownload(r.Context(), user.AvatarKey, presignDuration)
		if err != nil {
			logx.Error(err, "Failed to presign avatar download", "username", username)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"url": url})
	}
}
