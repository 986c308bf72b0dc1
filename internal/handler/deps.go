package handler

import (
	"webchat/internal/app/chat"
	"webchat/internal/app/storage"
	"webchat/internal/app/store"
	"webchat/internal/configs"
)

// AppDeps bundles the collaborators shared by the HTTP handlers.
type AppDeps struct {
	Core   *chat.Core
	Config *configs.AppConfig
	Users  store.UserStore

	// Avatars is nil when no storage backend is configured; avatar endpoints
	// then report a storage failure.
	Avatars storage.AvatarStorage
}
