package handler

import (
	"mentorlink/internal/app/backend"
	"mentorlink/internal/app/relay"
	"mentorlink/internal/app/storage"
	"mentorlink/internal/configs"
)

// AppDeps bundles everything the handlers need.
type AppDeps struct {
	Config  *configs.AppConfig
	Backend *backend.Client
	Relay   *relay.Manager

	// Storage is nil when avatar uploads are not configured.
	Storage storage.Service
}
