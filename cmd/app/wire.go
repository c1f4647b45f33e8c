//go:build wireinject
// +build wireinject

package main

import (
	"rewear/config"
	"rewear/internal/command"
	"rewear/internal/cron"
	"rewear/internal/database"
	"rewear/internal/handler"
	"rewear/internal/identity"
	"rewear/internal/media"
	"rewear/internal/middleware"
	"rewear/internal/router"
	"rewear/internal/service"
	"rewear/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init application.
func wireApp(*config.Configuration, *zap.Logger) (*App, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			identity.ProviderSet,
			media.ProviderSet,
			service.ProviderSet,
			handler.ProviderSet,
			middleware.ProviderSet,
			router.ProviderSet,
			cron.ProviderSet,
			newHttpServer,
			telemetry.ProviderSet,
			newApp,
		),
	)
}

// wireCommand init command.
func wireCommand(*config.Configuration, *zap.Logger) (*command.Command, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			identity.ProviderSet,
			telemetry.ProviderSet,
			service.ProviderSet,
			command.ProviderSet,
		),
	)
}
