// Package di provides dependency injection configuration for the Lumen server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/lumenapp/lumen-server/internal/backup"
	"github.com/lumenapp/lumen-server/internal/config"
	"github.com/lumenapp/lumen-server/internal/di/providers"
	"github.com/lumenapp/lumen-server/internal/logger"
	"github.com/lumenapp/lumen-server/internal/media/images"
	"github.com/lumenapp/lumen-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideActivityLog)

	// Storage layer
	do.Provide(injector, providers.ProvideBlobStorage)

	// Business services
	do.Provide(injector, providers.ProvideLibrary)
	do.Provide(injector, providers.ProvideBackupCodec)

	// Workers
	do.Provide(injector, providers.ProvideImporter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ActivityLogHandle](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*service.Library](injector)
	_ = do.MustInvoke[*backup.Codec](injector)
	_ = do.MustInvoke[*providers.ImporterHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	return nil
}
