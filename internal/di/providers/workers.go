package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/lumenapp/lumen-server/internal/config"
	"github.com/lumenapp/lumen-server/internal/importer"
	"github.com/lumenapp/lumen-server/internal/logger"
	"github.com/lumenapp/lumen-server/internal/service"
)

// ImporterHandle wraps the drop-directory importer with shutdown capability.
// Importer is nil when no watch directory is configured.
type ImporterHandle struct {
	*importer.Importer
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ImporterHandle) Shutdown() error {
	if h.Importer == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideImporter provides the drop-directory importer when a watch
// directory is configured.
func ProvideImporter(i do.Injector) (*ImporterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Import.WatchDir == "" {
		log.Info("No watch directory configured, drop-directory import disabled")
		return &ImporterHandle{}, nil
	}

	library := do.MustInvoke[*service.Library](i)

	imp, err := importer.New(cfg.Import.WatchDir, library, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := imp.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("Importer stopped", "error", err)
		}
	}()

	log.Info("Drop-directory importer started", "dir", cfg.Import.WatchDir)

	return &ImporterHandle{Importer: imp, cancel: cancel}, nil
}
