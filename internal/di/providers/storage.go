package providers

import (
	"github.com/samber/do/v2"

	"github.com/lumenapp/lumen-server/internal/config"
	"github.com/lumenapp/lumen-server/internal/logger"
	"github.com/lumenapp/lumen-server/internal/media/images"
)

// ProvideBlobStorage provides the original-file storage rooted under the
// data path.
func ProvideBlobStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	log.Info("Blob storage initialized", "path", cfg.Data.BasePath)

	return storage, nil
}
