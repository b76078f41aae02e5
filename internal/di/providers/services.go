package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/lumenapp/lumen-server/internal/backup"
	"github.com/lumenapp/lumen-server/internal/logger"
	"github.com/lumenapp/lumen-server/internal/media/images"
	"github.com/lumenapp/lumen-server/internal/service"
)

// ProvideLibrary provides the library service with its collections loaded.
func ProvideLibrary(i do.Injector) (*service.Library, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobs := do.MustInvoke[*images.Storage](i)
	feedHandle := do.MustInvoke[*ActivityLogHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// No labeler is wired yet; autotagging is a no-op until one exists.
	return service.New(context.Background(), storeHandle.Store, blobs, nil, feedHandle.Log, log.Logger)
}

// ProvideBackupCodec provides the backup export/import codec.
func ProvideBackupCodec(i do.Injector) (*backup.Codec, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewCodec(storeHandle.Store, log.Logger), nil
}
