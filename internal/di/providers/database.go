package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/lumenapp/lumen-server/internal/activity"
	"github.com/lumenapp/lumen-server/internal/config"
	"github.com/lumenapp/lumen-server/internal/logger"
	"github.com/lumenapp/lumen-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the record database.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.StorePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Record database initialized", "path", cfg.StorePath())

	return &StoreHandle{Store: db}, nil
}

// ActivityLogHandle wraps the activity log with its retention pruner.
type ActivityLogHandle struct {
	*activity.Log
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ActivityLogHandle) Shutdown() error {
	h.cancel()
	return h.Close()
}

// ProvideActivityLog provides the activity feed database and starts a
// background job pruning events past the configured retention.
func ProvideActivityLog(i do.Injector) (*ActivityLogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	feed, err := activity.Open(cfg.ActivityPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go pruneLoop(ctx, feed, cfg.Feed.Retention, log)

	log.Info("Activity log initialized", "path", cfg.ActivityPath(), "retention", cfg.Feed.Retention)

	return &ActivityLogHandle{Log: feed, cancel: cancel}, nil
}

// pruneLoop removes expired activity events once a day.
func pruneLoop(ctx context.Context, feed *activity.Log, retention time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := feed.Prune(ctx, retention)
			if err != nil {
				log.Warn("Activity prune failed", "error", err)
				continue
			}
			if pruned > 0 {
				log.Info("Activity events pruned", "count", pruned)
			}
		}
	}
}
