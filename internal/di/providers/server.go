package providers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/samber/do/v2"

	"github.com/lumenapp/lumen-server/internal/api"
	"github.com/lumenapp/lumen-server/internal/backup"
	"github.com/lumenapp/lumen-server/internal/config"
	"github.com/lumenapp/lumen-server/internal/logger"
	"github.com/lumenapp/lumen-server/internal/mdns"
	"github.com/lumenapp/lumen-server/internal/media/images"
	"github.com/lumenapp/lumen-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	library := do.MustInvoke[*service.Library](i)
	blobs := do.MustInvoke[*images.Storage](i)
	codec := do.MustInvoke[*backup.Codec](i)
	feedHandle := do.MustInvoke[*ActivityLogHandle](i)

	handler := api.NewServer(library, blobs, codec, feedHandle.Log, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr, "name", cfg.Server.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}

// MDNSServiceHandle wraps the mDNS advertiser with shutdown capability.
type MDNSServiceHandle struct {
	*mdns.Service
}

// Shutdown implements do.Shutdownable.
func (h *MDNSServiceHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideMDNSService advertises the server on the local network.
// Advertisement failure is non-fatal; some environments have no multicast.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Depend on the HTTP server so advertisement starts after it listens.
	_ = do.MustInvoke[*HTTPServerHandle](i)

	svc := mdns.NewService(log.Logger)

	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil {
		port = 8080
	}

	if err := svc.Start(cfg.Server.Name, port); err != nil {
		log.Warn("mDNS advertisement unavailable", "error", err)
	}

	return &MDNSServiceHandle{Service: svc}, nil
}
