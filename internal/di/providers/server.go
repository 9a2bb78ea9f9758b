package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/scrapapp/scrap-server/internal/api"
	"github.com/scrapapp/scrap-server/internal/config"
	"github.com/scrapapp/scrap-server/internal/logger"
	"github.com/scrapapp/scrap-server/internal/media/images"
	"github.com/scrapapp/scrap-server/internal/service"
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

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	photos := do.MustInvoke[*images.Processor](i)

	services := &api.Services{
		Auth:       do.MustInvoke[*service.AuthService](i),
		Social:     do.MustInvoke[*service.SocialService](i),
		Membership: do.MustInvoke[*service.MembershipService](i),
		Cascade:    do.MustInvoke[*service.CascadeService](i),
		Action:     do.MustInvoke[*service.ActionService](i),
		Scrap:      do.MustInvoke[*service.ScrapService](i),
		Book:       do.MustInvoke[*service.BookService](i),
		Query:      do.MustInvoke[*service.QueryService](i),
		Utility:    do.MustInvoke[*service.UtilityService](i),
		Search:     do.MustInvoke[*service.SearchService](i),
	}

	storage := &api.StorageServices{
		Photos: photos,
	}

	handler := api.NewServer(storeHandle.Store, services, storage, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
