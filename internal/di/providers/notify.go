package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/scrapapp/scrap-server/internal/config"
	"github.com/scrapapp/scrap-server/internal/logger"
	"github.com/scrapapp/scrap-server/internal/notify"
)

// DispatcherHandle wraps the push dispatcher with its context for
// lifecycle management.
type DispatcherHandle struct {
	*notify.Dispatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DispatcherHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Dispatcher.Shutdown(ctx)
}

// ProvidePushDispatcher provides the Expo push notification dispatcher.
func ProvidePushDispatcher(i do.Injector) (*DispatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dispatcher := notify.NewDispatcher(notify.Options{
		GatewayURL: cfg.Push.GatewayURL,
		QueueSize:  cfg.Push.QueueSize,
		Logger:     log.Logger,
	})

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go dispatcher.Start(ctx)

	log.Info("Push dispatcher started", "gateway", cfg.Push.GatewayURL)

	return &DispatcherHandle{
		Dispatcher: dispatcher,
		cancel:     cancel,
	}, nil
}
