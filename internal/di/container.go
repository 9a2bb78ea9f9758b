// Package di provides dependency injection configuration for the Scrap server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/scrapapp/scrap-server/internal/auth"
	"github.com/scrapapp/scrap-server/internal/config"
	"github.com/scrapapp/scrap-server/internal/di/providers"
	"github.com/scrapapp/scrap-server/internal/logger"
	"github.com/scrapapp/scrap-server/internal/mail"
	"github.com/scrapapp/scrap-server/internal/media/images"
	"github.com/scrapapp/scrap-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvidePhotoStorage)
	do.Provide(injector, providers.ProvidePhotoProcessor)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Outbound messaging
	do.Provide(injector, providers.ProvideMailer)
	do.Provide(injector, providers.ProvidePushDispatcher)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideMembershipService)
	do.Provide(injector, providers.ProvideActionService)
	do.Provide(injector, providers.ProvideSocialService)
	do.Provide(injector, providers.ProvideScrapService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideCascadeService)
	do.Provide(injector, providers.ProvideQueryService)
	do.Provide(injector, providers.ProvideUtilityService)
	do.Provide(injector, providers.ProvideAuthService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is
// running. This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*images.Processor](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*mail.Mailer](injector)
	_ = do.MustInvoke[*providers.DispatcherHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.MembershipService](injector)
	_ = do.MustInvoke[*service.ActionService](injector)
	_ = do.MustInvoke[*service.SocialService](injector)
	_ = do.MustInvoke[*service.ScrapService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.CascadeService](injector)
	_ = do.MustInvoke[*service.QueryService](injector)
	_ = do.MustInvoke[*service.UtilityService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index if it came up empty
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
