package providers

import (
	"github.com/samber/do/v2"

	"github.com/scrapapp/scrap-server/internal/auth"
	"github.com/scrapapp/scrap-server/internal/config"
	"github.com/scrapapp/scrap-server/internal/logger"
	"github.com/scrapapp/scrap-server/internal/mail"
	"github.com/scrapapp/scrap-server/internal/media/images"
	"github.com/scrapapp/scrap-server/internal/service"
)

// ProvideMembershipService provides the scrap/book membership service.
func ProvideMembershipService(i do.Injector) (*service.MembershipService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMembershipService(storeHandle.Store, log.Logger), nil
}

// ProvideActionService provides the action recording service.
func ProvideActionService(i do.Injector) (*service.ActionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	dispatcherHandle := do.MustInvoke[*DispatcherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewActionService(storeHandle.Store, dispatcherHandle.Dispatcher, log.Logger), nil
}

// ProvideSocialService provides the friend graph and like/thread service.
func ProvideSocialService(i do.Injector) (*service.SocialService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	actionService := do.MustInvoke[*service.ActionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSocialService(storeHandle.Store, actionService, log.Logger), nil
}

// ProvideScrapService provides the scrap service.
func ProvideScrapService(i do.Injector) (*service.ScrapService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	photos := do.MustInvoke[*images.Processor](i)
	membershipService := do.MustInvoke[*service.MembershipService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewScrapService(storeHandle.Store, photos, membershipService, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	membershipService := do.MustInvoke[*service.MembershipService](i)
	actionService := do.MustInvoke[*service.ActionService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(
		storeHandle.Store,
		membershipService,
		actionService,
		indexHandle.SearchIndex,
		log.Logger,
	), nil
}

// ProvideCascadeService provides the cascading deletion service.
func ProvideCascadeService(i do.Injector) (*service.CascadeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	membershipService := do.MustInvoke[*service.MembershipService](i)
	photos := do.MustInvoke[*images.Processor](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCascadeService(
		storeHandle.Store,
		membershipService,
		photos,
		indexHandle.SearchIndex,
		log.Logger,
	), nil
}

// ProvideQueryService provides the derived read-query service.
func ProvideQueryService(i do.Injector) (*service.QueryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewQueryService(storeHandle.Store, log.Logger), nil
}

// ProvideUtilityService provides the generic field get/set service.
func ProvideUtilityService(i do.Injector) (*service.UtilityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	queryService := do.MustInvoke[*service.QueryService](i)
	actionService := do.MustInvoke[*service.ActionService](i)
	mailer := do.MustInvoke[*mail.Mailer](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUtilityService(
		storeHandle.Store,
		queryService,
		actionService,
		mailer,
		indexHandle.SearchIndex,
		log.Logger,
	), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	mailer := do.MustInvoke[*mail.Mailer](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(
		storeHandle.Store,
		tokenService,
		mailer,
		indexHandle.SearchIndex,
		cfg.Auth.PasswordTokenDuration,
		log.Logger,
	), nil
}
