package api

import (
	"github.com/scrapapp/scrap-server/internal/media/images"
	"github.com/scrapapp/scrap-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth       *service.AuthService
	Social     *service.SocialService
	Membership *service.MembershipService
	Cascade    *service.CascadeService
	Action     *service.ActionService
	Scrap      *service.ScrapService
	Book       *service.BookService
	Query      *service.QueryService
	Utility    *service.UtilityService
	Search     *service.SearchService
}

// StorageServices groups file storage handlers used by the API server.
type StorageServices struct {
	Photos *images.Processor // Scrap photographs
}
