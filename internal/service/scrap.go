package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/id"
	"github.com/scrapapp/scrap-server/internal/store"
)

// ScrapService creates scraps and serves their photos.
type ScrapService struct {
	store      *store.Store
	photos     PhotoStore
	membership *MembershipService
	logger     *slog.Logger
}

// NewScrapService creates a new scrap service.
func NewScrapService(store *store.Store, photos PhotoStore, membership *MembershipService, logger *slog.Logger) *ScrapService {
	return &ScrapService{
		store:      store,
		photos:     photos,
		membership: membership,
		logger:     logger,
	}
}

// CreateScrapInput is the payload for scrap creation. Prograph is the
// forward-facing photo, Retrograph the rear-facing one; both are
// required.
type CreateScrapInput struct {
	Author      string  `json:"author" validate:"required"`
	Title       string  `json:"title" validate:"omitempty,max=256"`
	Description string  `json:"description" validate:"omitempty,max=4096"`
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
	Place       string  `json:"place" validate:"omitempty,max=256"`
	Location    string  `json:"location" validate:"omitempty,max=256"`
	Book        string  `json:"book" validate:"omitempty"`

	Prograph   []byte `json:"-" validate:"required"`
	Retrograph []byte `json:"-" validate:"required"`

	// CreatedAt backdates the scrap, for imports. Zero means now.
	CreatedAt time.Time `json:"created_at"`
}

// CreateScrap stores both photos, persists the scrap, and threads it
// into the author's chronological sequence. When Book is set the scrap
// joins that book immediately, with the usual recompute.
func (s *ScrapService) CreateScrap(ctx context.Context, input CreateScrapInput) (*domain.Scrap, error) {
	if err := validate.Struct(input); err != nil {
		return nil, domainerrors.ValidationWithDetails("invalid scrap input", err.Error())
	}

	if _, err := s.store.Authors.Get(ctx, input.Author); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("author: %q doesn't exist", input.Author)
		}
		return nil, fmt.Errorf("getting author %s: %w", input.Author, err)
	}

	// Photo keys are plain uuids, not prefixed ids: they name files on
	// disk, not store records.
	prographKey := uuid.NewString()
	retrographKey := uuid.NewString()

	prographHash, err := s.photos.Save(ctx, prographKey, input.Prograph)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeExternal, "failed to store prograph")
	}
	retrographHash, err := s.photos.Save(ctx, retrographKey, input.Retrograph)
	if err != nil {
		// Don't leave the first photo orphaned.
		if cleanupErr := s.photos.Delete(ctx, prographKey); cleanupErr != nil {
			s.logger.Error("failed to clean up prograph", "key", prographKey, "error", cleanupErr)
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeExternal, "failed to store retrograph")
	}

	scrap := &domain.Scrap{
		Record:             domain.Record{ID: id.MustGenerate("scrap")},
		Author:             input.Author,
		Title:              input.Title,
		Description:        input.Description,
		Prograph:           prographKey,
		Retrograph:         retrographKey,
		PrographBlurhash:   prographHash,
		RetrographBlurhash: retrographHash,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		Place:              input.Place,
		Location:           input.Location,
		Threads:            []string{},
	}
	scrap.InitTimestamps()
	if !input.CreatedAt.IsZero() {
		scrap.CreatedAt = input.CreatedAt
	}

	if err := s.store.Scraps.Create(ctx, scrap.ID, scrap); err != nil {
		return nil, fmt.Errorf("creating scrap: %w", err)
	}

	if err := s.membership.AddScrapToAuthor(ctx, input.Author, scrap.ID); err != nil {
		return nil, err
	}

	if input.Book != "" {
		if err := s.membership.AddScrapToBook(ctx, input.Book, scrap.ID); err != nil {
			return nil, err
		}
		scrap.Book = input.Book
	}

	return scrap, nil
}

// GetScrap returns one scrap.
func (s *ScrapService) GetScrap(ctx context.Context, scrapID string) (*domain.Scrap, error) {
	scrap, err := s.store.Scraps.Get(ctx, scrapID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("scrap: %q doesn't exist", scrapID)
		}
		return nil, fmt.Errorf("getting scrap %s: %w", scrapID, err)
	}
	return scrap, nil
}

// Photo returns the stored JPEG for a photo key.
func (s *ScrapService) Photo(ctx context.Context, key string) ([]byte, error) {
	data, err := s.photos.Get(ctx, key)
	if err != nil {
		return nil, domainerrors.NotFoundf("photo: %q doesn't exist", key)
	}
	return data, nil
}

// Exists reports whether a scrap id resolves.
func (s *ScrapService) Exists(ctx context.Context, scrapID string) (bool, error) {
	return s.store.Scraps.Exists(ctx, scrapID)
}
