package service

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scrapapp/scrap-server/internal/auth"
	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/id"
	"github.com/scrapapp/scrap-server/internal/normalize"
	"github.com/scrapapp/scrap-server/internal/store"
)

// UtilityService is the generic attribute endpoint: read or write one
// field of any entity, addressed by kind, id, and JSON field name. The
// kind set is closed — dispatch goes through the domain.Kind enum, never
// runtime type lookup. A handful of keys are guarded because writing
// them has side effects the caller must not skip.
type UtilityService struct {
	store   *store.Store
	query   *QueryService
	actions ActionRecorder
	mailer  Mailer
	search  store.SearchIndexer
	logger  *slog.Logger
}

// NewUtilityService creates a new utility service.
func NewUtilityService(
	store *store.Store,
	query *QueryService,
	actions ActionRecorder,
	mailer Mailer,
	search store.SearchIndexer,
	logger *slog.Logger,
) *UtilityService {
	return &UtilityService{
		store:   store,
		query:   query,
		actions: actions,
		mailer:  mailer,
		search:  search,
		logger:  logger,
	}
}

// Derived author keys answered by the query service instead of the
// stored document.
const (
	keyRelationship   = "relationship"
	keyPublicBooks    = "publicBooks"
	keyProfileBooks   = "profileBooks"
	keyFeed           = "feed"
	keyUnbookedScraps = "unbookedScraps"
)

// Get reads one field. userID identifies the caller for the derived
// keys that depend on who is asking.
func (s *UtilityService) Get(ctx context.Context, kind domain.Kind, entityID, key, userID string) (any, error) {
	if kind == domain.KindAuthor {
		switch key {
		case keyRelationship:
			return s.query.Relationship(ctx, userID, entityID)
		case keyPublicBooks:
			return s.query.PublicBooks(ctx, entityID)
		case keyProfileBooks:
			return s.query.ProfileBooks(ctx, userID, entityID)
		case keyFeed:
			return s.query.Feed(ctx, entityID)
		case keyUnbookedScraps:
			return s.query.UnbookedScraps(ctx, entityID)
		}
	}

	doc, err := s.loadDocument(ctx, kind, entityID)
	if err != nil {
		return nil, err
	}

	if key == "password_hash" {
		return nil, domainerrors.Forbidden("password_hash is not readable")
	}

	value, ok := doc[key]
	if !ok {
		return nil, domainerrors.Validationf("key: %q doesn't exist in the document", key)
	}
	return value, nil
}

// Set writes one field. Guarded keys run their side effects: password is
// re-hashed, a book turning public is announced, a changed email
// deactivates the account and mails a fresh confirmation, a new
// autobiography notifies friends.
func (s *UtilityService) Set(ctx context.Context, kind domain.Kind, entityID, key string, value any) error {
	switch key {
	case "id", "created_at", "updated_at", "password_hash":
		return domainerrors.Validationf("key: %q cannot be set", key)
	}

	if kind == domain.KindAuthor {
		switch key {
		case "password":
			return s.setPassword(ctx, entityID, value)
		case "email":
			return s.setEmail(ctx, entityID, value)
		case "autobiography":
			return s.setAutobiography(ctx, entityID, value)
		}
	}
	if kind == domain.KindBook && key == "is_public" {
		return s.setBookPublic(ctx, entityID, value)
	}

	switch kind {
	case domain.KindAuthor:
		author, err := setDocumentField(ctx, s.store.Authors, entityID, key, value)
		if err != nil {
			return err
		}
		if err := s.search.IndexAuthor(ctx, author); err != nil {
			s.logger.Error("failed to re-index author", "author_id", entityID, "error", err)
		}
		return nil
	case domain.KindBook:
		book, err := setDocumentField(ctx, s.store.Books, entityID, key, value)
		if err != nil {
			return err
		}
		if err := s.search.IndexBook(ctx, book); err != nil {
			s.logger.Error("failed to re-index book", "book_id", entityID, "error", err)
		}
		return nil
	case domain.KindScrap:
		_, err := setDocumentField(ctx, s.store.Scraps, entityID, key, value)
		return err
	case domain.KindAction:
		_, err := setDocumentField(ctx, s.store.Actions, entityID, key, value)
		return err
	default:
		return domainerrors.Validationf("unknown kind %q", kind)
	}
}

func (s *UtilityService) loadDocument(ctx context.Context, kind domain.Kind, entityID string) (map[string]any, error) {
	var (
		entity any
		err    error
	)
	switch kind {
	case domain.KindAuthor:
		entity, err = s.store.Authors.Get(ctx, entityID)
	case domain.KindBook:
		entity, err = s.store.Books.Get(ctx, entityID)
	case domain.KindScrap:
		entity, err = s.store.Scraps.Get(ctx, entityID)
	case domain.KindAction:
		entity, err = s.store.Actions.Get(ctx, entityID)
	default:
		return nil, domainerrors.Validationf("unknown kind %q", kind)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("id: %q doesn't exist", entityID)
		}
		return nil, fmt.Errorf("getting %s %s: %w", kind, entityID, err)
	}
	return toDocument(entity)
}

func (s *UtilityService) getAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("id: %q doesn't exist", authorID)
		}
		return nil, fmt.Errorf("getting author %s: %w", authorID, err)
	}
	return author, nil
}

func (s *UtilityService) setPassword(ctx context.Context, authorID string, value any) error {
	password, ok := value.(string)
	if !ok {
		return domainerrors.Validation("password must be a string")
	}

	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return domainerrors.Validation(err.Error())
	}
	author.PasswordHash = hashed
	author.Touch()
	if err := s.store.Authors.Update(ctx, authorID, author); err != nil {
		return fmt.Errorf("saving author %s: %w", authorID, err)
	}
	return nil
}

// setEmail changes the address, deactivates the account, and mails a
// fresh confirmation token to the new address.
func (s *UtilityService) setEmail(ctx context.Context, authorID string, value any) error {
	raw, ok := value.(string)
	if !ok {
		return domainerrors.Validation("email must be a string")
	}
	email := normalize.Email(raw)

	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return err
	}

	author.Email = email
	author.Activated = false
	author.Touch()
	if err := s.store.Authors.Update(ctx, authorID, author); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.AlreadyExists("That email is already registered with another account")
		}
		return fmt.Errorf("saving author %s: %w", authorID, err)
	}

	// Confirmation tokens are unique per author, so retire any token
	// issued for the previous address before minting a new one.
	if old, err := s.store.ConfirmationTokens.GetByIndex(ctx, "author", authorID); err == nil {
		if err := s.store.ConfirmationTokens.Delete(ctx, old.ID); err != nil {
			return fmt.Errorf("deleting stale confirmation token: %w", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("looking up confirmation token for %s: %w", authorID, err)
	}

	token := &domain.ConfirmationToken{
		Record: domain.Record{ID: id.MustGenerate("ctoken")},
		Author: authorID,
	}
	token.InitTimestamps()
	if err := s.store.ConfirmationTokens.Create(ctx, token.ID, token); err != nil {
		return fmt.Errorf("creating confirmation token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendActivation(ctx, email, author.FirstName, token.ID); err != nil {
			s.logger.Error("failed to send confirmation email", "author_id", authorID, "error", err)
		}
	}
	return nil
}

func (s *UtilityService) setAutobiography(ctx context.Context, authorID string, value any) error {
	text, ok := value.(string)
	if !ok {
		return domainerrors.Validation("autobiography must be a string")
	}

	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return err
	}

	author.Autobiography = text
	author.Touch()
	if err := s.store.Authors.Update(ctx, authorID, author); err != nil {
		return fmt.Errorf("saving author %s: %w", authorID, err)
	}

	if s.actions != nil {
		if err := s.actions.Record(ctx, domain.ActionUpdateAutobiography,
			domain.Ref{Author: authorID}, domain.Ref{}); err != nil {
			s.logger.Error("failed to record autobiography action", "author_id", authorID, "error", err)
		}
	}
	return nil
}

func (s *UtilityService) setBookPublic(ctx context.Context, bookID string, value any) error {
	isPublic, ok := value.(bool)
	if !ok {
		return domainerrors.Validation("is_public must be a boolean")
	}

	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("id: %q doesn't exist", bookID)
		}
		return fmt.Errorf("getting book %s: %w", bookID, err)
	}

	wasPublic := book.IsPublic
	book.IsPublic = isPublic
	book.Touch()
	if err := s.store.Books.Update(ctx, bookID, book); err != nil {
		return fmt.Errorf("saving book %s: %w", bookID, err)
	}

	if isPublic && !wasPublic && s.actions != nil {
		if err := s.actions.Record(ctx, domain.ActionPostBook,
			domain.Ref{Author: book.Author},
			domain.Ref{Author: book.Author, Book: bookID}); err != nil {
			s.logger.Error("failed to record postBook action", "book_id", bookID, "error", err)
		}
	}

	if err := s.search.IndexBook(ctx, book); err != nil {
		s.logger.Error("failed to re-index book", "book_id", bookID, "error", err)
	}
	return nil
}

// toDocument flattens an entity into its JSON field map.
func toDocument(entity any) (map[string]any, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling document: %w", err)
	}
	return doc, nil
}

// setDocumentField updates one JSON field of an entity by round-tripping
// through its field map, so the write shares the same field names as the
// stored form. Secondary indexes are maintained by the entity update.
func setDocumentField[T any](ctx context.Context, entity *store.Entity[T], entityID, key string, value any) (*T, error) {
	current, err := entity.Get(ctx, entityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("id: %q doesn't exist", entityID)
		}
		return nil, fmt.Errorf("getting %s: %w", entityID, err)
	}

	// Empty omitempty fields don't appear in the map, so a missing key is
	// not an error here; a name the schema doesn't know is dropped by the
	// decoder below and the write becomes a no-op.
	doc, err := toDocument(current)
	if err != nil {
		return nil, err
	}
	doc[key] = value

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	next := new(T)
	if err := json.Unmarshal(raw, next); err != nil {
		return nil, domainerrors.Validationf("value has the wrong type for key %q", key)
	}

	if err := entity.Update(ctx, entityID, next); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("value for key %q is already taken", key)
		}
		return nil, fmt.Errorf("saving %s: %w", entityID, err)
	}
	return next, nil
}
