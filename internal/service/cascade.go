package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/store"
)

// PhotoStore is the image collaborator. Keys resolve to stored JPEG
// photos; Save returns the blurhash placeholder computed at write time.
type PhotoStore interface {
	Save(ctx context.Context, key string, data []byte) (blurhash string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// CascadeService deletes entities together with every reference to them.
// Each cascade runs detach-from-all-collections, then release-external-
// resources, then delete-record, in the fixed order the invariants
// require. A not-found on the root entity aborts before any mutation; a
// not-found on a secondary entity mid-cascade is treated as already
// satisfied and skipped, so an interrupted cascade can be retried.
type CascadeService struct {
	store      *store.Store
	membership *MembershipService
	photos     PhotoStore
	search     store.SearchIndexer
	logger     *slog.Logger
}

// NewCascadeService creates a new cascade service.
func NewCascadeService(
	store *store.Store,
	membership *MembershipService,
	photos PhotoStore,
	search store.SearchIndexer,
	logger *slog.Logger,
) *CascadeService {
	return &CascadeService{
		store:      store,
		membership: membership,
		photos:     photos,
		search:     search,
		logger:     logger,
	}
}

// DeleteAction removes the action from every feed that carries it and
// deletes the record. Terminal: no further cascade.
func (c *CascadeService) DeleteAction(ctx context.Context, actionID string) error {
	if _, err := c.store.Actions.Get(ctx, actionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("action: %q doesn't exist", actionID)
		}
		return fmt.Errorf("getting action %s: %w", actionID, err)
	}
	return c.purgeActions(ctx, []string{actionID})
}

// DeleteScrap removes a scrap and everything that points at it: feed
// actions, the author's headshot reference and scrap sequence, the
// owning book's membership, threads, and the two stored photos.
func (c *CascadeService) DeleteScrap(ctx context.Context, scrapID string) error {
	scrap, err := c.store.Scraps.Get(ctx, scrapID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("scrap: %q doesn't exist", scrapID)
		}
		return fmt.Errorf("getting scrap %s: %w", scrapID, err)
	}

	if err := c.deleteActionsReferencing(ctx, domain.KindScrap, scrapID); err != nil {
		return err
	}

	c.detachScrapFromAuthor(ctx, scrap)

	if scrap.Book != "" {
		if err := c.membership.RemoveScrapFromBook(ctx, scrap.Book, scrapID); err != nil {
			if !domainerrors.Is(err, domainerrors.ErrNotFound) && !domainerrors.Is(err, domainerrors.ErrInvalidState) {
				return err
			}
			c.logger.Debug("book detach already satisfied", "scrap_id", scrapID, "book_id", scrap.Book, "error", err)
		}
	}

	for _, bookID := range scrap.Threads {
		c.dropThreadFromBook(ctx, bookID, scrapID)
	}

	c.releasePhotos(ctx, scrap)

	if err := c.store.Scraps.Delete(ctx, scrapID); err != nil {
		return fmt.Errorf("deleting scrap %s: %w", scrapID, err)
	}
	return nil
}

// DeleteBook removes a book, detaching threads, likes, member scraps,
// and the owner's reference before deleting the record.
func (c *CascadeService) DeleteBook(ctx context.Context, bookID string) error {
	book, err := c.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("book: %q doesn't exist", bookID)
		}
		return fmt.Errorf("getting book %s: %w", bookID, err)
	}

	if err := c.deleteActionsReferencing(ctx, domain.KindBook, bookID); err != nil {
		return err
	}

	for _, scrapID := range book.Threads {
		c.dropThreadFromScrap(ctx, scrapID, bookID)
	}

	for _, authorID := range book.Likes {
		c.dropLikeFromAuthor(ctx, authorID, bookID)
	}

	// Each member scrap is released individually so its own document
	// stops pointing at the doomed book. This skips the full
	// RemoveScrapFromBook path: the per-removal miles and date-range
	// recompute would land on a record deleted a few lines down.
	for _, scrapID := range book.Scraps {
		c.releaseScrapFromBook(ctx, scrapID, bookID)
	}

	c.dropBookFromOwner(ctx, book.Author, bookID)

	if err := c.search.DeleteBook(ctx, bookID); err != nil {
		c.logger.Error("failed to remove book from search index", "book_id", bookID, "error", err)
	}

	if err := c.store.Books.Delete(ctx, bookID); err != nil {
		return fmt.Errorf("deleting book %s: %w", bookID, err)
	}
	return nil
}

// DeleteAuthor removes an account and its entire footprint: every action
// mentioning it, every book and scrap it owns, its likes, its id in
// every other author's relationship lists, and its pending tokens.
func (c *CascadeService) DeleteAuthor(ctx context.Context, authorID string) error {
	author, err := c.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("author: %q doesn't exist", authorID)
		}
		return fmt.Errorf("getting author %s: %w", authorID, err)
	}

	if err := c.deleteActionsReferencing(ctx, domain.KindAuthor, authorID); err != nil {
		return err
	}

	for _, bookID := range author.Books {
		if err := c.DeleteBook(ctx, bookID); err != nil {
			if !domainerrors.Is(err, domainerrors.ErrNotFound) {
				return err
			}
			c.logger.Debug("book already gone during author cascade", "book_id", bookID)
		}
	}

	for _, scrapID := range author.Scraps {
		if err := c.DeleteScrap(ctx, scrapID); err != nil {
			if !domainerrors.Is(err, domainerrors.ErrNotFound) {
				return err
			}
			c.logger.Debug("scrap already gone during author cascade", "scrap_id", scrapID)
		}
	}

	for _, bookID := range author.LikedBooks {
		c.dropLikeFromBook(ctx, bookID, authorID)
	}

	// One pass over all authors clears every relationship list. The
	// pairwise repair operations are pointless once this side is going
	// away entirely.
	_, err = c.store.Authors.UpdateAll(ctx, func(a *domain.Author) bool {
		changed := false
		for _, list := range []*[]string{&a.Friends, &a.IncomingFriendRequests, &a.OutgoingFriendRequests} {
			next := domain.Pull(*list, authorID)
			if len(next) != len(*list) {
				*list = next
				changed = true
			}
		}
		if changed {
			a.Touch()
		}
		return changed
	})
	if err != nil {
		return fmt.Errorf("clearing relationship lists: %w", err)
	}

	// Stale likes from interrupted earlier cascades.
	_, err = c.store.Books.UpdateAll(ctx, func(b *domain.Book) bool {
		next := domain.Pull(b.Likes, authorID)
		if len(next) == len(b.Likes) {
			return false
		}
		b.Likes = next
		b.Touch()
		return true
	})
	if err != nil {
		return fmt.Errorf("clearing book likes: %w", err)
	}

	c.purgeTokens(ctx, author)

	if err := c.search.DeleteAuthor(ctx, authorID); err != nil {
		c.logger.Error("failed to remove author from search index", "author_id", authorID, "error", err)
	}

	if err := c.store.Authors.Delete(ctx, authorID); err != nil {
		return fmt.Errorf("deleting author %s: %w", authorID, err)
	}
	return nil
}

// deleteActionsReferencing removes every action that mentions the entity
// on either side: one bulk pass strips the ids from all feeds, then the
// records are deleted.
func (c *CascadeService) deleteActionsReferencing(ctx context.Context, kind domain.Kind, id string) error {
	actions, err := c.store.Actions.Find(ctx, func(a *domain.Action) bool {
		return a.References(kind, id)
	})
	if err != nil {
		return fmt.Errorf("finding actions referencing %s %s: %w", kind, id, err)
	}
	if len(actions) == 0 {
		return nil
	}

	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.ID
	}
	return c.purgeActions(ctx, ids)
}

// purgeActions strips the action ids from every author feed in one bulk
// pass, then deletes the records.
func (c *CascadeService) purgeActions(ctx context.Context, actionIDs []string) error {
	_, err := c.store.Authors.UpdateAll(ctx, func(a *domain.Author) bool {
		next := domain.PullAll(a.Actions, actionIDs)
		if len(next) == len(a.Actions) {
			return false
		}
		a.Actions = next
		a.Touch()
		return true
	})
	if err != nil {
		return fmt.Errorf("clearing action feeds: %w", err)
	}

	for _, id := range actionIDs {
		if err := c.store.Actions.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting action %s: %w", id, err)
		}
	}
	return nil
}

// detachScrapFromAuthor clears the author-side references to a scrap and
// recomputes the author's miles. A missing author is already detached.
func (c *CascadeService) detachScrapFromAuthor(ctx context.Context, scrap *domain.Scrap) {
	author, err := c.store.Authors.Get(ctx, scrap.Author)
	if err != nil {
		c.logger.Debug("scrap author unresolvable during cascade", "author_id", scrap.Author, "error", err)
		return
	}

	if author.HeadshotAndCover == scrap.ID {
		author.HeadshotAndCover = ""
	}
	author.Scraps = domain.Pull(author.Scraps, scrap.ID)
	author.Touch()
	if err := c.store.Authors.Update(ctx, author.ID, author); err != nil {
		c.logger.Error("failed to detach scrap from author", "author_id", author.ID, "scrap_id", scrap.ID, "error", err)
		return
	}

	if err := c.membership.RecalculateAuthor(ctx, author.ID); err != nil {
		c.logger.Error("failed to recompute author miles", "author_id", author.ID, "error", err)
	}
}

func (c *CascadeService) dropThreadFromBook(ctx context.Context, bookID, scrapID string) {
	book, err := c.store.Books.Get(ctx, bookID)
	if err != nil {
		c.logger.Debug("threaded book unresolvable during cascade", "book_id", bookID, "error", err)
		return
	}
	book.Threads = domain.Pull(book.Threads, scrapID)
	book.Touch()
	if err := c.store.Books.Update(ctx, bookID, book); err != nil {
		c.logger.Error("failed to drop thread from book", "book_id", bookID, "scrap_id", scrapID, "error", err)
	}
}

func (c *CascadeService) dropThreadFromScrap(ctx context.Context, scrapID, bookID string) {
	scrap, err := c.store.Scraps.Get(ctx, scrapID)
	if err != nil {
		c.logger.Debug("threaded scrap unresolvable during cascade", "scrap_id", scrapID, "error", err)
		return
	}
	scrap.Threads = domain.Pull(scrap.Threads, bookID)
	scrap.Touch()
	if err := c.store.Scraps.Update(ctx, scrapID, scrap); err != nil {
		c.logger.Error("failed to drop thread from scrap", "scrap_id", scrapID, "book_id", bookID, "error", err)
	}
}

func (c *CascadeService) dropLikeFromAuthor(ctx context.Context, authorID, bookID string) {
	author, err := c.store.Authors.Get(ctx, authorID)
	if err != nil {
		c.logger.Debug("liking author unresolvable during cascade", "author_id", authorID, "error", err)
		return
	}
	author.LikedBooks = domain.Pull(author.LikedBooks, bookID)
	author.Touch()
	if err := c.store.Authors.Update(ctx, authorID, author); err != nil {
		c.logger.Error("failed to drop like from author", "author_id", authorID, "book_id", bookID, "error", err)
	}
}

func (c *CascadeService) dropLikeFromBook(ctx context.Context, bookID, authorID string) {
	book, err := c.store.Books.Get(ctx, bookID)
	if err != nil {
		c.logger.Debug("liked book unresolvable during cascade", "book_id", bookID, "error", err)
		return
	}
	book.Likes = domain.Pull(book.Likes, authorID)
	book.Touch()
	if err := c.store.Books.Update(ctx, bookID, book); err != nil {
		c.logger.Error("failed to drop like from book", "book_id", bookID, "author_id", authorID, "error", err)
	}
}

// releaseScrapFromBook clears a member scrap's owning-book reference and
// the thread pair, without recomputing the book being deleted.
func (c *CascadeService) releaseScrapFromBook(ctx context.Context, scrapID, bookID string) {
	scrap, err := c.store.Scraps.Get(ctx, scrapID)
	if err != nil {
		c.logger.Debug("member scrap unresolvable during cascade", "scrap_id", scrapID, "error", err)
		return
	}
	if scrap.Book == bookID {
		scrap.Book = ""
	}
	scrap.Threads = domain.Pull(scrap.Threads, bookID)
	scrap.Touch()
	if err := c.store.Scraps.Update(ctx, scrapID, scrap); err != nil {
		c.logger.Error("failed to release scrap from book", "scrap_id", scrapID, "book_id", bookID, "error", err)
	}
}

func (c *CascadeService) dropBookFromOwner(ctx context.Context, authorID, bookID string) {
	author, err := c.store.Authors.Get(ctx, authorID)
	if err != nil {
		c.logger.Debug("book owner unresolvable during cascade", "author_id", authorID, "error", err)
		return
	}
	author.Books = domain.Pull(author.Books, bookID)
	author.Touch()
	if err := c.store.Authors.Update(ctx, authorID, author); err != nil {
		c.logger.Error("failed to drop book from owner", "author_id", authorID, "book_id", bookID, "error", err)
	}
}

// releasePhotos deletes both stored images. External failures are logged
// and do not block the cascade.
func (c *CascadeService) releasePhotos(ctx context.Context, scrap *domain.Scrap) {
	if c.photos == nil {
		return
	}
	for _, key := range []string{scrap.Prograph, scrap.Retrograph} {
		if key == "" {
			continue
		}
		if err := c.photos.Delete(ctx, key); err != nil {
			c.logger.Error("failed to delete photo", "key", key, "scrap_id", scrap.ID, "error", err)
		}
	}
}

// purgeTokens deletes confirmation tokens by author id and password
// tokens by email.
func (c *CascadeService) purgeTokens(ctx context.Context, author *domain.Author) {
	if tok, err := c.store.ConfirmationTokens.GetByIndex(ctx, "author", author.ID); err == nil {
		if err := c.store.ConfirmationTokens.Delete(ctx, tok.ID); err != nil {
			c.logger.Error("failed to delete confirmation token", "token_id", tok.ID, "error", err)
		}
	}
	if tok, err := c.store.PasswordTokens.GetByIndex(ctx, "email", author.Email); err == nil {
		if err := c.store.PasswordTokens.Delete(ctx, tok.ID); err != nil {
			c.logger.Error("failed to delete password token", "token_id", tok.ID, "error", err)
		}
	}
}
