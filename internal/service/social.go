// Package service provides the business logic layer for the Scrap API:
// relationships, book membership, derived trip statistics, the action
// feed, and the cascading deletion engine.
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

// ActionRecorder persists a social event and fans it out to the audience
// feeds. Implemented by ActionService; split out so relationship operations
// can be tested without push delivery.
type ActionRecorder interface {
	Record(ctx context.Context, actionType domain.ActionType, sender, target domain.Ref) error
}

// SocialService performs the paired mutations of the social graph: friend
// requests, friendships, likes, and threads. Every operation follows the
// pull-then-push rule — remove all occurrences before appending — so a
// retry after a partial failure converges instead of accumulating
// duplicates. When a precondition fails, the operation still repairs both
// sides of the pair before reporting, so malformed state cannot survive a
// rejected call.
type SocialService struct {
	store   *store.Store
	actions ActionRecorder
	logger  *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(store *store.Store, actions ActionRecorder, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:   store,
		actions: actions,
		logger:  logger,
	}
}

// getUser loads the acting author.
func (s *SocialService) getUser(ctx context.Context, userID string) (*domain.Author, error) {
	user, err := s.store.Authors.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("user: %q doesn't exist", userID)
		}
		return nil, fmt.Errorf("getting user %s: %w", userID, err)
	}
	return user, nil
}

// getAuthor loads the other author of a pair.
func (s *SocialService) getAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("author: %q doesn't exist", authorID)
		}
		return nil, fmt.Errorf("getting author %s: %w", authorID, err)
	}
	return author, nil
}

// saveAuthors persists the given authors in order.
func (s *SocialService) saveAuthors(ctx context.Context, authors ...*domain.Author) error {
	for _, a := range authors {
		a.Touch()
		if err := s.store.Authors.Update(ctx, a.ID, a); err != nil {
			return fmt.Errorf("saving author %s: %w", a.ID, err)
		}
	}
	return nil
}

// record persists an action through the recorder. Failures are logged, not
// propagated: the relationship mutation is authoritative and already
// committed by the time the action is recorded.
func (s *SocialService) record(ctx context.Context, actionType domain.ActionType, sender, target domain.Ref) {
	if s.actions == nil {
		return
	}
	if err := s.actions.Record(ctx, actionType, sender, target); err != nil {
		s.logger.Error("failed to record action", "type", actionType, "error", err)
	}
}

// SendFriendRequest adds author to user's outgoing requests and user to
// author's incoming requests. Already-friends and already-pending states
// repair both sides, then report.
func (s *SocialService) SendFriendRequest(ctx context.Context, userID, authorID string) error {
	if userID == authorID {
		return domainerrors.InvalidState("You cannot send a request to yourself")
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return err
	}

	if domain.Contains(user.Friends, authorID) || domain.Contains(author.Friends, userID) {
		user.Friends = domain.Push(user.Friends, authorID)
		author.Friends = domain.Push(author.Friends, userID)
		if err := s.saveAuthors(ctx, user, author); err != nil {
			return err
		}
		return domainerrors.InvalidStatef("You are already friends with %s", author.Pseudonym)
	}

	if domain.Contains(user.OutgoingFriendRequests, authorID) || domain.Contains(author.IncomingFriendRequests, userID) {
		user.OutgoingFriendRequests = domain.Push(user.OutgoingFriendRequests, authorID)
		author.IncomingFriendRequests = domain.Push(author.IncomingFriendRequests, userID)
		if err := s.saveAuthors(ctx, user, author); err != nil {
			return err
		}
		return domainerrors.InvalidStatef("You already sent a friend request to %s", author.Pseudonym)
	}

	user.OutgoingFriendRequests = domain.Push(user.OutgoingFriendRequests, authorID)
	author.IncomingFriendRequests = domain.Push(author.IncomingFriendRequests, userID)
	if err := s.saveAuthors(ctx, user, author); err != nil {
		return err
	}

	s.record(ctx, domain.ActionSendRequest, domain.Ref{Author: userID}, domain.Ref{Author: authorID})
	return nil
}

// RemoveFriendRequest retracts a pending request from user to author.
func (s *SocialService) RemoveFriendRequest(ctx context.Context, userID, authorID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return err
	}

	if domain.Contains(user.Friends, authorID) || domain.Contains(author.Friends, userID) {
		// Friendship wins over any stale pending entries.
		user.OutgoingFriendRequests = domain.Pull(user.OutgoingFriendRequests, authorID)
		user.IncomingFriendRequests = domain.Pull(user.IncomingFriendRequests, authorID)
		author.OutgoingFriendRequests = domain.Pull(author.OutgoingFriendRequests, userID)
		author.IncomingFriendRequests = domain.Pull(author.IncomingFriendRequests, userID)
		user.Friends = domain.Push(user.Friends, authorID)
		author.Friends = domain.Push(author.Friends, userID)
		if err := s.saveAuthors(ctx, user, author); err != nil {
			return err
		}
		return domainerrors.InvalidStatef("You are already friends with %s", author.Pseudonym)
	}

	if !domain.Contains(user.OutgoingFriendRequests, authorID) || !domain.Contains(author.IncomingFriendRequests, userID) {
		user.OutgoingFriendRequests = domain.Pull(user.OutgoingFriendRequests, authorID)
		author.IncomingFriendRequests = domain.Pull(author.IncomingFriendRequests, userID)
		if err := s.saveAuthors(ctx, user, author); err != nil {
			return err
		}
		return domainerrors.InvalidStatef("You haven't yet sent a friend request to %s", author.Pseudonym)
	}

	user.OutgoingFriendRequests = domain.Pull(user.OutgoingFriendRequests, authorID)
	author.IncomingFriendRequests = domain.Pull(author.IncomingFriendRequests, userID)
	return s.saveAuthors(ctx, user, author)
}

// AcceptFriendRequest converts a pending request from author to user into
// a friendship on both sides.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, userID, authorID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if userID == authorID {
		// Self must never appear in any of its own lists.
		user.Friends = domain.Pull(user.Friends, userID)
		user.OutgoingFriendRequests = domain.Pull(user.OutgoingFriendRequests, userID)
		user.IncomingFriendRequests = domain.Pull(user.IncomingFriendRequests, userID)
		if err := s.saveAuthors(ctx, user); err != nil {
			return err
		}
		return domainerrors.InvalidState("You cannot accept a friend request from yourself")
	}

	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return err
	}

	if domain.Contains(user.Friends, authorID) || domain.Contains(author.Friends, userID) {
		user.OutgoingFriendRequests = domain.Pull(user.OutgoingFriendRequests, authorID)
		user.IncomingFriendRequests = domain.Pull(user.IncomingFriendRequests, authorID)
		author.OutgoingFriendRequests = domain.Pull(author.OutgoingFriendRequests, userID)
		author.IncomingFriendRequests = domain.Pull(author.IncomingFriendRequests, userID)
		user.Friends = domain.Push(user.Friends, authorID)
		author.Friends = domain.Push(author.Friends, userID)
		if err := s.saveAuthors(ctx, author, user); err != nil {
			return err
		}
		return domainerrors.InvalidStatef("You are already friends with %s", author.Pseudonym)
	}

	if !domain.Contains(user.IncomingFriendRequests, authorID) || !domain.Contains(author.OutgoingFriendRequests, userID) {
		user.IncomingFriendRequests = domain.Pull(user.IncomingFriendRequests, authorID)
		author.OutgoingFriendRequests = domain.Pull(author.OutgoingFriendRequests, userID)
		if err := s.saveAuthors(ctx, user, author); err != nil {
			return err
		}
		return domainerrors.InvalidStatef("%s hasn't yet sent you a friend request", author.Pseudonym)
	}

	author.OutgoingFriendRequests = domain.Pull(author.OutgoingFriendRequests, userID)
	user.IncomingFriendRequests = domain.Pull(user.IncomingFriendRequests, authorID)
	author.Friends = domain.Push(author.Friends, userID)
	user.Friends = domain.Push(user.Friends, authorID)
	if err := s.saveAuthors(ctx, author, user); err != nil {
		return err
	}

	s.record(ctx, domain.ActionAcceptRequest, domain.Ref{Author: userID}, domain.Ref{Author: authorID})
	return nil
}

// RejectFriendRequest declines a pending request from author to user.
func (s *SocialService) RejectFriendRequest(ctx context.Context, userID, authorID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return err
	}

	if domain.Contains(user.Friends, authorID) || domain.Contains(author.Friends, userID) {
		user.OutgoingFriendRequests = domain.Pull(user.OutgoingFriendRequests, authorID)
		user.IncomingFriendRequests = domain.Pull(user.IncomingFriendRequests, authorID)
		author.OutgoingFriendRequests = domain.Pull(author.OutgoingFriendRequests, userID)
		author.IncomingFriendRequests = domain.Pull(author.IncomingFriendRequests, userID)
		user.Friends = domain.Push(user.Friends, authorID)
		author.Friends = domain.Push(author.Friends, userID)
		if err := s.saveAuthors(ctx, author, user); err != nil {
			return err
		}
		return domainerrors.InvalidStatef("You are already friends with %s", author.Pseudonym)
	}

	if !domain.Contains(author.OutgoingFriendRequests, userID) || !domain.Contains(user.IncomingFriendRequests, authorID) {
		author.OutgoingFriendRequests = domain.Pull(author.OutgoingFriendRequests, userID)
		user.IncomingFriendRequests = domain.Pull(user.IncomingFriendRequests, authorID)
		if err := s.saveAuthors(ctx, user, author); err != nil {
			return err
		}
		return domainerrors.InvalidStatef("%s hasn't yet sent you a friend request", author.Pseudonym)
	}

	author.OutgoingFriendRequests = domain.Pull(author.OutgoingFriendRequests, userID)
	user.IncomingFriendRequests = domain.Pull(user.IncomingFriendRequests, authorID)
	return s.saveAuthors(ctx, author, user)
}

// RemoveFriend dissolves a friendship on both sides.
func (s *SocialService) RemoveFriend(ctx context.Context, userID, authorID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return err
	}

	if !domain.Contains(user.Friends, authorID) {
		user.Friends = domain.Pull(user.Friends, authorID)
		author.Friends = domain.Pull(author.Friends, userID)
		if err := s.saveAuthors(ctx, user, author); err != nil {
			return err
		}
		return domainerrors.InvalidStatef("You are not already friends with %s", author.Pseudonym)
	}

	user.Friends = domain.Pull(user.Friends, authorID)
	author.Friends = domain.Pull(author.Friends, userID)
	return s.saveAuthors(ctx, user, author)
}

// Like adds user to the book's likes and the book to the user's liked
// books.
func (s *SocialService) Like(ctx context.Context, userID, bookID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("book: %q doesn't exist", bookID)
		}
		return fmt.Errorf("getting book %s: %w", bookID, err)
	}

	if book.LikedBy(userID) || domain.Contains(user.LikedBooks, bookID) {
		book.Likes = domain.Push(book.Likes, userID)
		user.LikedBooks = domain.Push(user.LikedBooks, bookID)
		if err := s.saveLikePair(ctx, user, book); err != nil {
			return err
		}
		return domainerrors.InvalidState("User already liked that book")
	}

	book.Likes = domain.Push(book.Likes, userID)
	user.LikedBooks = domain.Push(user.LikedBooks, bookID)
	if err := s.saveLikePair(ctx, user, book); err != nil {
		return err
	}

	s.record(ctx, domain.ActionLikeBook,
		domain.Ref{Author: userID},
		domain.Ref{Author: book.Author, Book: bookID})
	return nil
}

// Unlike removes user from the book's likes and the book from the user's
// liked books.
func (s *SocialService) Unlike(ctx context.Context, userID, bookID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("book: %q doesn't exist", bookID)
		}
		return fmt.Errorf("getting book %s: %w", bookID, err)
	}

	if !book.LikedBy(userID) && !domain.Contains(user.LikedBooks, bookID) {
		book.Likes = domain.Pull(book.Likes, userID)
		user.LikedBooks = domain.Pull(user.LikedBooks, bookID)
		if err := s.saveLikePair(ctx, user, book); err != nil {
			return err
		}
		return domainerrors.InvalidState("User never liked that book")
	}

	book.Likes = domain.Pull(book.Likes, userID)
	user.LikedBooks = domain.Pull(user.LikedBooks, bookID)
	return s.saveLikePair(ctx, user, book)
}

func (s *SocialService) saveLikePair(ctx context.Context, user *domain.Author, book *domain.Book) error {
	user.Touch()
	if err := s.store.Authors.Update(ctx, user.ID, user); err != nil {
		return fmt.Errorf("saving author %s: %w", user.ID, err)
	}
	book.Touch()
	if err := s.store.Books.Update(ctx, book.ID, book); err != nil {
		return fmt.Errorf("saving book %s: %w", book.ID, err)
	}
	return nil
}

// Thread attaches a scrap to a book it does not belong to, mirrored on
// both Book.Threads and Scrap.Threads.
func (s *SocialService) Thread(ctx context.Context, bookID, scrapID string) error {
	book, scrap, err := s.getThreadPair(ctx, bookID, scrapID)
	if err != nil {
		return err
	}

	if scrap.Book == bookID {
		return domainerrors.InvalidState("Scrap already belongs to that book")
	}

	if domain.Contains(book.Threads, scrapID) || domain.Contains(scrap.Threads, bookID) {
		book.Threads = domain.Push(book.Threads, scrapID)
		scrap.Threads = domain.Push(scrap.Threads, bookID)
		if err := s.saveThreadPair(ctx, book, scrap); err != nil {
			return err
		}
		return domainerrors.InvalidState("Scrap is already threaded to that book")
	}

	book.Threads = domain.Push(book.Threads, scrapID)
	scrap.Threads = domain.Push(scrap.Threads, bookID)
	return s.saveThreadPair(ctx, book, scrap)
}

// Unthread detaches a threaded scrap from a book on both sides.
func (s *SocialService) Unthread(ctx context.Context, bookID, scrapID string) error {
	book, scrap, err := s.getThreadPair(ctx, bookID, scrapID)
	if err != nil {
		return err
	}

	if !domain.Contains(book.Threads, scrapID) && !domain.Contains(scrap.Threads, bookID) {
		book.Threads = domain.Pull(book.Threads, scrapID)
		scrap.Threads = domain.Pull(scrap.Threads, bookID)
		if err := s.saveThreadPair(ctx, book, scrap); err != nil {
			return err
		}
		return domainerrors.InvalidState("Scrap was never threaded to that book")
	}

	book.Threads = domain.Pull(book.Threads, scrapID)
	scrap.Threads = domain.Pull(scrap.Threads, bookID)
	return s.saveThreadPair(ctx, book, scrap)
}

func (s *SocialService) getThreadPair(ctx context.Context, bookID, scrapID string) (*domain.Book, *domain.Scrap, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFoundf("book: %q doesn't exist", bookID)
		}
		return nil, nil, fmt.Errorf("getting book %s: %w", bookID, err)
	}
	scrap, err := s.store.Scraps.Get(ctx, scrapID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFoundf("scrap: %q doesn't exist", scrapID)
		}
		return nil, nil, fmt.Errorf("getting scrap %s: %w", scrapID, err)
	}
	return book, scrap, nil
}

func (s *SocialService) saveThreadPair(ctx context.Context, book *domain.Book, scrap *domain.Scrap) error {
	book.Touch()
	if err := s.store.Books.Update(ctx, book.ID, book); err != nil {
		return fmt.Errorf("saving book %s: %w", book.ID, err)
	}
	scrap.Touch()
	if err := s.store.Scraps.Update(ctx, scrap.ID, scrap); err != nil {
		return fmt.Errorf("saving scrap %s: %w", scrap.ID, err)
	}
	return nil
}
