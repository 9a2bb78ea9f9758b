package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/id"
	"github.com/scrapapp/scrap-server/internal/store"
)

// Pusher queues a push notification for delivery. Delivery is best
// effort; implementations must not block the caller on network I/O.
type Pusher interface {
	Push(token, title, body string)
}

// ActionService translates a social event into a persisted Action plus a
// best-effort push notification to the event's audience. The Action
// record is authoritative; a failed push never rolls it back.
type ActionService struct {
	store  *store.Store
	pusher Pusher
	logger *slog.Logger
}

// NewActionService creates a new action service.
func NewActionService(store *store.Store, pusher Pusher, logger *slog.Logger) *ActionService {
	return &ActionService{
		store:  store,
		pusher: pusher,
		logger: logger,
	}
}

// Record persists the action, appends its id to every audience member's
// feed, and pushes a notification to each member with a registered
// device token. Per-recipient failures are logged and skipped.
func (s *ActionService) Record(ctx context.Context, actionType domain.ActionType, sender, target domain.Ref) error {
	if !actionType.Valid() {
		return domainerrors.Validationf("unknown action type %q", actionType)
	}

	senderAuthor, err := s.store.Authors.Get(ctx, sender.Author)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("author: %q doesn't exist", sender.Author)
		}
		return fmt.Errorf("getting sender %s: %w", sender.Author, err)
	}

	action := &domain.Action{
		Record: domain.Record{ID: id.MustGenerate("action")},
		Type:   actionType,
		Sender: sender,
		Target: target,
	}
	action.InitTimestamps()
	if err := s.store.Actions.Create(ctx, action.ID, action); err != nil {
		return fmt.Errorf("creating action: %w", err)
	}

	subject, err := s.notificationSubject(ctx, actionType, senderAuthor, target)
	if err != nil {
		s.logger.Warn("could not resolve notification subject", "action_id", action.ID, "error", err)
	}
	title, body := actionType.NotificationText(senderAuthor.DisplayName(), subject)

	for _, recipientID := range s.audience(actionType, senderAuthor, target) {
		if err := s.deliver(ctx, action.ID, recipientID, title, body); err != nil {
			s.logger.Error("failed to deliver action",
				"action_id", action.ID,
				"recipient_id", recipientID,
				"error", err)
		}
	}

	return nil
}

// RemoveAction drops an action from one author's feed and deletes the
// record.
func (s *ActionService) RemoveAction(ctx context.Context, authorID, actionID string) error {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("author: %q doesn't exist", authorID)
		}
		return fmt.Errorf("getting author %s: %w", authorID, err)
	}

	author.Actions = domain.Pull(author.Actions, actionID)
	author.Touch()
	if err := s.store.Authors.Update(ctx, authorID, author); err != nil {
		return fmt.Errorf("saving author %s: %w", authorID, err)
	}

	if err := s.store.Actions.Delete(ctx, actionID); err != nil {
		return fmt.Errorf("deleting action %s: %w", actionID, err)
	}
	return nil
}

// audience resolves the recipient author ids for an action type. The
// sender never notifies itself.
func (s *ActionService) audience(actionType domain.ActionType, sender *domain.Author, target domain.Ref) []string {
	var ids []string
	switch actionType.Audience() {
	case domain.AudienceAcquaintances:
		ids = sender.Acquaintances()
	case domain.AudienceFriends:
		ids = sender.Friends
	default:
		if target.Author != "" {
			ids = []string{target.Author}
		}
	}
	return domain.Pull(ids, sender.ID)
}

// notificationSubject resolves the text the notification body is built
// from: the book title for like/post events, the new autobiography for
// profile updates.
func (s *ActionService) notificationSubject(ctx context.Context, actionType domain.ActionType, sender *domain.Author, target domain.Ref) (string, error) {
	switch actionType {
	case domain.ActionLikeBook, domain.ActionPostBook:
		if target.Book == "" {
			return "", nil
		}
		book, err := s.store.Books.Get(ctx, target.Book)
		if err != nil {
			return "", fmt.Errorf("getting book %s: %w", target.Book, err)
		}
		return book.Title, nil
	case domain.ActionUpdateAutobiography:
		return sender.Autobiography, nil
	default:
		return "", nil
	}
}

// deliver appends the action to one recipient's feed and pushes the
// notification if the recipient has a device token.
func (s *ActionService) deliver(ctx context.Context, actionID, recipientID, title, body string) error {
	recipient, err := s.store.Authors.Get(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("getting recipient %s: %w", recipientID, err)
	}

	recipient.Actions = domain.Push(recipient.Actions, actionID)
	recipient.Touch()
	if err := s.store.Authors.Update(ctx, recipientID, recipient); err != nil {
		return fmt.Errorf("saving recipient %s: %w", recipientID, err)
	}

	if s.pusher != nil && recipient.PushToken != "" {
		s.pusher.Push(recipient.PushToken, title, body)
	}
	return nil
}
