// Package store implements the Badger-backed document store. Entities are
// JSON documents keyed by prefixed ids, with unique secondary indexes for
// identity lookups (email, pseudonym).
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/scrapapp/scrap-server/internal/domain"
	"github.com/scrapapp/scrap-server/internal/normalize"
)

// SearchIndexer is the interface for updating the search index.
// Store callers use this to keep search in sync without depending on the
// search implementation.
type SearchIndexer interface {
	IndexAuthor(ctx context.Context, a *domain.Author) error
	DeleteAuthor(ctx context.Context, authorID string) error
	IndexBook(ctx context.Context, b *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexAuthor is a no-op.
func (NoopSearchIndexer) IndexAuthor(context.Context, *domain.Author) error { return nil }

// DeleteAuthor is a no-op.
func (NoopSearchIndexer) DeleteAuthor(context.Context, string) error { return nil }

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Entity collections
	Authors            *Entity[domain.Author]
	Books              *Entity[domain.Book]
	Scraps             *Entity[domain.Scrap]
	Actions            *Entity[domain.Action]
	ConfirmationTokens *Entity[domain.ConfirmationToken]
	PasswordTokens     *Entity[domain.PasswordToken]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initAuthors()
	store.initBooks()
	store.initScraps()
	store.initActions()
	store.initTokens()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// initAuthors initializes the Authors entity.
// Pseudonym and email are unique, compared case-insensitively.
func (s *Store) initAuthors() {
	s.Authors = NewEntity[domain.Author](s, "author:").
		WithIndexTransform("email",
			func(a *domain.Author) []string {
				return []string{normalize.Email(a.Email)}
			},
			normalize.Email,
		).
		WithIndexTransform("pseudonym",
			func(a *domain.Author) []string {
				return []string{normalize.Pseudonym(a.Pseudonym)}
			},
			normalize.Pseudonym,
		)
}

func (s *Store) initBooks() {
	s.Books = NewEntity[domain.Book](s, "book:")
}

func (s *Store) initScraps() {
	s.Scraps = NewEntity[domain.Scrap](s, "scrap:")
}

func (s *Store) initActions() {
	s.Actions = NewEntity[domain.Action](s, "action:")
}

// initTokens initializes both token entities. Confirmation tokens are
// unique per author; password tokens are unique per email, so issuing a
// replacement token means deleting the old one first.
func (s *Store) initTokens() {
	s.ConfirmationTokens = NewEntity[domain.ConfirmationToken](s, "ctoken:").
		WithIndex("author", func(t *domain.ConfirmationToken) []string {
			return []string{t.Author}
		})

	s.PasswordTokens = NewEntity[domain.PasswordToken](s, "ptoken:").
		WithIndexTransform("email",
			func(t *domain.PasswordToken) []string {
				return []string{normalize.Email(t.Email)}
			},
			normalize.Email,
		)
}
