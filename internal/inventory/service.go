// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package inventory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/pkg/fold"
	"github.com/taibuivan/bookshelf/pkg/slice"
)

// Filter narrows [Service.List].
type Filter struct {
	// Query matches title, author or publisher, ignoring case and accents.
	Query string
	// Origin keeps only records of that origin when set.
	Origin Origin
}

// Option customizes a [Service].
type Option func(*Service)

// WithClock replaces the time source used for local ids.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// WithPlaceholder sets the image given to new records created without one.
func WithPlaceholder(image string) Option {
	return func(service *Service) {
		if image != "" {
			service.placeholder = image
		}
	}
}

// Service owns the live collection. It is safe for concurrent use.
type Service struct {
	mu          sync.RWMutex
	state       State
	repo        Repository
	logger      *slog.Logger
	now         func() time.Time
	placeholder string
}

// NewService hydrates the collection from repo.
func NewService(ctx context.Context, repo Repository, logger *slog.Logger, opts ...Option) (*Service, error) {
	service := &Service{
		repo:        repo,
		logger:      logger,
		now:         time.Now,
		placeholder: constants.DefaultPlaceholderImage,
		state:       State{Books: []Book{}, Fetch: FetchIdle},
	}
	for _, opt := range opts {
		opt(service)
	}

	books, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	service.state.Books = books

	logger.Info("inventory_hydrated", slog.Int("books", len(books)))
	return service, nil
}

// Snapshot returns a copy of the current state.
func (service *Service) Snapshot() State {
	service.mu.RLock()
	defer service.mu.RUnlock()
	return service.state.Clone()
}

// Get returns one record by id.
func (service *Service) Get(id string) (Book, error) {
	service.mu.RLock()
	defer service.mu.RUnlock()

	book, ok := service.state.Find(id)
	if !ok {
		return Book{}, apperr.NotFound("Book")
	}
	return book, nil
}

// List returns the records matching filter in collection order.
func (service *Service) List(filter Filter) []Book {
	books := service.Snapshot().Books

	return slice.Filter(books, func(book Book) bool {
		if filter.Origin != "" && book.Origin != filter.Origin {
			return false
		}
		if filter.Query == "" {
			return true
		}
		return fold.Contains(book.Title, filter.Query) ||
			fold.Contains(book.Author, filter.Query) ||
			fold.Contains(book.Publisher, filter.Query)
	})
}

// Add creates a local record from fields and returns it.
func (service *Service) Add(ctx context.Context, fields Fields) (Book, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	book := NewLocalBook(service.nextLocalID(), fields, service.placeholder)
	if err := service.dispatchLocked(ctx, AddBook{Book: book}); err != nil {
		return Book{}, err
	}

	service.logger.Info("book_created", slog.String("book_id", book.ID))
	return book, nil
}

// Update replaces the editable fields of a local record and returns it.
func (service *Service) Update(ctx context.Context, id string, fields Fields) (Book, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if err := service.dispatchLocked(ctx, UpdateBook{ID: id, Fields: fields}); err != nil {
		if apperr.HasCode(err, "FORBIDDEN") {
			service.logger.Warn("book_update_rejected", slog.String("book_id", id))
		}
		return Book{}, err
	}

	book, _ := service.state.Find(id)
	service.logger.Info("book_updated", slog.String("book_id", id))
	return book, nil
}

// Delete removes a local record once the caller confirmed. It reports whether
// the record was removed; an unconfirmed request changes nothing.
func (service *Service) Delete(ctx context.Context, id string, confirmed bool) (bool, error) {
	// The read-only check comes before the confirmation prompt.
	if IsRemoteID(id) {
		return false, apperr.Forbidden(NoticeCannotDelete)
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	book, ok := service.state.Find(id)
	if !ok {
		return false, apperr.NotFound("Book")
	}
	if book.IsRemote() {
		return false, apperr.Forbidden(NoticeCannotDelete)
	}
	if !confirmed {
		return false, nil
	}

	if err := service.dispatchLocked(ctx, DeleteBook{ID: id}); err != nil {
		return false, err
	}

	service.logger.Warn("book_deleted", slog.String("book_id", id))
	return true, nil
}

// MergeRemote replaces every remote record with books.
func (service *Service) MergeRemote(ctx context.Context, books []Book) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	if err := service.dispatchLocked(ctx, MergeRemote{Books: normalize(books)}); err != nil {
		return err
	}

	service.logger.Info("catalog_merged", slog.Int("remote_books", len(books)))
	return nil
}

// FetchStarted records that the catalog fetch is in flight.
func (service *Service) FetchStarted(ctx context.Context) {
	service.mu.Lock()
	defer service.mu.Unlock()
	_ = service.dispatchLocked(ctx, FetchStarted{})
}

// FetchFailed records a failed catalog fetch with its user-visible message.
func (service *Service) FetchFailed(ctx context.Context, message string) {
	service.mu.Lock()
	defer service.mu.Unlock()
	_ = service.dispatchLocked(ctx, FetchFailedWith{Message: message})
}

// FetchSkipped records a finished fetch whose payload was not consumed.
func (service *Service) FetchSkipped(ctx context.Context) {
	service.mu.Lock()
	defer service.mu.Unlock()
	_ = service.dispatchLocked(ctx, FetchSkipped{})
}

// Ping checks the backing store.
func (service *Service) Ping(ctx context.Context) error {
	return service.repo.Ping(ctx)
}

// dispatchLocked reduces action and, when the collection changed, writes it
// to the store before committing. The caller holds mu.
func (service *Service) dispatchLocked(ctx context.Context, action Action) error {
	next, err := Reduce(service.state, action)
	if err != nil {
		return err
	}

	if action.persists() {
		if err := service.repo.Save(ctx, next.Books); err != nil {
			service.logger.ErrorContext(ctx, "inventory_save_failed", slog.Any("error", err))
			if apperr.IsAppError(err) {
				return err
			}
			return apperr.Internal(err)
		}
	}

	service.state = next
	return nil
}

// nextLocalID returns local-<unix ms>, moving forward one millisecond while
// the id is taken. The caller holds mu.
func (service *Service) nextLocalID() string {
	millis := service.now().UnixMilli()
	for {
		id := LocalID(millis)
		if service.state.indexOf(id) < 0 {
			return id
		}
		millis++
	}
}
