// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/taibuivan/bookshelf/internal/inventory"
	"github.com/taibuivan/bookshelf/pkg/slice"
)

// FailureMessage is shown to the user when the fetch did not succeed.
const FailureMessage = "Failed to fetch books"

// Source returns the remote listing. [*Client] implements it.
type Source interface {
	Recent(ctx context.Context) (*RecentResponse, error)
}

// Sink receives the fetch lifecycle. [*inventory.Service] implements it.
type Sink interface {
	FetchStarted(ctx context.Context)
	FetchFailed(ctx context.Context, message string)
	FetchSkipped(ctx context.Context)
	MergeRemote(ctx context.Context, books []inventory.Book) error
}

// Fetcher runs the catalog fetch at most once.
type Fetcher struct {
	source Source
	sink   Sink
	logger *slog.Logger
	once   sync.Once
	done   chan struct{}
}

func NewFetcher(source Source, sink Sink, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		sink:   sink,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start marks the fetch as loading and runs it in the background. Later
// calls do nothing. The fetch ends with ctx.
func (f *Fetcher) Start(ctx context.Context) {
	f.once.Do(func() {
		f.sink.FetchStarted(ctx)
		go func() {
			defer close(f.done)
			f.run(ctx)
		}()
	})
}

// Done is closed once a started fetch has finished.
func (f *Fetcher) Done() <-chan struct{} {
	return f.done
}

func (f *Fetcher) run(ctx context.Context) {
	f.logger.Info("catalog_fetch_started")

	payload, err := f.source.Recent(ctx)
	if errors.Is(err, ErrBadStatus) {
		f.logger.Info("catalog_fetch_skipped", slog.Any("reason", err))
		f.sink.FetchSkipped(ctx)
		return
	}
	if err != nil {
		f.logger.Error("catalog_fetch_failed", slog.Any("error", err))
		f.sink.FetchFailed(ctx, FailureMessage)
		return
	}

	books := ToBooks(payload.Books)
	if err := f.sink.MergeRemote(ctx, books); err != nil {
		f.logger.Error("catalog_merge_failed", slog.Any("error", err))
		f.sink.FetchFailed(ctx, FailureMessage)
		return
	}

	f.logger.Info("catalog_fetch_succeeded", slog.Int("books", len(books)))
}

// ToBooks maps catalog entries to read-only records.
func ToBooks(entries []Entry) []inventory.Book {
	books := slice.Map(entries, func(entry Entry) inventory.Book {
		return inventory.NewRemoteBook(string(entry.ID), entry.Title, entry.Authors, entry.Subtitle, entry.Image, entry.URL)
	})
	if books == nil {
		return []inventory.Book{}
	}
	return books
}
