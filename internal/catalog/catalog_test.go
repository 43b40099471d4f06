// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/catalog"
	"github.com/taibuivan/bookshelf/internal/inventory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const recentPayload = `{
	"status": "ok",
	"books": [
		{"id": "123", "title": "Go", "authors": "Rob Pike", "subtitle": "Intro", "image": "https://img/123", "url": "https://www.dbooks.org/123"},
		{"id": 456, "title": "Rust", "authors": "Ferris", "subtitle": "", "image": "https://img/456", "url": "https://www.dbooks.org/456"}
	]
}`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "bookshelf-test", request.Header.Get("User-Agent"))
		writer.WriteHeader(status)
		_, _ = io.WriteString(writer, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Recent(t *testing.T) {
	server := serve(t, http.StatusOK, recentPayload)

	payload, err := catalog.NewClient(server.URL, "bookshelf-test").Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, payload.Books, 2)
	assert.Equal(t, catalog.EntryID("123"), payload.Books[0].ID)
	assert.Equal(t, catalog.EntryID("456"), payload.Books[1].ID)
}

func TestClient_RecentFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		badStatus bool
	}{
		{name: "non-200 without body", status: http.StatusServiceUnavailable, body: ""},
		{name: "non-200 error payload", status: http.StatusServiceUnavailable, body: `{"status":"error"}`, badStatus: true},
		{name: "bad status", status: http.StatusOK, body: `{"status":"error","books":[]}`, badStatus: true},
		{name: "undecodable", status: http.StatusOK, body: `<html>`},
		{name: "missing books", status: http.StatusOK, body: `{"status":"ok"}`},
		{name: "null books", status: http.StatusOK, body: `{"status":"ok","books":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serve(t, tt.status, tt.body)
			_, err := catalog.NewClient(server.URL, "bookshelf-test").Recent(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.badStatus, errors.Is(err, catalog.ErrBadStatus))
		})
	}
}

func TestClient_RecentEmptyBooks(t *testing.T) {
	server := serve(t, http.StatusOK, `{"status":"ok","books":[]}`)

	payload, err := catalog.NewClient(server.URL, "bookshelf-test").Recent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payload.Books)
}

func TestToBooks(t *testing.T) {
	books := catalog.ToBooks([]catalog.Entry{{
		ID: "7", Title: "T", Authors: "A, B", Subtitle: "S", Image: "I", URL: "U",
	}})

	require.Len(t, books, 1)
	assert.Equal(t, inventory.Book{
		ID: "api-7", Origin: inventory.OriginRemote, Title: "T", Author: "A, B",
		Subtitle: "S", Image: "I", URL: "U",
	}, books[0])
	assert.NotNil(t, catalog.ToBooks(nil))
}

// mockSink records the fetch lifecycle.
type mockSink struct{ mock.Mock }

func (m *mockSink) FetchStarted(ctx context.Context) { m.Called() }
func (m *mockSink) FetchFailed(ctx context.Context, message string) {
	m.Called(message)
}
func (m *mockSink) FetchSkipped(ctx context.Context) { m.Called() }
func (m *mockSink) MergeRemote(ctx context.Context, books []inventory.Book) error {
	return m.Called(books).Error(0)
}

func TestFetcher_MergesOnSuccess(t *testing.T) {
	server := serve(t, http.StatusOK, recentPayload)

	sink := &mockSink{}
	sink.On("FetchStarted").Once()
	sink.On("MergeRemote", mock.MatchedBy(func(books []inventory.Book) bool {
		return len(books) == 2 && books[0].ID == "api-123" && books[1].ID == "api-456"
	})).Return(nil).Once()

	fetcher := catalog.NewFetcher(catalog.NewClient(server.URL, "bookshelf-test"), sink, discardLogger())
	fetcher.Start(context.Background())
	fetcher.Start(context.Background())
	<-fetcher.Done()

	sink.AssertExpectations(t)
	sink.AssertNotCalled(t, "FetchFailed", mock.Anything)
}

func TestFetcher_FailureLeavesCollection(t *testing.T) {
	server := serve(t, http.StatusInternalServerError, "")

	sink := &mockSink{}
	sink.On("FetchStarted").Once()
	sink.On("FetchFailed", catalog.FailureMessage).Once()

	fetcher := catalog.NewFetcher(catalog.NewClient(server.URL, "bookshelf-test"), sink, discardLogger())
	fetcher.Start(context.Background())
	<-fetcher.Done()

	sink.AssertExpectations(t)
	sink.AssertNotCalled(t, "MergeRemote", mock.Anything)
}

func TestFetcher_BadStatusIsNotConsumed(t *testing.T) {
	server := serve(t, http.StatusOK, `{"status":"error"}`)

	sink := &mockSink{}
	sink.On("FetchStarted").Once()
	sink.On("FetchSkipped").Once()

	fetcher := catalog.NewFetcher(catalog.NewClient(server.URL, "bookshelf-test"), sink, discardLogger())
	fetcher.Start(context.Background())
	<-fetcher.Done()

	sink.AssertExpectations(t)
	sink.AssertNotCalled(t, "FetchFailed", mock.Anything)
	sink.AssertNotCalled(t, "MergeRemote", mock.Anything)
}

// seededService returns an inventory holding one local and one remote record.
func seededService(t *testing.T) *inventory.Service {
	t.Helper()
	repo := inventory.NewMemoryRepository(discardLogger())
	repo.Seed([]byte(`[
		{"id":"local-1","title":"Mine","author":"Me","email":"a@b.co","age":1,"url":"#"},
		{"id":"api-9","title":"Old","author":"Them","url":"https://www.dbooks.org/9"}
	]`))
	service, err := inventory.NewService(context.Background(), repo, discardLogger())
	require.NoError(t, err)
	return service
}

func TestFetcher_MissingBooksKeepsRemoteRecords(t *testing.T) {
	server := serve(t, http.StatusOK, `{"status":"ok"}`)
	service := seededService(t)

	fetcher := catalog.NewFetcher(catalog.NewClient(server.URL, "bookshelf-test"), service, discardLogger())
	fetcher.Start(context.Background())
	<-fetcher.Done()

	snapshot := service.Snapshot()
	assert.Equal(t, inventory.FetchFailed, snapshot.Fetch)
	assert.Equal(t, catalog.FailureMessage, snapshot.FetchError)
	require.Len(t, snapshot.Books, 2)
	assert.Equal(t, "api-9", snapshot.Books[1].ID)
}

func TestFetcher_BadStatusWithInventory(t *testing.T) {
	server := serve(t, http.StatusOK, `{"status":"error","books":[]}`)
	service := seededService(t)

	fetcher := catalog.NewFetcher(catalog.NewClient(server.URL, "bookshelf-test"), service, discardLogger())
	fetcher.Start(context.Background())
	<-fetcher.Done()

	snapshot := service.Snapshot()
	assert.Equal(t, inventory.FetchLoaded, snapshot.Fetch)
	assert.Empty(t, snapshot.FetchError)
	require.Len(t, snapshot.Books, 2)
	assert.Equal(t, "api-9", snapshot.Books[1].ID)
}

func TestFetcher_WithInventory(t *testing.T) {
	server := serve(t, http.StatusOK, recentPayload)
	ctx := context.Background()

	service, err := inventory.NewService(ctx, inventory.NewMemoryRepository(discardLogger()), discardLogger())
	require.NoError(t, err)
	local, err := service.Add(ctx, inventory.Fields{Title: "Mine", Author: "Me", Email: "a@b.co", Age: 1})
	require.NoError(t, err)

	fetcher := catalog.NewFetcher(catalog.NewClient(server.URL, "bookshelf-test"), service, discardLogger())
	fetcher.Start(ctx)
	<-fetcher.Done()

	snapshot := service.Snapshot()
	assert.Equal(t, inventory.FetchLoaded, snapshot.Fetch)
	require.Len(t, snapshot.Books, 3)
	assert.Equal(t, local.ID, snapshot.Books[0].ID)
	assert.Equal(t, "api-123", snapshot.Books[1].ID)
}
