// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/platform/sqlite"
)

func TestOpen_CreatesSchema(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "nested", "shelf.db")

	db, err := sqlite.Open(context.Background(), path, logger)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'kv_slot'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Reopening an existing file is idempotent.
	require.NoError(t, db.Close())
	db, err = sqlite.Open(context.Background(), path, logger)
	require.NoError(t, err)
	assert.NoError(t, sqlite.Ping(context.Background(), db))
}
