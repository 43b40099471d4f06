// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/bookshelf/internal/platform/database/schema"
	"github.com/taibuivan/bookshelf/internal/platform/dberr"
	"github.com/taibuivan/bookshelf/internal/platform/sqlite"
)

// SQLiteRepository stores the slot as one row of the kv_slot table.
type SQLiteRepository struct {
	db     *sql.DB
	slot   string
	logger *slog.Logger
}

func NewSQLiteRepository(db *sql.DB, slot string, logger *slog.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, slot: slot, logger: logger}
}

func (repository *SQLiteRepository) Load(ctx context.Context) ([]Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		schema.KVSlot.Value, schema.KVSlot.Table, schema.KVSlot.Name,
	)

	var raw string
	err := repository.db.QueryRowContext(ctx, query, repository.slot).Scan(&raw)
	if dberr.IsNoRows(err) {
		return []Book{}, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "load_slot")
	}

	return decodeSlot([]byte(raw), repository.slot, repository.logger), nil
}

func (repository *SQLiteRepository) Save(ctx context.Context, books []Book) error {
	raw, err := encodeSlot(books)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?)
		ON CONFLICT(%s) DO UPDATE SET %s = excluded.%s, %s = excluded.%s
	`,
		schema.KVSlot.Table, schema.KVSlot.Name, schema.KVSlot.Value, schema.KVSlot.UpdatedAt,
		schema.KVSlot.Name,
		schema.KVSlot.Value, schema.KVSlot.Value,
		schema.KVSlot.UpdatedAt, schema.KVSlot.UpdatedAt,
	)

	_, err = repository.db.ExecContext(ctx, query,
		repository.slot, string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return dberr.Wrap(err, "save_slot")
}

func (repository *SQLiteRepository) Ping(ctx context.Context) error {
	return sqlite.Ping(ctx, repository.db)
}
