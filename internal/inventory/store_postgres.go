// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/bookshelf/internal/platform/database/schema"
	"github.com/taibuivan/bookshelf/internal/platform/dberr"
	"github.com/taibuivan/bookshelf/internal/platform/postgres"
)

// PostgresRepository stores the slot as one jsonb row of kv_slot.
type PostgresRepository struct {
	db     *pgxpool.Pool
	slot   string
	logger *slog.Logger
}

func NewPostgresRepository(db *pgxpool.Pool, slot string, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, slot: slot, logger: logger}
}

func (repository *PostgresRepository) Load(ctx context.Context) ([]Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.KVSlot.Value, schema.KVSlot.Table, schema.KVSlot.Name,
	)

	var raw []byte
	err := repository.db.QueryRow(ctx, query, repository.slot).Scan(&raw)
	if dberr.IsNoRows(err) {
		return []Book{}, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "load_slot")
	}

	return decodeSlot(raw, repository.slot, repository.logger), nil
}

func (repository *PostgresRepository) Save(ctx context.Context, books []Book) error {
	raw, err := encodeSlot(books)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = NOW()
	`,
		schema.KVSlot.Table, schema.KVSlot.Name, schema.KVSlot.Value, schema.KVSlot.UpdatedAt,
		schema.KVSlot.Name,
		schema.KVSlot.Value, schema.KVSlot.Value,
		schema.KVSlot.UpdatedAt,
	)

	_, err = repository.db.Exec(ctx, query, repository.slot, string(raw))
	return dberr.Wrap(err, "save_slot")
}

func (repository *PostgresRepository) Ping(ctx context.Context) error {
	return postgres.Ping(ctx, repository.db)
}
