// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package inventory

import (
	"context"
	"errors"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/redis"
)

// RedisRepository stores the slot as a single string key.
type RedisRepository struct {
	client *goredis.Client
	key    string
	slot   string
	logger *slog.Logger
}

func NewRedisRepository(client *goredis.Client, slot string, logger *slog.Logger) *RedisRepository {
	return &RedisRepository{
		client: client,
		key:    constants.RedisPrefixSlot + slot,
		slot:   slot,
		logger: logger,
	}
}

func (repository *RedisRepository) Load(ctx context.Context) ([]Book, error) {
	raw, err := repository.client.Get(ctx, repository.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return []Book{}, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return decodeSlot(raw, repository.slot, repository.logger), nil
}

func (repository *RedisRepository) Save(ctx context.Context, books []Book) error {
	raw, err := encodeSlot(books)
	if err != nil {
		return err
	}

	// No expiry: the slot lives until overwritten.
	if err := repository.client.Set(ctx, repository.key, raw, 0).Err(); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (repository *RedisRepository) Ping(ctx context.Context) error {
	return redis.Ping(ctx, repository.client)
}
