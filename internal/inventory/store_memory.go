// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package inventory

import (
	"context"
	"log/slog"
	"sync"
)

// MemoryRepository keeps the serialized slot in process memory. It is used
// by the "memory" driver and by tests.
type MemoryRepository struct {
	mu     sync.Mutex
	raw    []byte
	logger *slog.Logger

	// SaveErr, when set, is returned by every Save call.
	SaveErr error
}

func NewMemoryRepository(logger *slog.Logger) *MemoryRepository {
	return &MemoryRepository{logger: logger}
}

// Seed stores raw as the slot content, as if written by an earlier process.
func (repository *MemoryRepository) Seed(raw []byte) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.raw = append([]byte(nil), raw...)
}

// Raw returns a copy of the current slot content.
func (repository *MemoryRepository) Raw() []byte {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return append([]byte(nil), repository.raw...)
}

func (repository *MemoryRepository) Load(_ context.Context) ([]Book, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return decodeSlot(repository.raw, "memory", repository.logger), nil
}

func (repository *MemoryRepository) Save(_ context.Context, books []Book) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.SaveErr != nil {
		return repository.SaveErr
	}

	raw, err := encodeSlot(books)
	if err != nil {
		return err
	}
	repository.raw = raw
	return nil
}

func (repository *MemoryRepository) Ping(_ context.Context) error {
	return nil
}
