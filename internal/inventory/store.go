// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Repository reads and writes the whole collection held in one named slot.
type Repository interface {
	// Load returns the stored collection. A missing or unparsable slot yields
	// an empty collection; only I/O failures are errors.
	Load(ctx context.Context) ([]Book, error)

	// Save overwrites the slot with the full collection.
	Save(ctx context.Context, books []Book) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// decodeSlot parses a stored slot value. Unparsable data is logged and
// treated as an empty collection.
func decodeSlot(raw []byte, slot string, logger *slog.Logger) []Book {
	if len(raw) == 0 {
		return []Book{}
	}

	var books []Book
	if err := json.Unmarshal(raw, &books); err != nil {
		logger.Warn("slot_unparsable_ignored",
			slog.String("slot", slot),
			slog.Any("error", err),
		)
		return []Book{}
	}
	if books == nil {
		return []Book{}
	}
	return normalize(books)
}

// encodeSlot serializes the collection as a JSON array, never "null".
func encodeSlot(books []Book) ([]byte, error) {
	if books == nil {
		books = []Book{}
	}
	raw, err := json.Marshal(books)
	if err != nil {
		return nil, fmt.Errorf("inventory: encode slot: %w", err)
	}
	return raw, nil
}
