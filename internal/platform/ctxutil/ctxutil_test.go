// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	"github.com/taibuivan/bookshelf/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Owner verifies that owner claims can be stored in context.
*/
func TestContext_Owner(t *testing.T) {
	ctx := context.Background()

	// 1. Anonymous by default
	assert.Nil(t, ctxutil.GetOwner(ctx))
	assert.False(t, ctxutil.IsOwner(ctx))

	// 2. Inject and retrieve
	claims := &sec.AuthClaims{Role: "owner"}
	claims.Subject = "owner"
	ctx = ctxutil.WithOwner(ctx, claims)

	retrieved := ctxutil.GetOwner(ctx)
	assert.NotNil(t, retrieved)
	assert.Equal(t, "owner", retrieved.Subject)
	assert.True(t, ctxutil.IsOwner(ctx))

	// 3. Other roles are not owners
	ctx = ctxutil.WithOwner(context.Background(), &sec.AuthClaims{Role: "guest"})
	assert.False(t, ctxutil.IsOwner(ctx))
}
