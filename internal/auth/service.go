// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements the optional owner login. A single password,
// stored as a bcrypt hash in configuration, unlocks the mutating routes.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/sec"
)

// OwnerSubject is the JWT subject of every owner session.
const OwnerSubject = "owner"

// TokenIssuer signs owner session tokens. [*sec.TokenService] implements it.
type TokenIssuer interface {
	GenerateAccessToken(subject, role string, timeToLive time.Duration) (string, time.Time, error)
}

// Session is an issued owner session.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service checks the owner password and issues session tokens.
type Service struct {
	passwordHash string
	tokens       TokenIssuer
	timeToLive   time.Duration
	logger       *slog.Logger
}

// NewService builds the login service. An empty passwordHash disables login.
func NewService(passwordHash string, tokens TokenIssuer, timeToLive time.Duration, logger *slog.Logger) *Service {
	return &Service{
		passwordHash: passwordHash,
		tokens:       tokens,
		timeToLive:   timeToLive,
		logger:       logger,
	}
}

// Enabled reports whether an owner password is configured.
func (service *Service) Enabled() bool {
	return service.passwordHash != "" && service.tokens != nil
}

// Login verifies password and returns a new session.
//
// # Returns
//   - [apperr.Forbidden] when login is disabled.
//   - [apperr.Unauthorized] when the password does not match.
func (service *Service) Login(ctx context.Context, password string) (*Session, error) {
	if !service.Enabled() {
		return nil, apperr.Forbidden("Owner login is not enabled")
	}

	// bcrypt compares in constant time.
	if !sec.CheckPasswordHash(password, service.passwordHash) {
		service.logger.WarnContext(ctx, "owner_login_rejected")
		return nil, apperr.Unauthorized("Invalid password")
	}

	token, expiresAt, err := service.tokens.GenerateAccessToken(OwnerSubject, constants.OwnerRole, service.timeToLive)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_token_generation_failed: %w", err))
	}

	service.logger.InfoContext(ctx, "owner_logged_in", slog.Time("expires_at", expiresAt))
	return &Session{AccessToken: token, ExpiresAt: expiresAt}, nil
}
