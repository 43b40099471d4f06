// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/bookshelf/internal/auth"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthService(t *testing.T, password string) (*auth.Service, *sec.TokenService) {
	t.Helper()

	tokens, err := sec.NewTokenService(testSecret, "bookshelf")
	require.NoError(t, err)

	hash := ""
	if password != "" {
		raw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		hash = string(raw)
	}

	return auth.NewService(hash, tokens, time.Hour, discardLogger()), tokens
}

func TestService_Login(t *testing.T) {
	service, tokens := newAuthService(t, "correct horse")
	ctx := context.Background()

	session, err := service.Login(ctx, "correct horse")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	claims, err := tokens.VerifyToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Role)
	assert.Equal(t, auth.OwnerSubject, claims.Subject)

	_, err = service.Login(ctx, "wrong")
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))
}

func TestService_LoginDisabled(t *testing.T) {
	service, _ := newAuthService(t, "")

	assert.False(t, service.Enabled())
	_, err := service.Login(context.Background(), "anything")
	assert.True(t, apperr.HasCode(err, "FORBIDDEN"))
}

func TestHandler_LoginSetsCookie(t *testing.T) {
	service, _ := newAuthService(t, "pw")
	router := auth.NewHandler(service, false).Routes()

	request := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"password":"pw"}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data auth.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.AccessToken)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.Equal(t, body.Data.AccessToken, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestHandler_LoginFailures(t *testing.T) {
	service, _ := newAuthService(t, "pw")
	router := auth.NewHandler(service, false).Routes()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "invalid json", body: `{`, status: http.StatusBadRequest},
		{name: "missing password", body: `{}`, status: http.StatusBadRequest},
		{name: "wrong password", body: `{"password":"nope"}`, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			assert.Empty(t, recorder.Result().Cookies())
		})
	}
}

func TestHandler_LogoutClearsCookie(t *testing.T) {
	service, _ := newAuthService(t, "pw")
	router := auth.NewHandler(service, true).Routes()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
	assert.True(t, cookies[0].Secure)
}
