// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	"github.com/taibuivan/bookshelf/internal/platform/respond"
	"github.com/taibuivan/bookshelf/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the owner session token.
//
// # Flow
//  1. A nil verifier means authentication is disabled; requests pass untouched.
//  2. 'Authorization: Bearer <token>' is checked first; a bad header is a 401.
//  3. Otherwise the session cookie is checked; a stale cookie is ignored.
//  4. Verified claims are injected into the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}

		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Bearer header ──────────────────────────────────────────────
			if authHeader := request.Header.Get(constants.HeaderAuthorization); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
					respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
					return
				}

				claims, err := verifier.VerifyToken(parts[1])
				if err != nil {
					respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
					return
				}

				next.ServeHTTP(writer, request.WithContext(ctxutil.WithOwner(request.Context(), claims)))
				return
			}

			// ── 2. Session cookie ─────────────────────────────────────────────
			if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
				if claims, err := verifier.VerifyToken(cookie.Value); err == nil {
					request = request.WithContext(ctxutil.WithOwner(request.Context(), claims))
				}
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireOwner blocks JSON API requests without an owner session.
// When enabled is false every request passes.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireOwner(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}

		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !ctxutil.IsOwner(request.Context()) {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// RequireOwnerPage is the HTML counterpart of [RequireOwner]: anonymous
// visitors are redirected to the login page and sent back afterwards.
func RequireOwnerPage(enabled bool, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}

		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !ctxutil.IsOwner(request.Context()) {
				target := loginPath + "?next=" + url.QueryEscape(request.URL.RequestURI())
				http.Redirect(writer, request, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
