// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Inventory: Id prefixes, the placeholder cover, and upload limits.
  - Security: JWT issuer and cookie configuration.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "bookshelf"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Image uploads of up to 5 MiB must fit in it.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Inventory

const (
	// LocalIDPrefix marks records created through the form.
	LocalIDPrefix = "local-"

	// RemoteIDPrefix marks records obtained from the remote catalog.
	RemoteIDPrefix = "api-"

	// LocalBookURL is the detail link stored on every local record.
	LocalBookURL = "#"

	// DefaultPlaceholderImage is the cover used when a new record has none.
	DefaultPlaceholderImage = "https://placeholder.com/150"

	// DefaultSlotName is the storage slot holding the serialized collection.
	DefaultSlotName = "books"

	// MaxImageBytes is the largest accepted cover upload (5 MiB).
	MaxImageBytes = 5 * 1024 * 1024

	// MaxUploadBodyBytes bounds multipart bodies: the image plus the text fields.
	MaxUploadBodyBytes = MaxImageBytes + 1024*1024

	// MaxJSONBodyBytes bounds JSON bodies: a base64 data URL of the largest
	// image plus the text fields.
	MaxJSONBodyBytes = (MaxImageBytes+2)/3*4 + 1024*1024

	// MaxFieldBytes bounds a single text field of a multipart form.
	MaxFieldBytes = 64 * 1024
)

// # Remote Catalog

const (
	// DefaultCatalogURL is the "recent books" listing fetched once at startup.
	DefaultCatalogURL = "https://www.dbooks.org/api/recent"

	// CatalogStatusOK is the only status value whose payload is consumed.
	CatalogStatusOK = "ok"

	// CatalogRequestsPerSecond caps outgoing catalog requests.
	CatalogRequestsPerSecond = 1
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "bookshelf"

	// OwnerRole is the only role this service issues.
	OwnerRole = "owner"

	// AccessTokenCookieName is the cookie carrying the owner session for HTML flows.
	AccessTokenCookieName = "access_token"

	// AccessTokenCookiePath scopes the session cookie to the whole site.
	AccessTokenCookiePath = "/"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSlot = "bookshelf:slot:"
)
