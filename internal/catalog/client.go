// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package catalog fetches the remote "recent books" listing and merges it
// into the inventory once per process start.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/bookshelf/internal/platform/constants"
)

var (
	// ErrBadStatus is returned when the payload status is not "ok". The
	// payload is well formed but carries nothing to consume.
	ErrBadStatus = errors.New("catalog: payload status is not ok")

	// ErrMissingBooks is returned when an "ok" payload has no books array.
	ErrMissingBooks = errors.New("catalog: payload has no books array")
)

// EntryID is a catalog entry id. The service sends it either as a JSON
// string or as a number.
type EntryID string

// UnmarshalJSON implements [json.Unmarshaler].
func (id *EntryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*id = EntryID(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("catalog: entry id: %w", err)
	}
	*id = EntryID(number.String())
	return nil
}

// Entry matches one element of the "books" array.
type Entry struct {
	ID       EntryID `json:"id"`
	Title    string  `json:"title"`
	Authors  string  `json:"authors"`
	Subtitle string  `json:"subtitle"`
	Image    string  `json:"image"`
	URL      string  `json:"url"`
}

// RecentResponse matches the /api/recent payload.
type RecentResponse struct {
	Status string  `json:"status"`
	Books  []Entry `json:"books"`
}

// recentWire tells a missing or null books array apart from an empty one.
type recentWire struct {
	Status string   `json:"status"`
	Books  *[]Entry `json:"books"`
}

// Client reads the remote catalog. It performs a single attempt per call.
type Client struct {
	httpClient *http.Client
	userAgent  string
	endpoint   string
	limiter    *rate.Limiter
}

// NewClient builds a client for endpoint. An empty endpoint uses the default.
// The HTTP client has no timeout; calls end with their context.
func NewClient(endpoint, userAgent string) *Client {
	if endpoint == "" {
		endpoint = constants.DefaultCatalogURL
	}
	return &Client{
		httpClient: &http.Client{},
		userAgent:  userAgent,
		endpoint:   endpoint,
		limiter:    rate.NewLimiter(rate.Every(time.Second/constants.CatalogRequestsPerSecond), 1),
	}
}

// Recent fetches the listing. The body is decoded whatever the HTTP status
// code; an undecodable body or an "ok" payload without books is an error.
// A well-formed payload whose status is not "ok" is [ErrBadStatus].
func (c *Client) Recent(ctx context.Context) (*RecentResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var wire recentWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("catalog: decode (http %s): %w", strconv.Itoa(resp.StatusCode), err)
	}

	if wire.Status != constants.CatalogStatusOK {
		return nil, fmt.Errorf("%w: %q (http %s)", ErrBadStatus, wire.Status, strconv.Itoa(resp.StatusCode))
	}
	if wire.Books == nil {
		return nil, ErrMissingBooks
	}

	return &RecentResponse{Status: wire.Status, Books: *wire.Books}, nil
}
