// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookshelf/pkg/pagination"
)

/*
TestFromRequest_Clamping verifies invalid query values fall back to defaults.
*/
func TestFromRequest_Clamping(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, pagination.DefaultLimit},
		{"explicit", "?page=3&limit=5", 3, 5},
		{"negative_page", "?page=-2", 1, pagination.DefaultLimit},
		{"over_max", "?limit=1000", 1, pagination.DefaultLimit},
		{"garbage", "?page=x&limit=y", 1, pagination.DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := pagination.FromRequest(httptest.NewRequest("GET", "/books"+tt.query, nil))
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
		})
	}
}

/*
TestPage verifies in-memory slicing never runs past the list.
*/
func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, pagination.Page(items, pagination.Params{Page: 1, Limit: 2}))
	assert.Equal(t, []int{5}, pagination.Page(items, pagination.Params{Page: 3, Limit: 2}))
	assert.Empty(t, pagination.Page(items, pagination.Params{Page: 9, Limit: 2}))
}

/*
TestNewMeta verifies the total page count rounds up.
*/
func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(1, 2, 5)
	assert.Equal(t, 3, meta.TotalPages)

	assert.Equal(t, 0, pagination.NewMeta(1, 0, 5).TotalPages)
}
