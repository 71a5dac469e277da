// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaginationDefaultValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proposals", nil)
	params, err := ParsePagination(req)
	require.NoError(t, err)

	assert.Equal(t, DefaultPaginationCount, params.Count)
	assert.Equal(t, DefaultPaginationPage, params.Page)
	assert.Equal(t, DefaultPaginationOrderAsc, params.Order)
}

func TestParsePaginationValid(t *testing.T) {
	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/proposals?count=25&page=3&order=DESC",
		nil,
	)
	params, err := ParsePagination(req)
	require.NoError(t, err)

	assert.Equal(t, 25, params.Count)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, PaginationOrderDesc, params.Order)
}

func TestParsePaginationClampBounds(t *testing.T) {
	req := httptest.NewRequest(
		http.MethodGet,
		"/api/v1/proposals?count=999&page=0",
		nil,
	)
	params, err := ParsePagination(req)
	require.NoError(t, err)

	assert.Equal(t, MaxPaginationCount, params.Count)
	assert.Equal(t, 1, params.Page)
}

func TestParsePaginationInvalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "non-numeric count", url: "/api/v1/proposals?count=abc"},
		{name: "non-numeric page", url: "/api/v1/proposals?page=abc"},
		{name: "invalid order", url: "/api/v1/proposals?order=sideways"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, test.url, nil)
			params, err := ParsePagination(req)
			require.ErrorIs(t, err, ErrInvalidPaginationParameters)
			assert.Equal(t, PaginationParams{}, params)
		})
	}
}

func TestPaginationWindow(t *testing.T) {
	tests := []struct {
		name   string
		params PaginationParams
		total  int
		offset int
		limit  int
	}{
		{"first page", PaginationParams{Count: 10, Page: 1, Order: "asc"}, 25, 0, 10},
		{"last partial page", PaginationParams{Count: 10, Page: 3, Order: "asc"}, 25, 20, 5},
		{"past the end", PaginationParams{Count: 10, Page: 4, Order: "asc"}, 25, 0, 0},
		{"empty", PaginationParams{Count: 10, Page: 1, Order: "asc"}, 0, 0, 0},
		{"desc first page", PaginationParams{Count: 10, Page: 1, Order: "desc"}, 25, 15, 10},
		{"desc last partial page", PaginationParams{Count: 10, Page: 3, Order: "desc"}, 25, 0, 5},
		{"desc past the end", PaginationParams{Count: 10, Page: 4, Order: "desc"}, 25, 0, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			offset, limit := test.params.Window(test.total)
			assert.Equal(t, test.offset, offset)
			assert.Equal(t, test.limit, limit)
		})
	}
}

func TestSetPaginationHeaders(t *testing.T) {
	recorder := httptest.NewRecorder()
	SetPaginationHeaders(
		recorder,
		250,
		PaginationParams{Count: 100, Page: 1, Order: "asc"},
	)
	assert.Equal(t, "250", recorder.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "3", recorder.Header().Get("X-Pagination-Page-Total"))
}

func TestSetPaginationHeadersZeroTotals(t *testing.T) {
	recorder := httptest.NewRecorder()
	SetPaginationHeaders(
		recorder,
		-1,
		PaginationParams{Count: 0, Page: 1, Order: "asc"},
	)
	assert.Equal(t, "0", recorder.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "0", recorder.Header().Get("X-Pagination-Page-Total"))
}
