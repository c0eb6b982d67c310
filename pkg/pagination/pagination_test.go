// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package pagination_test

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pagination"
)

/*
TestFromRequest verifies parsing and clamping of page parameters.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pagination.Params
	}{
		{"defaults", "", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"explicit", "?page=3&limit=10", pagination.Params{Page: 3, Limit: 10}},
		{"negative_page", "?page=-2", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"excessive_limit", "?limit=100000", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"garbage", "?page=abc&limit=xyz", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/boxes"+tt.query, nil)
			assert.Equal(t, tt.want, pagination.FromRequest(request))
		})
	}
}

/*
TestParams_Window checks clamping of page bounds to the item count.
*/
func TestParams_Window(t *testing.T) {
	tests := []struct {
		name      string
		params    pagination.Params
		total     int
		wantStart int
		wantEnd   int
	}{
		{"full_page", pagination.Params{Page: 2, Limit: 10}, 25, 10, 20},
		{"partial_page", pagination.Params{Page: 2, Limit: 10}, 15, 10, 15},
		{"past_the_end", pagination.Params{Page: 2, Limit: 10}, 5, 5, 5},
		{"first_page", pagination.Params{Page: 1, Limit: 10}, 3, 0, 3},
		{"overflowing_page", pagination.Params{Page: 922337203685477581, Limit: 20}, 5, 5, 5},
		{"max_page", pagination.Params{Page: math.MaxInt, Limit: pagination.MaxLimit}, 7, 7, 7},
		{"empty", pagination.Params{Page: 1, Limit: 10}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.params.Window(tt.total)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)

			// The bounds must always be usable as a slice expression.
			items := make([]int, tt.total)
			assert.NotPanics(t, func() { _ = items[start:end] })
		})
	}
}

/*
TestFromRequest_HugePage keeps an overflowing page query within bounds.
*/
func TestFromRequest_HugePage(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/?page=922337203685477581&limit=20", nil)

	start, end := pagination.FromRequest(request).Window(5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

/*
TestNewMeta checks the total page computation.
*/
func TestNewMeta(t *testing.T) {
	assert.Equal(t, 3, pagination.NewMeta(1, 10, 21).TotalPages)
	assert.Equal(t, 0, pagination.NewMeta(1, 10, 0).TotalPages)
}
