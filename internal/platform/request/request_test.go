// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package requestutil_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	requestutil "github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/request"
)

/*
TestID parses positive integers and rejects everything else.
*/
func TestID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{"valid", "42", 42, false},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, true},
		{"text", "WIN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routeContext := chi.NewRouteContext()
			routeContext.URLParams.Add("id", tt.raw)
			request := httptest.NewRequest("GET", "/", nil)
			request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeContext))

			id, err := requestutil.ID(request, "id")
			if tt.wantErr {
				assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

/*
TestDecodeJSON rejects malformed bodies and unknown fields.
*/
func TestDecodeJSON(t *testing.T) {
	var target struct {
		Code string `json:"code"`
	}

	request := httptest.NewRequest("POST", "/", strings.NewReader(`{"code":"WIN"}`))
	require.NoError(t, requestutil.DecodeJSON(request, &target))
	assert.Equal(t, "WIN", target.Code)

	request = httptest.NewRequest("POST", "/", strings.NewReader(`{"cod":"WIN"}`))
	assert.Error(t, requestutil.DecodeJSON(request, &target))

	request = httptest.NewRequest("POST", "/", strings.NewReader(`{`))
	assert.Error(t, requestutil.DecodeJSON(request, &target))
}
