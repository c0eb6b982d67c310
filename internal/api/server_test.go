// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/api"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/memstore"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/rollup"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/search"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/source"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/config"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/metrics"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/middleware"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/sec"
)

// rejectingVerifier refuses every token.
type rejectingVerifier struct{}

func (rejectingVerifier) VerifyToken(string) (*sec.AuthClaims, error) {
	return nil, errors.New("invalid token")
}

func newServer(t *testing.T, verifier middleware.TokenVerifier) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memstore.New()
	store.AddCaliber("9mm", "9mm Luger", 1)
	store.AddCaliber("45acp", ".45 ACP", 2)

	registry := metrics.New()
	catalogs := catalog.NewService(store, store, nil, logger)
	boxes := box.NewService(store, store, store, nil, logger)
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
	}, logger)

	cfg := &config.Config{ServerPort: "0", Environment: "development"}
	server := api.NewServer(context.Background(), cfg, logger, verifier, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   registry,
		Catalog:   catalog.NewHandler(catalogs),
		Boxes:     box.NewHandler(boxes),
		Sources:   source.NewHandler(source.NewService(store, store, boxes, store, logger)),
		Rollups:   rollup.NewHandler(rollup.NewService(store, store, store, nil, registry, logger)),
		Search:    search.NewHandler(search.NewService(store, boxes, logger)),
	})
	return server.Handler()
}

// call performs one request and decodes the "data" member of the envelope into out.
func call(t *testing.T, handler http.Handler, method, path string, body any, out any) int {
	t.Helper()

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, payload)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if out != nil && recorder.Code < 300 {
		envelope := struct {
			Data json.RawMessage `json:"data"`
		}{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return recorder.Code
}

/*
TestServer_CatalogWalkthrough drives the public API from an empty caliber to
a rollup, covering the hierarchy, boxes and search.
*/
func TestServer_CatalogWalkthrough(t *testing.T) {
	handler := newServer(t, nil)
	base := "/api/v1/calibers/9mm"

	var country catalog.Country
	require.Equal(t, http.StatusCreated, call(t, handler, http.MethodPost, base+"/countries", map[string]any{"name": "US"}, &country))

	var manufacturer catalog.Manufacturer
	require.Equal(t, http.StatusCreated, call(t, handler, http.MethodPost,
		fmt.Sprintf("%s/countries/%d/manufacturers", base, country.ID), map[string]any{"code": "WIN"}, &manufacturer))

	var headstamp catalog.Headstamp
	require.Equal(t, http.StatusCreated, call(t, handler, http.MethodPost,
		fmt.Sprintf("%s/manufacturers/%d/headstamps", base, manufacturer.ID), map[string]any{"code": "WIN 9MM LUGER"}, &headstamp))

	var load catalog.Load
	require.Equal(t, http.StatusCreated, call(t, handler, http.MethodPost,
		fmt.Sprintf("%s/headstamps/%d/loads", base, headstamp.ID), map[string]any{"cart_id": "l001"}, &load))
	assert.Equal(t, "L001", load.CartID)

	var created box.Box
	require.Equal(t, http.StatusCreated, call(t, handler, http.MethodPost,
		fmt.Sprintf("%s/nodes/load/%d/boxes", base, load.ID), map[string]any{"bid": "B001"}, &created))

	// Parent resolution
	var attachment box.Attachment
	require.Equal(t, http.StatusOK, call(t, handler, http.MethodGet, fmt.Sprintf("%s/boxes/%d/parent", base, created.ID), nil, &attachment))
	assert.Equal(t, "L001", attachment.Parent.Label)
	assert.Len(t, attachment.Chain, 4)

	// Search by display id
	var hit struct {
		DisplayID string          `json:"display_id"`
		Chain     []catalog.Crumb `json:"chain"`
	}
	require.Equal(t, http.StatusOK, call(t, handler, http.MethodGet, base+"/search?q=b001", nil, &hit))
	assert.Equal(t, "B001", hit.DisplayID)

	// Move the box up to the country
	var moved box.MoveResult
	require.Equal(t, http.StatusOK, call(t, handler, http.MethodPost, fmt.Sprintf("%s/boxes/%d/move", base, created.ID),
		map[string]any{"parent_type": "country", "parent_id": country.ID}, &moved))
	assert.True(t, moved.Moved)

	// Rollup
	var result rollup.Result
	require.Equal(t, http.StatusOK, call(t, handler, http.MethodGet, base+"/rollup", nil, &result))
	assert.Equal(t, 1, result.Totals["load"].Count)
	assert.Equal(t, 1, result.TotalBoxes.Count)

	// The delete guard answers 409
	assert.Equal(t, http.StatusConflict, call(t, handler, http.MethodDelete, fmt.Sprintf("%s/countries/%d", base, country.ID), nil, nil))

	// Another caliber cannot see the load
	assert.Equal(t, http.StatusNotFound, call(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/calibers/45acp/loads/%d", load.ID), nil, nil))
}

/*
TestServer_ErrorStatuses maps the hierarchy error codes onto HTTP statuses.
*/
func TestServer_ErrorStatuses(t *testing.T) {
	handler := newServer(t, nil)
	base := "/api/v1/calibers/9mm"

	var country catalog.Country
	require.Equal(t, http.StatusCreated, call(t, handler, http.MethodPost, base+"/countries", map[string]any{"name": "US"}, &country))

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"duplicate_country", http.MethodPost, base + "/countries", map[string]any{"name": "US"}, http.StatusConflict},
		{"unknown_field", http.MethodPost, base + "/countries", map[string]any{"nom": "FR"}, http.StatusBadRequest},
		{"unknown_kind", http.MethodGet, base + "/nodes/shelf/1", nil, http.StatusBadRequest},
		{"unknown_caliber", http.MethodGet, "/api/v1/calibers/12ga", nil, http.StatusNotFound},
		{"bad_search_prefix", http.MethodGet, base + "/search?q=X1", nil, http.StatusBadRequest},
		{"variation_without_parent", http.MethodPost, base + "/loads/999/variations", map[string]any{"cart_id": "V1"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, call(t, handler, tt.method, tt.path, tt.body, nil))
		})
	}
}

/*
TestServer_EditorRoutesRequireAuth keeps reads public and writes guarded once
a verifier is configured.
*/
func TestServer_EditorRoutesRequireAuth(t *testing.T) {
	handler := newServer(t, rejectingVerifier{})

	assert.Equal(t, http.StatusOK, call(t, handler, http.MethodGet, "/api/v1/calibers", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, handler, http.MethodPost, "/api/v1/calibers/9mm/countries", map[string]any{"name": "US"}, nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, handler, http.MethodGet, "/api/v1/admin/integrity", nil, nil))
}

/*
TestServer_Probes answers liveness, readiness and metrics without auth.
*/
func TestServer_Probes(t *testing.T) {
	handler := newServer(t, rejectingVerifier{})

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, recorder.Code, path)
	}
}
