// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/metrics"
)

/*
TestMiddleware_RoutePattern labels requests by chi pattern instead of raw path.
*/
func TestMiddleware_RoutePattern(t *testing.T) {
	m := metrics.New()

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/loads/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	})

	for _, path := range []string{"/loads/1", "/loads/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, family := range families {
		if family.GetName() != "catalog_http_requests_total" {
			continue
		}
		require.Len(t, family.GetMetric(), 1)
		assert.Equal(t, 2.0, family.GetMetric()[0].GetCounter().GetValue())
		found = true
	}
	assert.True(t, found)
}

/*
TestObserver_Collectors exercises the rollup observer methods.
*/
func TestObserver_Collectors(t *testing.T) {
	m := metrics.New()

	m.ObserveRollup("caliber", 20*time.Millisecond)
	m.CacheResult("hit")
	m.CacheResult("hit")
	m.SetDanglingBoxes(3)

	count, err := testutil.GatherAndCount(m.Registry(), "catalog_rollup_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, recorder.Body.String(), `catalog_rollup_cache_results_total{result="hit"} 2`)
	assert.Contains(t, recorder.Body.String(), "catalog_dangling_boxes 3")
}
