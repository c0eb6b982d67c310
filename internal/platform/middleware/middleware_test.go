// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/ctxutil"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/middleware"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/sec"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

type stubVerifier struct {
	claims *sec.AuthClaims
}

func (verifier stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return verifier.claims, nil
}

type corsConfig struct {
	dev     bool
	origins []string
}

func (c corsConfig) IsDevelopment() bool      { return c.dev }
func (c corsConfig) AllowedOrigins() []string { return c.origins }

/*
TestRequestID keeps a client supplied id and generates one otherwise.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-Request-ID", "abc-123")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", recorder.Header().Get("X-Request-ID"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Len(t, seen, 36)
}

/*
TestRequireRole covers anonymous, insufficient and sufficient callers.
*/
func TestRequireRole(t *testing.T) {
	chain := func(claims *sec.AuthClaims) http.Handler {
		return middleware.Authenticate(stubVerifier{claims: claims})(
			middleware.RequireRole(sec.RoleEditor)(okHandler),
		)
	}

	tests := []struct {
		name   string
		header string
		role   string
		want   int
	}{
		{"anonymous", "", "", http.StatusUnauthorized},
		{"malformed", "Token good", "editor", http.StatusUnauthorized},
		{"bad_token", "Bearer nope", "editor", http.StatusUnauthorized},
		{"viewer", "Bearer good", "viewer", http.StatusForbidden},
		{"editor", "Bearer good", "editor", http.StatusOK},
		{"admin", "Bearer good", "admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("POST", "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			chain(&sec.AuthClaims{UserID: "u1", Role: tt.role}).ServeHTTP(recorder, request)
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

/*
TestCORS allows configured origins only outside development.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(corsConfig{origins: []string{"https://catalog.example"}})(okHandler)

	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("Origin", "https://catalog.example")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "https://catalog.example", recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest("GET", "/", nil)
	request.Header.Set("Origin", "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest("OPTIONS", "/", nil)
	request.Header.Set("Origin", "https://catalog.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

/*
TestRateLimit rejects requests beyond the burst for one IP.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimitWith(ctx, rate.Limit(0.001), 2)(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		request := httptest.NewRequest("GET", "/", nil)
		request.RemoteAddr = "10.0.0.1:5555"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

/*
TestPanicRecovery converts a panic into a 500 response.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("walk exploded")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
