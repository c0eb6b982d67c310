// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/constants"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/ctxutil"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/respond"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Without an 'Authorization: Bearer <token>' header the request proceeds anonymously.
//  2. Otherwise the token is verified via [TokenVerifier].
//  3. [*sec.AuthClaims] are injected into the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "token_rejected", "error", err)
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
		})
	}
}

// RequireRole blocks requests if the caller doesn't hold at least role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]; anonymous callers get 401.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// Passthrough is the identity middleware, used when authorization is disabled.
func Passthrough(next http.Handler) http.Handler {
	return next
}
