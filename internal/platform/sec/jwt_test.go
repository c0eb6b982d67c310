// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/sec"
)

func signToken(t *testing.T, key *rsa.PrivateKey, issuer string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "collector-1",
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: "collector-1",
		Role:   string(sec.RoleEditor),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

/*
TestVerifyToken covers the accepted token and the rejection paths.
*/
func TestVerifyToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := sec.NewTokenVerifierFromKey(&key.PublicKey, "catalog")

	t.Run("valid", func(t *testing.T) {
		claims, err := verifier.VerifyToken(signToken(t, key, "catalog", time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "collector-1", claims.UserID)
		assert.Equal(t, "editor", claims.Role)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := verifier.VerifyToken(signToken(t, key, "catalog", -time.Minute))
		assert.Error(t, err)
	})

	t.Run("wrong_issuer", func(t *testing.T) {
		_, err := verifier.VerifyToken(signToken(t, key, "elsewhere", time.Minute))
		assert.Error(t, err)
	})

	t.Run("wrong_key", func(t *testing.T) {
		_, err := verifier.VerifyToken(signToken(t, other, "catalog", time.Minute))
		assert.Error(t, err)
	})
}

/*
TestUserRole_AtLeast verifies the role ladder.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleEditor))
	assert.True(t, sec.RoleEditor.AtLeast(sec.RoleEditor))
	assert.False(t, sec.RoleViewer.AtLeast(sec.RoleEditor))
	assert.False(t, sec.UserRole("guest").AtLeast(sec.RoleViewer))
}
