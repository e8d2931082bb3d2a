// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/epaper/internal/platform/sec"
)

/*
TestTokenService_RoundTrip verifies that a freshly issued token verifies.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewTokenService("secret-a", "epaper.test")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken("user-1", "reader@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

/*
TestTokenService_Rejects covers foreign, expired and garbage tokens.
*/
func TestTokenService_Rejects(t *testing.T) {
	service, err := sec.NewTokenService("secret-a", "epaper.test")
	require.NoError(t, err)

	foreign, err := sec.NewTokenService("secret-b", "epaper.test")
	require.NoError(t, err)
	foreignToken, err := foreign.GenerateAccessToken("user-1", "reader@example.com", time.Hour)
	require.NoError(t, err)

	otherIssuer, err := sec.NewTokenService("secret-a", "someone.else")
	require.NoError(t, err)
	otherIssuerToken, err := otherIssuer.GenerateAccessToken("user-1", "reader@example.com", time.Hour)
	require.NoError(t, err)

	expiredToken, err := service.GenerateAccessToken("user-1", "reader@example.com", -time.Minute)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong_secret": foreignToken,
		"wrong_issuer": otherIssuerToken,
		"expired":      expiredToken,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := service.VerifyToken(token)
			assert.Error(t, err)
		})
	}
}

/*
TestNewTokenService_EmptySecret verifies an empty secret is refused.
*/
func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "epaper.test")
	assert.Error(t, err)
}

/*
TestPasswordHash verifies bcrypt hashing and comparison.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("s3cretpass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cretpass", hash)
	assert.True(t, sec.CheckPasswordHash("s3cretpass", hash))
	assert.False(t, sec.CheckPasswordHash("wrongpass1", hash))
}
