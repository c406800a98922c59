package utils

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presensi/presensi-server/config"
)

func TestMain(m *testing.M) {
	config.Set(config.AppConfig{JWTSecret: "utils-test-secret"})
	m.Run()
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(7, "Ana", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Ana", claims.Nama)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "7", claims.Subject)

	other, err := GenerateToken(7, "Ana", "admin", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestParseTokenRejectsExpiredAndTampered(t *testing.T) {
	expired, err := GenerateToken(1, "Ana", "user", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)

	valid, err := GenerateToken(1, "Ana", "user", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(valid + "x")
	assert.Error(t, err)
}

func TestTokenRevocationMemoryFallback(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetRedis())

	RevokeToken(ctx, "jti-a", time.Now().Add(time.Hour))
	assert.True(t, IsTokenRevoked(ctx, "jti-a"))
	assert.False(t, IsTokenRevoked(ctx, "jti-b"))

	// already expired tokens are not stored
	RevokeToken(ctx, "jti-c", time.Now().Add(-time.Second))
	assert.False(t, IsTokenRevoked(ctx, "jti-c"))
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "presensi:jwt:revoked:abc", RedisKey("jwt", "revoked", "abc"))
	assert.NoError(t, CloseRedis())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("rahasia1")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "rahasia1"))
	assert.False(t, CheckPassword(hash, "rahasia2"))
	assert.False(t, NeedsRehash(hash))

	old := PasswordCost
	PasswordCost = old + 1
	defer func() { PasswordCost = old }()
	assert.True(t, NeedsRehash(hash))
	assert.True(t, NeedsRehash("not-a-hash"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Ana & Budi", SanitizeText("  <b>Ana</b> &amp; Budi "))
	assert.Equal(t, "", SanitizeText("<script>alert(1)</script>"))
}

func TestParseTokenRejectsForeignIssuerAndMethod(t *testing.T) {
	key := []byte(config.Get().JWTSecret)
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := foreign.SignedString(key)
	require.NoError(t, err)
	_, err = ParseToken(raw)
	assert.Error(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "y",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err = hs512.SignedString(key)
	require.NoError(t, err)
	_, err = ParseToken(raw)
	assert.Error(t, err)
}
