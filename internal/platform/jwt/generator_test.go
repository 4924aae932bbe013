package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerator_GenerateToken は生成されたトークンが正しいクレームを持つことを検証します。
func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	gen := NewGenerator("test-secret", 2*time.Hour)
	gen.now = func() time.Time { return issued }

	tokenStr, err := gen.GenerateToken("operator")
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(tok *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return issued.Add(time.Minute) }))
	require.NoError(t, err)

	assert.True(t, token.Valid)
	assert.Equal(t, jwt.SigningMethodHS256, token.Method)
	assert.Equal(t, "operator", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.True(t, claims.IssuedAt.Time.Equal(issued))
	assert.True(t, claims.ExpiresAt.Time.Equal(issued.Add(2*time.Hour)))
}

func TestGenerator_GenerateToken_EmptySubject(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator("test-secret", time.Hour).GenerateToken("")
	assert.Error(t, err)
}

// TestGenerator_DifferentSubjectsProduceDifferentTokens は異なるsubjectに対して異なるトークンが生成されることを検証します。
func TestGenerator_DifferentSubjectsProduceDifferentTokens(t *testing.T) {
	t.Parallel()

	gen := NewGenerator("test-secret", time.Hour)

	token1, _ := gen.GenerateToken("alice")
	token2, _ := gen.GenerateToken("bob")

	assert.NotEqual(t, token1, token2)
}
