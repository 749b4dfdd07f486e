package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = []byte("secret")

func TestTokenChecker(t *testing.T) {
	token, err := Issue(key, Claims{
		Tiers:          []string{"stroke"},
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	require.NoError(t, err)

	c, err := NewTokenChecker(key, token)
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, c.Allowed(ctx, "stroke"))
	assert.False(t, c.Allowed(ctx, "vision"))

	all, err := Issue(key, Claims{Tiers: []string{TierAll}})
	require.NoError(t, err)
	require.NoError(t, c.SetToken(all))
	assert.True(t, c.Allowed(ctx, "vision"))
}

func TestTokenCheckerRejects(t *testing.T) {
	token, err := Issue([]byte("other"), Claims{Tiers: []string{"stroke"}})
	require.NoError(t, err)
	_, err = NewTokenChecker(key, token)
	assert.Error(t, err)

	expired, err := Issue(key, Claims{
		Tiers:          []string{"stroke"},
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
	})
	require.NoError(t, err)
	_, err = NewTokenChecker(key, expired)
	assert.Error(t, err)

	_, err = NewTokenChecker(key, "not a token")
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	s := Static{"vision"}
	assert.True(t, s.Allowed(context.Background(), "vision"))
	assert.False(t, s.Allowed(context.Background(), "stroke"))
	assert.False(t, Static(nil).Allowed(context.Background(), "stroke"))
}
