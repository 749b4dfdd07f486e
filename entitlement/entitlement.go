// Package entitlement decides which recognition tiers a caller may use.
package entitlement

import (
	"context"
	"sync"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"

	"github.com/ddvk/inkcalc/log"
)

// TierAll grants every tier.
const TierAll = "*"

// Checker gates a recognition tier.
type Checker interface {
	Allowed(ctx context.Context, tier string) bool
}

// Static grants a fixed set of tiers.
type Static []string

func (s Static) Allowed(_ context.Context, tier string) bool {
	return hasTier(s, tier)
}

// Claims is the entitlement token payload.
type Claims struct {
	Tiers []string `json:"tiers"`
	jwt.StandardClaims
}

// TokenChecker grants the tiers listed in an HS256 signed token. An
// invalid or expired token grants nothing.
type TokenChecker struct {
	key []byte

	mu     sync.Mutex
	token  string
	claims *Claims
}

func NewTokenChecker(key []byte, token string) (*TokenChecker, error) {
	c := &TokenChecker{key: key}
	if err := c.SetToken(token); err != nil {
		return nil, err
	}
	return c, nil
}

// SetToken replaces the current token.
func (c *TokenChecker) SetToken(token string) error {
	claims, err := c.parse(token)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	c.claims = claims
	c.mu.Unlock()
	return nil
}

func (c *TokenChecker) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.key, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "entitlement token")
	}
	return claims, nil
}

func (c *TokenChecker) Allowed(_ context.Context, tier string) bool {
	c.mu.Lock()
	claims := c.claims
	c.mu.Unlock()

	if claims == nil {
		return false
	}
	// expiry is checked on every use, not only on parse
	if err := claims.Valid(); err != nil {
		log.Trace.Printf("entitlement: %v", err)
		return false
	}
	return hasTier(claims.Tiers, tier)
}

// Issue signs a token for tiers. It is used by tooling and tests.
func Issue(key []byte, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func hasTier(tiers []string, tier string) bool {
	for _, t := range tiers {
		if t == tier || t == TierAll {
			return true
		}
	}
	return false
}
