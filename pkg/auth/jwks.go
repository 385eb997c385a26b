// Package auth provides optional JWT bearer verification for the dashboard
// API. Verification is disabled in local development; when enabled, tokens
// must come from a whitelisted issuer whose JWKS endpoint is configured.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims adlens-engine cares about.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Verifier validates JWT bearer tokens. The interface exists so handlers can
// be tested with a stub.
type Verifier interface {
	// ValidateToken validates a JWT token string and returns its claims.
	ValidateToken(tokenString string) (*Claims, error)
}

// Config contains configuration for the JWKS verifier.
type Config struct {
	// EnableVerification controls whether JWT signatures are verified.
	// When false, requests pass through unauthenticated (local development).
	EnableVerification bool
	// JWKSEndpoints maps issuer URLs to their JWKS endpoint URLs.
	// Only tokens from issuers in this map are accepted.
	JWKSEndpoints map[string]string
}

// JWKSVerifier validates JWT tokens against per-issuer JWKS public keys.
type JWKSVerifier struct {
	endpoints map[string]keyfunc.Keyfunc
	config    *Config
}

// NewJWKSVerifier creates a verifier, fetching JWKS from every configured
// endpoint when verification is enabled.
func NewJWKSVerifier(config *Config) (*JWKSVerifier, error) {
	v := &JWKSVerifier{
		endpoints: make(map[string]keyfunc.Keyfunc),
		config:    config,
	}

	if !config.EnableVerification {
		return v, nil
	}

	for issuer, jwksURL := range config.JWKSEndpoints {
		jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create JWKS client for %s: %w", issuer, err)
		}
		v.endpoints[issuer] = jwks
	}

	return v, nil
}

// ValidateToken verifies the token's RSA signature using the issuer's JWKS
// keys and returns the claims.
func (v *JWKSVerifier) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			return nil, errors.New("invalid claims type")
		}

		jwks, exists := v.endpoints[claims.Issuer]
		if !exists {
			return nil, fmt.Errorf("unauthorized issuer: %s", claims.Issuer)
		}

		return jwks.KeyfuncCtx(context.Background())(token)
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}

var _ Verifier = (*JWKSVerifier)(nil)
