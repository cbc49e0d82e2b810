// Package authn resolves a caller's identity for the RPC surface, grounded
// on the teacher's JWTValidator in
// apps/rag-loader/internal/auth/jwt.go, adapted to this domain's
// config.AuthConfig and to golang-jwt/jwt/v4.
package authn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the identity carried by a bearer token: a tenant, a user, and
// the assignee roles the caller may act as.
type Claims struct {
	TenantID string   `json:"tenant_id"`
	UserID   string   `json:"user_id"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTValidator validates HMAC-signed bearer tokens against a shared secret.
type JWTValidator struct {
	secretKey []byte
	issuer    string
}

// NewJWTValidator builds a validator for the given secret and issuer. An
// empty issuer skips issuer validation.
func NewJWTValidator(secretKey []byte, issuer string) *JWTValidator {
	return &JWTValidator{secretKey: secretKey, issuer: issuer}
}

// Validate parses an "Authorization: Bearer <token>" header and returns the
// caller's claims, or an error if the token is malformed, unsigned with an
// unexpected algorithm, expired, or not yet valid.
func (v *JWTValidator) Validate(authHeader string) (*Claims, error) {
	tokenString, err := extractBearerToken(authHeader)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", v.issuer, claims.Issuer)
	}
	if claims.UserID == "" {
		return nil, errors.New("token carries no user_id claim")
	}
	return claims, nil
}

// IssueToken mints a token for the given identity, used by test fixtures
// and the testing-mode bootstrap path.
func (v *JWTValidator) IssueToken(tenantID, userID string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID: tenantID,
		UserID:   userID,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    v.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secretKey)
}

func extractBearerToken(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
