// Package auth verifies the bearer credential issued by the external
// identity provider and exposes its claims to handlers. The pipeline only
// trusts the claims; issuing tokens is the provider's job.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const contextKey = "authClaims"

// Claims are the verified identity-provider claims the pipeline cares about.
type Claims struct {
	UserID string
	Role   string
}

// Verifier checks HS256 bearer tokens against the shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a raw token string.
func (v *Verifier) Verify(tokenString string) (Claims, error) {
	mapClaims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, mapClaims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	claims := Claims{Role: "citizen"}
	// The identity provider has issued ids under both "sub" and "_id".
	if sub, ok := mapClaims["sub"].(string); ok && sub != "" {
		claims.UserID = sub
	} else if id, ok := mapClaims["_id"].(string); ok {
		claims.UserID = id
	}
	if role, ok := mapClaims["role"].(string); ok && role != "" {
		claims.Role = role
	}
	return claims, nil
}

// IssueToken mints a token for the given identity. Exists for local
// development and tests; real tokens come from the identity provider.
func (v *Verifier) IssueToken(userID, role string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	})
	return token.SignedString(v.secret)
}

// Middleware rejects requests without a valid bearer token: 401 when the
// header is missing or malformed, 403 when the token fails verification.
func (v *Verifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			return
		}

		claims, err := v.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(contextKey, claims)
		c.Next()
	}
}

// FromContext returns the claims stored by Middleware.
func FromContext(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}
