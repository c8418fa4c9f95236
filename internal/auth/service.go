// Package auth verifies the single bearer credential that gates the run
// endpoint. There is no per-user session, registration, or refresh flow —
// one HMAC-signed service token, checked on every request.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/voidrunnerhq/coderunner/internal/config"
)

// Claims is the access token's payload. Subject identifies the calling
// service, not an end user.
type Claims struct {
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid access token")

// Service validates and, for local tooling, issues access tokens against a
// single shared secret.
type Service struct {
	cfg *config.AuthConfig
}

func NewService(cfg *config.AuthConfig) *Service {
	return &Service{cfg: cfg}
}

// ValidateAccessToken parses tokenString, verifies its HMAC signature,
// issuer and audience, and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	}, jwt.WithIssuer(s.cfg.Issuer), jwt.WithAudience(s.cfg.Audience))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IssueAccessToken mints a token for the given subject. Production
// deployments hand the shared secret to whatever owns caller identity; this
// exists for local development and integration tests.
func (s *Service) IssueAccessToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SecretKey))
}
