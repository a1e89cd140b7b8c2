// Package auth issues and verifies the bearer tokens that identify API
// callers.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/codr1/Courtbook/internal/api/authz"
)

const DefaultTokenTTL = 8 * time.Hour

var (
	ErrInvalidToken   = errors.New("invalid token")
	errSecretRequired = errors.New("token secret is required")
)

type Claims struct {
	Sub   string `json:"sub"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 access tokens with one shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errSecretRequired
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (t *Tokens) Issue(user authz.AuthUser) (string, error) {
	now := t.now()
	claims := Claims{
		Sub:   strconv.FormatInt(user.ID, 10),
		Role:  string(user.Role),
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates raw and returns the caller it names.
func (t *Tokens) Parse(raw string) (authz.AuthUser, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return authz.AuthUser{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return authz.AuthUser{}, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Sub, 10, 64)
	if err != nil || id <= 0 {
		return authz.AuthUser{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	role, ok := authz.ParseRole(claims.Role)
	if !ok {
		return authz.AuthUser{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return authz.AuthUser{ID: id, Role: role, Email: claims.Email}, nil
}
