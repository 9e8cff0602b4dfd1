// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Token configuration.
const (
	// TokenValidity is the default bearer token lifetime.
	TokenValidity = 24 * time.Hour

	// RefreshTokenBytes is the entropy of an opaque refresh token.
	RefreshTokenBytes = 64
)

// Claims is the claim set embedded in a signed bearer token.
type Claims struct {
	Email    string `json:"email"`
	FullName string `json:"name"`
	Active   bool   `json:"active"`
	jwt.RegisteredClaims
}

// UserID returns the numeric identity carried in the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, oops.Code("TOKEN_INVALID_SUBJECT").
			With("subject", c.Subject).
			Wrap(err)
	}
	return id, nil
}

// TokenIssuer mints and validates bearer tokens and opaque refresh tokens.
type TokenIssuer interface {
	// Issue mints a signed bearer token for the user.
	Issue(user *User) (token string, expiresAt time.Time, err error)

	// Validate verifies signature, expiry, and issuer (when configured) and
	// returns the embedded claims. It returns an error for any verification
	// failure; it never panics.
	Validate(token string) (*Claims, error)

	// GenerateRefreshToken produces an opaque high-entropy refresh token.
	GenerateRefreshToken() (string, error)
}

// TokenConfig configures a JWTIssuer. The secret is mandatory; there is no
// ambient fallback.
type TokenConfig struct {
	Secret []byte
	Issuer string        // optional; enforced during validation when set
	TTL    time.Duration // zero means TokenValidity
}

// JWTIssuer implements TokenIssuer with HMAC-SHA-256 signed JWTs.
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer from explicit configuration.
func NewJWTIssuer(cfg TokenConfig) (*JWTIssuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, oops.Code("TOKEN_SECRET_MISSING").Errorf("token signing secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = TokenValidity
	}
	return &JWTIssuer{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock overrides the issuer's time source. Intended for tests.
func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	i.now = now
	return i
}

// Issue mints a signed bearer token carrying identity, email, display name,
// and active-flag claims.
func (i *JWTIssuer) Issue(user *User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)

	claims := Claims{
		Email:    user.Email,
		FullName: user.FullName(),
		Active:   user.Active,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        ulid.Make().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, oops.Code("TOKEN_SIGN_FAILED").
			With("user_id", user.ID).
			Wrap(err)
	}
	return signed, expiresAt, nil
}

// Validate verifies a bearer token and returns its claims.
func (i *JWTIssuer) Validate(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}
	if !parsed.Valid {
		return nil, oops.Code("TOKEN_INVALID").Errorf("token failed validation")
	}
	return &claims, nil
}

// GenerateRefreshToken produces 64 bytes of cryptographically random data,
// base64-encoded. The value is returned to the caller but not persisted;
// there is no server-side refresh-token store to cross-check it against.
func (i *JWTIssuer) GenerateRefreshToken() (string, error) {
	buf := make([]byte, RefreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("TOKEN_REFRESH_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Compile-time interface check.
var _ TokenIssuer = (*JWTIssuer)(nil)
