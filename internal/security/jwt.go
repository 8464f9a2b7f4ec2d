package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any access token that fails verification
var ErrInvalidToken = errors.New("invalid access token")

// ErrNoSigningKey is returned when the issuer was built without a secret
var ErrNoSigningKey = errors.New("access token signing key is not configured")

// AccessClaims are the claims carried by an access token
type AccessClaims struct {
	ProviderID string `json:"providerId"`
	Email      string `json:"email"`
	Nickname   string `json:"nickname"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an access token for the given identity and returns it with its expiry
func (i *TokenIssuer) Issue(providerID, email, nickname string) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, ErrNoSigningKey
	}
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := AccessClaims{
		ProviderID: providerID,
		Email:      email,
		Nickname:   nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   providerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies an access token and returns its claims
func (i *TokenIssuer) Parse(token string) (*AccessClaims, error) {
	if token == "" || len(i.secret) == 0 {
		return nil, ErrInvalidToken
	}

	claims := &AccessClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ProviderID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
