package models

import "time"

// RefreshToken is a stored login that can mint new access tokens.
// Only a hash of the token value is persisted.
type RefreshToken struct {
	TokenHash string
	MemberID  int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the refresh token has expired
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// TokenPair is what a successful login or refresh hands back to the client
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
