package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"morak/internal/database"
	"morak/internal/models"
)

// TokenRepository handles database operations for refresh tokens
type TokenRepository struct {
	db *database.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// CreateRefreshToken stores the hash of a newly issued refresh token
func (r *TokenRepository) CreateRefreshToken(ctx context.Context, tokenHash string, memberID int64, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token_hash, member_id, expires_at, created_at) VALUES (?, ?, ?, ?)",
		tokenHash, memberID, expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a refresh token by hash, or nil when none exists
func (r *TokenRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx,
		"SELECT token_hash, member_id, expires_at, created_at FROM refresh_tokens WHERE token_hash = ?",
		tokenHash).Scan(&token.TokenHash, &token.MemberID, &token.ExpiresAt, &token.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return token, nil
}

// DeleteRefreshToken removes a refresh token and reports whether it existed.
// Rotation relies on this so that a token can be redeemed only once.
func (r *TokenRepository) DeleteRefreshToken(ctx context.Context, tokenHash string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash = ?", tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to delete refresh token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteExpiredRefreshTokens removes tokens that expired before now and
// returns how many were removed
func (r *TokenRepository) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return result.RowsAffected()
}
