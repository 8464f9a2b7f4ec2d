package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"morak/internal/models"
	"morak/internal/repository"
	"morak/internal/security"
)

// OAuthProfile is the identity returned by an OAuth provider
type OAuthProfile struct {
	Provider       string
	ProviderID     string
	Email          string
	Nickname       string
	ProfilePicture string
}

// AuthService handles login, token issuing and token rotation
type AuthService struct {
	memberRepo *repository.MemberRepository
	tokenRepo  *repository.TokenRepository
	issuer     *security.TokenIssuer
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(memberRepo *repository.MemberRepository, tokenRepo *repository.TokenRepository, issuer *security.TokenIssuer, refreshTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		memberRepo: memberRepo,
		tokenRepo:  tokenRepo,
		issuer:     issuer,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// OAuthLogin creates or refreshes the member for an OAuth identity and issues
// a new token pair
func (s *AuthService) OAuthLogin(ctx context.Context, profile OAuthProfile) (*models.TokenPair, *models.Member, error) {
	if profile.Provider == "" || profile.ProviderID == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}

	nickname := profile.Nickname
	if nickname == "" {
		nickname, _, _ = strings.Cut(profile.Email, "@")
	}
	if nickname == "" {
		nickname = profile.Provider + "-" + profile.ProviderID
	}

	member, err := s.memberRepo.UpsertMember(ctx, &models.Member{
		ProviderID:     profile.ProviderID,
		SocialType:     profile.Provider,
		Email:          profile.Email,
		Nickname:       nickname,
		ProfilePicture: profile.ProfilePicture,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save member: %w", err)
	}

	pair, err := s.issuePair(ctx, member)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("member logged in",
		zap.Int64("member_id", member.ID),
		zap.String("provider", profile.Provider))
	return pair, member, nil
}

// Authenticate resolves an access token to its member
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.Member, error) {
	claims, err := s.issuer.Parse(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	member, err := s.memberRepo.GetMemberByProviderID(ctx, claims.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: unknown member", ErrUnauthorized)
	}
	return member, nil
}

// Refresh redeems a refresh token once and returns a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}
	hash := hashToken(refreshToken)

	stored, err := s.tokenRepo.GetRefreshToken(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	if stored == nil {
		return nil, ErrUnauthorized
	}

	removed, err := s.tokenRepo.DeleteRefreshToken(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !removed || stored.IsExpired() {
		return nil, ErrUnauthorized
	}

	member, err := s.memberRepo.GetMemberByID(ctx, stored.MemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil {
		return nil, ErrUnauthorized
	}

	return s.issuePair(ctx, member)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if _, err := s.tokenRepo.DeleteRefreshToken(ctx, hashToken(refreshToken)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// CleanupExpiredTokens removes expired refresh tokens
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteExpiredRefreshTokens(ctx, time.Now())
}

func (s *AuthService) issuePair(ctx context.Context, member *models.Member) (*models.TokenPair, error) {
	access, accessExp, err := s.issuer.Issue(member.ProviderID, member.Email, member.Nickname)
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	refreshExp := time.Now().Add(s.refreshTTL)
	if err := s.tokenRepo.CreateRefreshToken(ctx, hashToken(refresh), member.ID, refreshExp); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// hashToken returns the hex BLAKE2b-256 digest stored in place of a refresh token
func hashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
