package service

import (
	"context"
	"errors"

	"morak/internal/models"
)

// ErrUnauthorized is returned when a request carries no valid access token
var ErrUnauthorized = errors.New("unauthorized")

// MemberService exposes the current member's profile
type MemberService struct {
	auth *AuthService
}

// NewMemberService creates a new member service
func NewMemberService(auth *AuthService) *MemberService {
	return &MemberService{auth: auth}
}

// GetUserData resolves an access token to the public view of its member
func (s *MemberService) GetUserData(ctx context.Context, accessToken string) (*models.MemberInformation, error) {
	member, err := s.auth.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	info := member.Information()
	return &info, nil
}
