package handlers

import (
	"context"

	"morak/internal/models"
	"morak/internal/service"
)

// GroupsService is the group behaviour the handlers depend on
type GroupsService interface {
	GetAllGroups(ctx context.Context) ([]models.Group, error)
	GetMyGroups(ctx context.Context, member *models.Member) ([]models.Group, error)
	GetGroupByAccessCode(ctx context.Context, accessCode string) (*models.Group, error)
	GetGroup(ctx context.Context, groupID int64) (*models.Group, error)
	GetAllMembersOfGroup(ctx context.Context, groupID int64) ([]models.MemberInformation, error)
	CreateGroup(ctx context.Context, req models.CreateGroupRequest, member *models.Member) (*models.Group, error)
	JoinGroup(ctx context.Context, groupID int64, member *models.Member) error
	JoinGroupByAccessCode(ctx context.Context, accessCode string, member *models.Member) (*models.Group, error)
	LeaveGroup(ctx context.Context, groupID int64, member *models.Member) error
	KickOutMember(ctx context.Context, groupID, memberID int64, owner *models.Member) error
}

// MemberService resolves the current member's profile
type MemberService interface {
	GetUserData(ctx context.Context, accessToken string) (*models.MemberInformation, error)
}

// Authenticator resolves an access token to a member
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Member, error)
}

// AuthService handles login and token rotation
type AuthService interface {
	OAuthLogin(ctx context.Context, profile service.OAuthProfile) (*models.TokenPair, *models.Member, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// MogacoService is the mogaco behaviour the handlers depend on
type MogacoService interface {
	ListByMonth(ctx context.Context, month string) ([]models.MogacoSummary, error)
	Get(ctx context.Context, id int64) (*models.Mogaco, error)
	Create(ctx context.Context, req models.CreateMogacoRequest, author *models.Member) (*models.Mogaco, error)
	Delete(ctx context.Context, id int64, member *models.Member) error
}
