package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"morak/internal/models"
	"morak/internal/repository"
	"morak/internal/validation"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrAccessCodeNotFound = errors.New("group not found for the provided access code")
	ErrAlreadyMember      = errors.New("member already belongs to this group")
	ErrNotGroupMember     = errors.New("member is not in this group")
	ErrNotGroupOwner      = errors.New("only the group owner can do this")
	ErrCannotKickOwner    = errors.New("the group owner cannot be kicked")
)

// KickNotifier tells a member they were removed from a group
type KickNotifier interface {
	SendKickedNotice(ctx context.Context, toEmail, nickname, groupTitle string) error
}

// GroupsService handles group and membership business logic
type GroupsService struct {
	groupRepo  *repository.GroupRepository
	memberRepo *repository.MemberRepository
	notifier   KickNotifier
	logger     *zap.Logger
}

// NewGroupsService creates a new groups service. notifier may be nil.
func NewGroupsService(groupRepo *repository.GroupRepository, memberRepo *repository.MemberRepository, notifier KickNotifier, logger *zap.Logger) *GroupsService {
	return &GroupsService{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

// GetAllGroups retrieves every group with its member count
func (s *GroupsService) GetAllGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.groupRepo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	return groups, nil
}

// GetGroup retrieves a group by ID
func (s *GroupsService) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: id %d", ErrGroupNotFound, groupID)
	}
	return group, nil
}

// GetGroupByAccessCode resolves an access code to its group
func (s *GroupsService) GetGroupByAccessCode(ctx context.Context, accessCode string) (*models.Group, error) {
	group, err := s.groupRepo.GetGroupByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get group by access code: %w", err)
	}
	if group == nil {
		return nil, ErrAccessCodeNotFound
	}
	return group, nil
}

// GetAllMembersOfGroup lists the members of an existing group
func (s *GroupsService) GetAllMembersOfGroup(ctx context.Context, groupID int64) ([]models.MemberInformation, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.groupRepo.ListGroupMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	return members, nil
}

// CreateGroup creates a group owned by member, who joins it immediately.
// The returned group carries its freshly generated access code.
func (s *GroupsService) CreateGroup(ctx context.Context, req models.CreateGroupRequest, member *models.Member) (*models.Group, error) {
	title := validation.Sanitize(req.Title)
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateGroupTypeID(req.GroupTypeID); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.CreateGroup(ctx, title, req.GroupTypeID, member.ID, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info("group created",
		zap.Int64("group_id", group.ID),
		zap.Int64("owner_id", member.ID))
	return group, nil
}

// JoinGroup adds member to an existing group
func (s *GroupsService) JoinGroup(ctx context.Context, groupID int64, member *models.Member) error {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}

	isMember, err := s.groupRepo.IsMember(ctx, groupID, member.ID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return ErrAlreadyMember
	}

	if err := s.groupRepo.AddMember(ctx, groupID, member.ID); err != nil {
		// Lost a race with a concurrent join of the same member
		if errors.Is(err, repository.ErrDuplicateMembership) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to join group: %w", err)
	}
	return nil
}

// JoinGroupByAccessCode resolves an access code and joins its group
func (s *GroupsService) JoinGroupByAccessCode(ctx context.Context, accessCode string, member *models.Member) (*models.Group, error) {
	group, err := s.GetGroupByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, err
	}
	if err := s.JoinGroup(ctx, group.ID, member); err != nil {
		return nil, err
	}
	return group, nil
}

// LeaveGroup removes member from a group
func (s *GroupsService) LeaveGroup(ctx context.Context, groupID int64, member *models.Member) error {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}

	removed, err := s.groupRepo.RemoveMember(ctx, groupID, member.ID)
	if err != nil {
		return fmt.Errorf("failed to leave group: %w", err)
	}
	if !removed {
		return ErrNotGroupMember
	}
	return nil
}

// GetMyGroups lists the groups member belongs to, with their access codes
func (s *GroupsService) GetMyGroups(ctx context.Context, member *models.Member) ([]models.Group, error) {
	groups, err := s.groupRepo.ListMemberGroups(ctx, member.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member groups: %w", err)
	}
	return groups, nil
}

// KickOutMember removes memberID from the group. Only the owner may kick,
// and the owner cannot kick themselves.
func (s *GroupsService) KickOutMember(ctx context.Context, groupID, memberID int64, owner *models.Member) error {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.GroupOwnerID != owner.ID {
		return ErrNotGroupOwner
	}
	if memberID == owner.ID {
		return ErrCannotKickOwner
	}

	removed, err := s.groupRepo.RemoveMember(ctx, groupID, memberID)
	if err != nil {
		return fmt.Errorf("failed to kick member: %w", err)
	}
	if !removed {
		return ErrNotGroupMember
	}

	s.logger.Info("member kicked",
		zap.Int64("group_id", groupID),
		zap.Int64("member_id", memberID),
		zap.Int64("owner_id", owner.ID))

	s.notifyKicked(ctx, group, memberID)
	return nil
}

// notifyKicked sends the kicked notice. Failures are logged, never returned.
func (s *GroupsService) notifyKicked(ctx context.Context, group *models.Group, memberID int64) {
	if s.notifier == nil {
		return
	}

	kicked, err := s.memberRepo.GetMemberByID(ctx, memberID)
	if err != nil || kicked == nil || kicked.Email == "" {
		if err != nil {
			s.logger.Warn("failed to load kicked member", zap.Int64("member_id", memberID), zap.Error(err))
		}
		return
	}

	if err := s.notifier.SendKickedNotice(ctx, kicked.Email, kicked.Nickname, group.Title); err != nil {
		s.logger.Warn("failed to send kicked notice",
			zap.Int64("group_id", group.ID),
			zap.Int64("member_id", memberID),
			zap.Error(err))
	}
}
