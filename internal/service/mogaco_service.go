package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"morak/internal/models"
	"morak/internal/repository"
	"morak/internal/validation"
)

var (
	ErrMogacoNotFound  = errors.New("mogaco not found")
	ErrNotMogacoAuthor = errors.New("only the author can delete this mogaco")
	ErrMogacoForbidden = errors.New("only group members can post a mogaco")
)

// MogacoService handles study meetups posted inside groups
type MogacoService struct {
	mogacoRepo *repository.MogacoRepository
	groupRepo  *repository.GroupRepository
	logger     *zap.Logger
}

// NewMogacoService creates a new mogaco service
func NewMogacoService(mogacoRepo *repository.MogacoRepository, groupRepo *repository.GroupRepository, logger *zap.Logger) *MogacoService {
	return &MogacoService{
		mogacoRepo: mogacoRepo,
		groupRepo:  groupRepo,
		logger:     logger,
	}
}

// ListByMonth returns the calendar view of every mogaco dated in month (YYYY-MM)
func (s *MogacoService) ListByMonth(ctx context.Context, month string) ([]models.MogacoSummary, error) {
	from, to, err := validation.ParseMonth(month)
	if err != nil {
		return nil, err
	}

	mogacos, err := s.mogacoRepo.ListMogacosBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list mogacos: %w", err)
	}

	summaries := make([]models.MogacoSummary, 0, len(mogacos))
	for i := range mogacos {
		summaries = append(summaries, mogacos[i].Summary())
	}
	return summaries, nil
}

// Get retrieves a mogaco by ID
func (s *MogacoService) Get(ctx context.Context, id int64) (*models.Mogaco, error) {
	mogaco, err := s.mogacoRepo.GetMogacoByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get mogaco: %w", err)
	}
	if mogaco == nil {
		return nil, fmt.Errorf("%w: id %d", ErrMogacoNotFound, id)
	}
	return mogaco, nil
}

// Create posts a mogaco in a group the author belongs to
func (s *MogacoService) Create(ctx context.Context, req models.CreateMogacoRequest, author *models.Member) (*models.Mogaco, error) {
	title := validation.Sanitize(req.Title)
	contents := validation.Sanitize(req.Contents)
	address := validation.Sanitize(req.Address)

	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateMaxLength("contents", contents, validation.MaxContentsLength); err != nil {
		return nil, err
	}
	if err := validation.ValidateMaxLength("address", address, validation.MaxAddressLength); err != nil {
		return nil, err
	}
	if err := validation.ValidateMaxHumanCount(req.MaxHumanCount); err != nil {
		return nil, err
	}
	if req.Date.IsZero() {
		return nil, validation.ValidationError{Field: "date", Message: "date is required"}
	}

	group, err := s.groupRepo.GetGroupByID(ctx, req.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: id %d", ErrGroupNotFound, req.GroupID)
	}

	isMember, err := s.groupRepo.IsMember(ctx, req.GroupID, author.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, ErrMogacoForbidden
	}

	mogaco := &models.Mogaco{
		GroupID:       req.GroupID,
		MemberID:      author.ID,
		Title:         title,
		Contents:      contents,
		Date:          req.Date,
		MaxHumanCount: req.MaxHumanCount,
		Address:       address,
		Status:        models.MogacoStatusRecruiting,
	}
	if err := s.mogacoRepo.CreateMogaco(ctx, mogaco); err != nil {
		return nil, fmt.Errorf("failed to create mogaco: %w", err)
	}

	s.logger.Info("mogaco created",
		zap.Int64("mogaco_id", mogaco.ID),
		zap.Int64("group_id", mogaco.GroupID),
		zap.Int64("member_id", author.ID))
	return mogaco, nil
}

// Delete removes a mogaco. Only its author may delete it.
func (s *MogacoService) Delete(ctx context.Context, id int64, member *models.Member) error {
	mogaco, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if mogaco.MemberID != member.ID {
		return ErrNotMogacoAuthor
	}
	if err := s.mogacoRepo.DeleteMogaco(ctx, id); err != nil {
		return fmt.Errorf("failed to delete mogaco: %w", err)
	}
	return nil
}
