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

// MemberRepository handles database operations for members
type MemberRepository struct {
	db *database.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, provider_id, social_type, email, nickname, profile_picture, created_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (*models.Member, error) {
	member := &models.Member{}
	err := row.Scan(
		&member.ID,
		&member.ProviderID,
		&member.SocialType,
		&member.Email,
		&member.Nickname,
		&member.ProfilePicture,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}

// GetMemberByID retrieves a member by ID, or nil when none exists
func (r *MemberRepository) GetMemberByID(ctx context.Context, id int64) (*models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE id = ?"
	member, err := scanMember(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// GetMemberByProviderID retrieves a member by OAuth provider id, or nil when none exists
func (r *MemberRepository) GetMemberByProviderID(ctx context.Context, providerID string) (*models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE provider_id = ?"
	member, err := scanMember(r.db.QueryRowContext(ctx, query, providerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by provider id: %w", err)
	}
	return member, nil
}

// UpsertMember creates the member on first login and refreshes the profile
// fields on later logins. The returned member carries its database id.
func (r *MemberRepository) UpsertMember(ctx context.Context, m *models.Member) (*models.Member, error) {
	now := time.Now().UTC()

	updated, err := updateMemberProfile(ctx, r.db, m, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		err = insertMember(ctx, r.db, m, now)
		if errors.Is(err, errMemberExists) {
			// a concurrent first login created the row between the two statements
			_, err = updateMemberProfile(ctx, r.db, m, now)
		}
		if err != nil {
			return nil, err
		}
	}

	member, err := r.GetMemberByProviderID(ctx, m.ProviderID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("member %s vanished after upsert", m.ProviderID)
	}
	return member, nil
}

// errMemberExists reports a provider_id that is already registered
var errMemberExists = errors.New("member already exists")

func insertMember(ctx context.Context, q database.DBTX, m *models.Member, now time.Time) error {
	_, err := q.ExecReturningID(ctx, `
		INSERT INTO members (provider_id, social_type, email, nickname, profile_picture, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ProviderID, m.SocialType, m.Email, m.Nickname, m.ProfilePicture, now, now)
	if err != nil {
		if q.GetDialect().IsUniqueViolation(err) {
			return errMemberExists
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// updateMemberProfile reports whether a member with the provider id exists
func updateMemberProfile(ctx context.Context, q database.DBTX, m *models.Member, now time.Time) (bool, error) {
	result, err := q.ExecContext(ctx, `
		UPDATE members SET email = ?, nickname = ?, profile_picture = ?, updated_at = ?
		WHERE provider_id = ?
	`, m.Email, m.Nickname, m.ProfilePicture, now, m.ProviderID)
	if err != nil {
		return false, fmt.Errorf("failed to update member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// ListMembers retrieves every member ordered by id
func (r *MemberRepository) ListMembers(ctx context.Context) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+memberColumns+" FROM members ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}
