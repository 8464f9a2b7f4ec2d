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

// ErrDuplicateMembership is returned when the (group, member) row already exists
var ErrDuplicateMembership = errors.New("member is already in this group")

// GroupRepository handles database operations for groups, their
// memberships and their access codes
type GroupRepository struct {
	db *database.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *database.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// membersCount is computed per row so every group query returns the derived field
const groupSelect = `
	SELECT g.id, g.title, g.group_type_id, g.group_owner_id, g.created_at,
	       (SELECT COUNT(*) FROM group_members c WHERE c.group_id = g.id) AS members_count
	FROM study_groups g
`

func scanGroup(row interface{ Scan(...any) error }, extra ...any) (*models.Group, error) {
	group := &models.Group{}
	dest := []any{
		&group.ID,
		&group.Title,
		&group.GroupTypeID,
		&group.GroupOwnerID,
		&group.CreatedAt,
		&group.MembersCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups retrieves every group with its member count
func (r *GroupRepository) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, groupSelect+" ORDER BY g.id")
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

// GetGroupByID retrieves a group with its member count, or nil when none exists
func (r *GroupRepository) GetGroupByID(ctx context.Context, groupID int64) (*models.Group, error) {
	group, err := scanGroup(r.db.QueryRowContext(ctx, groupSelect+" WHERE g.id = ?", groupID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// GetGroupByAccessCode resolves an access code to its group, or nil when the
// code is unknown
func (r *GroupRepository) GetGroupByAccessCode(ctx context.Context, accessCode string) (*models.Group, error) {
	query := groupSelect + `
		INNER JOIN group_access_codes ac ON ac.group_id = g.id
		WHERE ac.access_code = ?
	`
	group, err := scanGroup(r.db.QueryRowContext(ctx, query, accessCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by access code: %w", err)
	}
	return group, nil
}

// ListMemberGroups retrieves the groups a member belongs to, including each
// group's access code
func (r *GroupRepository) ListMemberGroups(ctx context.Context, memberID int64) ([]models.Group, error) {
	query := `
		SELECT g.id, g.title, g.group_type_id, g.group_owner_id, g.created_at,
		       (SELECT COUNT(*) FROM group_members c WHERE c.group_id = g.id) AS members_count,
		       COALESCE(ac.access_code, '')
		FROM group_members mine
		INNER JOIN study_groups g ON g.id = mine.group_id
		LEFT JOIN group_access_codes ac ON ac.group_id = g.id
		WHERE mine.user_id = ?
		ORDER BY mine.joined_at ASC, g.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query member groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var accessCode string
		group, err := scanGroup(rows, &accessCode)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		group.AccessCode = accessCode
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

// ListGroupMembers retrieves the members of a group in join order
func (r *GroupRepository) ListGroupMembers(ctx context.Context, groupID int64) ([]models.MemberInformation, error) {
	query := `
		SELECT m.id, m.provider_id, m.email, m.nickname, m.profile_picture
		FROM group_members gm
		INNER JOIN members m ON m.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY gm.joined_at ASC, m.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	members := []models.MemberInformation{}
	for rows.Next() {
		var m models.MemberInformation
		if err := rows.Scan(&m.ID, &m.ProviderID, &m.Email, &m.Nickname, &m.ProfilePicture); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CreateGroup creates a group, its access code and the owner's membership in
// a single transaction
func (r *GroupRepository) CreateGroup(ctx context.Context, title string, groupTypeID, ownerID int64, accessCode string) (*models.Group, error) {
	now := time.Now().UTC()
	var groupID int64

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		groupID, err = tx.ExecReturningID(ctx,
			"INSERT INTO study_groups (title, group_type_id, group_owner_id, created_at) VALUES (?, ?, ?, ?)",
			title, groupTypeID, ownerID, now)
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}

		_, err = tx.ExecReturningID(ctx,
			"INSERT INTO group_access_codes (group_id, access_code, created_at) VALUES (?, ?, ?)",
			groupID, accessCode, now)
		if err != nil {
			return fmt.Errorf("failed to create group access code: %w", err)
		}

		return insertMembership(ctx, tx, groupID, ownerID, now)
	})
	if err != nil {
		return nil, err
	}

	return &models.Group{
		ID:           groupID,
		Title:        title,
		GroupTypeID:  groupTypeID,
		GroupOwnerID: ownerID,
		MembersCount: 1,
		AccessCode:   accessCode,
		CreatedAt:    now,
	}, nil
}

// IsMember checks if a member belongs to a group
func (r *GroupRepository) IsMember(ctx context.Context, groupID, memberID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, memberID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}
	return count > 0, nil
}

// AddMember adds a member to a group. It returns ErrDuplicateMembership when
// the membership already exists.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, memberID int64) error {
	return insertMembership(ctx, r.db, groupID, memberID, time.Now().UTC())
}

func insertMembership(ctx context.Context, q database.DBTX, groupID, memberID int64, joinedAt time.Time) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		groupID, memberID, joinedAt)
	if err != nil {
		if q.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicateMembership
		}
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership and reports whether a row was removed
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, memberID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to remove group member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// ListAccessCodes retrieves every access code row
func (r *GroupRepository) ListAccessCodes(ctx context.Context) ([]models.GroupAccessCode, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, group_id, access_code, created_at FROM group_access_codes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query access codes: %w", err)
	}
	defer rows.Close()

	var codes []models.GroupAccessCode
	for rows.Next() {
		var c models.GroupAccessCode
		if err := rows.Scan(&c.ID, &c.GroupID, &c.AccessCode, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan access code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// ListMemberships retrieves every membership row
func (r *GroupRepository) ListMemberships(ctx context.Context) ([]models.GroupMembership, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT group_id, user_id, joined_at FROM group_members ORDER BY group_id, user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	var memberships []models.GroupMembership
	for rows.Next() {
		var m models.GroupMembership
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}
