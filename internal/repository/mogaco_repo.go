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

// MogacoRepository handles database operations for mogacos
type MogacoRepository struct {
	db *database.DB
}

// NewMogacoRepository creates a new mogaco repository
func NewMogacoRepository(db *database.DB) *MogacoRepository {
	return &MogacoRepository{db: db}
}

const mogacoColumns = `id, group_id, member_id, title, contents, date, max_human_count, address, status, created_at`

func scanMogaco(row interface{ Scan(...any) error }) (*models.Mogaco, error) {
	m := &models.Mogaco{}
	err := row.Scan(
		&m.ID,
		&m.GroupID,
		&m.MemberID,
		&m.Title,
		&m.Contents,
		&m.Date,
		&m.MaxHumanCount,
		&m.Address,
		&m.Status,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateMogaco inserts a mogaco and fills in its id and creation time
func (r *MogacoRepository) CreateMogaco(ctx context.Context, m *models.Mogaco) error {
	m.CreatedAt = time.Now().UTC()
	m.Date = m.Date.UTC()
	if m.Status == "" {
		m.Status = models.MogacoStatusRecruiting
	}

	id, err := r.db.ExecReturningID(ctx, `
		INSERT INTO mogacos (group_id, member_id, title, contents, date, max_human_count, address, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.GroupID, m.MemberID, m.Title, m.Contents, m.Date, m.MaxHumanCount, m.Address, m.Status, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create mogaco: %w", err)
	}
	m.ID = id
	return nil
}

// GetMogacoByID retrieves a mogaco, or nil when none exists
func (r *MogacoRepository) GetMogacoByID(ctx context.Context, id int64) (*models.Mogaco, error) {
	m, err := scanMogaco(r.db.QueryRowContext(ctx, "SELECT "+mogacoColumns+" FROM mogacos WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mogaco: %w", err)
	}
	return m, nil
}

// ListMogacosBetween retrieves mogacos with from <= date < to, ordered by date
func (r *MogacoRepository) ListMogacosBetween(ctx context.Context, from, to time.Time) ([]models.Mogaco, error) {
	query := "SELECT " + mogacoColumns + " FROM mogacos WHERE date >= ? AND date < ? ORDER BY date ASC, id ASC"
	return r.list(ctx, query, from.UTC(), to.UTC())
}

// ListMogacos retrieves every mogaco ordered by id
func (r *MogacoRepository) ListMogacos(ctx context.Context) ([]models.Mogaco, error) {
	return r.list(ctx, "SELECT "+mogacoColumns+" FROM mogacos ORDER BY id")
}

func (r *MogacoRepository) list(ctx context.Context, query string, args ...any) ([]models.Mogaco, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mogacos: %w", err)
	}
	defer rows.Close()

	mogacos := []models.Mogaco{}
	for rows.Next() {
		m, err := scanMogaco(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mogaco: %w", err)
		}
		mogacos = append(mogacos, *m)
	}
	return mogacos, rows.Err()
}

// DeleteMogaco deletes a mogaco by ID
func (r *MogacoRepository) DeleteMogaco(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM mogacos WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete mogaco: %w", err)
	}
	return nil
}
