package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"morak/internal/database"
	"morak/internal/models"
	"morak/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version     string                   `json:"version"`
	ExportedAt  time.Time                `json:"exported_at"`
	Members     []models.Member          `json:"members"`
	Groups      []models.Group           `json:"groups"`
	AccessCodes []models.GroupAccessCode `json:"access_codes"`
	Memberships []models.GroupMembership `json:"memberships"`
	Mogacos     []models.Mogaco          `json:"mogacos"`
}

// BackupService exports and restores the whole database as JSON
type BackupService struct {
	db         *database.DB
	memberRepo *repository.MemberRepository
	groupRepo  *repository.GroupRepository
	mogacoRepo *repository.MogacoRepository
	logger     *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *zap.Logger) *BackupService {
	return &BackupService{
		db:         db,
		memberRepo: repository.NewMemberRepository(db),
		groupRepo:  repository.NewGroupRepository(db),
		mogacoRepo: repository.NewMogacoRepository(db),
		logger:     logger,
	}
}

// Collect reads every exportable row
func (s *BackupService) Collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
	}

	var err error
	if backup.Members, err = s.memberRepo.ListMembers(ctx); err != nil {
		return nil, fmt.Errorf("failed to export members: %w", err)
	}
	if backup.Groups, err = s.groupRepo.ListGroups(ctx); err != nil {
		return nil, fmt.Errorf("failed to export groups: %w", err)
	}
	if backup.AccessCodes, err = s.groupRepo.ListAccessCodes(ctx); err != nil {
		return nil, fmt.Errorf("failed to export access codes: %w", err)
	}
	if backup.Memberships, err = s.groupRepo.ListMemberships(ctx); err != nil {
		return nil, fmt.Errorf("failed to export memberships: %w", err)
	}
	if backup.Mogacos, err = s.mogacoRepo.ListMogacos(ctx); err != nil {
		return nil, fmt.Errorf("failed to export mogacos: %w", err)
	}
	return backup, nil
}

// Export writes a complete backup as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) error {
	backup, err := s.Collect(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("database exported",
		zap.Int("members", len(backup.Members)),
		zap.Int("groups", len(backup.Groups)),
		zap.Int("memberships", len(backup.Memberships)),
		zap.Int("mogacos", len(backup.Mogacos)))
	return nil
}

// ExportToFile creates outputPath and writes a complete backup into it
func (s *BackupService) ExportToFile(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.Export(ctx, file); err != nil {
		return err
	}
	return file.Close()
}

// ImportFromFile restores a backup file
func (s *BackupService) ImportFromFile(ctx context.Context, inputPath string, clear bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.Import(ctx, file, clear)
}

// Import restores a backup in a single transaction. Rows keep their ids.
// With clear set, existing data is removed first.
func (s *BackupService) Import(ctx context.Context, r io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("importing backup", zap.Time("exported_at", backup.ExportedAt), zap.Bool("clear", clear))

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if clear {
			if err := clearTables(ctx, tx); err != nil {
				return err
			}
		}
		if err := importBackup(ctx, tx, &backup); err != nil {
			return err
		}
		if tx.GetDialect().DriverName() == "postgres" {
			return resetSequences(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("database import completed",
		zap.Int("members", len(backup.Members)),
		zap.Int("groups", len(backup.Groups)),
		zap.Int("mogacos", len(backup.Mogacos)))
	return nil
}

// tables in dependency order; clearing walks it backwards
var backupTables = []string{"members", "study_groups", "group_access_codes", "group_members", "mogacos"}

func clearTables(ctx context.Context, tx *database.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens"); err != nil {
		return fmt.Errorf("failed to clear refresh_tokens: %w", err)
	}
	for i := len(backupTables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+backupTables[i]); err != nil {
			return fmt.Errorf("failed to clear %s: %w", backupTables[i], err)
		}
	}
	return nil
}

func importBackup(ctx context.Context, tx *database.Tx, b *BackupData) error {
	for _, m := range b.Members {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO members (id, provider_id, social_type, email, nickname, profile_picture, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, m.ProviderID, m.SocialType, m.Email, m.Nickname, m.ProfilePicture, m.CreatedAt.UTC(), m.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to import member %d: %w", m.ID, err)
		}
	}

	for _, g := range b.Groups {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO study_groups (id, title, group_type_id, group_owner_id, created_at) VALUES (?, ?, ?, ?, ?)",
			g.ID, g.Title, g.GroupTypeID, g.GroupOwnerID, g.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to import group %d: %w", g.ID, err)
		}
	}

	for _, c := range b.AccessCodes {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO group_access_codes (id, group_id, access_code, created_at) VALUES (?, ?, ?, ?)",
			c.ID, c.GroupID, c.AccessCode, c.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to import access code for group %d: %w", c.GroupID, err)
		}
	}

	for _, m := range b.Memberships {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
			m.GroupID, m.UserID, m.JoinedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to import membership %d/%d: %w", m.GroupID, m.UserID, err)
		}
	}

	for _, m := range b.Mogacos {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO mogacos (id, group_id, member_id, title, contents, date, max_human_count, address, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, m.GroupID, m.MemberID, m.Title, m.Contents, m.Date.UTC(), m.MaxHumanCount, m.Address, m.Status, m.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to import mogaco %d: %w", m.ID, err)
		}
	}
	return nil
}

// resetSequences moves postgres id sequences past the imported ids
func resetSequences(ctx context.Context, tx *database.Tx) error {
	for _, table := range []string{"members", "study_groups", "group_access_codes", "mogacos"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s", table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}
