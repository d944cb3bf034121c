package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slidewise/slidewise-server/models"
)

type workspaceStore struct {
	db *gorm.DB
}

func (s *workspaceStore) Create(ctx context.Context, w *models.Workspace) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(w).Error)
}

func (s *workspaceStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var w models.Workspace
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *workspaceStore) GetWithMembers(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var w models.Workspace
	err := s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Select("users.id", "users.first_name", "users.last_name", "users.email")
		}).
		First(&w, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *workspaceStore) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("workspace_members").
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *workspaceStore) AddMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Table("workspace_members").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"workspace_id": workspaceID, "user_id": userID}).Error
}

func (s *workspaceStore) Update(ctx context.Context, id uuid.UUID, name, logoURL *string) (*models.Workspace, error) {
	updates := map[string]any{}
	if name != nil {
		updates["name"] = *name
	}
	if logoURL != nil {
		updates["logo_url"] = *logoURL
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Workspace{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetByID(ctx, id)
}

func (s *workspaceStore) ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]models.Workspace, error) {
	var ws []models.Workspace
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&ws).Error
	return ws, err
}
