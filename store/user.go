package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slidewise/slidewise-server/models"
)

type userStore struct {
	db *gorm.DB
}

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error)
}

func (s *userStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *userStore) GetWithWorkspaces(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Preload("Workspaces", func(db *gorm.DB) *gorm.DB { return db.Order("workspaces.created_at ASC") }).
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *userStore) GetByLogin(ctx context.Context, email, username string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, username).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *userStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (s *userStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (s *userStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *userStore) AddWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Table("user_workspaces").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"user_id": userID, "workspace_id": workspaceID}).Error
}
