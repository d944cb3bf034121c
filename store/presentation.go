package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slidewise/slidewise-server/models"
)

type presentationStore struct {
	db *gorm.DB
}

func (s *presentationStore) Create(ctx context.Context, p *models.Presentation) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (s *presentationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error) {
	var p models.Presentation
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *presentationStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Presentation, error) {
	ps := []models.Presentation{}
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&ps).Error
	return ps, err
}

// Update writes title and the whole slide list.
func (s *presentationStore) Update(ctx context.Context, p *models.Presentation) error {
	res := s.db.WithContext(ctx).
		Model(p).
		Select("title", "slides", "updated_at").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *presentationStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Presentation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
