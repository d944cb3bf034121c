package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slidewise/slidewise-server/models"
)

type invitationStore struct {
	db *gorm.DB
}

func (s *invitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error)
}

func (s *invitationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (s *invitationStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (s *invitationStore) ListPendingForEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := s.db.WithContext(ctx).
		Preload("Sender", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "first_name", "last_name")
		}).
		Preload("Workspace", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Where("recipient_email = ? AND status = ?", email, models.InvitationPending).
		Order("created_at DESC").
		Find(&invs).Error
	return invs, err
}

func (s *invitationStore) ListPendingForWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := s.db.WithContext(ctx).
		Where("workspace_id = ? AND status = ?", workspaceID, models.InvitationPending).
		Order("created_at DESC").
		Find(&invs).Error
	return invs, err
}

func (s *invitationStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Invitation{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *invitationStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Invitation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
