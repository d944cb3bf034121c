package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// GormStores backs every store with one *gorm.DB, which may be a transaction.
type GormStores struct {
	db *gorm.DB
}

func NewGormStores(db *gorm.DB) *GormStores {
	return &GormStores{db: db}
}

func (s *GormStores) Users() UserStore                 { return &userStore{db: s.db} }
func (s *GormStores) Workspaces() WorkspaceStore       { return &workspaceStore{db: s.db} }
func (s *GormStores) Invitations() InvitationStore     { return &invitationStore{db: s.db} }
func (s *GormStores) Presentations() PresentationStore { return &presentationStore{db: s.db} }

func (s *GormStores) WithTx(ctx context.Context, fn func(stores Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStores{db: tx})
	})
}

func (s *GormStores) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps gorm errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
