package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workspace is the collaboration boundary. The owner is not guaranteed to be
// present in Members; access checks must test owner OR member.
type Workspace struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index" json:"owner"`
	Owner     *User     `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Members   []User    `gorm:"many2many:workspace_members;" json:"members"`
	LogoURL   string    `gorm:"column:logo_url;type:text;default:''" json:"logoUrl"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Workspace) TableName() string {
	return "workspaces"
}

func (w *Workspace) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// DefaultWorkspaceName names the workspace created at registration.
func DefaultWorkspaceName(firstName string) string {
	return fmt.Sprintf("%s's Workspace", firstName)
}

// HasMember reports whether userID is in the loaded member set. It does not
// consider the owner.
func (w Workspace) HasMember(userID uuid.UUID) bool {
	for _, m := range w.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
