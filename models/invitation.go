package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation links a sender, a recipient email (not necessarily a user yet)
// and a workspace. At most one row per (recipient_email, workspace_id).
type Invitation struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SenderID       uuid.UUID        `gorm:"column:sender_id;type:uuid;not null" json:"senderId"`
	Sender         *User            `gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:CASCADE;" json:"sender,omitempty"`
	RecipientEmail string           `gorm:"column:recipient_email;size:255;not null;uniqueIndex:idx_invitation_recipient_workspace" json:"recipientEmail"`
	WorkspaceID    uuid.UUID        `gorm:"column:workspace_id;type:uuid;not null;uniqueIndex:idx_invitation_recipient_workspace" json:"workspaceId"`
	Workspace      *Workspace       `gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE;" json:"workspace,omitempty"`
	Status         InvitationStatus `gorm:"column:status;size:20;not null;default:'pending'" json:"status"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = InvitationPending
	}
	return nil
}

// Expired reports whether the invitation is older than ttl. A zero ttl never expires.
func (i Invitation) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(i.CreatedAt) > ttl
}
