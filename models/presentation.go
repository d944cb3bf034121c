package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Slide struct {
	Title   string `json:"title"`
	Content string `json:"content"` // newline-delimited bullets
	Notes   string `json:"notes"`
	Blocks  Blocks `json:"blocks,omitempty"`
}

// Presentation belongs to exactly one workspace; slides are stored inline.
type Presentation struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	WorkspaceID uuid.UUID `gorm:"column:workspace_id;type:uuid;not null;index" json:"workspace"`
	Slides      []Slide   `gorm:"column:slides;type:jsonb;serializer:json" json:"slides"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (Presentation) TableName() string {
	return "presentations"
}

func (p *Presentation) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slides == nil {
		p.Slides = []Slide{}
	}
	return nil
}
