package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FirstName  string      `gorm:"column:first_name;size:255;not null" json:"firstName"`
	LastName   string      `gorm:"column:last_name;size:255;not null" json:"lastName"`
	Username   string      `gorm:"column:username;size:255;uniqueIndex;not null" json:"username"`
	Email      string      `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Password   string      `gorm:"column:password;size:1024;not null" json:"-"` // bcrypt hash, never serialised
	Workspaces []Workspace `gorm:"many2many:user_workspaces;" json:"workspaces"`
	Date       time.Time   `gorm:"column:date;autoCreateTime" json:"date"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName is what invitation listings show for a sender.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// HasWorkspace reports whether id is among the loaded workspaces.
func (u User) HasWorkspace(id uuid.UUID) bool {
	for _, w := range u.Workspaces {
		if w.ID == id {
			return true
		}
	}
	return false
}
