package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered user. Identity itself lives with the
// external auth provider; SupabaseID is the provider-issued id used to
// resolve this record.
type User struct {
	ID           string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	SupabaseID   string    `gorm:"uniqueIndex;not null" json:"supabaseId"`
	UserName     string    `gorm:"not null" json:"userName"`
	ThumbnailKey *string   `json:"thumbnailKey"`

	// Relationships
	Bookmarks  []Bookmark `gorm:"foreignKey:UserID" json:"bookmarks,omitempty"`
	Categories []Category `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Tags       []Tag      `gorm:"foreignKey:UserID" json:"tags,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
