package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag represents a per-user bookmark tag.
// Names are unique within the owning user, not globally.
type Tag struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_tags_user_name" json:"userId"`
	Name      string    `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"name"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostTags []PostTag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"postTags,omitempty"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// OwnerID returns the id of the owning user.
func (t *Tag) OwnerID() string {
	return t.UserID
}
