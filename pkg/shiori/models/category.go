package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category represents a per-user bookmark category.
// Names are unique within the owning user, not globally.
type Category struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name" json:"userId"`
	Name      string    `gorm:"not null;uniqueIndex:idx_categories_user_name" json:"name"`

	// Relationships
	User           User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostCategories []PostCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"postCategories,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// OwnerID returns the id of the owning user.
func (c *Category) OwnerID() string {
	return c.UserID
}
