package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublishStatus is the tri-state visibility of a bookmark.
type PublishStatus string

const (
	PublishStatusDraft     PublishStatus = "DRAFT"
	PublishStatusPublished PublishStatus = "PUBLISHED"
	PublishStatusPrivate   PublishStatus = "PRIVATE"
)

// Valid reports whether s is one of the known publish statuses.
func (s PublishStatus) Valid() bool {
	switch s {
	case PublishStatusDraft, PublishStatusPublished, PublishStatusPrivate:
		return true
	}
	return false
}

// Bookmark represents a saved URL with a rich-text comment.
// Only PUBLISHED bookmarks appear in unauthenticated listings.
type Bookmark struct {
	ID            string        `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	UserID        string        `gorm:"type:uuid;not null;index" json:"userId"`
	URL           string        `gorm:"not null" json:"url"`
	Comment       *string       `json:"comment"`
	IsFavorite    bool          `gorm:"default:false" json:"isFavorite"`
	PublishStatus PublishStatus `gorm:"type:varchar(20);default:'DRAFT';not null" json:"publishStatus"`

	// Relationships
	User           User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostCategories []PostCategory `gorm:"foreignKey:BookmarkID;constraint:OnDelete:CASCADE" json:"postCategories"`
	PostTags       []PostTag      `gorm:"foreignKey:BookmarkID;constraint:OnDelete:CASCADE" json:"postTags"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// OwnerID returns the id of the owning user.
func (b *Bookmark) OwnerID() string {
	return b.UserID
}
