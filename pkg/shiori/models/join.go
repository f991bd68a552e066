package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostCategory links one bookmark to one category.
type PostCategory struct {
	ID         string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	BookmarkID string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_categories_pair" json:"bookmarkId"`
	CategoryID string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_categories_pair" json:"categoryId"`

	// Relationships
	Bookmark Bookmark `gorm:"foreignKey:BookmarkID" json:"bookmark,omitempty"`
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (pc *PostCategory) BeforeCreate(tx *gorm.DB) error {
	if pc.ID == "" {
		pc.ID = uuid.NewString()
	}
	return nil
}

// PostTag links one bookmark to one tag.
type PostTag struct {
	ID         string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	BookmarkID string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_tags_pair" json:"bookmarkId"`
	TagID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_tags_pair" json:"tagId"`

	// Relationships
	Bookmark Bookmark `gorm:"foreignKey:BookmarkID" json:"bookmark,omitempty"`
	Tag      Tag      `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}

func (pt *PostTag) BeforeCreate(tx *gorm.DB) error {
	if pt.ID == "" {
		pt.ID = uuid.NewString()
	}
	return nil
}
