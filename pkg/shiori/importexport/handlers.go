package importexport

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shioribako/shiori/pkg/shiori/auth"
	"github.com/shioribako/shiori/pkg/shiori/models"
	"github.com/shioribako/shiori/pkg/shiori/ownership"
	"gorm.io/gorm"
)

// Handler handles import/export requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new import/export handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// PinboardBookmark represents a bookmark in Pinboard JSON format
type PinboardBookmark struct {
	Href     string `json:"href"`
	Extended string `json:"extended"`
	Tags     string `json:"tags"`
	Time     string `json:"time"`
	Shared   string `json:"shared"`
	ToRead   string `json:"toread"`
}

// ImportRequest represents an import request
type ImportRequest struct {
	OwnerID   string             `json:"ownerId"`
	Bookmarks []PinboardBookmark `json:"bookmarks"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Export returns the owner's bookmarks as Pinboard JSON
func (h *Handler) Export(c *gin.Context) {
	ownerID := auth.OwnerIdentity(c, c.Query("ownerId"))
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId は必須です"})
		return
	}

	owner, err := ownership.ResolveOwner(h.db, ownerID)
	if err != nil {
		if errors.Is(err, ownership.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		log.Printf("[GET /api/export] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークのエクスポートに失敗しました"})
		return
	}

	var bookmarks []models.Bookmark
	err = h.db.Preload("PostTags.Tag").
		Where("user_id = ?", owner.ID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		log.Printf("[GET /api/export] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークのエクスポートに失敗しました"})
		return
	}

	exported := make([]PinboardBookmark, len(bookmarks))
	for i, b := range bookmarks {
		names := make([]string, 0, len(b.PostTags))
		for _, pt := range b.PostTags {
			names = append(names, pt.Tag.Name)
		}

		extended := ""
		if b.Comment != nil {
			extended = *b.Comment
		}

		exported[i] = PinboardBookmark{
			Href:     b.URL,
			Extended: extended,
			Tags:     strings.Join(names, " "),
			Time:     b.CreatedAt.UTC().Format(time.RFC3339),
			Shared:   yesNo(b.PublishStatus == models.PublishStatusPublished),
			ToRead:   yesNo(b.PublishStatus == models.PublishStatusDraft),
		}
	}

	c.JSON(http.StatusOK, exported)
}

// Import imports bookmarks from Pinboard JSON format. Tags named in an
// entry are created for the owner when they do not exist yet.
func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID := auth.OwnerIdentity(c, req.OwnerID)
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId は必須です"})
		return
	}

	owner, err := ownership.ResolveOwner(h.db, ownerID)
	if err != nil {
		if errors.Is(err, ownership.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		log.Printf("[POST /api/import] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークのインポートに失敗しました"})
		return
	}

	result := ImportResult{
		Errors: []string{},
	}

	for i, entry := range req.Bookmarks {
		if entry.Href == "" {
			result.Errors = append(result.Errors, "bookmark "+strconv.Itoa(i)+": href がありません")
			result.Skipped++
			continue
		}

		createdAt := time.Now()
		if entry.Time != "" {
			parsed, err := time.Parse(time.RFC3339, entry.Time)
			if err != nil {
				result.Errors = append(result.Errors, "bookmark "+strconv.Itoa(i)+": time の形式が不正です")
				result.Skipped++
				continue
			}
			createdAt = parsed
		}

		status := models.PublishStatusPrivate
		if entry.Shared == "yes" {
			status = models.PublishStatusPublished
		} else if entry.ToRead == "yes" {
			status = models.PublishStatusDraft
		}

		var comment *string
		if entry.Extended != "" {
			extended := entry.Extended
			comment = &extended
		}

		bookmark := models.Bookmark{
			UserID:        owner.ID,
			URL:           entry.Href,
			Comment:       comment,
			PublishStatus: status,
			CreatedAt:     createdAt,
		}

		err := h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&bookmark).Error; err != nil {
				return err
			}
			for _, name := range strings.Fields(entry.Tags) {
				var tag models.Tag
				err := tx.Where("user_id = ? AND name = ?", owner.ID, name).First(&tag).Error
				if err != nil {
					if !errors.Is(err, gorm.ErrRecordNotFound) {
						return err
					}
					tag = models.Tag{UserID: owner.ID, Name: name}
					if err := tx.Create(&tag).Error; err != nil {
						return err
					}
				}
				pt := models.PostTag{BookmarkID: bookmark.ID, TagID: tag.ID}
				if err := tx.Create(&pt).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			result.Errors = append(result.Errors, "bookmark "+strconv.Itoa(i)+": 保存に失敗しました")
			result.Skipped++
			continue
		}

		result.Imported++
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers import/export routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
}
