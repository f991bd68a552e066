package bookmarks

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shioribako/shiori/pkg/shiori/auth"
	"github.com/shioribako/shiori/pkg/shiori/models"
	"github.com/shioribako/shiori/pkg/shiori/ownership"
	"gorm.io/gorm"
)

// Handler handles bookmark-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new bookmarks handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateBookmarkRequest represents the request to create a bookmark
type CreateBookmarkRequest struct {
	OwnerID       string   `json:"ownerId"`
	URL           string   `json:"url"`
	Comment       *string  `json:"comment"`
	IsFavorite    *bool    `json:"isFavorite"`
	PublishStatus string   `json:"publishStatus"`
	CategoryIDs   []string `json:"categoryIds"`
	TagIDs        []string `json:"tagIds"`
}

// UpdateBookmarkRequest represents the request to update a bookmark.
// Pointer and NullableString fields are only applied when present in
// the body; categoryIds/tagIds, when present, replace the whole axis.
type UpdateBookmarkRequest struct {
	OwnerID       string         `json:"ownerId"`
	URL           *string        `json:"url"`
	Comment       models.NullableString `json:"comment"`
	IsFavorite    *bool          `json:"isFavorite"`
	PublishStatus *string        `json:"publishStatus"`
	CategoryIDs   *[]string      `json:"categoryIds"`
	TagIDs        *[]string      `json:"tagIds"`
}

// DeleteBookmarkRequest represents the request to delete a bookmark
type DeleteBookmarkRequest struct {
	OwnerID string `json:"ownerId"`
}

// withAssociations preloads everything a bookmark response carries.
func (h *Handler) withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("PostCategories.Category").
		Preload("PostTags.Tag")
}

// dedupe drops repeated ids while keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// List returns bookmarks
// @Summary List bookmarks
// @Description List a user's bookmarks, or all PUBLISHED bookmarks when no ownerId is given
// @Tags bookmarks
// @Produce json
// @Param ownerId query string false "Owner identity issued by the auth provider"
// @Success 200 {object} map[string][]models.Bookmark
// @Failure 404 {object} map[string]string "Owner not found"
// @Router /bookmarks [get]
func (h *Handler) List(c *gin.Context) {
	ownerID := auth.OwnerIdentity(c, c.Query("ownerId"))

	query := h.withAssociations(h.db).Order("created_at DESC")

	if ownerID != "" {
		owner, err := ownership.ResolveOwner(h.db, ownerID)
		if err != nil {
			if errors.Is(err, ownership.ErrOwnerNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
				return
			}
			log.Printf("[GET /api/bookmarks] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの取得に失敗しました"})
			return
		}
		query = query.Where("user_id = ?", owner.ID)
	} else {
		// Anonymous listing only ever shows published bookmarks
		query = query.Where("publish_status = ?", models.PublishStatusPublished)
	}

	var bookmarks []models.Bookmark
	if err := query.Find(&bookmarks).Error; err != nil {
		log.Printf("[GET /api/bookmarks] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

// Create creates a new bookmark
// @Summary Create a bookmark
// @Description Save a URL with an optional comment, categories, and tags
// @Tags bookmarks
// @Accept json
// @Produce json
// @Param request body CreateBookmarkRequest true "Bookmark details"
// @Success 201 {object} map[string]models.Bookmark
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Owner not found"
// @Router /bookmarks [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID := auth.OwnerIdentity(c, req.OwnerID)
	if ownerID == "" || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId と url は必須です"})
		return
	}

	owner, err := ownership.ResolveOwner(h.db, ownerID)
	if err != nil {
		if errors.Is(err, ownership.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		log.Printf("[POST /api/bookmarks] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの作成に失敗しました"})
		return
	}

	status := models.PublishStatusDraft
	if req.PublishStatus != "" {
		status = models.PublishStatus(req.PublishStatus)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "publishStatus が不正です"})
			return
		}
	}

	bookmark := models.Bookmark{
		UserID:        owner.ID,
		URL:           req.URL,
		Comment:       req.Comment,
		PublishStatus: status,
	}
	if req.IsFavorite != nil {
		bookmark.IsFavorite = *req.IsFavorite
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bookmark).Error; err != nil {
			return err
		}
		for _, categoryID := range dedupe(req.CategoryIDs) {
			pc := models.PostCategory{BookmarkID: bookmark.ID, CategoryID: categoryID}
			if err := tx.Create(&pc).Error; err != nil {
				return err
			}
		}
		for _, tagID := range dedupe(req.TagIDs) {
			pt := models.PostTag{BookmarkID: bookmark.ID, TagID: tagID}
			if err := tx.Create(&pt).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[POST /api/bookmarks] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの作成に失敗しました"})
		return
	}

	var created models.Bookmark
	if err := h.withAssociations(h.db).First(&created, "id = ?", bookmark.ID).Error; err != nil {
		log.Printf("[POST /api/bookmarks] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの作成に失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bookmark": created})
}

// Get returns a single bookmark by id. Reads by id are public so that
// shared bookmark pages work without a session.
// @Summary Get a bookmark
// @Tags bookmarks
// @Produce json
// @Param id path string true "Bookmark ID"
// @Success 200 {object} map[string]models.Bookmark
// @Failure 404 {object} map[string]string "Bookmark not found"
// @Router /bookmarks/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	var bookmark models.Bookmark
	if err := h.withAssociations(h.db).First(&bookmark, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ブックマークが見つかりません"})
			return
		}
		log.Printf("[GET /api/bookmarks/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmark": bookmark})
}

// Update applies a partial update to a bookmark. When categoryIds or
// tagIds are present, all existing join rows on that axis are replaced
// inside the same transaction as the field update.
// @Summary Update a bookmark
// @Tags bookmarks
// @Accept json
// @Produce json
// @Param id path string true "Bookmark ID"
// @Param request body UpdateBookmarkRequest true "Fields to update"
// @Success 200 {object} map[string]models.Bookmark
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Owner or bookmark not found"
// @Router /bookmarks/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateBookmarkRequest
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
		log.Printf("[PUT /api/bookmarks/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの更新に失敗しました"})
		return
	}

	var bookmark models.Bookmark
	if err := h.db.First(&bookmark, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ブックマークが見つかりません"})
			return
		}
		log.Printf("[PUT /api/bookmarks/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの更新に失敗しました"})
		return
	}

	if err := ownership.Authorize(owner, &bookmark); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "このブックマークを編集する権限がありません"})
		return
	}

	if req.URL != nil {
		if *req.URL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url を空にすることはできません"})
			return
		}
		bookmark.URL = *req.URL
	}
	if req.Comment.Set {
		bookmark.Comment = req.Comment.Value
	}
	if req.IsFavorite != nil {
		bookmark.IsFavorite = *req.IsFavorite
	}
	if req.PublishStatus != nil {
		status := models.PublishStatus(*req.PublishStatus)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "publishStatus が不正です"})
			return
		}
		bookmark.PublishStatus = status
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if req.CategoryIDs != nil {
			if err := tx.Where("bookmark_id = ?", bookmark.ID).Delete(&models.PostCategory{}).Error; err != nil {
				return err
			}
			for _, categoryID := range dedupe(*req.CategoryIDs) {
				pc := models.PostCategory{BookmarkID: bookmark.ID, CategoryID: categoryID}
				if err := tx.Create(&pc).Error; err != nil {
					return err
				}
			}
		}
		if req.TagIDs != nil {
			if err := tx.Where("bookmark_id = ?", bookmark.ID).Delete(&models.PostTag{}).Error; err != nil {
				return err
			}
			for _, tagID := range dedupe(*req.TagIDs) {
				pt := models.PostTag{BookmarkID: bookmark.ID, TagID: tagID}
				if err := tx.Create(&pt).Error; err != nil {
					return err
				}
			}
		}
		return tx.Save(&bookmark).Error
	})
	if err != nil {
		log.Printf("[PUT /api/bookmarks/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの更新に失敗しました"})
		return
	}

	var updated models.Bookmark
	if err := h.withAssociations(h.db).First(&updated, "id = ?", bookmark.ID).Error; err != nil {
		log.Printf("[PUT /api/bookmarks/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの更新に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmark": updated})
}

// Delete deletes a bookmark along with its join rows
// @Summary Delete a bookmark
// @Tags bookmarks
// @Accept json
// @Produce json
// @Param id path string true "Bookmark ID"
// @Param request body DeleteBookmarkRequest true "Owner identity"
// @Success 200 {object} map[string]string "Deleted"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Owner or bookmark not found"
// @Router /bookmarks/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")

	var req DeleteBookmarkRequest
	// A missing body is fine when the request carries a token
	_ = c.ShouldBindJSON(&req)

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
		log.Printf("[DELETE /api/bookmarks/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの削除に失敗しました"})
		return
	}

	var bookmark models.Bookmark
	if err := h.db.First(&bookmark, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ブックマークが見つかりません"})
			return
		}
		log.Printf("[DELETE /api/bookmarks/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの削除に失敗しました"})
		return
	}

	if err := ownership.Authorize(owner, &bookmark); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "このブックマークを削除する権限がありません"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bookmark_id = ?", bookmark.ID).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bookmark_id = ?", bookmark.ID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&bookmark).Error
	})
	if err != nil {
		log.Printf("[DELETE /api/bookmarks/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ブックマークの削除に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ブックマークを削除しました"})
}

// RegisterRoutes registers bookmark routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookmarks", h.List)
	rg.POST("/bookmarks", h.Create)
	rg.GET("/bookmarks/:id", h.Get)
	rg.PUT("/bookmarks/:id", h.Update)
	rg.DELETE("/bookmarks/:id", h.Delete)
}
