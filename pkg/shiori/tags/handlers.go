package tags

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

// Handler handles tag-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tags handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateTagRequest represents the request to create a tag
type CreateTagRequest struct {
	OwnerID string `json:"ownerId"`
	Name    string `json:"name"`
}

// UpdateTagRequest represents the request to rename a tag
type UpdateTagRequest struct {
	OwnerID string `json:"ownerId"`
	Name    string `json:"name"`
}

// DeleteTagRequest represents the request to delete a tag
type DeleteTagRequest struct {
	OwnerID string `json:"ownerId"`
}

// nameTaken checks the per-user uniqueness rule. excludeID skips the
// tag being renamed so renaming to the current name is a no-op.
func (h *Handler) nameTaken(userID, name, excludeID string) (bool, error) {
	query := h.db.Where("user_id = ? AND name = ?", userID, name)
	if excludeID != "" {
		query = query.Where("id != ?", excludeID)
	}
	var existing models.Tag
	if err := query.First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns the owner's tags in creation order
func (h *Handler) List(c *gin.Context) {
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
		log.Printf("[GET /api/tags] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの取得に失敗しました"})
		return
	}

	var tags []models.Tag
	if err := h.db.Where("user_id = ?", owner.ID).Order("created_at ASC").Find(&tags).Error; err != nil {
		log.Printf("[GET /api/tags] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// Create creates a new tag for the owner
func (h *Handler) Create(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID := auth.OwnerIdentity(c, req.OwnerID)
	if ownerID == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId と name は必須です"})
		return
	}

	owner, err := ownership.ResolveOwner(h.db, ownerID)
	if err != nil {
		if errors.Is(err, ownership.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		log.Printf("[POST /api/tags] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの作成に失敗しました"})
		return
	}

	taken, err := h.nameTaken(owner.ID, req.Name, "")
	if err != nil {
		log.Printf("[POST /api/tags] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの作成に失敗しました"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "同じ名前のタグが既に存在します"})
		return
	}

	tag := models.Tag{
		UserID: owner.ID,
		Name:   req.Name,
	}
	if err := h.db.Create(&tag).Error; err != nil {
		log.Printf("[POST /api/tags] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの作成に失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// Get returns a single tag by id. Public by id, like bookmarks.
func (h *Handler) Get(c *gin.Context) {
	var tag models.Tag
	if err := h.db.Preload("User").First(&tag, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "タグが見つかりません"})
			return
		}
		log.Printf("[GET /api/tags/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// Update renames a tag, re-checking the uniqueness rule
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID := auth.OwnerIdentity(c, req.OwnerID)
	if ownerID == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId と name は必須です"})
		return
	}

	owner, err := ownership.ResolveOwner(h.db, ownerID)
	if err != nil {
		if errors.Is(err, ownership.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		log.Printf("[PUT /api/tags/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの更新に失敗しました"})
		return
	}

	var tag models.Tag
	if err := h.db.First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "タグが見つかりません"})
			return
		}
		log.Printf("[PUT /api/tags/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの更新に失敗しました"})
		return
	}

	if err := ownership.Authorize(owner, &tag); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "このタグを編集する権限がありません"})
		return
	}

	taken, err := h.nameTaken(owner.ID, req.Name, tag.ID)
	if err != nil {
		log.Printf("[PUT /api/tags/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの更新に失敗しました"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "同じ名前のタグが既に存在します"})
		return
	}

	tag.Name = req.Name
	if err := h.db.Save(&tag).Error; err != nil {
		log.Printf("[PUT /api/tags/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの更新に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// Delete deletes a tag along with its join rows
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")

	var req DeleteTagRequest
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
		log.Printf("[DELETE /api/tags/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの削除に失敗しました"})
		return
	}

	var tag models.Tag
	if err := h.db.First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "タグが見つかりません"})
			return
		}
		log.Printf("[DELETE /api/tags/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの削除に失敗しました"})
		return
	}

	if err := ownership.Authorize(owner, &tag); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "このタグを削除する権限がありません"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	if err != nil {
		log.Printf("[DELETE /api/tags/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "タグの削除に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "タグを削除しました"})
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)
	rg.POST("/tags", h.Create)
	rg.GET("/tags/:id", h.Get)
	rg.PUT("/tags/:id", h.Update)
	rg.DELETE("/tags/:id", h.Delete)
}
