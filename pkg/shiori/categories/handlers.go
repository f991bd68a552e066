package categories

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

// Handler handles category-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new categories handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateCategoryRequest represents the request to create a category
type CreateCategoryRequest struct {
	OwnerID string `json:"ownerId"`
	Name    string `json:"name"`
}

// UpdateCategoryRequest represents the request to rename a category
type UpdateCategoryRequest struct {
	OwnerID string `json:"ownerId"`
	Name    string `json:"name"`
}

// DeleteCategoryRequest represents the request to delete a category
type DeleteCategoryRequest struct {
	OwnerID string `json:"ownerId"`
}

// nameTaken checks the per-user uniqueness rule. excludeID skips the
// category being renamed so renaming to the current name is a no-op.
func (h *Handler) nameTaken(userID, name, excludeID string) (bool, error) {
	query := h.db.Where("user_id = ? AND name = ?", userID, name)
	if excludeID != "" {
		query = query.Where("id != ?", excludeID)
	}
	var existing models.Category
	if err := query.First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns the owner's categories in creation order
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
		log.Printf("[GET /api/categories] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの取得に失敗しました"})
		return
	}

	var categories []models.Category
	if err := h.db.Where("user_id = ?", owner.ID).Order("created_at ASC").Find(&categories).Error; err != nil {
		log.Printf("[GET /api/categories] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Create creates a new category for the owner
func (h *Handler) Create(c *gin.Context) {
	var req CreateCategoryRequest
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
		log.Printf("[POST /api/categories] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの作成に失敗しました"})
		return
	}

	taken, err := h.nameTaken(owner.ID, req.Name, "")
	if err != nil {
		log.Printf("[POST /api/categories] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの作成に失敗しました"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "同じ名前のカテゴリーが既に存在します"})
		return
	}

	category := models.Category{
		UserID: owner.ID,
		Name:   req.Name,
	}
	if err := h.db.Create(&category).Error; err != nil {
		log.Printf("[POST /api/categories] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの作成に失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// Get returns a single category by id. Public by id, like bookmarks.
func (h *Handler) Get(c *gin.Context) {
	var category models.Category
	if err := h.db.Preload("User").First(&category, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "カテゴリーが見つかりません"})
			return
		}
		log.Printf("[GET /api/categories/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Update renames a category, re-checking the uniqueness rule
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateCategoryRequest
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
		log.Printf("[PUT /api/categories/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの更新に失敗しました"})
		return
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "カテゴリーが見つかりません"})
			return
		}
		log.Printf("[PUT /api/categories/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの更新に失敗しました"})
		return
	}

	if err := ownership.Authorize(owner, &category); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "このカテゴリーを編集する権限がありません"})
		return
	}

	taken, err := h.nameTaken(owner.ID, req.Name, category.ID)
	if err != nil {
		log.Printf("[PUT /api/categories/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの更新に失敗しました"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "同じ名前のカテゴリーが既に存在します"})
		return
	}

	category.Name = req.Name
	if err := h.db.Save(&category).Error; err != nil {
		log.Printf("[PUT /api/categories/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの更新に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Delete deletes a category along with its join rows
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")

	var req DeleteCategoryRequest
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
		log.Printf("[DELETE /api/categories/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの削除に失敗しました"})
		return
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "カテゴリーが見つかりません"})
			return
		}
		log.Printf("[DELETE /api/categories/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの削除に失敗しました"})
		return
	}

	if err := ownership.Authorize(owner, &category); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "このカテゴリーを削除する権限がありません"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		log.Printf("[DELETE /api/categories/:id] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カテゴリーの削除に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "カテゴリーを削除しました"})
}

// RegisterRoutes registers category routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.List)
	rg.POST("/categories", h.Create)
	rg.GET("/categories/:id", h.Get)
	rg.PUT("/categories/:id", h.Update)
	rg.DELETE("/categories/:id", h.Delete)
}
