package users

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shioribako/shiori/pkg/shiori/models"
	"gorm.io/gorm"
)

// Handler handles user registration and lookup
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new users handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterUserRequest represents the request to register a user record
// for an identity issued by the external auth provider
type RegisterUserRequest struct {
	SupabaseID   string  `json:"supabaseId"`
	UserName     string  `json:"userName"`
	ThumbnailKey *string `json:"thumbnailKey"`
}

// UpdateUserRequest represents a partial profile update
type UpdateUserRequest struct {
	UserName     string                `json:"userName"`
	ThumbnailKey models.NullableString `json:"thumbnailKey"`
}

// Register creates the internal user record for an external identity
// @Summary Register a user
// @Description Create the internal user record for an auth-provider identity
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterUserRequest true "User details"
// @Success 201 {object} map[string]models.User
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Identity already registered"
// @Router /users [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SupabaseID == "" || req.UserName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "supabaseId と userName は必須です"})
		return
	}

	var existing models.User
	if err := h.db.Where("supabase_id = ?", req.SupabaseID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "このユーザーは既に登録されています"})
		return
	}

	user := models.User{
		SupabaseID:   req.SupabaseID,
		UserName:     req.UserName,
		ThumbnailKey: req.ThumbnailKey,
	}
	if err := h.db.Create(&user).Error; err != nil {
		log.Printf("[POST /api/users] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの登録に失敗しました"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Get returns the user record for an external identity, with bookmarks
// @Summary Get a user
// @Tags users
// @Produce json
// @Param supabaseId path string true "Auth-provider identity"
// @Success 200 {object} map[string]models.User
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{supabaseId} [get]
func (h *Handler) Get(c *gin.Context) {
	var user models.User
	err := h.db.Preload("Bookmarks", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).Where("supabase_id = ?", c.Param("supabaseId")).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		log.Printf("[GET /api/users/:supabaseId] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Update applies a partial profile update. thumbnailKey null clears the
// stored avatar key.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("supabase_id = ?", c.Param("supabaseId")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		log.Printf("[PUT /api/users/:supabaseId] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの更新に失敗しました"})
		return
	}

	if req.UserName != "" {
		user.UserName = req.UserName
	}
	if req.ThumbnailKey.Set {
		user.ThumbnailKey = req.ThumbnailKey.Value
	}

	if err := h.db.Save(&user).Error; err != nil {
		log.Printf("[PUT /api/users/:supabaseId] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの更新に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RegisterRoutes registers user routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.Register)
	rg.GET("/users/:supabaseId", h.Get)
	rg.PUT("/users/:supabaseId", h.Update)
}
