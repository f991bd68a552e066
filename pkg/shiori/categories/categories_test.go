package categories

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shioribako/shiori/pkg/shiori/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)
	handler.RegisterRoutes(r.Group("/api"))
	return r
}

func createTestUser(t *testing.T, db *gorm.DB, supabaseID string) models.User {
	user := models.User{
		SupabaseID: supabaseID,
		UserName:   "Test User",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

type categoryResponse struct {
	Category models.Category `json:"category"`
}

type categoriesResponse struct {
	Categories []models.Category `json:"categories"`
}

func TestCreateCategory(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "supabase-a")

	resp := doJSON(router, "POST", "/api/categories", gin.H{"ownerId": "supabase-a", "name": "Work"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body categoryResponse
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Category.UserID != user.ID {
		t.Errorf("Expected category owner %s, got %s", user.ID, body.Category.UserID)
	}
	if body.Category.Name != "Work" {
		t.Errorf("Expected name Work, got %s", body.Category.Name)
	}

	// Missing name
	resp = doJSON(router, "POST", "/api/categories", gin.H{"ownerId": "supabase-a"})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing name, got %d", resp.Code)
	}

	// Unknown owner
	resp = doJSON(router, "POST", "/api/categories", gin.H{"ownerId": "nobody", "name": "Work"})
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown owner, got %d", resp.Code)
	}
}

func TestCategoryNameConflictScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	createTestUser(t, db, "supabase-a")
	createTestUser(t, db, "supabase-b")

	resp := doJSON(router, "POST", "/api/categories", gin.H{"ownerId": "supabase-a", "name": "Work"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.Code)
	}

	// Same owner, same name: conflict
	resp = doJSON(router, "POST", "/api/categories", gin.H{"ownerId": "supabase-a", "name": "Work"})
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate name, got %d", resp.Code)
	}

	// Case-sensitive exact match: different case passes
	resp = doJSON(router, "POST", "/api/categories", gin.H{"ownerId": "supabase-a", "name": "work"})
	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201 for different case, got %d", resp.Code)
	}

	// Different owner, same name: fine
	resp = doJSON(router, "POST", "/api/categories", gin.H{"ownerId": "supabase-b", "name": "Work"})
	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201 for other owner, got %d", resp.Code)
	}
}

func TestListCategories(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "supabase-a")
	db.Create(&models.Category{UserID: user.ID, Name: "Work"})
	db.Create(&models.Category{UserID: user.ID, Name: "Reading"})

	resp := doJSON(router, "GET", "/api/categories?ownerId=supabase-a", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body categoriesResponse
	json.Unmarshal(resp.Body.Bytes(), &body)
	if len(body.Categories) != 2 {
		t.Errorf("Expected 2 categories, got %d", len(body.Categories))
	}

	// ownerId is required for listing
	resp = doJSON(router, "GET", "/api/categories", nil)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without ownerId, got %d", resp.Code)
	}
}

func TestUpdateCategory(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	userA := createTestUser(t, db, "supabase-a")
	createTestUser(t, db, "supabase-b")
	work := models.Category{UserID: userA.ID, Name: "Work"}
	db.Create(&work)
	db.Create(&models.Category{UserID: userA.ID, Name: "Reading"})

	// Renaming to its own name is a no-op, not a conflict
	resp := doJSON(router, "PUT", "/api/categories/"+work.ID, gin.H{"ownerId": "supabase-a", "name": "Work"})
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200 for self-rename, got %d: %s", resp.Code, resp.Body.String())
	}

	// Renaming onto a sibling's name conflicts
	resp = doJSON(router, "PUT", "/api/categories/"+work.ID, gin.H{"ownerId": "supabase-a", "name": "Reading"})
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}

	// Another owner may not rename it
	resp = doJSON(router, "PUT", "/api/categories/"+work.ID, gin.H{"ownerId": "supabase-b", "name": "Mine"})
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}

	var unchanged models.Category
	db.First(&unchanged, "id = ?", work.ID)
	if unchanged.Name != "Work" {
		t.Errorf("Expected name unchanged after forbidden update, got %s", unchanged.Name)
	}
}

func TestDeleteCategoryRemovesJoinRows(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "supabase-a")
	category := models.Category{UserID: user.ID, Name: "Work"}
	db.Create(&category)
	bookmark := models.Bookmark{UserID: user.ID, URL: "https://example.com"}
	db.Create(&bookmark)
	db.Create(&models.PostCategory{BookmarkID: bookmark.ID, CategoryID: category.ID})

	resp := doJSON(router, "DELETE", "/api/categories/"+category.ID, gin.H{"ownerId": "supabase-a"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.PostCategory{}).Where("category_id = ?", category.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected join rows removed with the category, got %d", count)
	}

	// The bookmark itself survives
	var bookmarkCount int64
	db.Model(&models.Bookmark{}).Where("id = ?", bookmark.ID).Count(&bookmarkCount)
	if bookmarkCount != 1 {
		t.Error("Expected bookmark to survive category deletion")
	}
}
