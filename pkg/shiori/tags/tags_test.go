package tags

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

func TestCreateTagConflictScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	createTestUser(t, db, "supabase-a")
	createTestUser(t, db, "supabase-b")

	resp := doJSON(router, "POST", "/api/tags", gin.H{"ownerId": "supabase-a", "name": "go"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, "POST", "/api/tags", gin.H{"ownerId": "supabase-a", "name": "go"})
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate name, got %d", resp.Code)
	}

	resp = doJSON(router, "POST", "/api/tags", gin.H{"ownerId": "supabase-b", "name": "go"})
	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201 for other owner, got %d", resp.Code)
	}
}

func TestListTagsRequiresOwner(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "supabase-a")
	db.Create(&models.Tag{UserID: user.ID, Name: "go"})

	resp := doJSON(router, "GET", "/api/tags?ownerId=supabase-a", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Tags []models.Tag `json:"tags"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	if len(body.Tags) != 1 {
		t.Errorf("Expected 1 tag, got %d", len(body.Tags))
	}

	resp = doJSON(router, "GET", "/api/tags", nil)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without ownerId, got %d", resp.Code)
	}

	resp = doJSON(router, "GET", "/api/tags?ownerId=nobody", nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown owner, got %d", resp.Code)
	}
}

func TestUpdateTagOwnershipAndConflict(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	userA := createTestUser(t, db, "supabase-a")
	createTestUser(t, db, "supabase-b")
	goTag := models.Tag{UserID: userA.ID, Name: "go"}
	db.Create(&goTag)
	db.Create(&models.Tag{UserID: userA.ID, Name: "rust"})

	// Self-rename is fine
	resp := doJSON(router, "PUT", "/api/tags/"+goTag.ID, gin.H{"ownerId": "supabase-a", "name": "go"})
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200 for self-rename, got %d: %s", resp.Code, resp.Body.String())
	}

	// Colliding with a sibling conflicts
	resp = doJSON(router, "PUT", "/api/tags/"+goTag.ID, gin.H{"ownerId": "supabase-a", "name": "rust"})
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}

	// Another owner is forbidden
	resp = doJSON(router, "PUT", "/api/tags/"+goTag.ID, gin.H{"ownerId": "supabase-b", "name": "stolen"})
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}

func TestDeleteTagRemovesJoinRows(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "supabase-a")
	tag := models.Tag{UserID: user.ID, Name: "go"}
	db.Create(&tag)
	bookmark := models.Bookmark{UserID: user.ID, URL: "https://example.com"}
	db.Create(&bookmark)
	db.Create(&models.PostTag{BookmarkID: bookmark.ID, TagID: tag.ID})

	resp := doJSON(router, "DELETE", "/api/tags/"+tag.ID, gin.H{"ownerId": "supabase-a"})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.PostTag{}).Where("tag_id = ?", tag.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected join rows removed with the tag, got %d", count)
	}
}
