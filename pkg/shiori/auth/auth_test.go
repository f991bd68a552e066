package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("supabase-a")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Subject != "supabase-a" {
		t.Errorf("Expected subject supabase-a, got %s", claims.Subject)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalAuthMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := GetSupabaseID(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"id": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func TestOptionalAuthMiddleware(t *testing.T) {
	router := setupTestRouter()

	// No header passes through anonymously
	req, _ := http.NewRequest("GET", "/whoami", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200 without header, got %d", resp.Code)
	}

	// Valid token sets the subject
	token, _ := GenerateToken("supabase-a")
	req, _ = http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"id":"supabase-a"}` {
		t.Errorf("Unexpected body: %s", body)
	}

	// A present but invalid token is rejected
	req, _ = http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for invalid token, got %d", resp.Code)
	}

	// Malformed header is rejected
	req, _ = http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "garbage")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for malformed header, got %d", resp.Code)
	}
}

func TestOwnerIdentityPrefersExplicit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextKeySupabaseID, "from-token")

	if got := OwnerIdentity(c, "explicit"); got != "explicit" {
		t.Errorf("Expected explicit id to win, got %s", got)
	}
	if got := OwnerIdentity(c, ""); got != "from-token" {
		t.Errorf("Expected token subject fallback, got %s", got)
	}

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := OwnerIdentity(c2, ""); got != "" {
		t.Errorf("Expected empty identity, got %s", got)
	}
}
