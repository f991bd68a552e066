package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextKeySupabaseID is the key for the authenticated provider-side
	// user id in gin context
	ContextKeySupabaseID = "supabase_id"
)

// OptionalAuthMiddleware validates a Bearer identity token when one is
// supplied and stashes its subject in the context. Requests without an
// Authorization header pass through untouched: every endpoint also
// accepts an explicit ownerId, and public reads need no identity at all.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証ヘッダーの形式が正しくありません"})
			c.Abort()
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			if err == ErrExpiredToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "トークンの有効期限が切れています"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "トークンが無効です"})
			}
			c.Abort()
			return
		}

		c.Set(ContextKeySupabaseID, claims.Subject)
		c.Next()
	}
}

// GetSupabaseID returns the authenticated provider-side user id from the
// gin context
func GetSupabaseID(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextKeySupabaseID)
	if !exists {
		return "", false
	}
	return id.(string), true
}

// OwnerIdentity resolves the owner identity for a request: an explicit
// ownerId from the body or query wins, otherwise the authenticated
// token subject is used.
func OwnerIdentity(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if id, ok := GetSupabaseID(c); ok {
		return id
	}
	return ""
}
