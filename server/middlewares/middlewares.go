package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/newslens/newslens/auth"
)

const (
	// ClaimsKey is the gin context key the validated admin claims are stored
	// under.
	ClaimsKey = "admin_claims"
	// TokenKey is the gin context key holding the raw bearer token, needed by
	// logout to revoke it.
	TokenKey = "admin_token"
)

// AdminSession middleware reads the bearer token from the Authorization
// header and validates it against the session store. On success the admin's
// claims are attached to the request context. Missing, invalid or expired
// sessions map to 401; a session whose user lost admin privileges maps to
// 403.
func AdminSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			c.Abort()
			return
		}
		token := strings.TrimSpace(header[len("bearer "):])

		claims, err := auth.ValidateAdminSession(db, token)
		if err != nil {
			status := http.StatusUnauthorized
			if err == auth.ErrNotAdmin {
				status = http.StatusForbidden
			}
			c.JSON(status, gin.H{"message": err.Error()})
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(TokenKey, token)
		c.Next()
	}
}

// GetClaims returns the admin claims attached by the AdminSession middleware.
func GetClaims(c *gin.Context) *auth.Claims {
	claims, _ := c.MustGet(ClaimsKey).(*auth.Claims)
	return claims
}
