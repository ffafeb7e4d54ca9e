package middleware

import (
	"net/http"

	"taskboard/internal/auth"

	"github.com/gin-gonic/gin"
)

// PrincipalKey is the context key the decoded identity is stored under.
const PrincipalKey = "clientPrincipal"

// PrincipalAuthMiddleware decodes the platform identity header and aborts
// with 401 when it is missing or malformed. Handlers downstream read the
// principal from the context and never touch the header again.
func PrincipalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(auth.PrincipalHeader)
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		principal, err := auth.ParsePrincipal(header)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid client principal"})
			c.Abort()
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated principal carries the
// given role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		if !principal.HasRole(role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal reads the decoded identity from the request context.
func GetPrincipal(c *gin.Context) (*auth.ClientPrincipal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*auth.ClientPrincipal)
	return principal, ok
}
