package middleware_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/auth"
	"taskboard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func encodePrincipal(t *testing.T, principal auth.ClientPrincipal) string {
	t.Helper()
	raw, err := json.Marshal(principal)
	assert.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	protected := r.Group("/", middleware.PrincipalAuthMiddleware())
	protected.GET("/whoami", func(c *gin.Context) {
		principal, _ := middleware.GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"userId": principal.UserID})
	})

	admin := protected.Group("/", middleware.RequireRole(auth.RoleAdmin))
	admin.GET("/admin", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func TestPrincipalAuthMiddleware_MissingHeader(t *testing.T) {
	// Arrange
	router := setupRouter()
	req, _ := http.NewRequest("GET", "/whoami", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPrincipalAuthMiddleware_MalformedHeader(t *testing.T) {
	// Arrange
	router := setupRouter()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.Header.Set(auth.PrincipalHeader, "%%% not base64 %%%")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPrincipalAuthMiddleware_ValidHeader(t *testing.T) {
	// Arrange
	router := setupRouter()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.Header.Set(auth.PrincipalHeader, encodePrincipal(t, auth.ClientPrincipal{
		UserID:    "user-1",
		UserRoles: []string{auth.RoleAuthenticated},
	}))

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert: the handler sees the decoded principal
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"userId": "user-1"}`, resp.Body.String())
}

func TestRequireRole_Forbidden(t *testing.T) {
	// Arrange
	router := setupRouter()
	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set(auth.PrincipalHeader, encodePrincipal(t, auth.ClientPrincipal{
		UserID:    "user-1",
		UserRoles: []string{auth.RoleAuthenticated, auth.RoleBoardUser},
	}))

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRequireRole_Allowed(t *testing.T) {
	// Arrange
	router := setupRouter()
	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set(auth.PrincipalHeader, encodePrincipal(t, auth.ClientPrincipal{
		UserID:    "admin-1",
		UserRoles: []string{auth.RoleAuthenticated, auth.RoleBoardUser, auth.RoleAdmin},
	}))

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
}
