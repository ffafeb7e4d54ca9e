package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"taskboard/internal/auth"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userRepo repository.UserRepositoryInterface
}

func NewUserHandler(userRepo repository.UserRepositoryInterface) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

type AddUserRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	IsAdmin bool   `json:"isAdmin"`
}

// GetUsers returns the whitelist plus the "DEFINIR" placeholder used for
// tasks without an owner yet.
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	hasPlaceholder := false
	for _, u := range users {
		if u.Name == model.PlaceholderName {
			hasPlaceholder = true
			break
		}
	}
	if !hasPlaceholder {
		users = append(users, model.PlaceholderUser())
	}

	c.JSON(http.StatusOK, users)
}

// AddUser whitelists a new user. Admin only.
func (h *UserHandler) AddUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	if !principal.HasRole(auth.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators can add users"})
		return
	}

	var req AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and a valid email are required"})
		return
	}

	user := &model.User{
		Email:   strings.ToLower(req.Email),
		Name:    req.Name,
		IsAdmin: req.IsAdmin,
	}
	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetRoles resolves the roles for a login. The platform POSTs the client
// principal here during sign-in; anyone not on the whitelist keeps only the
// "authenticated" role, so every failure path degrades to that instead of
// blocking the login.
func (h *UserHandler) GetRoles(c *gin.Context) {
	baseRoles := []string{auth.RoleAuthenticated}

	var principal auth.ClientPrincipal
	if err := c.ShouldBindJSON(&principal); err != nil {
		c.JSON(http.StatusOK, gin.H{"roles": baseRoles})
		return
	}

	email := strings.ToLower(principal.Email())
	if email == "" {
		c.JSON(http.StatusOK, gin.H{"roles": baseRoles})
		return
	}

	user, err := h.userRepo.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("⚠️  Role lookup failed for %s: %v", email, err)
		}
		c.JSON(http.StatusOK, gin.H{"roles": baseRoles})
		return
	}

	// Refresh profile data from the identity provider claims on every
	// login.
	if name := principal.ClaimValue(auth.NameClaimType); name != "" {
		user.Name = name
	}
	if picture := principal.ClaimValue(auth.PictureClaimType); picture != "" {
		user.Picture = picture
	}
	if err := h.userRepo.Upsert(c.Request.Context(), user); err != nil {
		log.Printf("⚠️  Failed to refresh profile for %s: %v", email, err)
	}

	roles := append(baseRoles, auth.RoleBoardUser)
	if user.IsAdmin {
		roles = append(roles, auth.RoleAdmin)
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}
