package handler

import (
	"errors"
	"net/http"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService service.UserService
	selfAlias   string
	pageSize    int
}

func NewUserHandler(userService service.UserService, selfAlias string, pageSize int) *UserHandler {
	return &UserHandler{
		userService: userService,
		selfAlias:   selfAlias,
		pageSize:    pageSize,
	}
}

// RegisterRoutes registers user administration routes. The whole group is
// authenticated; per-request rights (admin vs the self alias) are decided
// here against the policy.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", middleware.RequireAdmin(), h.List)
	rg.POST("", middleware.RequireAdmin(), h.Create)

	rg.GET("/:username", h.Get)
	rg.PATCH("/:username", h.Update)
	rg.DELETE("/:username", h.Delete)
}

// resolveTarget runs the user-resource access rule and maps the self alias
// to the caller's own username. A false return means a response was already
// written.
func (h *UserHandler) resolveTarget(c *gin.Context) (string, bool) {
	actor := middleware.ActorFromContext(c)
	username := c.Param("username")

	self, err := policy.CheckUserAccess(actor, c.Request.Method, username, h.selfAlias)
	if err != nil {
		if errors.Is(err, policy.ErrMethodNotAllowed) {
			// distinguishable from a plain permission denial
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		}
		return "", false
	}
	if self {
		return actor.Username, true
	}
	return username, true
}

// List retrieves users with optional username search
// GET /api/v1/users?search=&page=1&page_size=20
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pagination(c, h.pageSize)

	users, err := h.userService.List(c.Query("search"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// Create adds a user without the signup flow
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Create(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservedUsername),
			errors.Is(err, service.ErrUsernameTaken),
			errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Get retrieves a user by username, or the caller via the self alias
// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	username, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update patches a user record. Role changes by non-admins are silently
// forced back to "user" by the service.
// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	username, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	var req dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Update(middleware.ActorFromContext(c), username, req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrReservedUsername),
			errors.Is(err, service.ErrUsernameTaken),
			errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes a user; never reachable through the self alias
// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	username, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
