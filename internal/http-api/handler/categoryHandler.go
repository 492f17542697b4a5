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

type CategoryHandler struct {
	svc      service.CategoryService
	pageSize int
}

func NewCategoryHandler(svc service.CategoryService, pageSize int) *CategoryHandler {
	return &CategoryHandler{svc: svc, pageSize: pageSize}
}

// RegisterRoutes: reads are open to everyone, writes are admin-only. The
// write routes carry auth, so RegisterRoutes takes the auth middleware.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.POST("", auth, middleware.Authorize(policy.KindContent), h.Create)
	rg.DELETE("/:slug", auth, middleware.Authorize(policy.KindContent), h.Delete)
}

// List retrieves categories with optional name search
// GET /api/v1/categories?search=&page=1
func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize := pagination(c, h.pageSize)

	list, err := h.svc.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create adds a category
// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var in dto.CreateCategoryDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrSlugTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Delete removes a category by slug; titles keep existing with a nulled
// category
// DELETE /api/v1/categories/:slug
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
