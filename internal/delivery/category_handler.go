package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog_service/internal/middleware"
	"catalog_service/internal/usecase"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/:id", h.GetCategory)
		categories.PATCH("/:id", h.RenameCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	categories, err := h.useCase.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.log.Errorf("failed to list categories for owner %s: %v", ownerID, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.useCase.Create(c.Request.Context(), req.Name, ownerID)
	if err != nil {
		h.log.Warnf("failed to create category for owner %s: %v", ownerID, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Category created successfully", category)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	category, err := h.useCase.Get(c.Request.Context(), c.Param("id"), ownerID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) RenameCategory(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.useCase.Rename(c.Request.Context(), c.Param("id"), req.Name, ownerID)
	if err != nil {
		h.log.Warnf("failed to rename category %s for owner %s: %v", c.Param("id"), ownerID, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Category updated successfully", category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	if _, err := h.useCase.Delete(c.Request.Context(), c.Param("id"), ownerID); err != nil {
		h.log.Warnf("failed to delete category %s for owner %s: %v", c.Param("id"), ownerID, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}
