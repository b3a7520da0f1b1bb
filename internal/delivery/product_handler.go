package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog_service/internal/middleware"
	"catalog_service/internal/repository"
	"catalog_service/internal/usecase"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/stats", h.ProductStats)
		products.GET("/:id", h.GetProduct)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

// sortColumns maps the accepted sortBy query values onto columns.
var sortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
	"createdAt":  "created_at",
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	sortBy := c.DefaultQuery("sortBy", "created_at")
	column, ok := sortColumns[sortBy]
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid sortBy parameter")
		return
	}
	sortOrder := c.DefaultQuery("sortOrder", "desc")

	opts := repository.FindOptions{
		Sort:  []repository.SortField{{Column: column, Desc: sortOrder != "asc"}},
		Limit: limit,
		Skip:  (page - 1) * limit,
	}

	products, err := h.useCase.ListByOwner(c.Request.Context(), ownerID, opts)
	if err != nil {
		h.log.Errorf("failed to list products for owner %s: %v", ownerID, err)
		FailFromError(c, err)
		return
	}
	total, err := h.useCase.CountByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.log.Errorf("failed to count products for owner %s: %v", ownerID, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", gin.H{
		"products":   products,
		"pagination": NewPagination(page, limit, total),
	})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var input usecase.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.useCase.Create(c.Request.Context(), input, ownerID)
	if err != nil {
		h.log.Warnf("failed to create product for owner %s: %v", ownerID, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Product created successfully", product)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	product, err := h.useCase.Get(c.Request.Context(), c.Param("id"), ownerID)
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(patch) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: no fields provided for update")
		return
	}

	product, err := h.useCase.Update(c.Request.Context(), c.Param("id"), patch, ownerID)
	if err != nil {
		h.log.Warnf("failed to update product %s for owner %s: %v", c.Param("id"), ownerID, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	if _, err := h.useCase.Delete(c.Request.Context(), c.Param("id"), ownerID); err != nil {
		h.log.Warnf("failed to delete product %s for owner %s: %v", c.Param("id"), ownerID, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) ProductStats(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	stats, err := h.useCase.Statistics(c.Request.Context(), ownerID)
	if err != nil {
		h.log.Errorf("failed to compute stats for owner %s: %v", ownerID, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Product statistics retrieved successfully", stats)
}
