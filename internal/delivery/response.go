package delivery

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog_service/internal/domain"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

// Pagination is the envelope metadata attached to list responses.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

func NewPagination(page, limit, totalItems int) Pagination {
	return Pagination{
		CurrentPage:  page,
		TotalPages:   int(math.Ceil(float64(totalItems) / float64(limit))),
		TotalItems:   totalItems,
		ItemsPerPage: limit,
	}
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// FailFromError maps a typed domain failure onto a transport status.
// Validation failures carry every violated field in the response.
func FailFromError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, Response{
			Status:  "Fail",
			Message: "Validation failed",
			Data:    validationErr.Fields,
		})
		return
	}
	ErrorResponse(c, statusFromError(err), err.Error())
}

func statusFromError(err error) int {
	var validationErr *domain.ValidationError
	var referenceErr *domain.ReferenceError

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &referenceErr),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotOwned), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBadCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
