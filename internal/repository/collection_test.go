package repository

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog_service/internal/domain"
)

func TestCheckID(t *testing.T) {
	assert.NoError(t, checkID(uuid.NewString()))
	assert.ErrorIs(t, checkID("not-a-uuid"), domain.ErrInvalidID)
	assert.ErrorIs(t, checkID(""), domain.ErrInvalidID)
}

func TestValidateStruct_AggregatesAllFieldErrors(t *testing.T) {
	err := validateStruct(&domain.Product{
		OwnerID:    "owner",
		CategoryID: "category",
		Name:       "",
		Price:      -1,
		Stock:      -5,
	})

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Len(t, validationErr.Fields, 3)
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "price")
	assert.Contains(t, validationErr.Fields, "stock")
}

func TestValidateStruct_UsesJSONFieldNames(t *testing.T) {
	err := validateStruct(&domain.Product{
		OwnerID: "owner",
		Name:    "Widget",
	})

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "category_id")
}

func TestValidateStruct_ValidProduct(t *testing.T) {
	err := validateStruct(&domain.Product{
		OwnerID:    "owner",
		CategoryID: "category",
		Name:       "Widget",
		Price:      0,
		Stock:      0,
	})

	assert.NoError(t, err)
}
