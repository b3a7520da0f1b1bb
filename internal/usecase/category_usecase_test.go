package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog_service/internal/domain"
)

func newCategoryFixture() (*fakeCategoryStore, CategoryUseCase) {
	categories := &fakeCategoryStore{}
	uc := NewCategoryUseCase(categories, quietLogger())
	return categories, uc
}

func TestCategoryListByOwner_ScopesToOwner(t *testing.T) {
	categories, uc := newCategoryFixture()
	owner := uuid.NewString()
	categories.add(owner, "Mine")
	categories.add(uuid.NewString(), "Theirs")

	listed, err := uc.ListByOwner(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Mine", listed[0].Name)
}

func TestCategoryRenameDelete_AntiEnumeration(t *testing.T) {
	categories, uc := newCategoryFixture()
	owner := uuid.NewString()
	intruder := uuid.NewString()
	category := categories.add(owner, "Mine")

	_, errForeign := uc.Rename(context.Background(), category.ID, "Hijacked", intruder)
	_, errMissing := uc.Rename(context.Background(), uuid.NewString(), "Hijacked", intruder)
	assert.ErrorIs(t, errForeign, domain.ErrNotOwned)
	assert.ErrorIs(t, errMissing, domain.ErrNotOwned)

	_, errForeign = uc.Delete(context.Background(), category.ID, intruder)
	_, errMissing = uc.Delete(context.Background(), uuid.NewString(), intruder)
	assert.ErrorIs(t, errForeign, domain.ErrNotOwned)
	assert.ErrorIs(t, errMissing, domain.ErrNotOwned)

	assert.Len(t, categories.items, 1, "nothing may be mutated by a non-owner")
}

func TestCategoryCreateAndRename(t *testing.T) {
	_, uc := newCategoryFixture()
	owner := uuid.NewString()

	created, err := uc.Create(context.Background(), "Books", owner)
	require.NoError(t, err)
	assert.Equal(t, owner, created.OwnerID)

	renamed, err := uc.Rename(context.Background(), created.ID, "Magazines", owner)
	require.NoError(t, err)
	assert.Equal(t, "Magazines", renamed.Name)
}
