package usecase

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"catalog_service/internal/domain"
	"catalog_service/internal/repository"
)

// CategoryStore is the slice of the generic collection the category
// usecases need. *repository.Collection[domain.Category] satisfies it.
type CategoryStore interface {
	FindOne(ctx context.Context, filter repository.Filter, expand ...string) (*domain.Category, error)
	FindMany(ctx context.Context, filter repository.Filter, opts repository.FindOptions, expand ...string) ([]*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, id string, patch map[string]interface{}) (*domain.Category, error)
	Delete(ctx context.Context, id string) (*domain.Category, error)
}

type CategoryUseCase interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Category, error)
	Get(ctx context.Context, categoryID, ownerID string) (*domain.Category, error)
	Create(ctx context.Context, name, ownerID string) (*domain.Category, error)
	Rename(ctx context.Context, categoryID, name, ownerID string) (*domain.Category, error)
	Delete(ctx context.Context, categoryID, ownerID string) (*domain.Category, error)
}

type categoryUseCase struct {
	categories CategoryStore
	log        *logrus.Logger
}

func NewCategoryUseCase(categories CategoryStore, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{categories: categories, log: logger}
}

func (uc *categoryUseCase) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Category, error) {
	return uc.categories.FindMany(ctx,
		repository.Filter{repository.Eq("owner_id", ownerID)},
		repository.FindOptions{Sort: []repository.SortField{{Column: "name"}}})
}

func (uc *categoryUseCase) Get(ctx context.Context, categoryID, ownerID string) (*domain.Category, error) {
	category, err := uc.categories.FindOne(ctx,
		repository.Filter{repository.Eq("id", categoryID), repository.Eq("owner_id", ownerID)})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotOwned
		}
		return nil, err
	}
	return category, nil
}

func (uc *categoryUseCase) Create(ctx context.Context, name, ownerID string) (*domain.Category, error) {
	created, err := uc.categories.Create(ctx, &domain.Category{OwnerID: ownerID, Name: name})
	if err != nil {
		return nil, err
	}
	uc.log.Infof("category %s created for owner %s", created.ID, ownerID)
	return created, nil
}

func (uc *categoryUseCase) Rename(ctx context.Context, categoryID, name, ownerID string) (*domain.Category, error) {
	if _, err := uc.Get(ctx, categoryID, ownerID); err != nil {
		return nil, err
	}

	updated, err := uc.categories.Update(ctx, categoryID, map[string]interface{}{"name": name})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotOwned
		}
		return nil, err
	}
	return updated, nil
}

func (uc *categoryUseCase) Delete(ctx context.Context, categoryID, ownerID string) (*domain.Category, error) {
	if _, err := uc.Get(ctx, categoryID, ownerID); err != nil {
		return nil, err
	}

	removed, err := uc.categories.Delete(ctx, categoryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotOwned
		}
		return nil, err
	}
	uc.log.Infof("category %s deleted for owner %s", categoryID, ownerID)
	return removed, nil
}
