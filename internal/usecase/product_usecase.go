package usecase

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"catalog_service/internal/domain"
	"catalog_service/internal/repository"
)

// LowStockThreshold is the stock level below which a product counts as
// low stock in the statistics.
const LowStockThreshold = 10

// ProductStore is the slice of the generic collection the product
// policy layer needs. *repository.Collection[domain.Product]
// satisfies it.
type ProductStore interface {
	FindByID(ctx context.Context, id string, expand ...string) (*domain.Product, error)
	FindOne(ctx context.Context, filter repository.Filter, expand ...string) (*domain.Product, error)
	FindMany(ctx context.Context, filter repository.Filter, opts repository.FindOptions, expand ...string) ([]*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, patch map[string]interface{}) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
	Count(ctx context.Context, filter repository.Filter) (int, error)
	GroupCount(ctx context.Context, filter repository.Filter, column string) ([]repository.GroupCount, error)
}

type CreateProductInput struct {
	Name       string  `json:"name"`
	CategoryID string  `json:"category_id"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
}

type ProductUseCase interface {
	ListByOwner(ctx context.Context, ownerID string, opts repository.FindOptions) ([]*domain.Product, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Get(ctx context.Context, productID, ownerID string) (*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput, ownerID string) (*domain.Product, error)
	Update(ctx context.Context, productID string, patch map[string]interface{}, ownerID string) (*domain.Product, error)
	Delete(ctx context.Context, productID, ownerID string) (*domain.Product, error)
	Statistics(ctx context.Context, ownerID string) (*domain.ProductStats, error)
}

// productUseCase layers ownership and referential-integrity policy on
// top of the generic collections. It never talks to the store engine
// directly.
type productUseCase struct {
	products   ProductStore
	categories CategoryStore
	log        *logrus.Logger
}

func NewProductUseCase(products ProductStore, categories CategoryStore, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		products:   products,
		categories: categories,
		log:        logger,
	}
}

// ListByOwner trusts the caller's authenticated identity; it never
// checks that the owner exists.
func (uc *productUseCase) ListByOwner(ctx context.Context, ownerID string, opts repository.FindOptions) ([]*domain.Product, error) {
	return uc.products.FindMany(ctx, repository.Filter{repository.Eq("owner_id", ownerID)}, opts, "category")
}

func (uc *productUseCase) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return uc.products.Count(ctx, repository.Filter{repository.Eq("owner_id", ownerID)})
}

func (uc *productUseCase) Get(ctx context.Context, productID, ownerID string) (*domain.Product, error) {
	product, err := uc.products.FindOne(ctx,
		repository.Filter{repository.Eq("id", productID), repository.Eq("owner_id", ownerID)},
		"category")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotOwned
		}
		return nil, err
	}
	return product, nil
}

// Create validates the category reference before the structural
// validation of the rest of the input runs, so a bad reference is
// reported even when other fields are also invalid.
func (uc *productUseCase) Create(ctx context.Context, input CreateProductInput, ownerID string) (*domain.Product, error) {
	category, err := uc.ownedCategory(ctx, input.CategoryID, ownerID)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		OwnerID:    ownerID,
		CategoryID: input.CategoryID,
		Name:       input.Name,
		Price:      input.Price,
		Stock:      input.Stock,
	}
	created, err := uc.products.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("product %s created for owner %s", created.ID, ownerID)

	// The referential check already loaded the category, so the
	// created entity comes back expanded without another read.
	created.Category = category
	return created, nil
}

// Update re-validates the category only when the patch touches it.
// Fields absent from the patch are left unchanged.
func (uc *productUseCase) Update(ctx context.Context, productID string, patch map[string]interface{}, ownerID string) (*domain.Product, error) {
	if err := uc.mustOwnProduct(ctx, productID, ownerID); err != nil {
		return nil, err
	}

	if raw, ok := patch["category_id"]; ok {
		categoryID, isString := raw.(string)
		if !isString {
			return nil, &domain.ValidationError{Fields: map[string]string{"category_id": "must be a string"}}
		}
		if _, err := uc.ownedCategory(ctx, categoryID, ownerID); err != nil {
			return nil, err
		}
	}

	updated, err := uc.products.Update(ctx, productID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted between the ownership lookup and the write.
			return nil, domain.ErrNotOwned
		}
		return nil, err
	}
	uc.log.Infof("product %s updated for owner %s", updated.ID, ownerID)

	return uc.products.FindByID(ctx, productID, "category")
}

func (uc *productUseCase) Delete(ctx context.Context, productID, ownerID string) (*domain.Product, error) {
	if err := uc.mustOwnProduct(ctx, productID, ownerID); err != nil {
		return nil, err
	}

	removed, err := uc.products.Delete(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotOwned
		}
		return nil, err
	}
	uc.log.Infof("product %s deleted for owner %s", productID, ownerID)
	return removed, nil
}

// Statistics aggregates the owner's catalog: total products, products
// below the low-stock threshold, and a per-category breakdown joined
// to the category display names. Categories with no products do not
// appear.
func (uc *productUseCase) Statistics(ctx context.Context, ownerID string) (*domain.ProductStats, error) {
	owned := repository.Filter{repository.Eq("owner_id", ownerID)}

	total, err := uc.products.Count(ctx, owned)
	if err != nil {
		return nil, err
	}

	lowStock, err := uc.products.Count(ctx, repository.Filter{
		repository.Eq("owner_id", ownerID),
		repository.Lt("stock", LowStockThreshold),
	})
	if err != nil {
		return nil, err
	}

	groups, err := uc.products.GroupCount(ctx, owned, "category_id")
	if err != nil {
		return nil, err
	}

	breakdown := make([]domain.CategoryCount, 0, len(groups))
	if len(groups) > 0 {
		ids := make([]string, 0, len(groups))
		for _, g := range groups {
			ids = append(ids, g.Key)
		}
		categories, err := uc.categories.FindMany(ctx, repository.Filter{repository.In("id", ids)}, repository.FindOptions{})
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(categories))
		for _, c := range categories {
			names[c.ID] = c.Name
		}
		for _, g := range groups {
			name, ok := names[g.Key]
			if !ok {
				// Category deleted after its products were counted.
				continue
			}
			breakdown = append(breakdown, domain.CategoryCount{CategoryName: name, Count: g.Count})
		}
	}

	return &domain.ProductStats{
		TotalProducts:     total,
		LowStockProducts:  lowStock,
		CategoryBreakdown: breakdown,
	}, nil
}

// ownedCategory resolves a category only if it belongs to the caller.
// Absent and foreign-owned collapse into the same reference failure.
func (uc *productUseCase) ownedCategory(ctx context.Context, categoryID, ownerID string) (*domain.Category, error) {
	category, err := uc.categories.FindOne(ctx,
		repository.Filter{repository.Eq("id", categoryID), repository.Eq("owner_id", ownerID)})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("category %s rejected for owner %s", categoryID, ownerID)
			return nil, &domain.ReferenceError{Field: "category"}
		}
		return nil, err
	}
	return category, nil
}

// mustOwnProduct is the ownership gate in front of every mutation.
// Unknown ids and other owners' ids fail identically.
func (uc *productUseCase) mustOwnProduct(ctx context.Context, productID, ownerID string) error {
	_, err := uc.products.FindOne(ctx,
		repository.Filter{repository.Eq("id", productID), repository.Eq("owner_id", ownerID)})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotOwned
		}
		return err
	}
	return nil
}
