package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"catalog_service/internal/domain"
)

var productColumns = []string{"id", "owner_id", "category_id", "name", "price", "stock", "created_at"}

// NewProducts builds the product collection. The "category" expand
// resolves each product's category in one batched query, mirroring a
// populate on the reference field.
func NewProducts(db *sql.DB, logger *logrus.Logger) *Collection[domain.Product] {
	return NewCollection(db, logger, Schema[domain.Product]{
		Table:   "products",
		Columns: productColumns,
		Scan:    scanProduct,
		Prepare: func(p *domain.Product) {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = time.Now().UTC()
			}
		},
		Insert: func(p *domain.Product) map[string]interface{} {
			return map[string]interface{}{
				"id":          p.ID,
				"owner_id":    p.OwnerID,
				"category_id": p.CategoryID,
				"name":        p.Name,
				"price":       p.Price,
				"stock":       p.Stock,
				"created_at":  p.CreatedAt,
			}
		},
		Apply: applyProductPatch,
		Expand: map[string]ExpandFunc[domain.Product]{
			"category": expandProductCategory,
		},
	})
}

func scanProduct(row Scanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.OwnerID, &p.CategoryID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// applyProductPatch merges a JSON patch into the product. JSON numbers
// arrive as float64, so integer fields are coerced back with a
// precision check, the same way the HTTP layer always had to.
func applyProductPatch(p *domain.Product, patch map[string]interface{}) (map[string]interface{}, error) {
	changed := make(map[string]interface{}, len(patch))
	fields := map[string]string{}

	for key, value := range patch {
		switch key {
		case "name":
			name, ok := value.(string)
			if !ok {
				fields["name"] = "must be a string"
				continue
			}
			p.Name = name
			changed["name"] = name
		case "price":
			price, ok := toFloat(value)
			if !ok {
				fields["price"] = "must be a number"
				continue
			}
			p.Price = price
			changed["price"] = price
		case "stock":
			stock, ok := toInt(value)
			if !ok {
				fields["stock"] = "must be an integer"
				continue
			}
			p.Stock = stock
			changed["stock"] = stock
		case "category_id":
			categoryID, ok := value.(string)
			if !ok {
				fields["category_id"] = "must be a string"
				continue
			}
			p.CategoryID = categoryID
			changed["category_id"] = categoryID
		default:
			// Unknown fields are ignored, not errors.
		}
	}

	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}
	return changed, nil
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		n := int(v)
		if float64(n) != v {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func expandProductCategory(ctx context.Context, db *sql.DB, items []*domain.Product) error {
	seen := map[string]bool{}
	ids := make([]string, 0, len(items))
	for _, p := range items {
		if !seen[p.CategoryID] {
			seen[p.CategoryID] = true
			ids = append(ids, p.CategoryID)
		}
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, owner_id, name FROM categories WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	categories := make(map[string]*domain.Category, len(ids))
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name); err != nil {
			return fmt.Errorf("scan category: %w", err)
		}
		categories[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate categories: %w", err)
	}

	for _, p := range items {
		p.Category = categories[p.CategoryID]
	}
	return nil
}
