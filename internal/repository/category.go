package repository

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog_service/internal/domain"
)

var categoryColumns = []string{"id", "owner_id", "name"}

func NewCategories(db *sql.DB, logger *logrus.Logger) *Collection[domain.Category] {
	return NewCollection(db, logger, Schema[domain.Category]{
		Table:   "categories",
		Columns: categoryColumns,
		Scan:    scanCategory,
		Prepare: func(c *domain.Category) {
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
		},
		Insert: func(c *domain.Category) map[string]interface{} {
			return map[string]interface{}{
				"id":       c.ID,
				"owner_id": c.OwnerID,
				"name":     c.Name,
			}
		},
		Apply: applyCategoryPatch,
	})
}

func scanCategory(row Scanner) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name); err != nil {
		return nil, err
	}
	return &c, nil
}

// Only the display name is mutable; ownership never moves.
func applyCategoryPatch(c *domain.Category, patch map[string]interface{}) (map[string]interface{}, error) {
	changed := make(map[string]interface{}, 1)
	if value, ok := patch["name"]; ok {
		name, isString := value.(string)
		if !isString {
			return nil, &domain.ValidationError{Fields: map[string]string{"name": "must be a string"}}
		}
		c.Name = name
		changed["name"] = name
	}
	return changed, nil
}
