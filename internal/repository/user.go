package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog_service/internal/domain"
)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "created_at"}

func NewUsers(db *sql.DB, logger *logrus.Logger) *Collection[domain.User] {
	return NewCollection(db, logger, Schema[domain.User]{
		Table:   "users",
		Columns: userColumns,
		Scan:    scanUser,
		Prepare: func(u *domain.User) {
			if u.ID == "" {
				u.ID = uuid.NewString()
			}
			if u.Role == "" {
				u.Role = "user"
			}
			if u.CreatedAt.IsZero() {
				u.CreatedAt = time.Now().UTC()
			}
		},
		Insert: func(u *domain.User) map[string]interface{} {
			return map[string]interface{}{
				"id":            u.ID,
				"name":          u.Name,
				"email":         u.Email,
				"password_hash": u.PasswordHash,
				"role":          u.Role,
				"created_at":    u.CreatedAt,
			}
		},
		Apply: applyUserPatch,
	})
}

func scanUser(row Scanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func applyUserPatch(u *domain.User, patch map[string]interface{}) (map[string]interface{}, error) {
	changed := make(map[string]interface{}, 1)
	if value, ok := patch["name"]; ok {
		name, isString := value.(string)
		if !isString {
			return nil, &domain.ValidationError{Fields: map[string]string{"name": "must be a string"}}
		}
		u.Name = name
		changed["name"] = name
	}
	return changed, nil
}
