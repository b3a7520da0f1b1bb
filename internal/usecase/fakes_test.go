package usecase

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"catalog_service/internal/domain"
	"catalog_service/internal/repository"
)

// In-memory doubles for the store contracts. They honor the same
// filter shapes the usecases actually issue, and their Create runs
// the same structural validation the real collections do, so the
// usecase error paths behave the same against either store.

var docValidator = newDocValidator()

func newDocValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateDoc(e interface{}) error {
	err := docValidator.Struct(e)
	if err == nil {
		return nil
	}
	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(violations))
	for _, violation := range violations {
		fields[violation.Field()] = "is invalid"
	}
	return &domain.ValidationError{Fields: fields}
}

type fakeCategoryStore struct {
	items []*domain.Category
}

func (s *fakeCategoryStore) add(ownerID, name string) *domain.Category {
	c := &domain.Category{ID: uuid.NewString(), OwnerID: ownerID, Name: name}
	s.items = append(s.items, c)
	return c
}

func matchCategory(c *domain.Category, f repository.Filter) bool {
	for _, cond := range f {
		switch cond.Column {
		case "id":
			if cond.Op == repository.OpIn {
				found := false
				for _, id := range cond.Value.([]string) {
					if c.ID == id {
						found = true
					}
				}
				if !found {
					return false
				}
			} else if c.ID != cond.Value.(string) {
				return false
			}
		case "owner_id":
			if c.OwnerID != cond.Value.(string) {
				return false
			}
		}
	}
	return true
}

func (s *fakeCategoryStore) FindOne(_ context.Context, f repository.Filter, _ ...string) (*domain.Category, error) {
	for _, c := range s.items {
		if matchCategory(c, f) {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeCategoryStore) FindMany(_ context.Context, f repository.Filter, _ repository.FindOptions, _ ...string) ([]*domain.Category, error) {
	matched := []*domain.Category{}
	for _, c := range s.items {
		if matchCategory(c, f) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (s *fakeCategoryStore) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := validateDoc(c); err != nil {
		return nil, err
	}
	s.items = append(s.items, c)
	return c, nil
}

func (s *fakeCategoryStore) Update(_ context.Context, id string, patch map[string]interface{}) (*domain.Category, error) {
	for _, c := range s.items {
		if c.ID == id {
			if name, ok := patch["name"].(string); ok {
				c.Name = name
			}
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeCategoryStore) Delete(_ context.Context, id string) (*domain.Category, error) {
	for i, c := range s.items {
		if c.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeProductStore struct {
	items      []*domain.Product
	categories *fakeCategoryStore
}

func matchProduct(p *domain.Product, f repository.Filter) bool {
	for _, cond := range f {
		switch cond.Column {
		case "id":
			if p.ID != cond.Value.(string) {
				return false
			}
		case "owner_id":
			if p.OwnerID != cond.Value.(string) {
				return false
			}
		case "category_id":
			if p.CategoryID != cond.Value.(string) {
				return false
			}
		case "stock":
			limit := cond.Value.(int)
			switch cond.Op {
			case repository.OpLt:
				if p.Stock >= limit {
					return false
				}
			case repository.OpEq:
				if p.Stock != limit {
					return false
				}
			case repository.OpGt:
				if p.Stock <= limit {
					return false
				}
			}
		}
	}
	return true
}

func (s *fakeProductStore) expand(items []*domain.Product, names []string) {
	for _, name := range names {
		if name != "category" || s.categories == nil {
			continue
		}
		for _, p := range items {
			for _, c := range s.categories.items {
				if c.ID == p.CategoryID {
					p.Category = c
				}
			}
		}
	}
}

func (s *fakeProductStore) FindByID(_ context.Context, id string, expand ...string) (*domain.Product, error) {
	for _, p := range s.items {
		if p.ID == id {
			s.expand([]*domain.Product{p}, expand)
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeProductStore) FindOne(_ context.Context, f repository.Filter, expand ...string) (*domain.Product, error) {
	for _, p := range s.items {
		if matchProduct(p, f) {
			s.expand([]*domain.Product{p}, expand)
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeProductStore) FindMany(_ context.Context, f repository.Filter, opts repository.FindOptions, expand ...string) ([]*domain.Product, error) {
	matched := []*domain.Product{}
	for _, p := range s.items {
		if matchProduct(p, f) {
			matched = append(matched, p)
		}
	}

	for _, field := range opts.Sort {
		field := field
		sort.SliceStable(matched, func(i, j int) bool {
			var less bool
			switch field.Column {
			case "name":
				less = matched[i].Name < matched[j].Name
			case "price":
				less = matched[i].Price < matched[j].Price
			case "stock":
				less = matched[i].Stock < matched[j].Stock
			case "created_at":
				less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
			}
			if field.Desc {
				return !less
			}
			return less
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= len(matched) {
			matched = nil
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	s.expand(matched, expand)
	return matched, nil
}

func (s *fakeProductStore) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := validateDoc(p); err != nil {
		return nil, err
	}
	s.items = append(s.items, p)
	return p, nil
}

func (s *fakeProductStore) Update(_ context.Context, id string, patch map[string]interface{}) (*domain.Product, error) {
	for _, p := range s.items {
		if p.ID != id {
			continue
		}
		if name, ok := patch["name"].(string); ok {
			p.Name = name
		}
		if price, ok := patch["price"].(float64); ok {
			p.Price = price
		}
		if stock, ok := patch["stock"].(float64); ok {
			p.Stock = int(stock)
		} else if stock, ok := patch["stock"].(int); ok {
			p.Stock = stock
		}
		if categoryID, ok := patch["category_id"].(string); ok {
			p.CategoryID = categoryID
		}
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (s *fakeProductStore) Delete(_ context.Context, id string) (*domain.Product, error) {
	for i, p := range s.items {
		if p.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeProductStore) Count(_ context.Context, f repository.Filter) (int, error) {
	count := 0
	for _, p := range s.items {
		if matchProduct(p, f) {
			count++
		}
	}
	return count, nil
}

func (s *fakeProductStore) GroupCount(_ context.Context, f repository.Filter, column string) ([]repository.GroupCount, error) {
	counts := map[string]int{}
	order := []string{}
	for _, p := range s.items {
		if !matchProduct(p, f) {
			continue
		}
		if _, seen := counts[p.CategoryID]; !seen {
			order = append(order, p.CategoryID)
		}
		counts[p.CategoryID]++
	}

	groups := make([]repository.GroupCount, 0, len(order))
	for _, key := range order {
		groups = append(groups, repository.GroupCount{Key: key, Count: counts[key]})
	}
	return groups, nil
}

type fakeUserStore struct {
	items []*domain.User
}

func (s *fakeUserStore) FindByID(_ context.Context, id string, _ ...string) (*domain.User, error) {
	for _, u := range s.items {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeUserStore) FindOne(_ context.Context, f repository.Filter, _ ...string) (*domain.User, error) {
	for _, u := range s.items {
		matched := true
		for _, cond := range f {
			switch cond.Column {
			case "id":
				matched = matched && u.ID == cond.Value.(string)
			case "email":
				matched = matched && u.Email == cond.Value.(string)
			}
		}
		if matched {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeUserStore) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range s.items {
		if existing.Email == u.Email {
			return nil, domain.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if err := validateDoc(u); err != nil {
		return nil, err
	}
	s.items = append(s.items, u)
	return u, nil
}
