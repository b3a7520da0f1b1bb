package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,max=120"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-" validate:"required"`
	Role         string    `json:"role" validate:"required,oneof=user admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category is visible and usable only by its owner.
type Category struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id" validate:"required"`
	Name    string `json:"name" validate:"required,max=120"`
}

type Product struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id" validate:"required"`
	CategoryID string    `json:"category_id" validate:"required"`
	Name       string    `json:"name" validate:"required,max=200"`
	Price      float64   `json:"price" validate:"gte=0"`
	Stock      int       `json:"stock" validate:"gte=0"`
	CreatedAt  time.Time `json:"created_at"`

	// Category is populated only when the query expanded it.
	Category *Category `json:"category,omitempty"`
}

type ProductStats struct {
	TotalProducts     int             `json:"totalProducts"`
	LowStockProducts  int             `json:"lowStockProducts"`
	CategoryBreakdown []CategoryCount `json:"categoryBreakdown"`
}

// CategoryCount carries one categoryBreakdown entry. Ordering of the
// breakdown follows grouping order and is not guaranteed.
type CategoryCount struct {
	CategoryName string `json:"categoryName"`
	Count        int    `json:"count"`
}
