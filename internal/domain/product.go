package domain

import (
	"context"
	"time"
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image"`
	Price       Money     `json:"price"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProductQuery struct {
	Offset   int
	Limit    int
	Category string
	Q        string
}

// ProductRepository is the catalog; the cart and order paths only read from it.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	// FindByIDs returns the products that exist, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	List(ctx context.Context, q ProductQuery) ([]Product, int64, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
}
