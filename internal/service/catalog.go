package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-storefront/internal/core/cache"
	"go-gin-storefront/internal/core/logger"
	"go-gin-storefront/internal/domain"
	"go-gin-storefront/pkg/utils"
)

// ProductSummary is the product data embedded in cart and order views.
type ProductSummary struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	ImageURL string       `json:"image"`
	Price    domain.Money `json:"price"`
	Active   bool         `json:"active"`
}

func summarize(p domain.Product) *ProductSummary {
	return &ProductSummary{ID: p.ID, Name: p.Name, ImageURL: p.ImageURL, Price: p.Price, Active: p.Active}
}

type CatalogService struct {
	products domain.ProductRepository
	cache    *cache.Cache // optional
	ttl      time.Duration
	log      *zap.Logger
}

func NewCatalogService(products domain.ProductRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CatalogService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &CatalogService{products: products, cache: c, ttl: ttl, log: l}
}

func productKey(id string) string { return "product:" + id }

// Get reads a single product for display. Order placement never goes through here.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if !utils.IsID(id) {
		return nil, fmt.Errorf("%w: invalid product id", domain.ErrInvalidArgument)
	}
	if s.cache == nil {
		return s.products.FindByID(ctx, id)
	}
	p, err := cache.GetOrLoadJSON(s.cache, ctx, productKey(id), s.ttl, func(ctx context.Context) (*domain.Product, error) {
		return s.products.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return s.products.List(ctx, q)
}

type ProductInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	ImageURL    string       `json:"image"`
	Price       domain.Money `json:"price"`
	Active      *bool        `json:"active"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", domain.ErrInvalidArgument)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", domain.ErrInvalidArgument)
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:          utils.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
		Active:      in.Active == nil || *in.Active,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("product created", zap.String("product_id", p.ID), zap.Int64("price", int64(p.Price)))
	return p, nil
}

// Update replaces catalog fields. Orders already placed keep their frozen prices.
func (s *CatalogService) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if !utils.IsID(id) {
		return nil, fmt.Errorf("%w: invalid product id", domain.ErrInvalidArgument)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Category = in.Category
	p.ImageURL = in.ImageURL
	p.Price = in.Price
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, productKey(id)); err != nil {
			logger.FromContext(ctx, s.log).Warn("product cache invalidation failed", zap.String("product_id", id), zap.Error(err))
		}
	}
	return p, nil
}
