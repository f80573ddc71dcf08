package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/feature/product"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var m product.ProductModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	p := m.ToDomain()
	return &p, nil
}

func (r *ProductRepo) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ms []product.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	for _, m := range ms {
		out[m.ID] = m.ToDomain()
	}
	return out, nil
}

func (r *ProductRepo) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	tx := r.db.WithContext(ctx).Model(&product.ProductModel{}).Where("active = ?", true)
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("name LIKE ?", "%"+s+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []product.ProductModel
	if err := tx.Order("created_at desc").Offset(q.Offset).Limit(q.Limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Product, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, total, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	m := product.FromDomain(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	p.CreatedAt, p.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	m := product.FromDomain(p)
	res := r.db.WithContext(ctx).Model(&m).
		Select("name", "description", "category", "image_url", "price_minor", "active", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	p.UpdatedAt = m.UpdatedAt
	return nil
}
