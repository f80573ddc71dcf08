package product

import (
	"time"

	"go-gin-storefront/internal/domain"
)

type ProductModel struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Name        string `gorm:"size:255;not null;index"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:64;index"`
	ImageURL    string `gorm:"size:512"`
	PriceMinor  int64  `gorm:"not null"`
	Active      bool   `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ProductModel) TableName() string { return "products" }

func FromDomain(p *domain.Product) ProductModel {
	return ProductModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		PriceMinor:  int64(p.Price),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (m ProductModel) ToDomain() domain.Product {
	return domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		ImageURL:    m.ImageURL,
		Price:       domain.Money(m.PriceMinor),
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
