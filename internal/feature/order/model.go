package order

import (
	"encoding/json"
	"time"

	"go-gin-storefront/internal/domain"
)

// OrderModel has no UpdatedAt: rows are written once.
type OrderModel struct {
	ID              string             `gorm:"primaryKey;type:varchar(36)"`
	UserID          string             `gorm:"type:varchar(36);not null;index"`
	Items           []domain.OrderItem `gorm:"type:json;serializer:json"`
	TotalAmount     int64              `gorm:"not null"`
	Status          string             `gorm:"size:16;not null;index"`
	ShippingAddress json.RawMessage    `gorm:"type:json;serializer:json"`
	PaymentMethod   string             `gorm:"size:64;not null"` // domain.MaxPaymentMethodLen

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (OrderModel) TableName() string { return "orders" }

func FromDomain(o *domain.Order) OrderModel {
	return OrderModel{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           o.Items,
		TotalAmount:     int64(o.TotalAmount),
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
	}
}

func (m OrderModel) ToDomain() domain.Order {
	return domain.Order{
		ID:              m.ID,
		UserID:          m.UserID,
		Items:           m.Items,
		TotalAmount:     domain.Money(m.TotalAmount),
		Status:          domain.OrderStatus(m.Status),
		ShippingAddress: m.ShippingAddress,
		PaymentMethod:   m.PaymentMethod,
		CreatedAt:       m.CreatedAt,
	}
}
