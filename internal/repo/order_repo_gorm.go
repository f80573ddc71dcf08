package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/feature/order"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// Place 订单写入与清空购物车在同一事务：先插订单，再按 version 条件更新用户
func (r *OrderRepo) Place(ctx context.Context, o *domain.Order, u *domain.User) error {
	next := *u
	next.Cart = domain.Cart{}
	next.OrderIDs = append(append([]string(nil), u.OrderIDs...), o.ID)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := order.FromDomain(o)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		o.CreatedAt = m.CreatedAt
		return saveUser(tx, &next)
	})
	if err != nil {
		return err
	}
	*u = next
	return nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var ms []order.OrderModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var m order.OrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o := m.ToDomain()
	return &o, nil
}
