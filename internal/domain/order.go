package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type OrderStatus string

// MaxPaymentMethodLen matches the payment_method column width, in characters.
const MaxPaymentMethodLen = 64

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderItem struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase Money  `json:"priceAtPurchase"`
}

// Order is immutable once created.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     Money           `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress json.RawMessage `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// PriceCart freezes catalog prices into order items and sums the total.
// Every cart line must have a price in prices, otherwise ErrProductNotFound.
func PriceCart(cart Cart, prices map[string]Product) ([]OrderItem, Money, error) {
	if len(cart) == 0 {
		return nil, 0, ErrEmptyCart
	}
	items := make([]OrderItem, 0, len(cart))
	var total Money
	for _, line := range cart {
		p, ok := prices[line.ProductID]
		if !ok || !p.Active {
			return nil, 0, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		sub, err := p.Price.Times(line.Quantity)
		if err != nil {
			return nil, 0, err
		}
		if total, err = total.Plus(sub); err != nil {
			return nil, 0, err
		}
		items = append(items, OrderItem{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: p.Price,
		})
	}
	return items, total, nil
}

type OrderRepository interface {
	// Place inserts o and, in the same unit of work, clears u's cart and appends o.ID
	// to u.OrderIDs if u.Version still matches. On success u reflects the stored state.
	Place(ctx context.Context, o *Order, u *User) error
	// ListByUser returns the user's orders newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	FindByID(ctx context.Context, id string) (*Order, error)
}
