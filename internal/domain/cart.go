package domain

import "fmt"

const (
	MinQuantity = 1
	MaxQuantity = 999
)

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart keeps insertion order; ProductID is unique within it.
type Cart []CartItem

// Add merges qty into the existing line for productID or appends a new line.
func (c Cart) Add(productID string, qty int) (Cart, error) {
	if qty < MinQuantity {
		return c, fmt.Errorf("%w: quantity must be >= %d", ErrInvalidArgument, MinQuantity)
	}
	out := c.clone()
	for i := range out {
		if out[i].ProductID == productID {
			if out[i].Quantity+qty > MaxQuantity {
				return c, fmt.Errorf("%w: quantity too large (max %d)", ErrInvalidArgument, MaxQuantity)
			}
			out[i].Quantity += qty
			return out, nil
		}
	}
	if qty > MaxQuantity {
		return c, fmt.Errorf("%w: quantity too large (max %d)", ErrInvalidArgument, MaxQuantity)
	}
	return append(out, CartItem{ProductID: productID, Quantity: qty}), nil
}

// Remove drops the line for productID; absent lines are ignored.
func (c Cart) Remove(productID string) Cart {
	out := make(Cart, 0, len(c))
	for _, it := range c {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

// Count is the total number of units.
func (c Cart) Count() int {
	n := 0
	for _, it := range c {
		n += it.Quantity
	}
	return n
}

func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c))
	for _, it := range c {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
