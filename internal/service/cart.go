package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-gin-storefront/internal/core/metrics"
	"go-gin-storefront/internal/domain"
	"go-gin-storefront/pkg/utils"
)

const tracerName = "go-gin-storefront/service"

type CartService struct {
	users    domain.UserRepository
	products domain.ProductRepository
	counter  CartCounter
	log      *zap.Logger
	tracer   trace.Tracer
}

func NewCartService(users domain.UserRepository, products domain.ProductRepository, counter CartCounter, l *zap.Logger) *CartService {
	if counter == nil {
		counter = DirectCounter{}
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &CartService{users: users, products: products, counter: counter, log: l, tracer: otel.Tracer(tracerName)}
}

type CartLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   *ProductSummary `json:"product"`
	Subtotal  domain.Money    `json:"subtotal"`
}

// CartView is the cart with current catalog data; prices here are informational only.
type CartView struct {
	Items    []CartLine   `json:"items"`
	Count    int          `json:"count"`
	Subtotal domain.Money `json:"subtotal"`
}

func validProductID(id string) error {
	if !utils.IsID(id) {
		return fmt.Errorf("%w: invalid productId", domain.ErrInvalidArgument)
	}
	return nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (cart domain.Cart, err error) {
	ctx, span := s.tracer.Start(ctx, "cart.add", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.String("product.id", productID), attribute.Int("quantity", qty)))
	defer func() { endSpan(span, err) }()
	defer func() { metrics.CartMutations.WithLabelValues("add", metrics.Outcome(err)).Inc() }()

	if err := validProductID(productID); err != nil {
		return nil, err
	}
	if qty < domain.MinQuantity {
		return nil, fmt.Errorf("%w: quantity must be >= %d", domain.ErrInvalidArgument, domain.MinQuantity)
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	u, err := mutateUser(ctx, s.users, userID, "cart.add", func(u *domain.User) error {
		next, err := u.Cart.Add(productID, qty)
		if err != nil {
			return err
		}
		u.Cart = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.counter.Invalidate(ctx, userID)
	return u.Cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (cart domain.Cart, err error) {
	ctx, span := s.tracer.Start(ctx, "cart.remove", trace.WithAttributes(
		attribute.String("user.id", userID), attribute.String("product.id", productID)))
	defer func() { endSpan(span, err) }()
	defer func() { metrics.CartMutations.WithLabelValues("remove", metrics.Outcome(err)).Inc() }()

	if err := validProductID(productID); err != nil {
		return nil, err
	}
	u, err := mutateUser(ctx, s.users, userID, "cart.remove", func(u *domain.User) error {
		u.Cart = u.Cart.Remove(productID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.counter.Invalidate(ctx, userID)
	return u.Cart, nil
}

func (s *CartService) GetCart(ctx context.Context, userID string) (CartView, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	prods, err := s.products.FindByIDs(ctx, u.Cart.ProductIDs())
	if err != nil {
		return CartView{}, fmt.Errorf("load cart products: %w", err)
	}
	view := CartView{Items: make([]CartLine, 0, len(u.Cart)), Count: u.Cart.Count()}
	for _, line := range u.Cart {
		cl := CartLine{ProductID: line.ProductID, Quantity: line.Quantity}
		if p, ok := prods[line.ProductID]; ok {
			cl.Product = summarize(p)
			sub, err := p.Price.Times(line.Quantity)
			if err != nil {
				return CartView{}, fmt.Errorf("cart line %s: %w", line.ProductID, err)
			}
			cl.Subtotal = sub
			if view.Subtotal, err = view.Subtotal.Plus(sub); err != nil {
				return CartView{}, fmt.Errorf("cart subtotal: %w", err)
			}
		}
		view.Items = append(view.Items, cl)
	}
	return view, nil
}

// Count returns the number of units in the cart through the projection.
func (s *CartService) Count(ctx context.Context, userID string) (int, error) {
	return s.counter.Count(ctx, userID, func(ctx context.Context) (int, error) {
		u, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return 0, err
		}
		return u.Cart.Count(), nil
	})
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
