package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-gin-storefront/internal/core/events"
	"go-gin-storefront/internal/core/logger"
	"go-gin-storefront/internal/core/metrics"
	"go-gin-storefront/internal/domain"
	"go-gin-storefront/pkg/utils"
)

type OrderService struct {
	users    domain.UserRepository
	products domain.ProductRepository
	orders   domain.OrderRepository
	counter  CartCounter
	events   events.Publisher
	log      *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewOrderService(
	users domain.UserRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	counter CartCounter,
	pub events.Publisher,
	l *zap.Logger,
) *OrderService {
	if l == nil {
		l = zap.NewNop()
	}
	if counter == nil {
		counter = DirectCounter{}
	}
	if pub == nil {
		pub = events.NewLogPublisher(l)
	}
	return &OrderService{
		users: users, products: products, orders: orders,
		counter: counter, events: pub, log: l,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
}

type PlaceOrderInput struct {
	ShippingAddress json.RawMessage `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

func (in PlaceOrderInput) validate() error {
	addr := strings.TrimSpace(string(in.ShippingAddress))
	if addr == "" || addr == "null" || !json.Valid(in.ShippingAddress) {
		return fmt.Errorf("%w: shippingAddress required", domain.ErrInvalidArgument)
	}
	pm := strings.TrimSpace(in.PaymentMethod)
	if pm == "" {
		return fmt.Errorf("%w: paymentMethod required", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(pm) > domain.MaxPaymentMethodLen {
		return fmt.Errorf("%w: paymentMethod longer than %d characters", domain.ErrInvalidArgument, domain.MaxPaymentMethodLen)
	}
	return nil
}

// PlaceOrder converts the current cart into an order at current catalog prices. The
// order insert, cart clear and order reference are one atomic write; a concurrent cart
// change makes the whole attempt start over from a fresh read.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (order *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "order.place", trace.WithAttributes(attribute.String("user.id", userID)))
	defer func() { endSpan(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}

	err = withRetry(ctx, "order.place", func() error {
		u, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if len(u.Cart) == 0 {
			return domain.ErrEmptyCart
		}
		// 价格必须直接读库，不走缓存
		prices, err := s.products.FindByIDs(ctx, u.Cart.ProductIDs())
		if err != nil {
			return fmt.Errorf("load prices: %w", err)
		}
		items, total, err := domain.PriceCart(u.Cart, prices)
		if err != nil {
			return err
		}
		o := &domain.Order{
			ID:              utils.NewID(),
			UserID:          u.ID,
			Items:           items,
			TotalAmount:     total,
			Status:          domain.OrderPending,
			ShippingAddress: append(json.RawMessage(nil), in.ShippingAddress...),
			PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
			CreatedAt:       s.now().UTC(),
		}
		if err := s.orders.Place(ctx, o, u); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.counter.Invalidate(ctx, userID)
	metrics.OrdersPlaced.Inc()
	metrics.OrderAmountMinor.Add(float64(order.TotalAmount))
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.Int64("order.total", int64(order.TotalAmount)))
	logger.FromContext(ctx, s.log).Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(order.Items)),
		zap.Int64("total", int64(order.TotalAmount)),
	)

	if perr := s.events.Publish(ctx, events.OrderPlaced, order.ID, order); perr != nil {
		// 订单已提交，事件失败只记录
		logger.FromContext(ctx, s.log).Warn("publish order event failed", zap.String("order_id", order.ID), zap.Error(perr))
	}
	return order, nil
}

type OrderItemView struct {
	ProductID       string          `json:"productId"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase domain.Money    `json:"priceAtPurchase"`
	Product         *ProductSummary `json:"product"`
}

type OrderView struct {
	ID              string             `json:"id"`
	Items           []OrderItemView    `json:"items"`
	TotalAmount     domain.Money       `json:"totalAmount"`
	Status          domain.OrderStatus `json:"status"`
	ShippingAddress json.RawMessage    `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ListOrders returns the user's orders newest first, with current product data attached
// for display. Product is nil when the product has since been removed.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]OrderView, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var ids []string
	seen := map[string]struct{}{}
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}
	prods := map[string]domain.Product{}
	if len(ids) > 0 {
		if prods, err = s.products.FindByIDs(ctx, ids); err != nil {
			return nil, fmt.Errorf("load order products: %w", err)
		}
	}

	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{
			ID:              o.ID,
			Items:           make([]OrderItemView, 0, len(o.Items)),
			TotalAmount:     o.TotalAmount,
			Status:          o.Status,
			ShippingAddress: o.ShippingAddress,
			PaymentMethod:   o.PaymentMethod,
			CreatedAt:       o.CreatedAt,
		}
		for _, it := range o.Items {
			iv := OrderItemView{ProductID: it.ProductID, Quantity: it.Quantity, PriceAtPurchase: it.PriceAtPurchase}
			if p, ok := prods[it.ProductID]; ok {
				iv.Product = summarize(p)
			}
			v.Items = append(v.Items, iv)
		}
		out = append(out, v)
	}
	return out, nil
}
