package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/ez"
)

type OrderHandler struct {
	orders *service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders *service.OrderService, l *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: l}
}

func (h *OrderHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	type placeOut struct {
		Message string        `json:"message"`
		Order   *domain.Order `json:"order"`
	}
	ez.RegisterAction(e, ez.Action[service.PlaceOrderInput, placeOut]{
		Method: http.MethodPost,
		Path:   "/users/me/orders",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.PlaceOrderInput) (placeOut, error) {
			o, err := h.orders.PlaceOrder(c.Request.Context(), ez.CurrentUser(c).ID, *in)
			if err != nil {
				return placeOut{}, err
			}
			return placeOut{Message: "Order placed", Order: o}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []service.OrderView]{
		Method: http.MethodGet,
		Path:   "/users/me/orders",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]service.OrderView, error) {
			return h.orders.ListOrders(c.Request.Context(), ez.CurrentUser(c).ID)
		},
	})
}
